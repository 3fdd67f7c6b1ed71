package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/durusapp/durus/core/class"
)

type classRow struct {
	ID           string      `db:"id"`
	Name         string      `db:"name"`
	Subject      string      `db:"subject"`
	Description  string      `db:"description"`
	AcademicYear string      `db:"academic_year"`
	TeacherID    null.String `db:"teacher_id"`
	Price        float64     `db:"price"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

type scheduleRow struct {
	ClassID     string      `db:"class_id"`
	Day         string      `db:"day"`
	Time        string      `db:"time"`
	ClassroomID null.String `db:"classroom_id"`
}

func (r classRow) toClass(schedule []class.ScheduleSlot, studentIDs []string) class.Class {
	return class.Class{
		ID:           r.ID,
		Name:         r.Name,
		Subject:      r.Subject,
		Description:  r.Description,
		Schedule:     schedule,
		AcademicYear: r.AcademicYear,
		TeacherID:    r.TeacherID.String,
		StudentIDs:   studentIDs,
		Price:        r.Price,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type classRepository struct {
	db *sqlx.DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *sqlx.DB) *classRepository {
	return &classRepository{db: db}
}

func (repo classRepository) CreateClass(ctx context.Context, c class.Class) (class.Class, error) {
	c.ID = uuid.New().String()
	q := `
		INSERT INTO class (id, name, subject, description, academic_year, teacher_id, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, q,
		c.ID, c.Name, c.Subject, c.Description, c.AcademicYear,
		null.NewString(c.TeacherID, c.TeacherID != ""), c.Price, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return class.Class{}, errors.Wrap(err, "inserting class")
	}
	if err := repo.replaceSchedule(ctx, c.ID, c.Schedule); err != nil {
		return class.Class{}, err
	}
	return c, nil
}

func (repo classRepository) QueryAllClasses(ctx context.Context) ([]class.Class, error) {
	var rows []classRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM class ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	return repo.toClasses(ctx, rows)
}

func (repo classRepository) GetClassByID(ctx context.Context, id string) (class.Class, error) {
	if _, err := uuid.Parse(id); err != nil {
		return class.Class{}, class.ErrNotFound
	}
	var row classRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM class WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return class.Class{}, class.ErrNotFound
	} else if err != nil {
		return class.Class{}, errors.Wrap(err, "finding class by ID")
	}
	return repo.hydrate(ctx, row)
}

func (repo classRepository) FilterClasses(ctx context.Context, filter class.QueryFilter) ([]class.Class, error) {
	q := `SELECT * FROM class WHERE 1=1`
	var args []interface{}

	if filter.AcademicYear != "" {
		q += ` AND academic_year = ?`
		args = append(args, filter.AcademicYear)
	}
	if filter.Subject != "" {
		q += ` AND subject = ?`
		args = append(args, filter.Subject)
	}
	if filter.TeacherID != "" {
		q += ` AND teacher_id = ?`
		args = append(args, filter.TeacherID)
	}
	q += ` ORDER BY created_at`

	var rows []classRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering classes")
	}
	return repo.toClasses(ctx, rows)
}

func (repo classRepository) QueryClassesByStudent(ctx context.Context, studentID string) ([]class.Class, error) {
	q := `
		SELECT c.* FROM class c
		JOIN enrollment e ON e.class_id = c.id
		WHERE e.student_id = $1
		ORDER BY c.created_at`
	var rows []classRow
	if err := repo.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "querying classes by student")
	}
	return repo.toClasses(ctx, rows)
}

func (repo classRepository) UpdateClass(ctx context.Context, c class.Class) (class.Class, error) {
	q := `
		UPDATE class
		SET name = $2,
		    subject = $3,
		    description = $4,
		    academic_year = $5,
		    teacher_id = $6,
		    price = $7,
		    updated_at = $8
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q,
		c.ID, c.Name, c.Subject, c.Description, c.AcademicYear,
		null.NewString(c.TeacherID, c.TeacherID != ""), c.Price, c.UpdatedAt)
	if err != nil {
		return class.Class{}, errors.Wrap(err, "updating class")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return class.Class{}, class.ErrNotFound
	}
	if c.Schedule != nil {
		if err := repo.replaceSchedule(ctx, c.ID, c.Schedule); err != nil {
			return class.Class{}, err
		}
	}
	return repo.GetClassByID(ctx, c.ID)
}

func (repo classRepository) DeleteClassesByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM class WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	_, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...)
	return errors.Wrap(err, "deleting classes")
}

func (repo classRepository) AddClassStudent(ctx context.Context, classID, studentID string) error {
	q := `INSERT INTO enrollment (student_id, class_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	_, err := repo.db.ExecContext(ctx, q, studentID, classID)
	return errors.Wrap(err, "enrolling student")
}

func (repo classRepository) RemoveClassStudent(ctx context.Context, classID, studentID string) error {
	q := `DELETE FROM enrollment WHERE student_id = $1 AND class_id = $2`
	_, err := repo.db.ExecContext(ctx, q, studentID, classID)
	return errors.Wrap(err, "unenrolling student")
}

func (repo classRepository) UnsetClassTeacher(ctx context.Context, teacherID string) error {
	_, err := repo.db.ExecContext(ctx, `UPDATE class SET teacher_id = NULL WHERE teacher_id = $1`, teacherID)
	return errors.Wrap(err, "unsetting class teacher")
}

func (repo classRepository) replaceSchedule(ctx context.Context, classID string, slots []class.ScheduleSlot) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM class_schedule WHERE class_id = $1`, classID); err != nil {
		return errors.Wrap(err, "clearing class schedule")
	}
	q := `INSERT INTO class_schedule (class_id, day, time, classroom_id) VALUES ($1, $2, $3, $4)`
	for _, slot := range slots {
		_, err := repo.db.ExecContext(ctx, q, classID, slot.Day, slot.Time,
			null.NewString(slot.ClassroomID, slot.ClassroomID != ""))
		if err != nil {
			return errors.Wrap(err, "inserting class schedule slot")
		}
	}
	return nil
}

func (repo classRepository) hydrate(ctx context.Context, row classRow) (class.Class, error) {
	var slots []scheduleRow
	q := `SELECT class_id, day, time, classroom_id FROM class_schedule WHERE class_id = $1 ORDER BY id`
	if err := repo.db.SelectContext(ctx, &slots, q, row.ID); err != nil {
		return class.Class{}, errors.Wrap(err, "querying class schedule")
	}
	schedule := make([]class.ScheduleSlot, 0, len(slots))
	for _, s := range slots {
		schedule = append(schedule, class.ScheduleSlot{Day: s.Day, Time: s.Time, ClassroomID: s.ClassroomID.String})
	}

	var studentIDs []string
	if err := repo.db.SelectContext(ctx, &studentIDs, `SELECT student_id FROM enrollment WHERE class_id = $1`, row.ID); err != nil {
		return class.Class{}, errors.Wrap(err, "querying class enrollments")
	}
	return row.toClass(schedule, studentIDs), nil
}

func (repo classRepository) toClasses(ctx context.Context, rows []classRow) ([]class.Class, error) {
	classes := make([]class.Class, 0, len(rows))
	for _, r := range rows {
		c, err := repo.hydrate(ctx, r)
		if err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, nil
}
