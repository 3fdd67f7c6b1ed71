package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/durusapp/durus/core/student"
)

type studentRow struct {
	ID               string    `db:"id"`
	Name             string    `db:"name"`
	Code             string    `db:"code"`
	BirthDate        null.Time `db:"birth_date"`
	ParentName       string    `db:"parent_name"`
	ParentPhone      string    `db:"parent_phone"`
	ParentEmail      string    `db:"parent_email"`
	Address          string    `db:"address"`
	AcademicYear     string    `db:"academic_year"`
	RegistrationDate null.Time `db:"registration_date"`
	IsActive         bool      `db:"is_active"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (r studentRow) toStudent(classIDs []string) student.Student {
	return student.Student{
		ID:               r.ID,
		Name:             r.Name,
		Code:             r.Code,
		BirthDate:        r.BirthDate.Time,
		ParentName:       r.ParentName,
		ParentPhone:      r.ParentPhone,
		ParentEmail:      r.ParentEmail,
		Address:          r.Address,
		AcademicYear:     r.AcademicYear,
		RegistrationDate: r.RegistrationDate.Time,
		IsActive:         &r.IsActive,
		ClassIDs:         classIDs,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) CheckCodeUniqueness(ctx context.Context, code string, excluded ...student.Student) error {
	q := `SELECT EXISTS(SELECT 1 FROM student WHERE code = ?`
	args := []interface{}{code}
	if len(excluded) > 0 {
		ids := make([]string, 0, len(excluded))
		for _, s := range excluded {
			ids = append(ids, s.ID)
		}
		var err error
		q, args, err = sqlx.In(q+` AND id NOT IN (?))`, code, ids)
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
	} else {
		q += `)`
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "checking student code uniqueness")
	}
	if exists {
		return student.ErrCodeExists
	}
	return nil
}

func (repo studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	st.ID = uuid.New().String()
	q := `
		INSERT INTO student (id, name, code, birth_date, parent_name, parent_phone, parent_email,
		                     address, academic_year, registration_date, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := repo.db.ExecContext(ctx, q,
		st.ID, st.Name, st.Code,
		null.NewTime(st.BirthDate, !st.BirthDate.IsZero()),
		st.ParentName, st.ParentPhone, st.ParentEmail, st.Address, st.AcademicYear,
		null.NewTime(st.RegistrationDate, !st.RegistrationDate.IsZero()),
		st.Active(), st.CreatedAt, st.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return student.Student{}, student.ErrCodeExists
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return st, nil
}

func (repo studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM student ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return repo.toStudents(ctx, rows)
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return student.Student{}, student.ErrNotFound
	}
	var row studentRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM student WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return student.Student{}, student.ErrNotFound
	} else if err != nil {
		return student.Student{}, errors.Wrap(err, "finding student by ID")
	}
	classIDs, err := repo.classIDs(ctx, row.ID)
	if err != nil {
		return student.Student{}, err
	}
	return row.toStudent(classIDs), nil
}

func (repo studentRepository) GetStudentByCode(ctx context.Context, code string) (student.Student, error) {
	var row studentRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM student WHERE code = $1`, code)
	if err == sql.ErrNoRows {
		return student.Student{}, student.ErrNotFound
	} else if err != nil {
		return student.Student{}, errors.Wrap(err, "finding student by code")
	}
	classIDs, err := repo.classIDs(ctx, row.ID)
	if err != nil {
		return student.Student{}, err
	}
	return row.toStudent(classIDs), nil
}

func (repo studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	q := `SELECT * FROM student WHERE 1=1`
	var args []interface{}

	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		q += ` AND (name ILIKE ? OR code ILIKE ?)`
		args = append(args, val, val)
	}
	if filter.AcademicYear != "" {
		q += ` AND academic_year = ?`
		args = append(args, filter.AcademicYear)
	}
	if filter.IsActive != nil {
		q += ` AND is_active = ?`
		args = append(args, *filter.IsActive)
	}
	q += ` ORDER BY created_at`

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering students")
	}
	return repo.toStudents(ctx, rows)
}

func (repo studentRepository) UpdateStudent(ctx context.Context, st student.Student, isActive *bool) (student.Student, error) {
	q := `
		UPDATE student
		SET name = $2,
		    birth_date = COALESCE($3, birth_date),
		    parent_name = $4,
		    parent_phone = $5,
		    parent_email = $6,
		    address = $7,
		    academic_year = $8,
		    is_active = COALESCE($9, is_active),
		    updated_at = $10
		WHERE id = $1`
	var active interface{}
	if isActive != nil {
		active = *isActive
	}
	res, err := repo.db.ExecContext(ctx, q,
		st.ID, st.Name,
		null.NewTime(st.BirthDate, !st.BirthDate.IsZero()),
		st.ParentName, st.ParentPhone, st.ParentEmail, st.Address, st.AcademicYear,
		active, st.UpdatedAt)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudentByID(ctx, st.ID)
}

func (repo studentRepository) DeleteStudentsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM student WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	_, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...)
	return errors.Wrap(err, "deleting students")
}

func (repo studentRepository) AddStudentClass(ctx context.Context, studentID, classID string) error {
	q := `INSERT INTO enrollment (student_id, class_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	_, err := repo.db.ExecContext(ctx, q, studentID, classID)
	return errors.Wrap(err, "enrolling student")
}

func (repo studentRepository) RemoveStudentClass(ctx context.Context, studentID, classID string) error {
	q := `DELETE FROM enrollment WHERE student_id = $1 AND class_id = $2`
	_, err := repo.db.ExecContext(ctx, q, studentID, classID)
	return errors.Wrap(err, "unenrolling student")
}

func (repo studentRepository) classIDs(ctx context.Context, studentID string) ([]string, error) {
	var ids []string
	err := repo.db.SelectContext(ctx, &ids, `SELECT class_id FROM enrollment WHERE student_id = $1`, studentID)
	return ids, errors.Wrap(err, "querying student enrollments")
}

func (repo studentRepository) toStudents(ctx context.Context, rows []studentRow) ([]student.Student, error) {
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		classIDs, err := repo.classIDs(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		students = append(students, r.toStudent(classIDs))
	}
	return students, nil
}
