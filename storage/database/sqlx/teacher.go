package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/durusapp/durus/core/teacher"
)

type teacherRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Subjects    pq.StringArray `db:"subjects"`
	Phone       string         `db:"phone"`
	Email       string         `db:"email"`
	HireDate    null.Time      `db:"hire_date"`
	IsActive    bool           `db:"is_active"`
	SalaryShare float64        `db:"salary_share"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r teacherRow) toTeacher() teacher.Teacher {
	return teacher.Teacher{
		ID:          r.ID,
		Name:        r.Name,
		Subjects:    r.Subjects,
		Phone:       r.Phone,
		Email:       r.Email,
		HireDate:    r.HireDate.Time,
		IsActive:    &r.IsActive,
		SalaryShare: r.SalaryShare,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type teacherRepository struct {
	db *sqlx.DB
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *sqlx.DB) *teacherRepository {
	return &teacherRepository{db: db}
}

func (repo teacherRepository) CreateTeacher(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	t.ID = uuid.New().String()
	q := `
		INSERT INTO teacher (id, name, subjects, phone, email, hire_date, is_active, salary_share, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := repo.db.ExecContext(ctx, q,
		t.ID, t.Name, pq.StringArray(t.Subjects), t.Phone, t.Email,
		null.NewTime(t.HireDate, !t.HireDate.IsZero()),
		t.Active(), t.SalaryShare, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return t, nil
}

func (repo teacherRepository) QueryAllTeachers(ctx context.Context) ([]teacher.Teacher, error) {
	var rows []teacherRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM teacher ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	teachers := make([]teacher.Teacher, 0, len(rows))
	for _, r := range rows {
		teachers = append(teachers, r.toTeacher())
	}
	return teachers, nil
}

func (repo teacherRepository) GetTeacherByID(ctx context.Context, id string) (teacher.Teacher, error) {
	if _, err := uuid.Parse(id); err != nil {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	var row teacherRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM teacher WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return teacher.Teacher{}, teacher.ErrNotFound
	} else if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "finding teacher by ID")
	}
	return row.toTeacher(), nil
}

func (repo teacherRepository) UpdateTeacher(ctx context.Context, t teacher.Teacher, isActive *bool) (teacher.Teacher, error) {
	q := `
		UPDATE teacher
		SET name = $2,
		    subjects = COALESCE($3, subjects),
		    phone = $4,
		    email = $5,
		    hire_date = COALESCE($6, hire_date),
		    is_active = COALESCE($7, is_active),
		    salary_share = $8,
		    updated_at = $9
		WHERE id = $1`
	var subjects interface{}
	if t.Subjects != nil {
		subjects = pq.StringArray(t.Subjects)
	}
	var active interface{}
	if isActive != nil {
		active = *isActive
	}
	res, err := repo.db.ExecContext(ctx, q,
		t.ID, t.Name, subjects, t.Phone, t.Email,
		null.NewTime(t.HireDate, !t.HireDate.IsZero()),
		active, t.SalaryShare, t.UpdatedAt)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	return repo.GetTeacherByID(ctx, t.ID)
}

func (repo teacherRepository) DeleteTeachersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM teacher WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	_, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...)
	return errors.Wrap(err, "deleting teachers")
}
