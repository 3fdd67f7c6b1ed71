package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/durusapp/durus/core/classroom"
)

type classroomRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Capacity  int       `db:"capacity"`
	Location  string    `db:"location"`
	CreatedAt time.Time `db:"created_at"`
}

func (r classroomRow) toClassroom() classroom.Classroom {
	return classroom.Classroom{
		ID:        r.ID,
		Name:      r.Name,
		Capacity:  r.Capacity,
		Location:  r.Location,
		CreatedAt: r.CreatedAt,
	}
}

type classroomRepository struct {
	db *sqlx.DB
}

var _ classroom.Repository = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(db *sqlx.DB) *classroomRepository {
	return &classroomRepository{db: db}
}

func (repo classroomRepository) CreateClassroom(ctx context.Context, c classroom.Classroom) (classroom.Classroom, error) {
	c.ID = uuid.New().String()
	q := `INSERT INTO classroom (id, name, capacity, location, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := repo.db.ExecContext(ctx, q, c.ID, c.Name, c.Capacity, c.Location, c.CreatedAt); err != nil {
		return classroom.Classroom{}, errors.Wrap(err, "inserting classroom")
	}
	return c, nil
}

func (repo classroomRepository) QueryAllClassrooms(ctx context.Context) ([]classroom.Classroom, error) {
	var rows []classroomRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM classroom ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying classrooms")
	}
	rooms := make([]classroom.Classroom, 0, len(rows))
	for _, r := range rows {
		rooms = append(rooms, r.toClassroom())
	}
	return rooms, nil
}

func (repo classroomRepository) GetClassroomByID(ctx context.Context, id string) (classroom.Classroom, error) {
	if _, err := uuid.Parse(id); err != nil {
		return classroom.Classroom{}, classroom.ErrNotFound
	}
	var row classroomRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM classroom WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return classroom.Classroom{}, classroom.ErrNotFound
	} else if err != nil {
		return classroom.Classroom{}, errors.Wrap(err, "finding classroom by ID")
	}
	return row.toClassroom(), nil
}
