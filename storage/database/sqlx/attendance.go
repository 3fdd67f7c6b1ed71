package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/durusapp/durus/core/attendance"
)

type attendanceRow struct {
	ID         string    `db:"id"`
	StudentID  string    `db:"student_id"`
	ClassID    string    `db:"class_id"`
	Date       time.Time `db:"date"`
	Status     string    `db:"status"`
	RecordedBy string    `db:"recorded_by"`
}

func (r attendanceRow) toAttendance() attendance.Attendance {
	return attendance.Attendance{
		ID:         r.ID,
		StudentID:  r.StudentID,
		ClassID:    r.ClassID,
		Date:       r.Date,
		Status:     r.Status,
		RecordedBy: r.RecordedBy,
	}
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo attendanceRepository) CreateAttendance(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	a.ID = uuid.New().String()
	q := `INSERT INTO attendance (id, student_id, class_id, date, status, recorded_by) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.ExecContext(ctx, q, a.ID, a.StudentID, a.ClassID, a.Date, a.Status, a.RecordedBy)
	if err != nil {
		return attendance.Attendance{}, errors.Wrap(err, "inserting attendance")
	}
	return a, nil
}

func (repo attendanceRepository) QueryAllAttendance(ctx context.Context) ([]attendance.Attendance, error) {
	var rows []attendanceRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM attendance ORDER BY date DESC`); err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	return repo.toEntries(rows), nil
}

func (repo attendanceRepository) FilterAttendance(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Attendance, error) {
	q := `SELECT * FROM attendance WHERE 1=1`
	var args []interface{}

	if filter.ClassID != "" {
		q += ` AND class_id = ?`
		args = append(args, filter.ClassID)
	}
	if filter.StudentID != "" {
		q += ` AND student_id = ?`
		args = append(args, filter.StudentID)
	}
	if !filter.Day.IsZero() {
		dayStart := time.Date(filter.Day.Year(), filter.Day.Month(), filter.Day.Day(), 0, 0, 0, 0, filter.Day.Location())
		q += ` AND date >= ? AND date < ?`
		args = append(args, dayStart, dayStart.AddDate(0, 0, 1))
	}
	q += ` ORDER BY date DESC`

	var rows []attendanceRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering attendance")
	}
	return repo.toEntries(rows), nil
}

func (repo attendanceRepository) DeleteAttendanceByStudent(ctx context.Context, studentID string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM attendance WHERE student_id = $1`, studentID)
	return errors.Wrap(err, "deleting student attendance")
}

func (repo attendanceRepository) DeleteAttendanceByClass(ctx context.Context, classID string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM attendance WHERE class_id = $1`, classID)
	return errors.Wrap(err, "deleting class attendance")
}

func (repo attendanceRepository) toEntries(rows []attendanceRow) []attendance.Attendance {
	entries := make([]attendance.Attendance, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.toAttendance())
	}
	return entries
}
