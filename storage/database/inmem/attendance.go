package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/durusapp/durus/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) query() []attendance.Attendance {
	entries := make([]attendance.Attendance, 0, len(repo.db.attendance))
	for _, a := range repo.db.attendance {
		entries = append(entries, *a)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date.After(entries[j].Date) })
	return entries
}

func (repo *attendanceRepository) CreateAttendance(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	a.ID = uuid.New().String()
	repo.db.attendance[a.ID] = &a
	return a, nil
}

func (repo *attendanceRepository) QueryAllAttendance(_ context.Context) ([]attendance.Attendance, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.query(), nil
}

func (repo *attendanceRepository) FilterAttendance(_ context.Context, filter attendance.QueryFilter) ([]attendance.Attendance, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var entries []attendance.Attendance
	for _, a := range repo.query() {
		if filter.ClassID != "" && a.ClassID != filter.ClassID {
			continue
		}
		if filter.StudentID != "" && a.StudentID != filter.StudentID {
			continue
		}
		if !filter.Day.IsZero() {
			y1, m1, d1 := filter.Day.Date()
			y2, m2, d2 := a.Date.Date()
			if y1 != y2 || m1 != m2 || d1 != d2 {
				continue
			}
		}
		entries = append(entries, a)
	}
	return entries, nil
}

func (repo *attendanceRepository) DeleteAttendanceByStudent(_ context.Context, studentID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for id, a := range repo.db.attendance {
		if a.StudentID == studentID {
			delete(repo.db.attendance, id)
		}
	}
	return nil
}

func (repo *attendanceRepository) DeleteAttendanceByClass(_ context.Context, classID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for id, a := range repo.db.attendance {
		if a.ClassID == classID {
			delete(repo.db.attendance, id)
		}
	}
	return nil
}
