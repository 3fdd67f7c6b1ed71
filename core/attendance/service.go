package attendance

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("attendance entry not found")

type (
	Repository interface {
		CreateAttendance(ctx context.Context, a Attendance) (Attendance, error)
		QueryAllAttendance(ctx context.Context) ([]Attendance, error)
		// FilterAttendance applies AND operation on available QueryFilter fields.
		// QueryFilter.Day matches entries within that calendar day.
		FilterAttendance(ctx context.Context, filter QueryFilter) ([]Attendance, error)
		DeleteAttendanceByStudent(ctx context.Context, studentID string) error
		DeleteAttendanceByClass(ctx context.Context, classID string) error
	}

	ServiceInterface interface {
		Record(ctx context.Context, na NewAttendance, recordedBy string) (Attendance, error)
		Query(ctx context.Context, filter *QueryFilter) ([]Attendance, error)
		DeleteByStudent(ctx context.Context, studentID string) error
		DeleteByClass(ctx context.Context, classID string) error
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

func (svc *service) Record(ctx context.Context, na NewAttendance, recordedBy string) (Attendance, error) {
	date := na.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	status := na.Status
	if status == "" {
		status = StatusPresent
	}
	a := Attendance{
		StudentID:  na.StudentID,
		ClassID:    na.ClassID,
		Date:       date,
		Status:     status,
		RecordedBy: recordedBy,
	}
	return svc.repo.CreateAttendance(ctx, a)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter) ([]Attendance, error) {
	if filter == nil || filter.IsEmpty() {
		return svc.repo.QueryAllAttendance(ctx)
	}
	return svc.repo.FilterAttendance(ctx, *filter)
}

func (svc *service) DeleteByStudent(ctx context.Context, studentID string) error {
	return svc.repo.DeleteAttendanceByStudent(ctx, studentID)
}

func (svc *service) DeleteByClass(ctx context.Context, classID string) error {
	return svc.repo.DeleteAttendanceByClass(ctx, classID)
}
