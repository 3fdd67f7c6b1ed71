package student

import (
	"context"
	"errors"
	"time"

	"github.com/durusapp/durus/core"
)

var (
	ErrNotFound   = errors.New("student not found")
	ErrCodeExists = errors.New("a student with this code already exists")
)

type (
	Repository interface {
		CheckCodeUniqueness(ctx context.Context, code string, excluded ...Student) error
		CreateStudent(ctx context.Context, st Student) (Student, error)
		QueryAllStudents(ctx context.Context) ([]Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		GetStudentByCode(ctx context.Context, code string) (Student, error)
		// FilterStudents applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Student.Name or Student.Code.
		FilterStudents(ctx context.Context, filter QueryFilter) ([]Student, error)
		UpdateStudent(ctx context.Context, st Student, isActive *bool) (Student, error)
		DeleteStudentsByID(ctx context.Context, ids ...string) error
		AddStudentClass(ctx context.Context, studentID, classID string) error
		RemoveStudentClass(ctx context.Context, studentID, classID string) error
	}

	ServiceInterface interface {
		CheckCodeUniqueness(code string, excluded ...Student) error
		Create(ctx context.Context, ns NewStudent) (Student, error)
		Query(ctx context.Context, filter *QueryFilter) ([]Student, error)
		GetByID(ctx context.Context, id string) (Student, error)
		Update(ctx context.Context, id string, us UpdateStudent) (Student, error)
		Delete(ctx context.Context, ids ...string) error
		AddClass(ctx context.Context, studentID, classID string) error
		RemoveClass(ctx context.Context, studentID, classID string) error
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

func (svc *service) CheckCodeUniqueness(code string, excluded ...Student) error {
	if err := svc.repo.CheckCodeUniqueness(context.Background(), code, excluded...); err != nil {
		if err == ErrCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	regDate := ns.RegistrationDate
	if regDate.IsZero() {
		regDate = now
	}
	active := true
	st := Student{
		Name:             ns.Name,
		Code:             ns.Code,
		BirthDate:        ns.BirthDate,
		ParentName:       ns.ParentName,
		ParentPhone:      ns.ParentPhone,
		ParentEmail:      ns.ParentEmail,
		Address:          ns.Address,
		AcademicYear:     ns.AcademicYear,
		RegistrationDate: regDate,
		IsActive:         &active,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return svc.repo.CreateStudent(ctx, st)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter) ([]Student, error) {
	if filter == nil || filter.IsEmpty() {
		return svc.repo.QueryAllStudents(ctx)
	}
	filter.Clean()
	return svc.repo.FilterStudents(ctx, *filter)
}

func (svc *service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	st := Student{
		ID:           id,
		Name:         us.Name,
		BirthDate:    us.BirthDate,
		ParentName:   us.ParentName,
		ParentPhone:  us.ParentPhone,
		ParentEmail:  us.ParentEmail,
		Address:      us.Address,
		AcademicYear: us.AcademicYear,
		UpdatedAt:    time.Now().UTC(),
	}
	return svc.repo.UpdateStudent(ctx, st, us.IsActive)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteStudentsByID(ctx, ids...)
}

func (svc *service) AddClass(ctx context.Context, studentID, classID string) error {
	return svc.repo.AddStudentClass(ctx, studentID, classID)
}

func (svc *service) RemoveClass(ctx context.Context, studentID, classID string) error {
	return svc.repo.RemoveStudentClass(ctx, studentID, classID)
}
