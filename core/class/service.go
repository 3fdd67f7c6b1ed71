package class

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("class not found")

type (
	Repository interface {
		CreateClass(ctx context.Context, c Class) (Class, error)
		QueryAllClasses(ctx context.Context) ([]Class, error)
		GetClassByID(ctx context.Context, id string) (Class, error)
		// FilterClasses applies AND operation on available QueryFilter fields.
		FilterClasses(ctx context.Context, filter QueryFilter) ([]Class, error)
		QueryClassesByStudent(ctx context.Context, studentID string) ([]Class, error)
		UpdateClass(ctx context.Context, c Class) (Class, error)
		DeleteClassesByID(ctx context.Context, ids ...string) error
		AddClassStudent(ctx context.Context, classID, studentID string) error
		RemoveClassStudent(ctx context.Context, classID, studentID string) error
		// UnsetClassTeacher detaches the teacher from all their classes.
		UnsetClassTeacher(ctx context.Context, teacherID string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, nc NewClass) (Class, error)
		Query(ctx context.Context, filter *QueryFilter) ([]Class, error)
		GetByID(ctx context.Context, id string) (Class, error)
		QueryByStudent(ctx context.Context, studentID string) ([]Class, error)
		Update(ctx context.Context, id string, uc UpdateClass) (Class, error)
		Delete(ctx context.Context, ids ...string) error
		AddStudent(ctx context.Context, classID, studentID string) error
		RemoveStudent(ctx context.Context, classID, studentID string) error
		UnsetTeacher(ctx context.Context, teacherID string) error
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, nc NewClass) (Class, error) {
	now := time.Now().UTC()
	c := Class{
		Name:         nc.Name,
		Subject:      nc.Subject,
		Description:  nc.Description,
		Schedule:     nc.Schedule,
		AcademicYear: nc.AcademicYear,
		TeacherID:    nc.TeacherID,
		Price:        nc.Price,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateClass(ctx, c)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter) ([]Class, error) {
	if filter == nil || filter.IsEmpty() {
		return svc.repo.QueryAllClasses(ctx)
	}
	return svc.repo.FilterClasses(ctx, *filter)
}

func (svc *service) GetByID(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *service) QueryByStudent(ctx context.Context, studentID string) ([]Class, error) {
	return svc.repo.QueryClassesByStudent(ctx, studentID)
}

func (svc *service) Update(ctx context.Context, id string, uc UpdateClass) (Class, error) {
	c := Class{
		ID:           id,
		Name:         uc.Name,
		Subject:      uc.Subject,
		Description:  uc.Description,
		Schedule:     uc.Schedule,
		AcademicYear: uc.AcademicYear,
		TeacherID:    uc.TeacherID,
		Price:        uc.Price,
		UpdatedAt:    time.Now().UTC(),
	}
	return svc.repo.UpdateClass(ctx, c)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteClassesByID(ctx, ids...)
}

func (svc *service) AddStudent(ctx context.Context, classID, studentID string) error {
	return svc.repo.AddClassStudent(ctx, classID, studentID)
}

func (svc *service) RemoveStudent(ctx context.Context, classID, studentID string) error {
	return svc.repo.RemoveClassStudent(ctx, classID, studentID)
}

func (svc *service) UnsetTeacher(ctx context.Context, teacherID string) error {
	return svc.repo.UnsetClassTeacher(ctx, teacherID)
}
