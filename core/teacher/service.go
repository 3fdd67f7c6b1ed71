package teacher

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("teacher not found")

type (
	Repository interface {
		CreateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		QueryAllTeachers(ctx context.Context) ([]Teacher, error)
		GetTeacherByID(ctx context.Context, id string) (Teacher, error)
		UpdateTeacher(ctx context.Context, t Teacher, isActive *bool) (Teacher, error)
		DeleteTeachersByID(ctx context.Context, ids ...string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, nt NewTeacher) (Teacher, error)
		QueryAll(ctx context.Context) ([]Teacher, error)
		GetByID(ctx context.Context, id string) (Teacher, error)
		Update(ctx context.Context, id string, ut UpdateTeacher) (Teacher, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, nt NewTeacher) (Teacher, error) {
	now := time.Now().UTC()
	hireDate := nt.HireDate
	if hireDate.IsZero() {
		hireDate = now
	}
	active := true
	t := Teacher{
		Name:        nt.Name,
		Subjects:    nt.Subjects,
		Phone:       nt.Phone,
		Email:       nt.Email,
		HireDate:    hireDate,
		IsActive:    &active,
		SalaryShare: nt.SalaryShare,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateTeacher(ctx, t)
}

func (svc *service) QueryAll(ctx context.Context) ([]Teacher, error) {
	return svc.repo.QueryAllTeachers(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (Teacher, error) {
	return svc.repo.GetTeacherByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id string, ut UpdateTeacher) (Teacher, error) {
	t := Teacher{
		ID:          id,
		Name:        ut.Name,
		Subjects:    ut.Subjects,
		Phone:       ut.Phone,
		Email:       ut.Email,
		HireDate:    ut.HireDate,
		SalaryShare: ut.SalaryShare,
		UpdatedAt:   time.Now().UTC(),
	}
	return svc.repo.UpdateTeacher(ctx, t, ut.IsActive)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteTeachersByID(ctx, ids...)
}
