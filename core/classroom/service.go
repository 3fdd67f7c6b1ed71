package classroom

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("classroom not found")

type (
	Repository interface {
		CreateClassroom(ctx context.Context, c Classroom) (Classroom, error)
		QueryAllClassrooms(ctx context.Context) ([]Classroom, error)
		GetClassroomByID(ctx context.Context, id string) (Classroom, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, nc NewClassroom) (Classroom, error)
		QueryAll(ctx context.Context) ([]Classroom, error)
		GetByID(ctx context.Context, id string) (Classroom, error)
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, nc NewClassroom) (Classroom, error) {
	c := Classroom{
		Name:      nc.Name,
		Capacity:  nc.Capacity,
		Location:  nc.Location,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateClassroom(ctx, c)
}

func (svc *service) QueryAll(ctx context.Context) ([]Classroom, error) {
	return svc.repo.QueryAllClassrooms(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (Classroom, error) {
	return svc.repo.GetClassroomByID(ctx, id)
}
