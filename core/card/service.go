package card

import (
	"context"
	"errors"
	"time"

	"github.com/durusapp/durus/core"
)

var (
	ErrNotFound  = errors.New("card not found")
	ErrUIDExists = errors.New("this card is already assigned to a student")
)

type (
	Repository interface {
		CheckUIDUniqueness(ctx context.Context, uid string) error
		CreateCard(ctx context.Context, c Card) (Card, error)
		QueryAllCards(ctx context.Context) ([]Card, error)
		GetCardByUID(ctx context.Context, uid string) (Card, error)
		DeleteCardsByID(ctx context.Context, ids ...string) error
		DeleteCardsByStudent(ctx context.Context, studentID string) error
	}

	ServiceInterface interface {
		CheckUIDUniqueness(uid string) error
		Create(ctx context.Context, nc NewCard) (Card, error)
		QueryAll(ctx context.Context) ([]Card, error)
		GetByUID(ctx context.Context, uid string) (Card, error)
		Delete(ctx context.Context, ids ...string) error
		DeleteByStudent(ctx context.Context, studentID string) error
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

func (svc *service) CheckUIDUniqueness(uid string) error {
	if err := svc.repo.CheckUIDUniqueness(context.Background(), uid); err != nil {
		if err == ErrUIDExists {
			return core.NewValidationError(err, core.FieldError{Field: "uid", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nc NewCard) (Card, error) {
	active := true
	c := Card{
		UID:       nc.UID,
		StudentID: nc.StudentID,
		IssueDate: time.Now().UTC(),
		IsActive:  &active,
	}
	return svc.repo.CreateCard(ctx, c)
}

func (svc *service) QueryAll(ctx context.Context) ([]Card, error) {
	return svc.repo.QueryAllCards(ctx)
}

func (svc *service) GetByUID(ctx context.Context, uid string) (Card, error) {
	return svc.repo.GetCardByUID(ctx, uid)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteCardsByID(ctx, ids...)
}

func (svc *service) DeleteByStudent(ctx context.Context, studentID string) error {
	return svc.repo.DeleteCardsByStudent(ctx, studentID)
}
