package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/durusapp/durus/core/card"
)

type cardRepository struct {
	db *DB
}

var _ card.Repository = (*cardRepository)(nil)

func NewCardRepository(db *DB) *cardRepository {
	return &cardRepository{db: db}
}

func (repo *cardRepository) CheckUIDUniqueness(_ context.Context, uid string) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, c := range repo.db.cards {
		if c.UID == uid {
			return card.ErrUIDExists
		}
	}
	return nil
}

func (repo *cardRepository) CreateCard(_ context.Context, c card.Card) (card.Card, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, existing := range repo.db.cards {
		if existing.UID == c.UID {
			return card.Card{}, card.ErrUIDExists
		}
	}
	c.ID = uuid.New().String()
	repo.db.cards[c.ID] = &c
	return c, nil
}

func (repo *cardRepository) QueryAllCards(_ context.Context) ([]card.Card, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	cards := make([]card.Card, 0, len(repo.db.cards))
	for _, c := range repo.db.cards {
		cards = append(cards, *c)
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].IssueDate.Before(cards[j].IssueDate) })
	return cards, nil
}

func (repo *cardRepository) GetCardByUID(_ context.Context, uid string) (card.Card, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, c := range repo.db.cards {
		if c.UID == uid {
			return *c, nil
		}
	}
	return card.Card{}, card.ErrNotFound
}

func (repo *cardRepository) DeleteCardsByID(_ context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for _, id := range ids {
		delete(repo.db.cards, id)
	}
	return nil
}

func (repo *cardRepository) DeleteCardsByStudent(_ context.Context, studentID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for id, c := range repo.db.cards {
		if c.StudentID == studentID {
			delete(repo.db.cards, id)
		}
	}
	return nil
}
