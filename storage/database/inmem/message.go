package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/durusapp/durus/core/message"
)

type messageRepository struct {
	db *DB
}

var _ message.Repository = (*messageRepository)(nil)

func NewMessageRepository(db *DB) *messageRepository {
	return &messageRepository{db: db}
}

func (repo *messageRepository) query() []message.Message {
	messages := make([]message.Message, 0, len(repo.db.messages))
	for _, m := range repo.db.messages {
		messages = append(messages, *m)
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].SentAt.After(messages[j].SentAt) })
	return messages
}

func (repo *messageRepository) CreateMessage(_ context.Context, m message.Message) (message.Message, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	m.ID = uuid.New().String()
	repo.db.messages[m.ID] = &m
	return m, nil
}

func (repo *messageRepository) QueryAllMessages(_ context.Context) ([]message.Message, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.query(), nil
}

func (repo *messageRepository) FilterMessages(_ context.Context, filter message.QueryFilter) ([]message.Message, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var messages []message.Message
	for _, m := range repo.query() {
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		if filter.ClassID != "" && m.ClassID != filter.ClassID {
			continue
		}
		if !filter.StartDate.IsZero() && m.SentAt.Before(filter.StartDate) {
			continue
		}
		if !filter.EndDate.IsZero() && m.SentAt.After(filter.EndDate) {
			continue
		}
		messages = append(messages, m)
	}
	return messages, nil
}
