package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/durusapp/durus/core/message"
)

type messageRow struct {
	ID       string      `db:"id"`
	SenderID null.String `db:"sender_id"`
	ClassID  null.String `db:"class_id"`
	Content  string      `db:"content"`
	SentAt   time.Time   `db:"sent_at"`
	Type     string      `db:"type"`
	Status   string      `db:"status"`
}

type recipientRow struct {
	MessageID   string `db:"message_id"`
	StudentID   string `db:"student_id"`
	ParentPhone string `db:"parent_phone"`
	ParentEmail string `db:"parent_email"`
}

func (r messageRow) toMessage(recipients []message.Recipient) message.Message {
	return message.Message{
		ID:         r.ID,
		SenderID:   r.SenderID.String,
		Recipients: recipients,
		ClassID:    r.ClassID.String,
		Content:    r.Content,
		SentAt:     r.SentAt,
		Type:       r.Type,
		Status:     r.Status,
	}
}

type messageRepository struct {
	db *sqlx.DB
}

var _ message.Repository = (*messageRepository)(nil) // interface compliance check

func NewMessageRepository(db *sqlx.DB) *messageRepository {
	return &messageRepository{db: db}
}

func (repo messageRepository) CreateMessage(ctx context.Context, m message.Message) (message.Message, error) {
	m.ID = uuid.New().String()
	q := `
		INSERT INTO message (id, sender_id, class_id, content, sent_at, type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, q,
		m.ID,
		null.NewString(m.SenderID, m.SenderID != ""),
		null.NewString(m.ClassID, m.ClassID != ""),
		m.Content, m.SentAt, m.Type, m.Status)
	if err != nil {
		return message.Message{}, errors.Wrap(err, "inserting message")
	}

	rq := `INSERT INTO message_recipient (message_id, student_id, parent_phone, parent_email) VALUES ($1, $2, $3, $4)`
	for _, r := range m.Recipients {
		if _, err := repo.db.ExecContext(ctx, rq, m.ID, r.StudentID, r.ParentPhone, r.ParentEmail); err != nil {
			return message.Message{}, errors.Wrap(err, "inserting message recipient")
		}
	}
	return m, nil
}

func (repo messageRepository) QueryAllMessages(ctx context.Context) ([]message.Message, error) {
	var rows []messageRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM message ORDER BY sent_at DESC`); err != nil {
		return nil, errors.Wrap(err, "querying messages")
	}
	return repo.toMessages(ctx, rows)
}

func (repo messageRepository) FilterMessages(ctx context.Context, filter message.QueryFilter) ([]message.Message, error) {
	q := `SELECT * FROM message WHERE 1=1`
	var args []interface{}

	if filter.Type != "" {
		q += ` AND type = ?`
		args = append(args, filter.Type)
	}
	if filter.ClassID != "" {
		q += ` AND class_id = ?`
		args = append(args, filter.ClassID)
	}
	if !filter.StartDate.IsZero() {
		q += ` AND sent_at >= ?`
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		q += ` AND sent_at <= ?`
		args = append(args, filter.EndDate)
	}
	q += ` ORDER BY sent_at DESC`

	var rows []messageRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering messages")
	}
	return repo.toMessages(ctx, rows)
}

func (repo messageRepository) recipients(ctx context.Context, messageID string) ([]message.Recipient, error) {
	var rows []recipientRow
	q := `SELECT message_id, student_id, parent_phone, parent_email FROM message_recipient WHERE message_id = $1 ORDER BY id`
	if err := repo.db.SelectContext(ctx, &rows, q, messageID); err != nil {
		return nil, errors.Wrap(err, "querying message recipients")
	}
	recipients := make([]message.Recipient, 0, len(rows))
	for _, r := range rows {
		recipients = append(recipients, message.Recipient{
			StudentID:   r.StudentID,
			ParentPhone: r.ParentPhone,
			ParentEmail: r.ParentEmail,
		})
	}
	return recipients, nil
}

func (repo messageRepository) toMessages(ctx context.Context, rows []messageRow) ([]message.Message, error) {
	messages := make([]message.Message, 0, len(rows))
	for _, r := range rows {
		recipients, err := repo.recipients(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		messages = append(messages, r.toMessage(recipients))
	}
	return messages, nil
}
