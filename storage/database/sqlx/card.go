package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/durusapp/durus/core/card"
)

type cardRow struct {
	ID        string    `db:"id"`
	UID       string    `db:"uid"`
	StudentID string    `db:"student_id"`
	IssueDate time.Time `db:"issue_date"`
	IsActive  bool      `db:"is_active"`
}

func (r cardRow) toCard() card.Card {
	return card.Card{
		ID:        r.ID,
		UID:       r.UID,
		StudentID: r.StudentID,
		IssueDate: r.IssueDate,
		IsActive:  &r.IsActive,
	}
}

type cardRepository struct {
	db *sqlx.DB
}

var _ card.Repository = (*cardRepository)(nil) // interface compliance check

func NewCardRepository(db *sqlx.DB) *cardRepository {
	return &cardRepository{db: db}
}

func (repo cardRepository) CheckUIDUniqueness(ctx context.Context, uid string) error {
	var exists bool
	if err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM card WHERE uid = $1)`, uid); err != nil {
		return errors.Wrap(err, "checking card UID uniqueness")
	}
	if exists {
		return card.ErrUIDExists
	}
	return nil
}

func (repo cardRepository) CreateCard(ctx context.Context, c card.Card) (card.Card, error) {
	c.ID = uuid.New().String()
	q := `INSERT INTO card (id, uid, student_id, issue_date, is_active) VALUES ($1, $2, $3, $4, $5)`
	_, err := repo.db.ExecContext(ctx, q, c.ID, c.UID, c.StudentID, c.IssueDate, c.Active())
	if err != nil {
		if isUniqueViolation(err) {
			return card.Card{}, card.ErrUIDExists
		}
		return card.Card{}, errors.Wrap(err, "inserting card")
	}
	return c, nil
}

func (repo cardRepository) QueryAllCards(ctx context.Context) ([]card.Card, error) {
	var rows []cardRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM card ORDER BY issue_date`); err != nil {
		return nil, errors.Wrap(err, "querying cards")
	}
	cards := make([]card.Card, 0, len(rows))
	for _, r := range rows {
		cards = append(cards, r.toCard())
	}
	return cards, nil
}

func (repo cardRepository) GetCardByUID(ctx context.Context, uid string) (card.Card, error) {
	var row cardRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM card WHERE uid = $1`, uid)
	if err == sql.ErrNoRows {
		return card.Card{}, card.ErrNotFound
	} else if err != nil {
		return card.Card{}, errors.Wrap(err, "finding card by UID")
	}
	return row.toCard(), nil
}

func (repo cardRepository) DeleteCardsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM card WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	_, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...)
	return errors.Wrap(err, "deleting cards")
}

func (repo cardRepository) DeleteCardsByStudent(ctx context.Context, studentID string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM card WHERE student_id = $1`, studentID)
	return errors.Wrap(err, "deleting student cards")
}
