package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/durusapp/durus/core/ledger"
)

type transactionRow struct {
	ID          string    `db:"id"`
	Type        string    `db:"type"`
	Amount      float64   `db:"amount"`
	Description string    `db:"description"`
	Category    string    `db:"category"`
	Date        time.Time `db:"date"`
	RecordedBy  string    `db:"recorded_by"`
	Reference   string    `db:"reference"`
}

func (r transactionRow) toTransaction() ledger.Transaction {
	return ledger.Transaction{
		ID:          r.ID,
		Type:        r.Type,
		Amount:      r.Amount,
		Description: r.Description,
		Category:    r.Category,
		Date:        r.Date,
		RecordedBy:  r.RecordedBy,
		Reference:   r.Reference,
	}
}

type ledgerRepository struct {
	db *sqlx.DB
}

var _ ledger.Repository = (*ledgerRepository)(nil) // interface compliance check

func NewLedgerRepository(db *sqlx.DB) *ledgerRepository {
	return &ledgerRepository{db: db}
}

func (repo ledgerRepository) CreateTransaction(ctx context.Context, t ledger.Transaction) (ledger.Transaction, error) {
	t.ID = uuid.New().String()
	q := `
		INSERT INTO transaction (id, type, amount, description, category, date, recorded_by, reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.db.ExecContext(ctx, q,
		t.ID, t.Type, t.Amount, t.Description, t.Category, t.Date, t.RecordedBy, t.Reference)
	if err != nil {
		return ledger.Transaction{}, errors.Wrap(err, "inserting transaction")
	}
	return t, nil
}

func (repo ledgerRepository) QueryAllTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	var rows []transactionRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM transaction ORDER BY date DESC`); err != nil {
		return nil, errors.Wrap(err, "querying transactions")
	}
	return repo.toTransactions(rows), nil
}

func (repo ledgerRepository) FilterTransactions(ctx context.Context, filter ledger.QueryFilter) ([]ledger.Transaction, error) {
	q := `SELECT * FROM transaction WHERE 1=1`
	var args []interface{}

	if filter.Type != "" {
		q += ` AND type = ?`
		args = append(args, filter.Type)
	}
	if filter.Category != "" {
		q += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if !filter.StartDate.IsZero() {
		q += ` AND date >= ?`
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		q += ` AND date <= ?`
		args = append(args, filter.EndDate)
	}
	q += ` ORDER BY date DESC`

	var rows []transactionRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering transactions")
	}
	return repo.toTransactions(rows), nil
}

func (repo ledgerRepository) toTransactions(rows []transactionRow) []ledger.Transaction {
	txns := make([]ledger.Transaction, 0, len(rows))
	for _, r := range rows {
		txns = append(txns, r.toTransaction())
	}
	return txns
}
