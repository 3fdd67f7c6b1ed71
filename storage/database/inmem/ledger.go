package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/durusapp/durus/core/ledger"
)

type ledgerRepository struct {
	db *DB
}

var _ ledger.Repository = (*ledgerRepository)(nil)

func NewLedgerRepository(db *DB) *ledgerRepository {
	return &ledgerRepository{db: db}
}

func (repo *ledgerRepository) query() []ledger.Transaction {
	txns := make([]ledger.Transaction, 0, len(repo.db.transactions))
	for _, t := range repo.db.transactions {
		txns = append(txns, *t)
	}
	sort.Slice(txns, func(i, j int) bool { return txns[i].Date.After(txns[j].Date) })
	return txns
}

func (repo *ledgerRepository) CreateTransaction(_ context.Context, t ledger.Transaction) (ledger.Transaction, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	t.ID = uuid.New().String()
	repo.db.transactions[t.ID] = &t
	return t, nil
}

func (repo *ledgerRepository) QueryAllTransactions(_ context.Context) ([]ledger.Transaction, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.query(), nil
}

func (repo *ledgerRepository) FilterTransactions(_ context.Context, filter ledger.QueryFilter) ([]ledger.Transaction, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var txns []ledger.Transaction
	for _, t := range repo.query() {
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if filter.Category != "" && t.Category != filter.Category {
			continue
		}
		if !filter.StartDate.IsZero() && t.Date.Before(filter.StartDate) {
			continue
		}
		if !filter.EndDate.IsZero() && t.Date.After(filter.EndDate) {
			continue
		}
		txns = append(txns, t)
	}
	return txns, nil
}
