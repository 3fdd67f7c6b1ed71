package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/durusapp/durus/core/ledger"
	inmemdb "github.com/durusapp/durus/storage/database/inmem"
)

func seedTxn(t *testing.T, repo ledger.Repository, typ, cat string, amount float64, date time.Time) {
	t.Helper()
	_, err := repo.CreateTransaction(context.Background(), ledger.Transaction{
		Type:     typ,
		Amount:   amount,
		Category: cat,
		Date:     date,
	})
	require.NoError(t, err)
}

func TestRecord(t *testing.T) {
	repo := inmemdb.NewLedgerRepository(inmemdb.NewDB())
	svc := ledger.NewService(repo)

	txn, err := svc.Record(context.Background(), ledger.NewTransaction{
		Type:        ledger.TypeExpense,
		Amount:      50000,
		Description: "October rent",
		Category:    ledger.CategoryRent,
	}, "acc-1")
	require.NoError(t, err)
	assert.NotEmpty(t, txn.ID)
	assert.Equal(t, "acc-1", txn.RecordedBy)
	assert.False(t, txn.Date.IsZero())
}

func TestReport(t *testing.T) {
	ctx := context.Background()
	repo := inmemdb.NewLedgerRepository(inmemdb.NewDB())
	svc := ledger.NewService(repo)

	jan := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, time.February, 5, 0, 0, 0, 0, time.UTC)
	prevYear := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)

	seedTxn(t, repo, ledger.TypeIncome, ledger.CategoryTuition, 2500, jan)
	seedTxn(t, repo, ledger.TypeIncome, ledger.CategoryTuition, 2500, jan)
	seedTxn(t, repo, ledger.TypeIncome, ledger.CategoryTuition, 3000, feb)
	seedTxn(t, repo, ledger.TypeExpense, ledger.CategorySalary, 1750, feb)
	seedTxn(t, repo, ledger.TypeIncome, ledger.CategoryTuition, 9999, prevYear)

	report, err := svc.Report(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, report, 2)

	// entries come back ordered by type then category
	exp, inc := report[0], report[1]
	assert.Equal(t, ledger.TypeExpense, exp.Type)
	assert.Equal(t, ledger.CategorySalary, exp.Category)
	assert.Equal(t, 1750.0, exp.TotalAmount)
	assert.Equal(t, 1, exp.TotalCount)

	assert.Equal(t, ledger.TypeIncome, inc.Type)
	assert.Equal(t, ledger.CategoryTuition, inc.Category)
	assert.Equal(t, 8000.0, inc.TotalAmount)
	assert.Equal(t, 3, inc.TotalCount)
	require.Len(t, inc.MonthlyData, 2)
	assert.Equal(t, ledger.MonthlyTotal{Year: 2025, Month: 1, TotalAmount: 5000, Count: 2}, inc.MonthlyData[0])
	assert.Equal(t, ledger.MonthlyTotal{Year: 2025, Month: 2, TotalAmount: 3000, Count: 1}, inc.MonthlyData[1])

	// zero year spans all history
	all, err := svc.Report(ctx, 0)
	require.NoError(t, err)
	var total float64
	for _, entry := range all {
		total += entry.TotalAmount
	}
	assert.Equal(t, 2500.0+2500+3000+1750+9999, total)
}
