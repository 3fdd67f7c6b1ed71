package ledger

import (
	"context"
	"sort"
	"time"
)

type (
	Repository interface {
		CreateTransaction(ctx context.Context, t Transaction) (Transaction, error)
		QueryAllTransactions(ctx context.Context) ([]Transaction, error)
		// FilterTransactions applies AND operation on available QueryFilter fields.
		FilterTransactions(ctx context.Context, filter QueryFilter) ([]Transaction, error)
	}

	ServiceInterface interface {
		Record(ctx context.Context, nt NewTransaction, recordedBy string) (Transaction, error)
		Query(ctx context.Context, filter *QueryFilter) ([]Transaction, error)
		Report(ctx context.Context, year int) ([]ReportEntry, error)
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

func (svc *service) Record(ctx context.Context, nt NewTransaction, recordedBy string) (Transaction, error) {
	t := Transaction{
		Type:        nt.Type,
		Amount:      nt.Amount,
		Description: nt.Description,
		Category:    nt.Category,
		Date:        time.Now().UTC(),
		RecordedBy:  recordedBy,
		Reference:   nt.Reference,
	}
	return svc.repo.CreateTransaction(ctx, t)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter) ([]Transaction, error) {
	if filter == nil || filter.IsEmpty() {
		return svc.repo.QueryAllTransactions(ctx)
	}
	return svc.repo.FilterTransactions(ctx, *filter)
}

// Report aggregates transactions per (type, category) with monthly breakdowns.
// A zero year reports across all recorded history.
func (svc *service) Report(ctx context.Context, year int) ([]ReportEntry, error) {
	filter := QueryFilter{}
	if year > 0 {
		filter.StartDate = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		filter.EndDate = time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)
	}

	var txns []Transaction
	var err error
	if filter.IsEmpty() {
		txns, err = svc.repo.QueryAllTransactions(ctx)
	} else {
		txns, err = svc.repo.FilterTransactions(ctx, filter)
	}
	if err != nil {
		return nil, err
	}

	type cellKey struct {
		typ, cat string
	}
	type monthKey struct {
		year  int
		month int
	}
	cells := make(map[cellKey]map[monthKey]*MonthlyTotal)

	for _, t := range txns {
		ck := cellKey{t.Type, t.Category}
		if cells[ck] == nil {
			cells[ck] = make(map[monthKey]*MonthlyTotal)
		}
		mk := monthKey{t.Date.Year(), int(t.Date.Month())}
		mt, ok := cells[ck][mk]
		if !ok {
			mt = &MonthlyTotal{Year: mk.year, Month: mk.month}
			cells[ck][mk] = mt
		}
		mt.TotalAmount += t.Amount
		mt.Count++
	}

	report := make([]ReportEntry, 0, len(cells))
	for ck, months := range cells {
		entry := ReportEntry{Type: ck.typ, Category: ck.cat}
		for _, mt := range months {
			entry.MonthlyData = append(entry.MonthlyData, *mt)
			entry.TotalAmount += mt.TotalAmount
			entry.TotalCount += mt.Count
		}
		sort.Slice(entry.MonthlyData, func(i, j int) bool {
			a, b := entry.MonthlyData[i], entry.MonthlyData[j]
			if a.Year != b.Year {
				return a.Year < b.Year
			}
			return a.Month < b.Month
		})
		report = append(report, entry)
	}
	sort.Slice(report, func(i, j int) bool {
		if report[i].Type != report[j].Type {
			return report[i].Type < report[j].Type
		}
		return report[i].Category < report[j].Category
	})
	return report, nil
}
