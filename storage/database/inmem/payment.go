package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/durusapp/durus/core/payment"
)

type paymentRepository struct {
	db *DB
}

var _ payment.Repository = (*paymentRepository)(nil)

func NewPaymentRepository(db *DB) *paymentRepository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) query() []payment.Payment {
	payments := make([]payment.Payment, 0, len(repo.db.payments))
	for _, p := range repo.db.payments {
		payments = append(payments, *p)
	}
	sort.Slice(payments, func(i, j int) bool {
		if payments[i].Month != payments[j].Month {
			return payments[i].Month.Before(payments[j].Month)
		}
		return payments[i].CreatedAt.Before(payments[j].CreatedAt)
	})
	return payments
}

func (repo *paymentRepository) CreatePayment(_ context.Context, p payment.Payment) (payment.Payment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	// one obligation per (student, class, month)
	for _, existing := range repo.db.payments {
		if existing.StudentID == p.StudentID && existing.ClassID == p.ClassID && existing.Month == p.Month {
			return payment.Payment{}, payment.ErrPaymentExists
		}
	}
	p.ID = uuid.New().String()
	repo.db.payments[p.ID] = &p
	return p, nil
}

func (repo *paymentRepository) GetPaymentByID(_ context.Context, id string) (payment.Payment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if p, ok := repo.db.payments[id]; ok {
		return *p, nil
	}
	return payment.Payment{}, payment.ErrNotFound
}

func (repo *paymentRepository) GetPaymentByMonth(_ context.Context, studentID, classID string, m payment.Month) (payment.Payment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, p := range repo.db.payments {
		if p.StudentID == studentID && p.ClassID == classID && p.Month == m {
			return *p, nil
		}
	}
	return payment.Payment{}, payment.ErrNotFound
}

func (repo *paymentRepository) FilterPayments(_ context.Context, filter payment.QueryFilter) ([]payment.Payment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var payments []payment.Payment
	for _, p := range repo.query() {
		if filter.StudentID != "" && p.StudentID != filter.StudentID {
			continue
		}
		if filter.ClassID != "" && p.ClassID != filter.ClassID {
			continue
		}
		if !filter.Month.IsZero() && p.Month != filter.Month {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		payments = append(payments, p)
	}
	return payments, nil
}

func (repo *paymentRepository) QueryOpenPaymentsByStudent(_ context.Context, studentID string) ([]payment.Payment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var payments []payment.Payment
	for _, p := range repo.query() {
		if p.StudentID == studentID && p.IsOpen() {
			payments = append(payments, p)
		}
	}
	return payments, nil
}

func (repo *paymentRepository) QueryPendingPaymentsBefore(_ context.Context, m payment.Month) ([]payment.Payment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var payments []payment.Payment
	for _, p := range repo.query() {
		if p.Status == payment.StatusPending && p.Month.Before(m) {
			payments = append(payments, p)
		}
	}
	return payments, nil
}

func (repo *paymentRepository) UpdatePayment(_ context.Context, p payment.Payment) (payment.Payment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.payments[p.ID]; !ok {
		return payment.Payment{}, payment.ErrNotFound
	}
	repo.db.payments[p.ID] = &p
	return p, nil
}

func (repo *paymentRepository) DeleteOpenPayments(_ context.Context, studentID, classID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for id, p := range repo.db.payments {
		if p.StudentID == studentID && p.ClassID == classID && p.IsOpen() {
			delete(repo.db.payments, id)
		}
	}
	return nil
}

func (repo *paymentRepository) DeletePaymentsByStudent(_ context.Context, studentID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for id, p := range repo.db.payments {
		if p.StudentID == studentID {
			delete(repo.db.payments, id)
		}
	}
	return nil
}

func (repo *paymentRepository) DeletePaymentsByClass(_ context.Context, classID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for id, p := range repo.db.payments {
		if p.ClassID == classID {
			delete(repo.db.payments, id)
		}
	}
	return nil
}
