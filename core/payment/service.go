package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/durusapp/durus/core"
	"github.com/durusapp/durus/core/class"
	"github.com/durusapp/durus/core/ledger"
	"github.com/durusapp/durus/core/student"
	"github.com/durusapp/durus/core/teacher"
)

var (
	ErrNotFound = errors.New("payment not found")
	// ErrPaymentExists is returned by repositories when a (student, class, month)
	// obligation already exists; the scheduler treats it as "skip".
	ErrPaymentExists = errors.New("payment already exists for this month")
	ErrAlreadyPaid   = errors.New("payment has already been registered")
)

type (
	Repository interface {
		// CreatePayment returns ErrPaymentExists when the (student, class, month)
		// uniqueness constraint is violated.
		CreatePayment(ctx context.Context, p Payment) (Payment, error)
		GetPaymentByID(ctx context.Context, id string) (Payment, error)
		GetPaymentByMonth(ctx context.Context, studentID, classID string, m Month) (Payment, error)
		// FilterPayments applies AND operation on available QueryFilter fields.
		// Results are ordered by month ascending.
		FilterPayments(ctx context.Context, filter QueryFilter) ([]Payment, error)
		QueryOpenPaymentsByStudent(ctx context.Context, studentID string) ([]Payment, error)
		QueryPendingPaymentsBefore(ctx context.Context, m Month) ([]Payment, error)
		UpdatePayment(ctx context.Context, p Payment) (Payment, error)
		// DeleteOpenPayments removes pending/late payments for the pair; paid
		// payments are kept.
		DeleteOpenPayments(ctx context.Context, studentID, classID string) error
		DeletePaymentsByStudent(ctx context.Context, studentID string) error
		DeletePaymentsByClass(ctx context.Context, classID string) error
	}

	ServiceInterface interface {
		GenerateSchedule(ctx context.Context, st student.Student, cls class.Class, asOf time.Time, recordedBy string) ([]Payment, error)
		RegisterPayment(ctx context.Context, id string, in PayInput, recordedBy string) (Payment, error)
		Query(ctx context.Context, filter *QueryFilter) ([]Payment, error)
		GetByID(ctx context.Context, id string) (Payment, error)
		QueryOpenByStudent(ctx context.Context, studentID string) ([]Payment, error)
		ReclassifyOverdue(ctx context.Context, asOf time.Time) (int, error)
		DeleteOpen(ctx context.Context, studentID, classID string) error
		DeleteByStudent(ctx context.Context, studentID string) error
		DeleteByClass(ctx context.Context, classID string) error
	}

	service struct {
		repo        Repository
		ledgerRepo  ledger.Repository
		studentRepo student.Repository
		classRepo   class.Repository
		teacherRepo teacher.Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(
	repo Repository,
	ledgerRepo ledger.Repository,
	studentRepo student.Repository,
	classRepo class.Repository,
	teacherRepo teacher.Repository,
) *service {
	return &service{
		repo:        repo,
		ledgerRepo:  ledgerRepo,
		studentRepo: studentRepo,
		classRepo:   classRepo,
		teacherRepo: teacherRepo,
	}
}

// GenerateSchedule computes the student's monthly tuition obligations for a
// class, from the registration month through the current month plus the billing
// horizon, inclusive. Existing obligations are never touched, so re-invocation
// (re-enrollment, retried requests, recovery after a partial write) only fills
// gaps. Each obligation created here is mirrored by an expected-income ledger
// entry. The returned set is every payment for the (student, class) pair,
// ordered by month ascending.
func (svc *service) GenerateSchedule(ctx context.Context, st student.Student, cls class.Class, asOf time.Time, recordedBy string) ([]Payment, error) {
	if cls.Price <= 0 {
		return nil, core.NewValidationError(
			errors.New("invalid class price"),
			core.FieldError{Field: "price", Error: "class price must be positive"},
		)
	}
	if st.RegistrationDate.IsZero() || MonthOf(asOf).Before(MonthOf(st.RegistrationDate)) {
		return nil, core.NewValidationError(
			errors.New("invalid registration date"),
			core.FieldError{Field: "registration_date", Error: "registration date must be a valid past or present date"},
		)
	}

	start := MonthOf(st.RegistrationDate)
	current := MonthOf(asOf)
	end := current.AddMonths(core.Conf.Billing.HorizonMonths)

	if max := core.Conf.Billing.MaxScheduleMonths; max > 0 && start.MonthsUntil(end)+1 > max {
		return nil, core.NewValidationError(
			errors.New("billing range too large"),
			core.FieldError{Field: "registration_date", Error: fmt.Sprintf("registration date is too far in the past: schedule exceeds %d months", max)},
		)
	}

	now := time.Now().UTC()
	for m := start; !m.After(end); m = m.Next() {
		if _, err := svc.repo.GetPaymentByMonth(ctx, st.ID, cls.ID, m); err == nil {
			continue // already billed
		} else if err != ErrNotFound {
			return nil, err
		}

		status := StatusPending
		if m.Before(current) {
			status = StatusLate
		}
		p := Payment{
			StudentID:  st.ID,
			ClassID:    cls.ID,
			Amount:     cls.Price,
			Month:      m,
			Status:     status,
			RecordedBy: recordedBy,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		created, err := svc.repo.CreatePayment(ctx, p)
		if err == ErrPaymentExists {
			continue // a concurrent enrollment won the race; the month is covered
		} else if err != nil {
			return nil, err
		}

		_, err = svc.ledgerRepo.CreateTransaction(ctx, ledger.Transaction{
			Type:        ledger.TypeIncome,
			Amount:      created.Amount,
			Description: fmt.Sprintf("expected tuition from %s for class %s, month %s", st.Name, cls.Name, m),
			Category:    ledger.CategoryTuition,
			Date:        now,
			RecordedBy:  recordedBy,
			Reference:   created.ID,
		})
		if err != nil {
			return nil, err
		}
	}

	return svc.repo.FilterPayments(ctx, QueryFilter{StudentID: st.ID, ClassID: cls.ID})
}

// RegisterPayment marks an open payment as paid; paid is terminal.
// The transition stamps the payment date, method and invoice number, and
// records the actual-income ledger entry plus the teacher's salary share as
// an expense.
func (svc *service) RegisterPayment(ctx context.Context, id string, in PayInput, recordedBy string) (Payment, error) {
	p, err := svc.repo.GetPaymentByID(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	if p.IsPaid() {
		return p, ErrAlreadyPaid
	}

	now := time.Now().UTC()
	p.Status = StatusPaid
	if !in.PaymentDate.IsZero() {
		p.PaymentDate = in.PaymentDate
	} else {
		p.PaymentDate = now
	}
	if in.Method != "" {
		p.Method = in.Method
	} else {
		p.Method = MethodCash
	}
	if in.Notes != "" {
		p.Notes = in.Notes
	}
	p.InvoiceNumber = fmt.Sprintf("INV-%d", now.UnixNano()/int64(time.Millisecond))
	p.RecordedBy = recordedBy
	p.UpdatedAt = now

	p, err = svc.repo.UpdatePayment(ctx, p)
	if err != nil {
		return Payment{}, err
	}

	st, err := svc.studentRepo.GetStudentByID(ctx, p.StudentID)
	if err != nil {
		return Payment{}, err
	}
	cls, err := svc.classRepo.GetClassByID(ctx, p.ClassID)
	if err != nil {
		return Payment{}, err
	}

	_, err = svc.ledgerRepo.CreateTransaction(ctx, ledger.Transaction{
		Type:        ledger.TypeIncome,
		Amount:      p.Amount,
		Description: fmt.Sprintf("tuition from %s for class %s, month %s", st.Name, cls.Name, p.Month),
		Category:    ledger.CategoryTuition,
		Date:        now,
		RecordedBy:  recordedBy,
		Reference:   p.ID,
	})
	if err != nil {
		return Payment{}, err
	}

	share := core.Conf.Billing.DefaultTeacherShare
	if cls.TeacherID != "" {
		if t, err := svc.teacherRepo.GetTeacherByID(ctx, cls.TeacherID); err == nil {
			share = t.Share()
		} else if err != teacher.ErrNotFound {
			return Payment{}, err
		}
	}
	_, err = svc.ledgerRepo.CreateTransaction(ctx, ledger.Transaction{
		Type:        ledger.TypeExpense,
		Amount:      p.Amount * share,
		Description: fmt.Sprintf("teacher share of tuition from %s for class %s", st.Name, cls.Name),
		Category:    ledger.CategorySalary,
		Date:        now,
		RecordedBy:  recordedBy,
		Reference:   p.ID,
	})
	if err != nil {
		return Payment{}, err
	}

	return p, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter) ([]Payment, error) {
	if filter == nil {
		filter = &QueryFilter{}
	}
	return svc.repo.FilterPayments(ctx, *filter)
}

func (svc *service) GetByID(ctx context.Context, id string) (Payment, error) {
	return svc.repo.GetPaymentByID(ctx, id)
}

func (svc *service) QueryOpenByStudent(ctx context.Context, studentID string) ([]Payment, error) {
	return svc.repo.QueryOpenPaymentsByStudent(ctx, studentID)
}

// ReclassifyOverdue flips pending payments whose month has passed to late.
// Status is otherwise fixed at creation time; this sweep is the only thing
// that re-evaluates it as the calendar advances.
func (svc *service) ReclassifyOverdue(ctx context.Context, asOf time.Time) (int, error) {
	overdue, err := svc.repo.QueryPendingPaymentsBefore(ctx, MonthOf(asOf))
	if err != nil {
		return 0, err
	}
	var n int
	for _, p := range overdue {
		p.Status = StatusLate
		p.UpdatedAt = time.Now().UTC()
		if _, err := svc.repo.UpdatePayment(ctx, p); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (svc *service) DeleteOpen(ctx context.Context, studentID, classID string) error {
	return svc.repo.DeleteOpenPayments(ctx, studentID, classID)
}

func (svc *service) DeleteByStudent(ctx context.Context, studentID string) error {
	return svc.repo.DeletePaymentsByStudent(ctx, studentID)
}

func (svc *service) DeleteByClass(ctx context.Context, classID string) error {
	return svc.repo.DeletePaymentsByClass(ctx, classID)
}
