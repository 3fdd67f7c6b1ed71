package payment_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/durusapp/durus/core"
	"github.com/durusapp/durus/core/class"
	"github.com/durusapp/durus/core/ledger"
	"github.com/durusapp/durus/core/payment"
	"github.com/durusapp/durus/core/student"
	"github.com/durusapp/durus/core/teacher"
	inmemdb "github.com/durusapp/durus/storage/database/inmem"
)

type testEnv struct {
	svc        payment.ServiceInterface
	payRepo    payment.Repository
	ledgerRepo ledger.Repository
	st         student.Student
	cls        class.Class
}

func setup(t *testing.T, registration time.Time, price float64) *testEnv {
	t.Helper()
	ctx := context.Background()
	db := inmemdb.NewDB()

	payRepo := inmemdb.NewPaymentRepository(db)
	ledgerRepo := inmemdb.NewLedgerRepository(db)
	stRepo := inmemdb.NewStudentRepository(db)
	clsRepo := inmemdb.NewClassRepository(db)
	tRepo := inmemdb.NewTeacherRepository(db)

	active := true
	st, err := stRepo.CreateStudent(ctx, student.Student{
		Name:             "Amine",
		Code:             "std001",
		ParentPhone:      "+213555000111",
		RegistrationDate: registration,
		IsActive:         &active,
	})
	require.NoError(t, err)

	tchr, err := tRepo.CreateTeacher(ctx, teacher.Teacher{Name: "Mr. Karim", SalaryShare: 0.6, IsActive: &active})
	require.NoError(t, err)

	cls, err := clsRepo.CreateClass(ctx, class.Class{
		Name:      "Math 3AS",
		Subject:   "math",
		TeacherID: tchr.ID,
		Price:     price,
	})
	require.NoError(t, err)

	return &testEnv{
		svc:        payment.NewService(payRepo, ledgerRepo, stRepo, clsRepo, tRepo),
		payRepo:    payRepo,
		ledgerRepo: ledgerRepo,
		st:         st,
		cls:        cls,
	}
}

func TestGenerateSchedule(t *testing.T) {
	ctx := context.Background()
	registration := time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	env := setup(t, registration, 2500)

	payments, err := env.svc.GenerateSchedule(ctx, env.st, env.cls, asOf, "sec-1")
	require.NoError(t, err)

	// 2025-03 through 2026-06 inclusive, with the default 12 month horizon
	wantMonths := 16
	require.Len(t, payments, wantMonths)
	assert.Equal(t, payment.Month{Year: 2025, Month: time.March}, payments[0].Month)
	assert.Equal(t, payment.Month{Year: 2026, Month: time.June}, payments[len(payments)-1].Month)

	var late, pending int
	for _, p := range payments {
		assert.Equal(t, env.st.ID, p.StudentID)
		assert.Equal(t, env.cls.ID, p.ClassID)
		assert.Equal(t, 2500.0, p.Amount)
		switch p.Status {
		case payment.StatusLate:
			late++
			assert.True(t, p.Month.Before(payment.MonthOf(asOf)))
		case payment.StatusPending:
			pending++
		default:
			t.Errorf("unexpected status %q", p.Status)
		}
	}
	// months before June 2025 start out late
	assert.Equal(t, 3, late)
	assert.Equal(t, wantMonths-3, pending)

	// every obligation is mirrored by an expected-income ledger entry
	txns, err := env.ledgerRepo.QueryAllTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txns, wantMonths)
	byRef := make(map[string]ledger.Transaction, len(txns))
	for _, txn := range txns {
		assert.Equal(t, ledger.TypeIncome, txn.Type)
		assert.Equal(t, ledger.CategoryTuition, txn.Category)
		assert.Equal(t, 2500.0, txn.Amount)
		byRef[txn.Reference] = txn
	}
	for _, p := range payments {
		assert.Contains(t, byRef, p.ID)
	}
}

func TestGenerateScheduleIdempotent(t *testing.T) {
	ctx := context.Background()
	registration := time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	env := setup(t, registration, 2500)

	first, err := env.svc.GenerateSchedule(ctx, env.st, env.cls, asOf, "sec-1")
	require.NoError(t, err)

	// mark one month as paid, then re-enroll
	paid, err := env.svc.RegisterPayment(ctx, first[0].ID, payment.PayInput{}, "acc-1")
	require.NoError(t, err)
	require.Equal(t, payment.StatusPaid, paid.Status)

	again, err := env.svc.GenerateSchedule(ctx, env.st, env.cls, asOf, "sec-1")
	require.NoError(t, err)
	assert.Len(t, again, len(first))

	refreshed, err := env.svc.GetByID(ctx, paid.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPaid, refreshed.Status)
	assert.Equal(t, paid.InvoiceNumber, refreshed.InvoiceNumber)

	// no duplicate expected-income entries; only the pay transition added entries
	txns, err := env.ledgerRepo.QueryAllTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txns, len(first)+2)
}

func TestGenerateScheduleRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	asOf := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)

	t.Run("non-positive price", func(t *testing.T) {
		env := setup(t, asOf.AddDate(0, -2, 0), 0)
		_, err := env.svc.GenerateSchedule(ctx, env.st, env.cls, asOf, "")
		require.Error(t, err)
		assert.IsType(t, &core.ValidationError{}, err)
	})

	t.Run("zero registration date", func(t *testing.T) {
		env := setup(t, time.Time{}, 2500)
		_, err := env.svc.GenerateSchedule(ctx, env.st, env.cls, asOf, "")
		require.Error(t, err)
		assert.IsType(t, &core.ValidationError{}, err)
	})

	t.Run("future registration date", func(t *testing.T) {
		env := setup(t, asOf.AddDate(0, 3, 0), 2500)
		_, err := env.svc.GenerateSchedule(ctx, env.st, env.cls, asOf, "")
		require.Error(t, err)
		assert.IsType(t, &core.ValidationError{}, err)
	})

	t.Run("range beyond cap", func(t *testing.T) {
		env := setup(t, asOf.AddDate(-15, 0, 0), 2500)
		_, err := env.svc.GenerateSchedule(ctx, env.st, env.cls, asOf, "")
		require.Error(t, err)
		assert.IsType(t, &core.ValidationError{}, err)
	})
}

func TestRegisterPayment(t *testing.T) {
	ctx := context.Background()
	registration := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	env := setup(t, registration, 3000)

	payments, err := env.svc.GenerateSchedule(ctx, env.st, env.cls, asOf, "sec-1")
	require.NoError(t, err)
	scheduled := len(payments)

	p, err := env.svc.RegisterPayment(ctx, payments[0].ID, payment.PayInput{Method: payment.MethodBank, Notes: "wire"}, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPaid, p.Status)
	assert.Equal(t, payment.MethodBank, p.Method)
	assert.Equal(t, "wire", p.Notes)
	assert.Equal(t, "acc-1", p.RecordedBy)
	assert.False(t, p.PaymentDate.IsZero())
	assert.True(t, strings.HasPrefix(p.InvoiceNumber, "INV-"))

	// paid is terminal
	_, err = env.svc.RegisterPayment(ctx, p.ID, payment.PayInput{}, "acc-1")
	assert.Equal(t, payment.ErrAlreadyPaid, err)

	// actual income plus the teacher's salary share
	txns, err := env.ledgerRepo.FilterTransactions(ctx, ledger.QueryFilter{Category: ledger.CategorySalary})
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, ledger.TypeExpense, txns[0].Type)
	assert.InDelta(t, 3000*0.6, txns[0].Amount, 0.001)
	assert.Equal(t, p.ID, txns[0].Reference)

	all, err := env.ledgerRepo.QueryAllTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, scheduled+2)
}

func TestRegisterPaymentNotFound(t *testing.T) {
	env := setup(t, time.Now().AddDate(0, -1, 0), 2000)
	_, err := env.svc.RegisterPayment(context.Background(), "nope", payment.PayInput{}, "")
	assert.Equal(t, payment.ErrNotFound, err)
}

func TestReclassifyOverdue(t *testing.T) {
	ctx := context.Background()
	registration := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2025, time.April, 15, 0, 0, 0, 0, time.UTC)
	env := setup(t, registration, 2000)

	payments, err := env.svc.GenerateSchedule(ctx, env.st, env.cls, asOf, "")
	require.NoError(t, err)
	for _, p := range payments {
		require.Equal(t, payment.StatusPending, p.Status)
	}

	// two months later, April and May are overdue
	later := asOf.AddDate(0, 2, 0)
	n, err := env.svc.ReclassifyOverdue(ctx, later)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	open, err := env.svc.QueryOpenByStudent(ctx, env.st.ID)
	require.NoError(t, err)
	var late int
	for _, p := range open {
		if p.Status == payment.StatusLate {
			late++
			assert.True(t, p.Month.Before(payment.MonthOf(later)))
		}
	}
	assert.Equal(t, 2, late)

	// the sweep settles; running it again finds nothing
	n, err = env.svc.ReclassifyOverdue(ctx, later)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteOpenKeepsPaid(t *testing.T) {
	ctx := context.Background()
	registration := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	env := setup(t, registration, 2000)

	payments, err := env.svc.GenerateSchedule(ctx, env.st, env.cls, asOf, "")
	require.NoError(t, err)

	paid, err := env.svc.RegisterPayment(ctx, payments[0].ID, payment.PayInput{}, "acc-1")
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteOpen(ctx, env.st.ID, env.cls.ID))

	remaining, err := env.svc.Query(ctx, &payment.QueryFilter{StudentID: env.st.ID, ClassID: env.cls.ID})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, paid.ID, remaining[0].ID)
	assert.Equal(t, payment.StatusPaid, remaining[0].Status)
}
