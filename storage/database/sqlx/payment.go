package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/durusapp/durus/core/payment"
)

type paymentRow struct {
	ID            string    `db:"id"`
	StudentID     string    `db:"student_id"`
	ClassID       string    `db:"class_id"`
	Amount        float64   `db:"amount"`
	Month         string    `db:"month"`
	PaymentDate   null.Time `db:"payment_date"`
	Status        string    `db:"status"`
	Method        string    `db:"method"`
	InvoiceNumber string    `db:"invoice_number"`
	Notes         string    `db:"notes"`
	RecordedBy    string    `db:"recorded_by"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r paymentRow) toPayment() (payment.Payment, error) {
	m, err := payment.ParseMonth(r.Month)
	if err != nil {
		return payment.Payment{}, errors.Wrapf(err, "parsing stored month %q", r.Month)
	}
	return payment.Payment{
		ID:            r.ID,
		StudentID:     r.StudentID,
		ClassID:       r.ClassID,
		Amount:        r.Amount,
		Month:         m,
		PaymentDate:   r.PaymentDate.Time,
		Status:        r.Status,
		Method:        r.Method,
		InvoiceNumber: r.InvoiceNumber,
		Notes:         r.Notes,
		RecordedBy:    r.RecordedBy,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}, nil
}

type paymentRepository struct {
	db *sqlx.DB
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *sqlx.DB) *paymentRepository {
	return &paymentRepository{db: db}
}

func (repo paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	p.ID = uuid.New().String()
	q := `
		INSERT INTO payment (id, student_id, class_id, amount, month, payment_date, status, method,
		                     invoice_number, notes, recorded_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := repo.db.ExecContext(ctx, q,
		p.ID, p.StudentID, p.ClassID, p.Amount, p.Month.String(),
		null.NewTime(p.PaymentDate, !p.PaymentDate.IsZero()),
		p.Status, p.Method, p.InvoiceNumber, p.Notes, p.RecordedBy, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return payment.Payment{}, payment.ErrPaymentExists
		}
		return payment.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return p, nil
}

func (repo paymentRepository) GetPaymentByID(ctx context.Context, id string) (payment.Payment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return payment.Payment{}, payment.ErrNotFound
	}
	var row paymentRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM payment WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return payment.Payment{}, payment.ErrNotFound
	} else if err != nil {
		return payment.Payment{}, errors.Wrap(err, "finding payment by ID")
	}
	return row.toPayment()
}

func (repo paymentRepository) GetPaymentByMonth(ctx context.Context, studentID, classID string, m payment.Month) (payment.Payment, error) {
	var row paymentRow
	q := `SELECT * FROM payment WHERE student_id = $1 AND class_id = $2 AND month = $3`
	err := repo.db.GetContext(ctx, &row, q, studentID, classID, m.String())
	if err == sql.ErrNoRows {
		return payment.Payment{}, payment.ErrNotFound
	} else if err != nil {
		return payment.Payment{}, errors.Wrap(err, "finding payment by month")
	}
	return row.toPayment()
}

func (repo paymentRepository) FilterPayments(ctx context.Context, filter payment.QueryFilter) ([]payment.Payment, error) {
	q := `SELECT * FROM payment WHERE 1=1`
	var args []interface{}

	if filter.StudentID != "" {
		q += ` AND student_id = ?`
		args = append(args, filter.StudentID)
	}
	if filter.ClassID != "" {
		q += ` AND class_id = ?`
		args = append(args, filter.ClassID)
	}
	if !filter.Month.IsZero() {
		q += ` AND month = ?`
		args = append(args, filter.Month.String())
	}
	if filter.Status != "" {
		q += ` AND status = ?`
		args = append(args, filter.Status)
	}
	q += ` ORDER BY month, created_at`

	var rows []paymentRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering payments")
	}
	return repo.toPayments(rows)
}

func (repo paymentRepository) QueryOpenPaymentsByStudent(ctx context.Context, studentID string) ([]payment.Payment, error) {
	q := `SELECT * FROM payment WHERE student_id = $1 AND status IN ($2, $3) ORDER BY month`
	var rows []paymentRow
	if err := repo.db.SelectContext(ctx, &rows, q, studentID, payment.StatusPending, payment.StatusLate); err != nil {
		return nil, errors.Wrap(err, "querying open payments")
	}
	return repo.toPayments(rows)
}

func (repo paymentRepository) QueryPendingPaymentsBefore(ctx context.Context, m payment.Month) ([]payment.Payment, error) {
	// months sort lexicographically in YYYY-MM form
	q := `SELECT * FROM payment WHERE status = $1 AND month < $2 ORDER BY month`
	var rows []paymentRow
	if err := repo.db.SelectContext(ctx, &rows, q, payment.StatusPending, m.String()); err != nil {
		return nil, errors.Wrap(err, "querying overdue payments")
	}
	return repo.toPayments(rows)
}

func (repo paymentRepository) UpdatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	q := `
		UPDATE payment
		SET amount = $2,
		    payment_date = $3,
		    status = $4,
		    method = $5,
		    invoice_number = $6,
		    notes = $7,
		    recorded_by = $8,
		    updated_at = $9
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q,
		p.ID, p.Amount,
		null.NewTime(p.PaymentDate, !p.PaymentDate.IsZero()),
		p.Status, p.Method, p.InvoiceNumber, p.Notes, p.RecordedBy, p.UpdatedAt)
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "updating payment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payment.Payment{}, payment.ErrNotFound
	}
	return p, nil
}

func (repo paymentRepository) DeleteOpenPayments(ctx context.Context, studentID, classID string) error {
	q := `DELETE FROM payment WHERE student_id = $1 AND class_id = $2 AND status IN ($3, $4)`
	_, err := repo.db.ExecContext(ctx, q, studentID, classID, payment.StatusPending, payment.StatusLate)
	return errors.Wrap(err, "deleting open payments")
}

func (repo paymentRepository) DeletePaymentsByStudent(ctx context.Context, studentID string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM payment WHERE student_id = $1`, studentID)
	return errors.Wrap(err, "deleting student payments")
}

func (repo paymentRepository) DeletePaymentsByClass(ctx context.Context, classID string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM payment WHERE class_id = $1`, classID)
	return errors.Wrap(err, "deleting class payments")
}

func (repo paymentRepository) toPayments(rows []paymentRow) ([]payment.Payment, error) {
	payments := make([]payment.Payment, 0, len(rows))
	for _, r := range rows {
		p, err := r.toPayment()
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, nil
}
