package payment

import (
	"time"

	"github.com/durusapp/durus/core"
)

// Statuses
const (
	StatusPending = "pending"
	StatusLate    = "late"
	StatusPaid    = "paid"
)

// Payment methods
const (
	MethodCash   = "cash"
	MethodBank   = "bank"
	MethodOnline = "online"
)

// Payment is one monthly tuition obligation of a student for a class.
// At most one Payment exists per (student, class, month); the storage layer
// enforces this with a uniqueness constraint, the scheduler's existence check
// is a best-effort shortcut on top of it.
type Payment struct {
	ID        string  `json:"id"`
	StudentID string  `json:"student_id"`
	ClassID   string  `json:"class_id"`
	Amount    float64 `json:"amount"`
	Month     Month   `json:"month"`
	// PaymentDate is zero until the payment is registered as paid.
	PaymentDate   time.Time `json:"payment_date"`
	Status        string    `json:"status"`
	Method        string    `json:"method"`
	InvoiceNumber string    `json:"invoice_number"`
	Notes         string    `json:"notes"`
	RecordedBy    string    `json:"recorded_by"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

func (p Payment) IsPaid() bool { return p.Status == StatusPaid }

// IsOpen reports whether the payment is still owed (pending or late).
func (p Payment) IsOpen() bool { return p.Status == StatusPending || p.Status == StatusLate }

// PayInput defines what may be provided when registering a payment.
type PayInput struct {
	PaymentDate time.Time `json:"payment_date"`
	Method      string    `json:"method" validate:"omitempty,oneof=cash bank online"`
	Notes       string    `json:"notes"`
}

func (pi *PayInput) Validate() error {
	return core.Validate.Struct(pi)
}

type QueryFilter struct {
	StudentID string `query:"student"`
	ClassID   string `query:"class"`
	Month     Month  `query:"month"`
	Status    string `query:"status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.StudentID == "" && qf.ClassID == "" && qf.Month.IsZero() && qf.Status == ""
}
