package ledger

import (
	"time"

	"github.com/durusapp/durus/core"
)

// Transaction types
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Categories
const (
	CategoryTuition   = "tuition"
	CategorySalary    = "salary"
	CategoryRent      = "rent"
	CategoryUtilities = "utilities"
	CategorySupplies  = "supplies"
	CategoryOther     = "other"
)

// Transaction is a ledger entry pairing a money event with an accounting classification.
type Transaction struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	RecordedBy  string    `json:"recorded_by"`
	// Reference links the entry back to its source record (a payment ID).
	Reference string `json:"reference"`
}

// NewTransaction contains information needed to record a manual ledger entry.
type NewTransaction struct {
	Type        string  `json:"type" validate:"required,oneof=income expense"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description"`
	Category    string  `json:"category" validate:"omitempty,oneof=tuition salary rent utilities supplies other"`
	Reference   string  `json:"reference"`
}

func (nt *NewTransaction) Validate() error {
	return core.Validate.Struct(nt)
}

type QueryFilter struct {
	Type      string    `query:"type"`
	Category  string    `query:"category"`
	StartDate time.Time `query:"start_date"`
	EndDate   time.Time `query:"end_date"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Type == "" && qf.Category == "" && qf.StartDate.IsZero() && qf.EndDate.IsZero()
}

type (
	// MonthlyTotal is the aggregate of one (type, category) cell for one month.
	MonthlyTotal struct {
		Year        int     `json:"year"`
		Month       int     `json:"month"`
		TotalAmount float64 `json:"total_amount"`
		Count       int     `json:"count"`
	}

	// ReportEntry summarizes all transactions of one (type, category) pair.
	ReportEntry struct {
		Type        string         `json:"type"`
		Category    string         `json:"category"`
		MonthlyData []MonthlyTotal `json:"monthly_data"`
		TotalAmount float64        `json:"total_amount"`
		TotalCount  int            `json:"total_count"`
	}
)
