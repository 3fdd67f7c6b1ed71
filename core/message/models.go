package message

import (
	"time"

	"github.com/durusapp/durus/core"
)

// Message types
const (
	TypeIndividual = "individual"
	TypeGroup      = "group"
	TypeClass      = "class"
	// TypePayment messages are recorded by the payment-registration flow only.
	TypePayment = "payment"
)

// Statuses
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

type (
	// Recipient is one parent contact a message was addressed to.
	Recipient struct {
		StudentID   string `json:"student_id"`
		ParentPhone string `json:"parent_phone"`
		ParentEmail string `json:"parent_email"`
	}

	Message struct {
		ID         string      `json:"id"`
		SenderID   string      `json:"sender_id"` // empty for system messages
		Recipients []Recipient `json:"recipients"`
		ClassID    string      `json:"class_id"`
		Content    string      `json:"content"`
		SentAt     time.Time   `json:"sent_at"`
		Type       string      `json:"type"`
		Status     string      `json:"status"`
	}
)

// SendMessage contains information needed to send a message to parents.
type SendMessage struct {
	Type       string   `json:"type" validate:"required,oneof=individual group class payment"`
	StudentID  string   `json:"student_id"`
	StudentIDs []string `json:"student_ids"`
	ClassID    string   `json:"class_id"`
	Content    string   `json:"content" validate:"required"`
}

func (sm *SendMessage) Validate() error {
	sm.Content = core.CleanString(sm.Content)
	return core.Validate.Struct(sm)
}

type QueryFilter struct {
	Type      string    `query:"type"`
	ClassID   string    `query:"class"`
	StartDate time.Time `query:"start_date"`
	EndDate   time.Time `query:"end_date"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Type == "" && qf.ClassID == "" && qf.StartDate.IsZero() && qf.EndDate.IsZero()
}
