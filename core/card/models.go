package card

import (
	"time"

	"github.com/durusapp/durus/core"
)

// Card is an RFID badge issued to a student for check-in at the door.
type Card struct {
	ID        string    `json:"id"`
	UID       string    `json:"uid"` // RFID tag identifier
	StudentID string    `json:"student_id"`
	IssueDate time.Time `json:"issue_date"`
	IsActive  *bool     `json:"is_active"`
}

func (c Card) Active() bool { return c.IsActive != nil && *c.IsActive }

// NewCard contains information needed to issue a new Card.
type NewCard struct {
	UID       string `json:"uid" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
}

func (nc *NewCard) Validate(svc ServiceInterface) error {
	nc.UID = core.CleanString(nc.UID)
	if err := core.Validate.Struct(nc); err != nil {
		return err
	}
	return svc.CheckUIDUniqueness(nc.UID)
}
