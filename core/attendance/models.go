package attendance

import (
	"time"

	"github.com/durusapp/durus/core"
)

// Statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
)

type Attendance struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student_id"`
	ClassID    string    `json:"class_id"`
	Date       time.Time `json:"date"`
	Status     string    `json:"status"`
	RecordedBy string    `json:"recorded_by"` // empty for RFID check-ins
}

// NewAttendance contains information needed to record an attendance entry.
type NewAttendance struct {
	StudentID string    `json:"student_id" validate:"required"`
	ClassID   string    `json:"class_id" validate:"required"`
	Date      time.Time `json:"date"`
	Status    string    `json:"status" validate:"omitempty,oneof=present absent late"`
}

func (na *NewAttendance) Validate() error {
	return core.Validate.Struct(na)
}

type QueryFilter struct {
	ClassID   string    `query:"class"`
	StudentID string    `query:"student"`
	Day       time.Time `query:"date"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.ClassID == "" && qf.StudentID == "" && qf.Day.IsZero()
}
