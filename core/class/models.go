package class

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/durusapp/durus/core"
)

// Subjects the center offers.
var Subjects = []string{
	"math", "physics", "science", "arabic", "french", "english",
	"history", "geography", "philosophy", "computer_science",
}

// Weekdays in center order; the teaching week starts on Saturday.
var Weekdays = []string{
	"saturday", "sunday", "monday", "tuesday", "wednesday", "thursday", "friday",
}

var weekdayByName = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

var (
	subjectTag  = "subject"
	subjectText = "invalid subject"

	weekdayTag  = "weekday"
	weekdayText = "invalid weekday"
)

func init() {
	_ = core.Validate.RegisterValidation(subjectTag, inListValidation(Subjects))
	core.RegisterCustomTranslation(subjectTag, subjectText)

	_ = core.Validate.RegisterValidation(weekdayTag, inListValidation(Weekdays))
	core.RegisterCustomTranslation(weekdayTag, weekdayText)
}

func inListValidation(list []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		val := fl.Field().String()
		for _, s := range list {
			if s == val {
				return true
			}
		}
		return false
	}
}

type (
	// ScheduleSlot is a weekly recurring session of a Class.
	ScheduleSlot struct {
		Day         string `json:"day"`
		Time        string `json:"time"` // HH:MM, 24h
		ClassroomID string `json:"classroom_id"`
	}

	Class struct {
		ID           string         `json:"id"`
		Name         string         `json:"name"`
		Subject      string         `json:"subject"`
		Description  string         `json:"description"`
		Schedule     []ScheduleSlot `json:"schedule"`
		AcademicYear string         `json:"academic_year"`
		TeacherID    string         `json:"teacher_id"`
		StudentIDs   []string       `json:"student_ids"`
		// Price is the monthly tuition; read by the enrollment scheduler at
		// enrollment time, later changes never re-price existing payments.
		Price     float64   `json:"price"`
		CreatedAt time.Time `json:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at"` // UTC
	}
)

func (c Class) HasStudent(studentID string) bool {
	for _, id := range c.StudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// SlotAt returns the schedule slot whose session time is within `window` of t,
// or nil if no session is running around t.
func (c Class) SlotAt(t time.Time, window time.Duration) *ScheduleSlot {
	for i, slot := range c.Schedule {
		day, ok := weekdayByName[slot.Day]
		if !ok || day != t.Weekday() {
			continue
		}
		slotTime, err := time.Parse("15:04", slot.Time)
		if err != nil {
			continue
		}
		sessionStart := time.Date(t.Year(), t.Month(), t.Day(), slotTime.Hour(), slotTime.Minute(), 0, 0, t.Location())
		diff := t.Sub(sessionStart)
		if diff < 0 {
			diff = -diff
		}
		if diff <= window {
			return &c.Schedule[i]
		}
	}
	return nil
}

// NewClass contains information needed to create a new Class.
type NewClass struct {
	Name         string         `json:"name" validate:"required"`
	Subject      string         `json:"subject" validate:"omitempty,subject"`
	Description  string         `json:"description"`
	Schedule     []ScheduleSlot `json:"schedule" validate:"omitempty,dive"`
	AcademicYear string         `json:"academic_year" validate:"omitempty,acadyear"`
	TeacherID    string         `json:"teacher_id"`
	Price        float64        `json:"price" validate:"required,gt=0"`
}

func (nc *NewClass) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	if err := core.Validate.Struct(nc); err != nil {
		return err
	}
	return validateSlots(nc.Schedule)
}

// UpdateClass defines what information may be provided to modify an existing Class.
type UpdateClass struct {
	Name         string         `json:"name"`
	Subject      string         `json:"subject" validate:"omitempty,subject"`
	Description  string         `json:"description"`
	Schedule     []ScheduleSlot `json:"schedule" validate:"omitempty,dive"`
	AcademicYear string         `json:"academic_year" validate:"omitempty,acadyear"`
	TeacherID    string         `json:"teacher_id"`
	Price        float64        `json:"price" validate:"omitempty,gt=0"`
}

func (uc *UpdateClass) Validate(orig Class) error {
	name := core.CleanString(uc.Name)
	if name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}
	if err := core.Validate.Struct(uc); err != nil {
		return err
	}
	return validateSlots(uc.Schedule)
}

func validateSlots(slots []ScheduleSlot) error {
	for _, slot := range slots {
		if _, ok := weekdayByName[slot.Day]; !ok {
			return core.NewValidationError(nil, core.FieldError{Field: "schedule", Error: weekdayText})
		}
		if _, err := time.Parse("15:04", slot.Time); err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "schedule", Error: "must be a time of day in HH:MM format"})
		}
	}
	return nil
}

type QueryFilter struct {
	AcademicYear string `query:"academic_year"`
	Subject      string `query:"subject"`
	TeacherID    string `query:"teacher"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.AcademicYear == "" && qf.Subject == "" && qf.TeacherID == ""
}
