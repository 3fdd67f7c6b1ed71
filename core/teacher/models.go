package teacher

import (
	"time"

	"github.com/durusapp/durus/core"
)

type Teacher struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Subjects []string  `json:"subjects"`
	Phone    string    `json:"phone"`
	Email    string    `json:"email"`
	HireDate time.Time `json:"hire_date"`
	IsActive *bool     `json:"is_active"`
	// SalaryShare is the fraction of class revenue paid out to the teacher.
	SalaryShare float64   `json:"salary_share"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

func (t Teacher) Active() bool { return t.IsActive != nil && *t.IsActive }

// Share returns the teacher's revenue share, falling back to the configured default.
func (t Teacher) Share() float64 {
	if t.SalaryShare > 0 {
		return t.SalaryShare
	}
	return core.Conf.Billing.DefaultTeacherShare
}

// NewTeacher contains information needed to create a new Teacher.
type NewTeacher struct {
	Name        string    `json:"name" validate:"required"`
	Subjects    []string  `json:"subjects" validate:"omitempty,dive,subject"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email" validate:"omitempty,email"`
	HireDate    time.Time `json:"hire_date"`
	SalaryShare float64   `json:"salary_share" validate:"omitempty,gt=0,lte=1"`
}

func (nt *NewTeacher) Validate() error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	return core.Validate.Struct(nt)
}

// UpdateTeacher defines what information may be provided to modify an existing Teacher.
type UpdateTeacher struct {
	Name        string    `json:"name"`
	Subjects    []string  `json:"subjects" validate:"omitempty,dive,subject"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email" validate:"omitempty,email"`
	HireDate    time.Time `json:"hire_date"`
	IsActive    *bool     `json:"is_active"`
	SalaryShare float64   `json:"salary_share" validate:"omitempty,gt=0,lte=1"`
}

func (ut *UpdateTeacher) Validate(orig Teacher) error {
	name := core.CleanString(ut.Name)
	if name != "" {
		ut.Name = name
	} else {
		ut.Name = orig.Name
	}
	ut.Email = core.CleanString(ut.Email, true /* lower */)
	return core.Validate.Struct(ut)
}
