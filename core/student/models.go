package student

import (
	"time"

	"github.com/durusapp/durus/core"
)

type Student struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Code             string    `json:"code"` // center-issued student number
	BirthDate        time.Time `json:"birth_date"`
	ParentName       string    `json:"parent_name"`
	ParentPhone      string    `json:"parent_phone"`
	ParentEmail      string    `json:"parent_email"`
	Address          string    `json:"address"`
	AcademicYear     string    `json:"academic_year"`
	RegistrationDate time.Time `json:"registration_date"`
	IsActive         *bool     `json:"is_active"`
	ClassIDs         []string  `json:"class_ids"`
	CreatedAt        time.Time `json:"created_at"` // UTC
	UpdatedAt        time.Time `json:"updated_at"` // UTC
}

func (s Student) Active() bool { return s.IsActive != nil && *s.IsActive }

func (s Student) IsEnrolledIn(classID string) bool {
	for _, id := range s.ClassIDs {
		if id == classID {
			return true
		}
	}
	return false
}

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	Name             string    `json:"name" validate:"required"`
	Code             string    `json:"code" validate:"required,alphanum_"`
	BirthDate        time.Time `json:"birth_date"`
	ParentName       string    `json:"parent_name"`
	ParentPhone      string    `json:"parent_phone"`
	ParentEmail      string    `json:"parent_email" validate:"omitempty,email"`
	Address          string    `json:"address"`
	AcademicYear     string    `json:"academic_year" validate:"omitempty,acadyear"`
	RegistrationDate time.Time `json:"registration_date"`
}

func (ns *NewStudent) Validate(svc ServiceInterface) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = core.CleanString(ns.Code, true /* lower */)
	ns.ParentEmail = core.CleanString(ns.ParentEmail, true /* lower */)

	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckCodeUniqueness(ns.Code)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent struct {
	Name         string    `json:"name"`
	BirthDate    time.Time `json:"birth_date"`
	ParentName   string    `json:"parent_name"`
	ParentPhone  string    `json:"parent_phone"`
	ParentEmail  string    `json:"parent_email" validate:"omitempty,email"`
	Address      string    `json:"address"`
	AcademicYear string    `json:"academic_year" validate:"omitempty,acadyear"`
	IsActive     *bool     `json:"is_active"`
}

func (us *UpdateStudent) Validate(orig Student) error {
	name := core.CleanString(us.Name)
	if name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	us.ParentEmail = core.CleanString(us.ParentEmail, true /* lower */)

	return core.Validate.Struct(us)
}

type QueryFilter struct {
	Search       string `query:"search"`
	AcademicYear string `query:"academic_year"`
	IsActive     *bool  `query:"active"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.AcademicYear == "" && qf.IsActive == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
