package core

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	// custom validation tags & texts
	alphaNumUnderTag   = "alphanum_"
	alphaNumUnderText  = "only alphanumeric characters and underscores are allowed"
	alphaNumUnderRegex = regexp.MustCompile(`^[\w\s]+$`)

	monthTag   = "month"
	monthText  = "must be a calendar month in YYYY-MM format"
	monthRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

	classTimeTag   = "classtime"
	classTimeText  = "must be a time of day in HH:MM format"
	classTimeRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

	acadYearTag  = "acadyear"
	acadYearText = "invalid academic year"

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// AcademicYears are the school levels the center serves (middle and secondary school).
var AcademicYears = []string{"1AS", "2AS", "3AS", "1MS", "2MS", "3MS", "4MS", "5MS"}

func init() {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	Translator, _ = uni.GetTranslator("en")

	Validate = validator.New()
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = Validate.RegisterValidation(alphaNumUnderTag, alphaNumUnderValidation)
	RegisterCustomTranslation(alphaNumUnderTag, alphaNumUnderText)

	_ = Validate.RegisterValidation(monthTag, monthValidation)
	RegisterCustomTranslation(monthTag, monthText)

	_ = Validate.RegisterValidation(classTimeTag, classTimeValidation)
	RegisterCustomTranslation(classTimeTag, classTimeText)

	_ = Validate.RegisterValidation(acadYearTag, acadYearValidation)
	RegisterCustomTranslation(acadYearTag, acadYearText)

	RegisterCustomTranslation(requiredTag, requiredText, true)
	RegisterCustomTranslation(requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = Validate.RegisterTranslation(
		tag, Translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// alphaNumUnderValidation only allows alphanumeric characters and underscores.
func alphaNumUnderValidation(fl validator.FieldLevel) bool {
	return alphaNumUnderRegex.MatchString(fl.Field().String())
}

// monthValidation allows calendar-month keys such as "2024-06".
func monthValidation(fl validator.FieldLevel) bool {
	return monthRegex.MatchString(fl.Field().String())
}

// classTimeValidation allows 24h wall-clock times such as "17:30".
func classTimeValidation(fl validator.FieldLevel) bool {
	return classTimeRegex.MatchString(fl.Field().String())
}

func acadYearValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, y := range AcademicYears {
		if y == val {
			return true
		}
	}
	return false
}
