package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	if err := Validate.RegisterValidation("time_of_day", validateTimeOfDay); err != nil {
		panic(fmt.Sprintf("failed to register time_of_day validator: %v", err))
	}
	if err := Validate.RegisterValidation("weekday", validateWeekday); err != nil {
		panic(fmt.Sprintf("failed to register weekday validator: %v", err))
	}
}

// validateTimeOfDay validates that a string is a valid TimeOfDay enum value
func validateTimeOfDay(fl validator.FieldLevel) bool {
	switch models.TimeOfDay(fl.Field().String()) {
	case models.TimeOfDayMorning, models.TimeOfDayAfternoon, models.TimeOfDayAny:
		return true
	default:
		return false
	}
}

// validateWeekday validates that an integer is a time.Weekday (Sunday = 0)
func validateWeekday(fl validator.FieldLevel) bool {
	day := fl.Field().Int()
	return day >= int64(time.Sunday) && day <= int64(time.Saturday)
}

// ValidatePreference checks the struct tags plus the invariants tags cannot express
func ValidatePreference(p *models.Preference) error {
	var errs []error

	if err := Validate.Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = append(errs, fmt.Errorf("%s failed %s validation", fieldName(fe), fe.Tag()))
			}
		} else {
			errs = append(errs, err)
		}
	}

	seen := map[int]bool{}
	for _, d := range p.WorkingDays {
		if seen[d] {
			errs = append(errs, fmt.Errorf("working_days contains %d more than once", d))
		}
		seen[d] = true
	}

	if p.Timezone != "" {
		if _, err := time.LoadLocation(p.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("unknown timezone %q", p.Timezone))
		}
	}

	return errors.Join(errs...)
}

func fieldName(fe validator.FieldError) string {
	var b strings.Builder
	for i, r := range fe.Field() {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateTimeOfDay validates a TimeOfDay string value
func ValidateTimeOfDay(value string) error {
	switch models.TimeOfDay(value) {
	case models.TimeOfDayMorning, models.TimeOfDayAfternoon, models.TimeOfDayAny:
		return nil
	default:
		return fmt.Errorf("invalid preferred_time_of_day: %s (must be 'morning', 'afternoon', or 'any')", value)
	}
}
