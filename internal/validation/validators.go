package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/habito/habito-api/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but log if they do
	if err := Validate.RegisterValidation("time_of_day", validateTimeOfDay); err != nil {
		panic(fmt.Sprintf("failed to register time_of_day validator: %v", err))
	}
	if err := Validate.RegisterValidation("occurrence", validateOccurrence); err != nil {
		panic(fmt.Sprintf("failed to register occurrence validator: %v", err))
	}
	if err := Validate.RegisterValidation("time_range", validateTimeRange); err != nil {
		panic(fmt.Sprintf("failed to register time_range validator: %v", err))
	}
}

// validateTimeOfDay validates that a string is a valid TimeOfDay enum value
func validateTimeOfDay(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.TimeOfDay(value) {
	case models.TimeOfDayMorning, models.TimeOfDayAfternoon, models.TimeOfDayEvening, models.TimeOfDayAnytime:
		return true
	default:
		return false
	}
}

// validateOccurrence validates that a string is a valid Occurrence enum value
func validateOccurrence(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.Occurrence(value) {
	case models.OccurrenceDaily, models.OccurrenceWeekly, models.OccurrenceMonthly, models.OccurrenceWeekdays:
		return true
	default:
		return false
	}
}

// validateTimeRange validates that a string is a valid TimeRange enum value
func validateTimeRange(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.TimeRange(value) {
	case models.TimeRange7d, models.TimeRange30d, models.TimeRange90d, models.TimeRangeAll:
		return true
	default:
		return false
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
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
	tod := models.TimeOfDay(value)
	switch tod {
	case models.TimeOfDayMorning, models.TimeOfDayAfternoon, models.TimeOfDayEvening, models.TimeOfDayAnytime:
		return nil
	default:
		return fmt.Errorf("invalid time_of_day: %s (must be 'morning', 'afternoon', 'evening', or 'anytime')", value)
	}
}

// ValidateOccurrence validates an Occurrence string value
func ValidateOccurrence(value string) error {
	occ := models.Occurrence(value)
	switch occ {
	case models.OccurrenceDaily, models.OccurrenceWeekly, models.OccurrenceMonthly, models.OccurrenceWeekdays:
		return nil
	default:
		return fmt.Errorf("invalid occurrence: %s (must be 'daily', 'weekly', 'monthly', or 'weekdays')", value)
	}
}

// ValidateTimeRange validates a TimeRange string value
func ValidateTimeRange(value string) error {
	tr := models.TimeRange(value)
	switch tr {
	case models.TimeRange7d, models.TimeRange30d, models.TimeRange90d, models.TimeRangeAll:
		return nil
	default:
		return fmt.Errorf("invalid range: %s (must be '7d', '30d', '90d', or 'all')", value)
	}
}
