package calendar

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9-]{6,20}$`)

// ValidateBooking checks every field of req and collects all violations in
// field order. It does not consult calendar busy time; a slot shown free may
// already be taken by the time it is submitted.
func ValidateBooking(req BookingRequest, now time.Time) ValidationResult {
	errs := make([]string, 0)

	if msg := validateMinLength(req.Name, "Name"); msg != "" {
		errs = append(errs, msg)
	}
	if msg := validateMinLength(req.Company, "Company"); msg != "" {
		errs = append(errs, msg)
	}

	phone := stripWhitespace(req.Phone)
	switch {
	case phone == "":
		errs = append(errs, "Phone is required")
	case !phonePattern.MatchString(phone):
		errs = append(errs, "Phone number format is invalid")
	}

	email := strings.TrimSpace(req.Email)
	switch {
	case email == "":
		errs = append(errs, "Email is required")
	case !strings.Contains(email, "@"):
		errs = append(errs, "Email address is invalid")
	}

	raw := strings.TrimSpace(req.Datetime)
	if raw == "" {
		errs = append(errs, "Appointment time is required")
	} else if at, err := ParseSlotTime(raw); err != nil {
		errs = append(errs, "Appointment time is invalid")
	} else if at.Before(now) {
		errs = append(errs, "Appointment time cannot be in the past")
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// ParseSlotTime parses an ISO-8601 instant as produced by TimeSlot.Datetime.
func ParseSlotTime(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
}

func validateMinLength(value, field string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return field + " is required"
	}
	if utf8.RuneCountInString(trimmed) < 2 {
		return field + " must be at least 2 characters"
	}
	return ""
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
