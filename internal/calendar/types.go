// Package calendar computes bookable appointment slots against Google Calendar
// busy time and gates booking submissions before they reach the CRM.
package calendar

import (
	"time"

	"github.com/Akseler/landing/internal/crm"
)

// ReferenceTimezone is the zone used for slot hours and display formatting,
// independent of the server's or client's local zone.
const ReferenceTimezone = "Europe/Vilnius"

// DateFormat is the date-only layout used by the availability API.
const DateFormat = "2006-01-02"

// SlotTimeFormat matches a JavaScript Date.toISOString() in UTC.
const SlotTimeFormat = "2006-01-02T15:04:05.000Z"

// BusyInterval is an opaque [Start, End) range reported busy by the calendar.
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// TimeSlot is a one-hour candidate appointment window.
type TimeSlot struct {
	Datetime  string `json:"datetime"`
	Available bool   `json:"available"`

	start time.Time
}

// Start returns the absolute start instant of the slot.
func (s TimeSlot) Start() time.Time {
	return s.start
}

// DayAvailability groups the slots of one business day.
type DayAvailability struct {
	Date              string     `json:"date"`
	DayName           string     `json:"dayName"`
	Slots             []TimeSlot `json:"slots"`
	HasAvailableSlots bool       `json:"hasAvailableSlots"`
}

// BookingRequest is the body of POST /api/calendar/book.
type BookingRequest struct {
	Name       string          `json:"name"`
	Company    string          `json:"company"`
	Phone      string          `json:"phone"`
	Email      string          `json:"email"`
	Datetime   string          `json:"datetime"`
	SurveyData *crm.SurveyData `json:"surveyData,omitempty"`
}

// ContactRequest is the body of POST /api/calendar/contact.
type ContactRequest struct {
	Name       string          `json:"name"`
	Company    string          `json:"company"`
	Phone      string          `json:"phone"`
	Email      string          `json:"email"`
	SurveyData *crm.SurveyData `json:"surveyData,omitempty"`
}

// ValidationResult lists every violation found in a booking request.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time {
	return f()
}
