package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validBooking(now time.Time) BookingRequest {
	return BookingRequest{
		Name:     "Jo",
		Company:  "AB",
		Phone:    "+37061234567",
		Email:    "a@b.com",
		Datetime: now.Add(48 * time.Hour).UTC().Format(SlotTimeFormat),
	}
}

func TestValidateBookingAcceptsMinimalValidRequest(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	res := ValidateBooking(validBooking(now), now)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.NotNil(t, res.Errors)
}

func TestValidateBookingFieldRules(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(*BookingRequest)
		want   string
	}{
		{"short name", func(r *BookingRequest) { r.Name = " J " }, "Name must be at least 2 characters"},
		{"missing name", func(r *BookingRequest) { r.Name = "   " }, "Name is required"},
		{"short company", func(r *BookingRequest) { r.Company = "A" }, "Company must be at least 2 characters"},
		{"missing phone", func(r *BookingRequest) { r.Phone = "" }, "Phone is required"},
		{"phone letters", func(r *BookingRequest) { r.Phone = "+370abc123" }, "Phone number format is invalid"},
		{"phone too short", func(r *BookingRequest) { r.Phone = "12345" }, "Phone number format is invalid"},
		{"phone too long", func(r *BookingRequest) { r.Phone = "123456789012345678901" }, "Phone number format is invalid"},
		{"email without at", func(r *BookingRequest) { r.Email = "ab.com" }, "Email address is invalid"},
		{"missing email", func(r *BookingRequest) { r.Email = "" }, "Email is required"},
		{"missing datetime", func(r *BookingRequest) { r.Datetime = "" }, "Appointment time is required"},
		{"garbage datetime", func(r *BookingRequest) { r.Datetime = "tomorrow at ten" }, "Appointment time is invalid"},
		{"past datetime", func(r *BookingRequest) { r.Datetime = "2026-03-01T10:00:00.000Z" }, "Appointment time cannot be in the past"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validBooking(now)
			tt.mutate(&req)
			res := ValidateBooking(req, now)
			assert.False(t, res.Valid)
			assert.Equal(t, []string{tt.want}, res.Errors)
		})
	}
}

func TestValidateBookingPhoneWhitespaceAndHyphens(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	req := validBooking(now)
	req.Phone = " +370 612-34 567 "
	assert.True(t, ValidateBooking(req, now).Valid)
}

func TestValidateBookingMultibyteNames(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	req := validBooking(now)
	req.Name = "Žė"
	assert.True(t, ValidateBooking(req, now).Valid)

	req.Name = "Ž"
	assert.False(t, ValidateBooking(req, now).Valid)
}

func TestValidateBookingCollectsAllViolations(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	res := ValidateBooking(BookingRequest{
		Name:     "J",
		Company:  "",
		Phone:    "abc",
		Email:    "nope",
		Datetime: "2020-01-01T00:00:00Z",
	}, now)

	assert.False(t, res.Valid)
	assert.Equal(t, []string{
		"Name must be at least 2 characters",
		"Company is required",
		"Phone number format is invalid",
		"Email address is invalid",
		"Appointment time cannot be in the past",
	}, res.Errors)
}

func TestValidateBookingNowIsNotPast(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	req := validBooking(now)
	req.Datetime = now.Format(time.RFC3339)
	assert.True(t, ValidateBooking(req, now).Valid)
}
