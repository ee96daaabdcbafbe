package crm

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vilnius(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Vilnius")
	require.NoError(t, err)
	return loc
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in, first, last string
	}{
		{"Jonas Jonaitis", "Jonas", "Jonaitis"},
		{"Madonna", "Madonna", ""},
		{"  Ona   Marija Petraitė ", "Ona", "Marija Petraitė"},
		{"", "", ""},
	}
	for _, tt := range tests {
		first, last := SplitName(tt.in)
		assert.Equal(t, tt.first, first, tt.in)
		assert.Equal(t, tt.last, last, tt.in)
	}
}

func TestFormatLocalDateTime(t *testing.T) {
	loc := vilnius(t)

	afternoon := time.Date(2026, 3, 2, 14, 5, 0, 0, loc)
	got := FormatLocalDateTime(afternoon.UTC(), loc)
	assert.Equal(t, "2026-03-02 02:05 PM", got)
	assert.True(t, strings.HasSuffix(got, "02:05 PM"))

	midnight := time.Date(2026, 7, 15, 0, 0, 0, 0, loc)
	assert.True(t, strings.HasSuffix(FormatLocalDateTime(midnight.UTC(), loc), "12:00 AM"))

	// summer time: 07:00 UTC is 10:00 in Vilnius
	summer := time.Date(2026, 7, 15, 7, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-07-15 10:00 AM", FormatLocalDateTime(summer, loc))
}

func TestBuildBookingPayload(t *testing.T) {
	loc := vilnius(t)
	at := time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC)

	p := BuildBookingPayload(Contact{
		Name:    "Jonas Jonaitis",
		Company: "UAB Pavyzdys",
		Phone:   "+37061234567",
		Email:   "jonas@example.com",
		Survey: &SurveyData{
			Industry:     "real_estate",
			MonthlyLeads: "50-100",
			Score:        7,
			Answers:      map[string]string{"q1": "yes"},
		},
	}, at, loc)

	assert.Equal(t, "Jonas", p.FirstName)
	assert.Equal(t, "Jonaitis", p.LastName)
	assert.Equal(t, "Jonas Jonaitis", p.FullName)
	assert.Equal(t, "UAB Pavyzdys", p.CompanyName)
	assert.Equal(t, "2026-03-03 10:00 AM", p.AppointmentDatetime)
	assert.Equal(t, "2026-03-03T08:00:00.000Z", p.AppointmentDatetimeISO)
	assert.Equal(t, "Europe/Vilnius", p.Timezone)
	assert.Equal(t, "real_estate", p.Industry)
	assert.Equal(t, 7, p.SurveyScore)
	assert.Equal(t, map[string]string{"q1": "yes"}, p.SurveyAnswers)
	assert.Equal(t, "website", p.Source)
	assert.Equal(t, []string{"landing", "booking"}, p.Tags)
	assert.Equal(t, EventBooking, p.EventType)
}

func TestBuildContactPayloadWithoutSurvey(t *testing.T) {
	p := BuildContactPayload(Contact{Name: "Madonna", Email: "m@example.com"})

	assert.Equal(t, "Madonna", p.FirstName)
	assert.Empty(t, p.LastName)
	assert.Empty(t, p.AppointmentDatetime)
	assert.Empty(t, p.AppointmentDatetimeISO)
	assert.NotNil(t, p.SurveyAnswers)
	assert.Equal(t, []string{"landing", "contact"}, p.Tags)
	assert.Equal(t, EventContact, p.EventType)
}
