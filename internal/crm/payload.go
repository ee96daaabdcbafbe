// Package crm delivers booking and contact leads to the CRM inbound webhook.
package crm

import (
	"strings"
	"time"
	"unicode"
)

// LocalDateTimeFormat is the wall-clock layout the CRM expects.
const LocalDateTimeFormat = "2006-01-02 03:04 PM"

// Event types carried in the payload and used as metric labels.
const (
	EventBooking = "booking"
	EventContact = "contact"
)

const payloadSource = "website"

// SurveyData is the optional qualification survey attached to a lead.
type SurveyData struct {
	Industry     string            `json:"industry,omitempty"`
	MonthlyLeads string            `json:"monthlyLeads,omitempty"`
	ResponseTime string            `json:"responseTime,omitempty"`
	TeamSize     string            `json:"teamSize,omitempty"`
	Challenge    string            `json:"challenge,omitempty"`
	Score        int               `json:"score,omitempty"`
	Answers      map[string]string `json:"answers,omitempty"`
}

// Contact is the lead identity shared by bookings and contact requests.
type Contact struct {
	Name    string
	Company string
	Phone   string
	Email   string
	Survey  *SurveyData
}

// Result reports the outcome of one delivery attempt.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Payload is the fixed JSON shape posted to the webhook.
type Payload struct {
	FirstName              string            `json:"first_name"`
	LastName               string            `json:"last_name"`
	FullName               string            `json:"full_name"`
	Email                  string            `json:"email"`
	Phone                  string            `json:"phone"`
	CompanyName            string            `json:"company_name"`
	AppointmentDatetime    string            `json:"appointment_datetime"`
	AppointmentDatetimeISO string            `json:"appointment_datetime_iso"`
	Timezone               string            `json:"timezone"`
	Industry               string            `json:"industry"`
	MonthlyLeads           string            `json:"monthly_leads"`
	ResponseTime           string            `json:"response_time"`
	TeamSize               string            `json:"team_size"`
	Challenge              string            `json:"challenge"`
	SurveyScore            int               `json:"survey_score"`
	SurveyAnswers          map[string]string `json:"survey_answers"`
	Source                 string            `json:"source"`
	Tags                   []string          `json:"tags"`
	EventType              string            `json:"event_type"`
}

// SplitName splits at the first whitespace run. The remainder is the last
// name; a single word leaves it empty.
func SplitName(full string) (first, last string) {
	trimmed := strings.TrimSpace(full)
	idx := strings.IndexFunc(trimmed, unicode.IsSpace)
	if idx < 0 {
		return trimmed, ""
	}
	return trimmed[:idx], strings.TrimSpace(trimmed[idx:])
}

// FormatLocalDateTime renders t in loc as "YYYY-MM-DD hh:MM AM|PM".
func FormatLocalDateTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(LocalDateTimeFormat)
}

// BuildBookingPayload shapes a confirmed slot booking.
func BuildBookingPayload(c Contact, at time.Time, loc *time.Location) Payload {
	p := basePayload(c, EventBooking)
	p.AppointmentDatetime = FormatLocalDateTime(at, loc)
	p.AppointmentDatetimeISO = at.UTC().Format("2006-01-02T15:04:05.000Z")
	if loc != nil {
		p.Timezone = loc.String()
	}
	return p
}

// BuildContactPayload shapes a contact request; appointment fields stay empty.
func BuildContactPayload(c Contact) Payload {
	return basePayload(c, EventContact)
}

func basePayload(c Contact, eventType string) Payload {
	first, last := SplitName(c.Name)
	p := Payload{
		FirstName:     first,
		LastName:      last,
		FullName:      strings.TrimSpace(c.Name),
		Email:         strings.TrimSpace(c.Email),
		Phone:         strings.TrimSpace(c.Phone),
		CompanyName:   strings.TrimSpace(c.Company),
		SurveyAnswers: map[string]string{},
		Source:        payloadSource,
		Tags:          []string{"landing", eventType},
		EventType:     eventType,
	}
	if s := c.Survey; s != nil {
		p.Industry = s.Industry
		p.MonthlyLeads = s.MonthlyLeads
		p.ResponseTime = s.ResponseTime
		p.TeamSize = s.TeamSize
		p.Challenge = s.Challenge
		p.SurveyScore = s.Score
		for k, v := range s.Answers {
			p.SurveyAnswers[k] = v
		}
	}
	return p
}
