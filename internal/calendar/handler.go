package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Akseler/landing/internal/crm"
	"github.com/Akseler/landing/internal/observability/metrics"
	"github.com/Akseler/landing/pkg/logging"
)

// LeadNotifier delivers accepted bookings and contact requests upstream.
type LeadNotifier interface {
	NotifyBooking(ctx context.Context, c crm.Contact, at time.Time) crm.Result
	NotifyContact(ctx context.Context, c crm.Contact) crm.Result
}

// Handler serves /api/calendar.
type Handler struct {
	auth         *GoogleAuth
	states       StateStore
	availability *AvailabilityService
	notifier     LeadNotifier
	clock        Clock
	metrics      *metrics.CalendarMetrics
	logger       *logging.Logger
}

// HandlerDeps groups Handler collaborators.
type HandlerDeps struct {
	Auth         *GoogleAuth
	States       StateStore
	Availability *AvailabilityService
	Notifier     LeadNotifier
	Clock        Clock
	Metrics      *metrics.CalendarMetrics
	Logger       *logging.Logger
}

func NewHandler(deps HandlerDeps) *Handler {
	if deps.Auth == nil || deps.Availability == nil || deps.Notifier == nil {
		panic("calendar: auth, availability and notifier are required")
	}
	if deps.States == nil {
		deps.States = NewMemoryStateStore()
	}
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	return &Handler{
		auth:         deps.Auth,
		states:       deps.States,
		availability: deps.Availability,
		notifier:     deps.Notifier,
		clock:        deps.Clock,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
	}
}

// Routes mounts the calendar endpoints. submit wraps the POST routes and
// may be nil.
func (h *Handler) Routes(submit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/status", h.HandleStatus)
	r.Get("/auth", h.HandleAuth)
	r.Get("/oauth/callback", h.HandleCallback)
	r.Get("/availability", h.HandleAvailability)

	r.Group(func(r chi.Router) {
		if submit != nil {
			r.Use(submit)
		}
		r.Post("/contact", h.HandleContact)
		r.Post("/book", h.HandleBook)
	})
	return r
}

type statusResponse struct {
	Status     IntegrationStatus `json:"status"`
	Configured bool              `json:"configured"`
	Authorized bool              `json:"authorized"`
}

// HandleStatus reports the integration status.
// GET /api/calendar/status
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status := h.auth.Status(r.Context())
	writeJSON(w, http.StatusOK, statusResponse{
		Status:     status,
		Configured: status != StatusUnconfigured,
		Authorized: status == StatusReady,
	})
}

// HandleAuth redirects the operator to Google's consent screen.
// GET /api/calendar/auth
func (h *Handler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	if !h.auth.Configured() {
		h.logger.Warn("calendar auth requested but google oauth is not configured")
		writePage(w, http.StatusInternalServerError, resultPage{
			Title:   "Google Calendar is not configured",
			Message: "Set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET, then try again.",
		})
		return
	}

	state := NewState()
	if err := h.states.Put(r.Context(), state, OAuthStateTTL); err != nil {
		h.logger.Error("failed to store oauth state", "error", err)
		writePage(w, http.StatusInternalServerError, resultPage{
			Title:   "Authorization could not start",
			Message: "Please try again in a moment.",
		})
		return
	}

	authURL, err := h.auth.AuthCodeURL(state)
	if err != nil {
		h.logger.Error("failed to build google auth url", "error", err)
		writePage(w, http.StatusInternalServerError, resultPage{
			Title:   "Authorization could not start",
			Message: err.Error(),
		})
		return
	}
	h.logger.Info("redirecting operator to google consent")
	http.Redirect(w, r, authURL, http.StatusFound)
}

// HandleCallback finishes the OAuth flow.
// GET /api/calendar/oauth/callback?code=...&state=...
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if errParam := q.Get("error"); errParam != "" {
		h.logger.Warn("google oauth returned error", "error", errParam)
		writePage(w, http.StatusBadRequest, resultPage{
			Title:   "Authorization failed",
			Message: "Google returned: " + errParam,
		})
		return
	}

	ok, err := h.states.Consume(r.Context(), q.Get("state"))
	if err != nil {
		h.logger.Error("failed to verify oauth state", "error", err)
		writePage(w, http.StatusInternalServerError, resultPage{
			Title:   "Authorization failed",
			Message: "Could not verify the request. Please start again.",
		})
		return
	}
	if !ok {
		h.logger.Warn("oauth callback with unknown state", "error", ErrInvalidState)
		writePage(w, http.StatusBadRequest, resultPage{
			Title:   "Authorization failed",
			Message: "The authorization link is invalid or has expired. Please start again.",
		})
		return
	}

	code := strings.TrimSpace(q.Get("code"))
	if code == "" {
		writePage(w, http.StatusBadRequest, resultPage{
			Title:   "Authorization failed",
			Message: "No authorization code was provided.",
		})
		return
	}

	if err := h.auth.Exchange(r.Context(), code); err != nil {
		h.logger.Error("google token exchange failed", "error", err)
		msg := "Could not complete authorization with Google. Please try again."
		if errors.Is(err, ErrNotConfigured) {
			msg = "Google Calendar is not configured."
		}
		writePage(w, http.StatusInternalServerError, resultPage{
			Title:   "Authorization failed",
			Message: msg,
		})
		return
	}

	writePage(w, http.StatusOK, resultPage{
		Title:   "Google Calendar connected",
		Message: "Availability will now reflect your calendar. You can close this window.",
		Success: true,
	})
}

// HandleAvailability returns the availability view.
// GET /api/calendar/availability?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handler) HandleAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end := h.availability.ParseWindow(q.Get("start"), q.Get("end"))
	days := h.availability.Availability(r.Context(), start, end)
	writeJSON(w, http.StatusOK, days)
}

// HandleContact forwards a contact request. Delivery failures are logged
// and never surfaced to the visitor.
// POST /api/calendar/contact
func (h *Handler) HandleContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode contact request", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	res := h.notifier.NotifyContact(r.Context(), crm.Contact{
		Name:    req.Name,
		Company: req.Company,
		Phone:   req.Phone,
		Email:   req.Email,
		Survey:  req.SurveyData,
	})
	if !res.Success {
		h.logger.Warn("contact delivery failed, reporting success to visitor", "error", res.Error)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type bookingErrorResponse struct {
	Error   string   `json:"error"`
	Errors  []string `json:"errors,omitempty"`
	Details string   `json:"details,omitempty"`
}

// HandleBook validates and forwards a booking.
// POST /api/calendar/book
func (h *Handler) HandleBook(w http.ResponseWriter, r *http.Request) {
	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode booking request", "error", err)
		h.metrics.ObserveBooking("invalid")
		writeJSON(w, http.StatusBadRequest, bookingErrorResponse{
			Error:  "Invalid request body",
			Errors: []string{"Request body must be valid JSON"},
		})
		return
	}

	validation := ValidateBooking(req, h.clock.Now())
	if !validation.Valid {
		h.metrics.ObserveBooking("invalid")
		writeJSON(w, http.StatusBadRequest, bookingErrorResponse{
			Error:  "Validation failed",
			Errors: validation.Errors,
		})
		return
	}

	at, _ := ParseSlotTime(req.Datetime)
	res := h.notifier.NotifyBooking(r.Context(), crm.Contact{
		Name:    req.Name,
		Company: req.Company,
		Phone:   req.Phone,
		Email:   req.Email,
		Survey:  req.SurveyData,
	}, at)
	if !res.Success {
		h.metrics.ObserveBooking("delivery_failed")
		writeJSON(w, http.StatusInternalServerError, bookingErrorResponse{
			Error:   "Failed to book appointment",
			Details: res.Error,
		})
		return
	}

	h.metrics.ObserveBooking("delivered")
	h.logger.Info("booking accepted", "datetime", at.UTC().Format(SlotTimeFormat))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Appointment booked successfully",
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type resultPage struct {
	Title   string
	Message string
	Success bool
}

var resultPageTmpl = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body style="font-family: sans-serif; max-width: 560px; margin: 4rem auto;">
<h1 style="color: {{if .Success}}#15803d{{else}}#b91c1c{{end}};">{{.Title}}</h1>
<p>{{.Message}}</p>
</body>
</html>
`))

func writePage(w http.ResponseWriter, status int, page resultPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = resultPageTmpl.Execute(w, page)
}
