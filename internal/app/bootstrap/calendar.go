package bootstrap

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Akseler/landing/internal/calendar"
	appconfig "github.com/Akseler/landing/internal/config"
	"github.com/Akseler/landing/internal/crm"
	"github.com/Akseler/landing/internal/observability/metrics"
	"github.com/Akseler/landing/pkg/logging"
)

// CalendarDeps are the runtime resources the calendar API is built from.
type CalendarDeps struct {
	Credentials calendar.CredentialStore
	States      calendar.StateStore
	Registerer  prometheus.Registerer
	Logger      *logging.Logger
}

// BuildCalendarHandler wires Google auth, busy-time lookup, availability
// and the CRM notifier into the HTTP handler.
func BuildCalendarHandler(cfg *appconfig.Config, deps CalendarDeps) *calendar.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}

	var calendarMetrics *metrics.CalendarMetrics
	var webhookMetrics *metrics.WebhookMetrics
	if deps.Registerer != nil {
		calendarMetrics = metrics.NewCalendarMetrics(deps.Registerer)
		webhookMetrics = metrics.NewWebhookMetrics(deps.Registerer)
	}

	auth := calendar.NewGoogleAuth(calendar.GoogleAuthConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURI,
	}, deps.Credentials, logger)
	if !auth.Configured() {
		logger.Warn("google calendar not configured, all business-hour slots will be offered")
	}

	busy := calendar.NewBusySource(auth, calendar.NewGoogleBusyFetcher("", nil), cfg.GoogleCalendarID, calendarMetrics, logger)
	availability := calendar.NewAvailabilityService(busy, calendar.SystemClock{}, calendarMetrics, logger)
	notifier := crm.NewWebhookNotifier(cfg.BookingWebhookURL, cfg.WebhookTimeout, calendar.ReferenceLocation(), webhookMetrics, logger)

	return calendar.NewHandler(calendar.HandlerDeps{
		Auth:         auth,
		States:       deps.States,
		Availability: availability,
		Notifier:     notifier,
		Metrics:      calendarMetrics,
		Logger:       logger,
	})
}
