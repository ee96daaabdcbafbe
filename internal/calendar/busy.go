package calendar

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/Akseler/landing/internal/observability/metrics"
	"github.com/Akseler/landing/pkg/logging"
)

// DefaultCalendarID is the operator's own calendar.
const DefaultCalendarID = "primary"

// BusyFetcher queries a calendar provider for busy intervals.
type BusyFetcher interface {
	FetchBusy(ctx context.Context, token *oauth2.Token, calendarID string, start, end time.Time) ([]BusyInterval, error)
}

// GoogleBusyFetcher queries the Google Calendar free/busy API.
type GoogleBusyFetcher struct {
	endpoint   string
	baseClient *http.Client
}

// NewGoogleBusyFetcher builds a fetcher. An empty endpoint uses Google's API;
// a nil base client uses http.DefaultClient.
func NewGoogleBusyFetcher(endpoint string, baseClient *http.Client) *GoogleBusyFetcher {
	return &GoogleBusyFetcher{
		endpoint:   strings.TrimSpace(endpoint),
		baseClient: baseClient,
	}
}

func (f *GoogleBusyFetcher) FetchBusy(ctx context.Context, token *oauth2.Token, calendarID string, start, end time.Time) ([]BusyInterval, error) {
	if token == nil {
		return nil, fmt.Errorf("calendar: token required")
	}
	if strings.TrimSpace(calendarID) == "" {
		calendarID = DefaultCalendarID
	}

	clientCtx := ctx
	if f.baseClient != nil {
		clientCtx = context.WithValue(ctx, oauth2.HTTPClient, f.baseClient)
	}
	opts := []option.ClientOption{
		option.WithHTTPClient(oauth2.NewClient(clientCtx, oauth2.StaticTokenSource(token))),
	}
	if f.endpoint != "" {
		opts = append(opts, option.WithEndpoint(f.endpoint))
	}
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar: create service: %w", err)
	}

	resp, err := svc.Freebusy.Query(&gcal.FreeBusyRequest{
		TimeMin: start.UTC().Format(time.RFC3339),
		TimeMax: end.UTC().Format(time.RFC3339),
		Items:   []*gcal.FreeBusyRequestItem{{Id: calendarID}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("calendar: freebusy query: %w", err)
	}

	cal, ok := resp.Calendars[calendarID]
	if !ok {
		return nil, nil
	}
	if len(cal.Errors) > 0 {
		return nil, fmt.Errorf("calendar: freebusy %s: %s", calendarID, cal.Errors[0].Reason)
	}

	intervals := make([]BusyInterval, 0, len(cal.Busy))
	for _, period := range cal.Busy {
		if period == nil || period.Start == "" || period.End == "" {
			continue
		}
		s, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			continue
		}
		e, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			continue
		}
		intervals = append(intervals, BusyInterval{Start: s, End: e})
	}
	return intervals, nil
}

// TokenProvider exposes the credential operations BusySource needs.
type TokenProvider interface {
	Status(ctx context.Context) IntegrationStatus
	RefreshIfExpired(ctx context.Context) (*oauth2.Token, error)
}

// BusySource is the fail-open busy provider: any missing configuration,
// missing credential, refresh failure or query failure yields no intervals
// so every future business-hour slot is offered.
type BusySource struct {
	tokens     TokenProvider
	fetcher    BusyFetcher
	calendarID string
	metrics    *metrics.CalendarMetrics
	logger     *logging.Logger
}

func NewBusySource(tokens TokenProvider, fetcher BusyFetcher, calendarID string, m *metrics.CalendarMetrics, logger *logging.Logger) *BusySource {
	if tokens == nil {
		panic("calendar: token provider required")
	}
	if fetcher == nil {
		panic("calendar: busy fetcher required")
	}
	if strings.TrimSpace(calendarID) == "" {
		calendarID = DefaultCalendarID
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BusySource{
		tokens:     tokens,
		fetcher:    fetcher,
		calendarID: calendarID,
		metrics:    m,
		logger:     logger,
	}
}

func (s *BusySource) BusyIntervals(ctx context.Context, start, end time.Time) []BusyInterval {
	ctx, span := calendarTracer.Start(ctx, "calendar.busy_intervals")
	defer span.End()

	status := s.tokens.Status(ctx)
	span.SetAttributes(attribute.String("calendar.integration_status", string(status)))
	switch status {
	case StatusUnconfigured:
		s.metrics.ObserveBusySource("unconfigured")
		s.logger.Debug("calendar not configured, treating all slots as free")
		return nil
	case StatusUnauthorized:
		s.metrics.ObserveBusySource("unauthorized")
		s.logger.Debug("calendar not authorized, treating all slots as free")
		return nil
	}

	token, err := s.tokens.RefreshIfExpired(ctx)
	if err != nil {
		s.metrics.ObserveBusySource("refresh_failed")
		span.RecordError(err)
		s.logger.Warn("calendar token refresh failed, treating all slots as free", "error", err)
		return nil
	}

	busy, err := s.fetcher.FetchBusy(ctx, token, s.calendarID, start, end)
	if err != nil {
		s.metrics.ObserveBusySource("query_failed")
		span.RecordError(err)
		s.logger.Error("calendar busy query failed, treating all slots as free",
			"error", err,
			"calendar_id", s.calendarID,
			"start", start,
			"end", end,
		)
		return nil
	}

	s.metrics.ObserveBusySource("ready")
	span.SetAttributes(attribute.Int("calendar.busy_intervals", len(busy)))
	return busy
}
