package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Akseler/landing/internal/observability/metrics"
	"github.com/Akseler/landing/pkg/logging"
)

// DefaultWebhookURL is used when BOOKING_WEBHOOK_URL is unset.
const DefaultWebhookURL = "https://services.leadconnectorhq.com/hooks/akseler/webhook-trigger/landing-booking"

const (
	defaultTimeout  = 10 * time.Second
	maxErrorBodyLen = 300
)

var crmTracer = otel.Tracer("landing.internal.crm")

// WebhookNotifier posts lead payloads to the CRM. Each call is a single
// attempt; failures come back in the Result.
type WebhookNotifier struct {
	httpClient *http.Client
	url        string
	loc        *time.Location
	metrics    *metrics.WebhookMetrics
	logger     *logging.Logger
}

// NewWebhookNotifier constructs a notifier. loc is the zone appointment
// times are rendered in.
func NewWebhookNotifier(url string, timeout time.Duration, loc *time.Location, m *metrics.WebhookMetrics, logger *logging.Logger) *WebhookNotifier {
	if strings.TrimSpace(url) == "" {
		url = DefaultWebhookURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookNotifier{
		httpClient: &http.Client{Timeout: timeout},
		url:        strings.TrimSpace(url),
		loc:        loc,
		metrics:    m,
		logger:     logger,
	}
}

// NotifyBooking delivers a booked slot.
func (n *WebhookNotifier) NotifyBooking(ctx context.Context, c Contact, at time.Time) Result {
	return n.deliver(ctx, BuildBookingPayload(c, at, n.loc))
}

// NotifyContact delivers a contact request.
func (n *WebhookNotifier) NotifyContact(ctx context.Context, c Contact) Result {
	return n.deliver(ctx, BuildContactPayload(c))
}

func (n *WebhookNotifier) deliver(ctx context.Context, payload Payload) Result {
	ctx, span := crmTracer.Start(ctx, "crm.webhook.deliver", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("crm.event_type", payload.EventType))

	started := time.Now()
	res := n.post(ctx, payload)
	n.metrics.ObserveDelivery(payload.EventType, res.Success, time.Since(started).Seconds())

	if !res.Success {
		span.SetStatus(codes.Error, res.Error)
		n.logger.Error("crm webhook delivery failed",
			"event_type", payload.EventType,
			"email", MaskEmail(payload.Email),
			"contact", ContactFingerprint(payload.Email, payload.Phone),
			"error", res.Error,
		)
		return res
	}
	n.logger.Info("crm webhook delivered",
		"event_type", payload.EventType,
		"email", MaskEmail(payload.Email),
		"contact", ContactFingerprint(payload.Email, payload.Phone),
	)
	return res
}

func (n *WebhookNotifier) post(ctx context.Context, payload Payload) Result {
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Error: fmt.Sprintf("marshal payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return Result{Error: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return Result{Error: fmt.Sprintf("http request: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		msg := strings.TrimSpace(string(respBody))
		return Result{Error: fmt.Sprintf("webhook returned %d: %s", resp.StatusCode, msg)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return Result{Success: true}
}
