package calendar

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Akseler/landing/internal/observability/metrics"
	"github.com/Akseler/landing/pkg/logging"
)

var calendarTracer = otel.Tracer("landing.internal.calendar")

// BusyProvider yields busy intervals for an absolute range. Implementations
// must not fail; an unavailable calendar yields no intervals.
type BusyProvider interface {
	BusyIntervals(ctx context.Context, start, end time.Time) []BusyInterval
}

// ResolveAvailability marks every slot available or not. A slot is busy when
// any interval overlaps [slotStart, slotStart+1h) with half-open semantics,
// and past when it starts at or before now. Order is preserved.
func ResolveAvailability(days []DayAvailability, busy []BusyInterval, now time.Time) []DayAvailability {
	out := make([]DayAvailability, len(days))
	for i, day := range days {
		slots := make([]TimeSlot, len(day.Slots))
		hasAvailable := false
		for j, slot := range day.Slots {
			slotStart := slot.start
			slotEnd := slotStart.Add(SlotDuration)

			past := !slotStart.After(now)
			available := !past && !overlapsAny(busy, slotStart, slotEnd)

			slots[j] = TimeSlot{
				Datetime:  slot.Datetime,
				Available: available,
				start:     slotStart,
			}
			hasAvailable = hasAvailable || available
		}
		out[i] = DayAvailability{
			Date:              day.Date,
			DayName:           day.DayName,
			Slots:             slots,
			HasAvailableSlots: hasAvailable,
		}
	}
	return out
}

func overlapsAny(busy []BusyInterval, slotStart, slotEnd time.Time) bool {
	for _, b := range busy {
		if b.Start.Before(slotEnd) && b.End.After(slotStart) {
			return true
		}
	}
	return false
}

// AvailabilityService combines the slot grid with calendar busy time.
type AvailabilityService struct {
	busy    BusyProvider
	clock   Clock
	metrics *metrics.CalendarMetrics
	logger  *logging.Logger
}

// NewAvailabilityService constructs the service. A nil clock uses the system clock.
func NewAvailabilityService(busy BusyProvider, clock Clock, m *metrics.CalendarMetrics, logger *logging.Logger) *AvailabilityService {
	if busy == nil {
		panic("calendar: busy provider required")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AvailabilityService{busy: busy, clock: clock, metrics: m, logger: logger}
}

// Now returns the service clock's current instant.
func (s *AvailabilityService) Now() time.Time {
	return s.clock.Now()
}

// Availability computes the availability view for [start, end). Every call
// performs its own busy fetch.
func (s *AvailabilityService) Availability(ctx context.Context, start, end time.Time) []DayAvailability {
	ctx, span := calendarTracer.Start(ctx, "calendar.availability")
	defer span.End()

	days := GenerateSlotGrid(start, end)
	span.SetAttributes(
		attribute.String("calendar.window_start", LocalDate(start).Format(DateFormat)),
		attribute.String("calendar.window_end", LocalDate(end).Format(DateFormat)),
		attribute.Int("calendar.days", len(days)),
	)
	if len(days) == 0 {
		s.metrics.ObserveAvailability(false)
		return days
	}

	busy := s.busy.BusyIntervals(ctx, LocalDate(start), LocalDate(end))
	resolved := ResolveAvailability(days, busy, s.clock.Now())

	anyOpen := false
	for _, d := range resolved {
		if d.HasAvailableSlots {
			anyOpen = true
			break
		}
	}
	s.metrics.ObserveAvailability(anyOpen)
	s.logger.Debug("availability computed",
		"days", len(resolved),
		"busy_intervals", len(busy),
		"has_open_slots", anyOpen,
	)
	return resolved
}

// ParseWindow resolves the optional start/end query values. Missing or
// malformed bounds fall back to DefaultWindow.
func (s *AvailabilityService) ParseWindow(rawStart, rawEnd string) (start, end time.Time) {
	start, end = DefaultWindow(s.clock.Now())
	if v := strings.TrimSpace(rawStart); v != "" {
		if parsed, err := parseDateParam(v); err == nil {
			start = parsed
		} else {
			s.logger.Warn("invalid availability start, using default", "value", v, "error", err)
		}
	}
	if v := strings.TrimSpace(rawEnd); v != "" {
		if parsed, err := parseDateParam(v); err == nil {
			end = parsed
		} else {
			s.logger.Warn("invalid availability end, using default", "value", v, "error", err)
		}
	}
	return start, end
}

func parseDateParam(v string) (time.Time, error) {
	if t, err := time.ParseInLocation(DateFormat, v, ReferenceLocation()); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, err
	}
	return LocalDate(t), nil
}
