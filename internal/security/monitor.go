package security

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/solrent/solrent/internal/metrics"
	"github.com/solrent/solrent/internal/validation"
)

// Event types recorded by the monitor.
const (
	EventAuthFailure       = "auth_failure"
	EventValidationError   = "validation_error"
	EventRateLimitExceeded = "rate_limit_exceeded"
	EventSuspiciousInput   = "suspicious_input"
)

// Severity levels.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Event is one append-only security record. Entries are never mutated after
// insertion.
type Event struct {
	Type      string         `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	UserID    string         `json:"user_id,omitempty"`
}

// DefaultEventCapacity bounds the in-memory event buffer.
const DefaultEventCapacity = 100

// Monitor keeps the most recent security events in a fixed-capacity ring
// buffer and dual-writes each one to slog. One Monitor is constructed per
// process and injected into the lifecycle services; it is safe for
// concurrent use.
type Monitor struct {
	mu       sync.Mutex
	logger   *slog.Logger
	now      func() time.Time
	buf      []Event
	head     int // index of the oldest entry
	count    int
	capacity int
}

// NewMonitor creates a Monitor with the default capacity of 100 events.
func NewMonitor(logger *slog.Logger) *Monitor {
	return NewMonitorWithCapacity(logger, DefaultEventCapacity)
}

// NewMonitorWithCapacity creates a Monitor holding at most capacity events,
// evicting the oldest once full.
func NewMonitorWithCapacity(logger *slog.Logger, capacity int) *Monitor {
	if capacity <= 0 {
		capacity = DefaultEventCapacity
	}
	return &Monitor{
		logger:   logger,
		now:      time.Now,
		buf:      make([]Event, capacity),
		capacity: capacity,
	}
}

// SetClock replaces the monitor's clock. Test hook.
func (m *Monitor) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Record appends an event stamped with the current time and the acting
// user's id ("" when unauthenticated). Overwrites the oldest entry when the
// buffer is full.
func (m *Monitor) Record(eventType, severity, message, userID string, metadata map[string]any) {
	m.mu.Lock()
	event := Event{
		Type:      eventType,
		Severity:  severity,
		Message:   message,
		Metadata:  metadata,
		Timestamp: m.now(),
		UserID:    userID,
	}

	if m.count < m.capacity {
		m.buf[(m.head+m.count)%m.capacity] = event
		m.count++
	} else {
		m.buf[m.head] = event
		m.head = (m.head + 1) % m.capacity
	}
	m.mu.Unlock()

	metrics.SecurityEvents.WithLabelValues(eventType, severity).Inc()

	attrs := []any{
		slog.String("event_type", eventType),
		slog.String("severity", severity),
		slog.Any("metadata", metadata),
	}
	if userID != "" {
		attrs = append(attrs, slog.String("user_id", userID))
	}
	if severity == SeverityHigh {
		m.logger.Warn(message, attrs...)
	} else {
		m.logger.Info(message, attrs...)
	}
}

// Events returns events oldest-to-newest. A positive limit returns only the
// most recent limit events, still in insertion order.
func (m *Monitor) Events(limit int) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Event, 0, m.count)
	for i := 0; i < m.count; i++ {
		out = append(out, m.buf[(m.head+i)%m.capacity])
	}
	return tail(out, limit)
}

// EventsByType filters by event type, then applies the same limit rule as
// Events.
func (m *Monitor) EventsByType(eventType string, limit int) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Event, 0, m.count)
	for i := 0; i < m.count; i++ {
		e := m.buf[(m.head+i)%m.capacity]
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return tail(out, limit)
}

func tail(events []Event, limit int) []Event {
	if limit > 0 && len(events) > limit {
		return events[len(events)-limit:]
	}
	return events
}

// LogAuthFailure records a high-severity authentication failure.
func (m *Monitor) LogAuthFailure(reason, userID string, metadata map[string]any) {
	m.Record(EventAuthFailure, SeverityHigh, "authentication failure: "+reason, userID, metadata)
}

// LogValidationError records a rejected field with enough metadata to spot
// probing without storing the raw value.
func (m *Monitor) LogValidationError(field, errMsg, userID, value string) {
	m.Record(EventValidationError, SeverityMedium, "validation error in "+field+": "+errMsg, userID, map[string]any{
		"field":       field,
		"error":       errMsg,
		"hasValue":    value != "",
		"valueLength": validation.UTF16Length(value),
	})
}

// LogRateLimitExceeded records a denied attempt against resource.
func (m *Monitor) LogRateLimitExceeded(resource, userID string, attempts int) {
	m.Record(EventRateLimitExceeded, SeverityHigh, "rate limit exceeded for "+resource, userID, map[string]any{
		"resource": resource,
		"attempts": attempts,
	})
}

// LogSuspiciousInput records input that sanitized dirty or was unusually
// long. The raw input is summarized, never stored.
func (m *Monitor) LogSuspiciousInput(field, reason, userID, input string) {
	lower := strings.ToLower(input)
	m.Record(EventSuspiciousInput, SeverityMedium, "suspicious input detected in "+field+": "+reason, userID, map[string]any{
		"field":              field,
		"reason":             reason,
		"inputLength":        validation.UTF16Length(input),
		"containsScript":     strings.Contains(lower, "script"),
		"containsJavascript": strings.Contains(lower, "javascript:"),
	})
}
