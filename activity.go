package identity

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventEmailVerified    ActivityEventType = "identity.email.verified"
	ActivityEventProviderOverride ActivityEventType = "identity.provider.override"
	ActivityEventSignedIn         ActivityEventType = "identity.signed_in"
	ActivityEventSignInDenied     ActivityEventType = "identity.signin.denied"
	ActivityEventAccountLinked    ActivityEventType = "identity.account.linked"
)

// ActivityEvent captures audit-friendly information about a reconcile step.
type ActivityEvent struct {
	EventType  ActivityEventType
	TraceID    string
	UserID     string
	Trigger    Event
	Provider   string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

// recordActivity is best effort: sink errors are logged, never returned
func recordActivity(ctx context.Context, sink ActivitySink, logger Logger, now time.Time, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = now
	}

	if err := normalizeActivitySink(sink).Record(ctx, event); err != nil {
		normalizeLogger(logger).Warn("activity sink error for %s: %v", event.EventType, err)
	}
}
