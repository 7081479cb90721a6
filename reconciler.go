package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTrustedProviders maps the federation providers whose sign-in
// proves email ownership to the tag persisted on the user.
func DefaultTrustedProviders() map[string]IdentityProvider {
	return map[string]IdentityProvider{
		"google": IdentityProviderGoogle,
	}
}

// ReconcileInput carries everything a reconcile call needs
type ReconcileInput struct {
	Token   *Token
	Profile *Profile
	Account Assertion
	Trigger Trigger
}

// ReconcilerOption customizes reconciler construction.
type ReconcilerOption func(*Reconciler)

// WithReconcilerClock injects a custom clock (useful for tests).
func WithReconcilerClock(clock func() time.Time) ReconcilerOption {
	return func(r *Reconciler) {
		if clock != nil {
			r.now = clock
		}
	}
}

// WithReconcilerLogger overrides the logger.
func WithReconcilerLogger(logger Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithReconcilerActivitySink sets the ActivitySink used to publish reconcile events.
func WithReconcilerActivitySink(sink ActivitySink) ReconcilerOption {
	return func(r *Reconciler) {
		r.activitySink = normalizeActivitySink(sink)
	}
}

// WithTrustedProviders replaces the trusted provider table. Keys are
// matched case insensitively.
func WithTrustedProviders(providers map[string]IdentityProvider) ReconcilerOption {
	return func(r *Reconciler) {
		trusted := make(map[string]IdentityProvider, len(providers))
		for name, tag := range providers {
			trusted[strings.ToLower(strings.TrimSpace(name))] = tag
		}
		r.trusted = trusted
	}
}

// WithLastSignedInInterval sets how often lastSignedIn is persisted.
func WithLastSignedInInterval(interval time.Duration) ReconcilerOption {
	return func(r *Reconciler) {
		if interval > 0 {
			r.interval = interval
		}
	}
}

// WithReconcilerConfig applies trusted providers and the refresh interval
// from cfg.
func WithReconcilerConfig(cfg Config) ReconcilerOption {
	return func(r *Reconciler) {
		if cfg == nil {
			return
		}
		if providers := cfg.GetTrustedProviders(); providers != nil {
			WithTrustedProviders(providers)(r)
		}
		WithLastSignedInInterval(cfg.GetLastSignedInInterval())(r)
	}
}

// Reconciler computes the next identity token for an authentication event.
// It holds no per-request state and is safe for concurrent use.
type Reconciler struct {
	store        UserStore
	now          func() time.Time
	interval     time.Duration
	trusted      map[string]IdentityProvider
	logger       Logger
	activitySink ActivitySink
}

// NewReconciler returns a reconciler backed by store.
func NewReconciler(store UserStore, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		store:        store,
		now:          time.Now,
		interval:     DefaultLastSignedInInterval,
		trusted:      DefaultTrustedProviders(),
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	return r
}

// Reconcile runs, in order: fill-from-store, refresh last-signed-in,
// trusted provider override, projection. Store errors other than a missing
// record are returned to the caller; nothing is retried or rolled back.
func (r *Reconciler) Reconcile(ctx context.Context, in ReconcileInput) (*Token, error) {
	if in.Token == nil {
		return nil, ErrNilToken
	}

	now := r.now()
	traceID := uuid.NewString()

	tok := mergeProfile(in.Token, in.Profile)
	state := Classify(tok, now, r.interval)

	r.logger.Debug("reconcile trace=%s trigger=%s state=%s", traceID, in.Trigger.Event, state)

	if state == StateIncomplete {
		filled, found, err := r.fillFromStore(ctx, tok, now, traceID, in.Trigger)
		if err != nil {
			return nil, err
		}
		if !found {
			return in.Token, nil
		}
		tok = filled
	}

	if patch, ok := planLastSignedIn(tok, now, r.interval); ok {
		id, err := tok.UserID()
		if err != nil {
			return nil, err
		}

		updated, err := r.store.Update(ctx, id, patch)
		if err != nil {
			return nil, fmt.Errorf("failed to update last signed in for user %d: %w", id, err)
		}

		tok.LastSignedIn = cloneTime(patch.LastSignedIn)
		tok = syncVerification(tok, updated)

		r.record(ctx, now, ActivityEvent{
			EventType: ActivityEventSignedIn,
			TraceID:   traceID,
			UserID:    tok.ID,
			Trigger:   in.Trigger.Event,
		})
	}

	if patch, ok := planProviderOverride(in.Trigger, in.Account, in.Profile, r.trusted, now); ok {
		id, err := tok.UserID()
		if err != nil {
			return nil, err
		}

		if _, err := r.store.Update(ctx, id, patch); err != nil {
			return nil, fmt.Errorf("failed to apply provider override for user %d: %w", id, err)
		}

		tok.EmailVerified = cloneTime(patch.EmailVerified)

		r.logger.Info("trusted provider %s verified email for user %d", *patch.IdentityProvider, id)
		r.record(ctx, now, ActivityEvent{
			EventType: ActivityEventProviderOverride,
			TraceID:   traceID,
			UserID:    tok.ID,
			Trigger:   in.Trigger.Event,
			Provider:  string(*patch.IdentityProvider),
		})
	} else if in.Trigger.IsSignIn() && in.Account != nil && in.Account.VerificationEvidence().Refuted() {
		r.logger.Info("provider %s reported email unverified for user %s, no override", in.Account.Provider(), tok.ID)
	}

	return tok.Project(), nil
}

func (r *Reconciler) fillFromStore(ctx context.Context, tok *Token, now time.Time, traceID string, trigger Trigger) (*Token, bool, error) {
	id, err := tok.UserID()
	if err != nil {
		return nil, false, err
	}

	record, err := r.store.FindByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			r.logger.Warn("reconcile trace=%s user %d not found, keeping token", traceID, id)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to find user %d: %w", id, err)
	}

	if patch, ok := planFirstTouch(record, now); ok {
		record, err = r.store.Update(ctx, id, patch)
		if err != nil {
			return nil, false, fmt.Errorf("failed to grant email verification for user %d: %w", id, err)
		}

		r.logger.Info("granted email verification on first touch for user %d", id)
		r.record(ctx, now, ActivityEvent{
			EventType: ActivityEventEmailVerified,
			TraceID:   traceID,
			UserID:    formatUserID(id),
			Trigger:   trigger.Event,
		})
	}

	return fillFromRecord(tok, record), true, nil
}

func (r *Reconciler) record(ctx context.Context, now time.Time, event ActivityEvent) {
	recordActivity(ctx, r.activitySink, r.logger, now, event)
}
