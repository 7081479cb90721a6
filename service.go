package identity

import (
	"context"
	"time"
)

// SignInEvent is what the surrounding framework passes on sign-in/sign-up
type SignInEvent struct {
	Event   Event
	Token   *Token
	Profile Profile
	// Account is the raw token exchange response, including "provider".
	// Nil for sign-ins that do not go through a federation provider.
	Account map[string]any
	// NewAccount marks the first time Account is linked to the user
	NewAccount bool
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithSignInGate replaces the default AllowAll gate.
func WithSignInGate(gate SignInGate) ServiceOption {
	return func(s *Service) {
		if gate != nil {
			s.gate = gate
		}
	}
}

// WithAccountLinker sets where newly linked accounts are persisted.
func WithAccountLinker(linker AccountLinker) ServiceOption {
	return func(s *Service) {
		s.linker = linker
	}
}

// WithServiceLogger overrides the logger.
func WithServiceLogger(logger Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithServiceActivitySink sets the activity sink for gate and linking events.
func WithServiceActivitySink(sink ActivitySink) ServiceOption {
	return func(s *Service) {
		s.activitySink = normalizeActivitySink(sink)
	}
}

// WithServiceClock injects the clock used to stamp activity events.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service runs the sign-in gate, account sanitizer, reconciler and session
// projector in the order the auth flow expects.
type Service struct {
	reconciler   *Reconciler
	gate         SignInGate
	linker       AccountLinker
	logger       Logger
	activitySink ActivitySink
	now          func() time.Time
}

// NewService creates a new service around reconciler.
func NewService(reconciler *Reconciler, opts ...ServiceOption) *Service {
	s := &Service{
		reconciler:   reconciler,
		gate:         AllowAll(),
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		now:          time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// SignIn handles sign-in and sign-up events. A gate denial returns
// ErrSignInDenied.
func (s *Service) SignIn(ctx context.Context, evt SignInEvent) (*Token, error) {
	allowed, err := s.gate.Allow(ctx, evt.Profile)
	if err != nil {
		return nil, err
	}

	if !allowed {
		s.logger.Info("sign-in denied for %q", evt.Profile.Email)
		recordActivity(ctx, s.activitySink, s.logger, s.now(), ActivityEvent{
			EventType: ActivityEventSignInDenied,
			UserID:    evt.Profile.ID,
			Trigger:   evt.Event,
		})
		return nil, ErrSignInDenied
	}

	var account Assertion
	if evt.Account != nil {
		account, err = s.assertAccount(ctx, evt)
		if err != nil {
			return nil, err
		}
	}

	event := evt.Event
	if event == "" {
		event = EventSignIn
	}

	trigger := Trigger{Event: event}
	if account != nil {
		trigger.ProviderName = account.Provider()
	}

	tok := evt.Token
	if tok == nil {
		tok = &Token{}
	}

	profile := evt.Profile
	return s.reconciler.Reconcile(ctx, ReconcileInput{
		Token:   tok,
		Profile: &profile,
		Account: account,
		Trigger: trigger,
	})
}

// SignUp is SignIn with the signUp trigger.
func (s *Service) SignUp(ctx context.Context, evt SignInEvent) (*Token, error) {
	evt.Event = EventSignUp
	return s.SignIn(ctx, evt)
}

// Refresh reconciles tok for an authenticated request.
func (s *Service) Refresh(ctx context.Context, tok *Token) (*Token, error) {
	return s.reconciler.Reconcile(ctx, ReconcileInput{
		Token:   tok,
		Trigger: Trigger{Event: EventRefresh},
	})
}

// Session projects tok onto prior.
func (s *Service) Session(tok *Token, prior *Session) (*Session, error) {
	return ProjectSession(tok, prior)
}

func (s *Service) assertAccount(ctx context.Context, evt SignInEvent) (Assertion, error) {
	if !evt.NewAccount {
		return NewAssertion(SanitizeAccount(evt.Account)), nil
	}

	if s.linker == nil {
		account := NewAssertion(SanitizeAccount(evt.Account))
		s.logger.Warn("new %s account for user %q not linked: no account linker configured", account.Provider(), evt.Profile.ID)
		return account, nil
	}

	userID, err := (&Token{ID: evt.Profile.ID}).UserID()
	if err != nil {
		return nil, err
	}

	account, err := LinkAccount(ctx, s.linker, userID, evt.Account)
	if err != nil {
		return nil, err
	}

	recordActivity(ctx, s.activitySink, s.logger, s.now(), ActivityEvent{
		EventType: ActivityEventAccountLinked,
		UserID:    evt.Profile.ID,
		Trigger:   evt.Event,
		Provider:  account.Provider(),
	})

	return account, nil
}
