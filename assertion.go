package identity

import (
	"strconv"
	"strings"
	"time"
)

// Event names the authentication event that triggered a reconcile
type Event string

const (
	EventSignIn  Event = "signIn"
	EventSignUp  Event = "signUp"
	EventRefresh Event = "refresh"
	EventUpdate  Event = "update"
)

// Trigger is the metadata passed along with every reconcile call
type Trigger struct {
	Event        Event
	ProviderName string
}

// IsSignIn reports whether the trigger is a sign-in or sign-up
func (t Trigger) IsSignIn() bool {
	return t.Event == EventSignIn || t.Event == EventSignUp
}

// Profile is the user profile returned by the sign-in adapter
type Profile struct {
	ID            string
	Name          string
	Email         string
	EmailVerified *time.Time
}

// Evidence describes what a provider asserted about email ownership.
// Present is false when the payload carried no readable statement.
type Evidence struct {
	Present    bool
	Asserted   bool
	VerifiedAt *time.Time
}

// Refuted reports whether the provider explicitly said the email is not
// verified.
func (e Evidence) Refuted() bool {
	return e.Present && !e.Asserted
}

// Assertion is the typed view of an external account once it has crossed
// the sanitizer boundary.
type Assertion interface {
	Provider() string
	VerificationEvidence() Evidence
}

// ProviderAssertion is the default Assertion implementation
type ProviderAssertion struct {
	Name     string
	Evidence Evidence
}

var _ Assertion = ProviderAssertion{}

func (p ProviderAssertion) Provider() string {
	return p.Name
}

func (p ProviderAssertion) VerificationEvidence() Evidence {
	return p.Evidence
}

// verification keys accepted on raw provider payloads
var verificationKeys = []string{"emailVerified", "email_verified"}

// NewAssertion reads the provider name and verification evidence out of a
// sanitized account mapping.
func NewAssertion(account map[string]any) Assertion {
	out := ProviderAssertion{}
	if account == nil {
		return out
	}

	if p, ok := account["provider"].(string); ok {
		out.Name = strings.ToLower(strings.TrimSpace(p))
	}

	for _, key := range verificationKeys {
		if v, ok := account[key]; ok {
			out.Evidence = parseEvidence(v)
			break
		}
	}

	return out
}

func parseEvidence(v any) Evidence {
	switch val := v.(type) {
	case nil:
		return Evidence{}
	case bool:
		return Evidence{Present: true, Asserted: val}
	case time.Time:
		if val.IsZero() {
			return Evidence{}
		}
		return Evidence{Present: true, Asserted: true, VerifiedAt: timePtr(val)}
	case *time.Time:
		if val == nil || val.IsZero() {
			return Evidence{}
		}
		return Evidence{Present: true, Asserted: true, VerifiedAt: cloneTime(val)}
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return Evidence{}
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return Evidence{Present: true, Asserted: true, VerifiedAt: &t}
		}
		if b, err := strconv.ParseBool(s); err == nil {
			return Evidence{Present: true, Asserted: b}
		}
		return Evidence{}
	default:
		return Evidence{}
	}
}
