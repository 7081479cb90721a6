package identity

import (
	"strings"
	"time"
)

// State is the completeness of a token at the start of a reconcile call
type State int

const (
	// StateIncomplete tokens miss an email or a verification time
	StateIncomplete State = iota
	// StateStaleVerification tokens are complete but due for a store re-sync
	StateStaleVerification
	// StateFresh tokens need no store access
	StateFresh
)

func (s State) String() string {
	switch s {
	case StateIncomplete:
		return "incomplete"
	case StateStaleVerification:
		return "stale_verification"
	case StateFresh:
		return "fresh"
	default:
		return "unknown"
	}
}

// Classify computes the token state once per reconcile call
func Classify(tok *Token, now time.Time, interval time.Duration) State {
	if tok == nil || tok.Email == "" || tok.EmailVerified == nil {
		return StateIncomplete
	}

	if LastSignedInDue(tok.LastSignedIn, now, interval) {
		return StateStaleVerification
	}

	return StateFresh
}

// LastSignedInDue reports whether last is unset or at least interval old
func LastSignedInDue(last *time.Time, now time.Time, interval time.Duration) bool {
	if last == nil {
		return true
	}
	return IsOutsideThresholdPeriod(*last, now, interval)
}

// mergeProfile layers the sign-in profile over the prior token. A profile
// never clears a verification time already on the token.
func mergeProfile(tok *Token, profile *Profile) *Token {
	merged := tok.Clone()
	if merged == nil {
		merged = &Token{}
	}

	if profile == nil {
		return merged
	}

	if profile.ID != "" {
		merged.ID = profile.ID
	}
	if profile.Name != "" {
		merged.Name = profile.Name
	}
	if profile.Email != "" {
		merged.Email = profile.Email
	}
	if profile.EmailVerified != nil {
		merged.EmailVerified = cloneTime(profile.EmailVerified)
	}

	return merged
}

// planFirstTouch grants verification to records that have none yet
func planFirstTouch(record *User, now time.Time) (UserPatch, bool) {
	if record == nil || record.EmailVerified != nil {
		return UserPatch{}, false
	}
	return UserPatch{EmailVerified: timePtr(now)}, true
}

// fillFromRecord copies id, name, email and emailVerified from record
func fillFromRecord(tok *Token, record *User) *Token {
	if record == nil {
		return tok
	}

	out := tok.Clone()
	out.ID = formatUserID(record.ID)
	out.Name = record.Name
	out.Email = record.Email
	if record.EmailVerified != nil {
		out.EmailVerified = cloneTime(record.EmailVerified)
	}
	return out
}

// planLastSignedIn stamps lastSignedIn when the throttle window elapsed
func planLastSignedIn(tok *Token, now time.Time, interval time.Duration) (UserPatch, bool) {
	if tok == nil || tok.ID == "" {
		return UserPatch{}, false
	}

	if !LastSignedInDue(tok.LastSignedIn, now, interval) {
		return UserPatch{}, false
	}

	return UserPatch{LastSignedIn: timePtr(now)}, true
}

// syncVerification copies the store's verification onto tok. A nil store
// value is ignored so verification never regresses.
func syncVerification(tok *Token, record *User) *Token {
	if tok == nil || record == nil || record.EmailVerified == nil {
		return tok
	}
	tok.EmailVerified = cloneTime(record.EmailVerified)
	return tok
}

// planProviderOverride decides whether a trusted provider sign-in forces
// the verification time, and which provider tag to persist. A provider that
// explicitly reports the email as unverified gets no override.
func planProviderOverride(
	trigger Trigger,
	account Assertion,
	profile *Profile,
	trusted map[string]IdentityProvider,
	now time.Time,
) (UserPatch, bool) {
	if !trigger.IsSignIn() {
		return UserPatch{}, false
	}

	provider := trigger.ProviderName
	if account != nil && account.Provider() != "" {
		provider = account.Provider()
	}

	tag, ok := trusted[strings.ToLower(provider)]
	if !ok {
		return UserPatch{}, false
	}

	// missing evidence counts as asserted, an explicit false does not
	if account != nil && account.VerificationEvidence().Refuted() {
		return UserPatch{}, false
	}

	verifiedAt := now
	if profile != nil && profile.EmailVerified != nil {
		verifiedAt = *profile.EmailVerified
	}
	if account != nil {
		if ev := account.VerificationEvidence(); ev.VerifiedAt != nil {
			verifiedAt = *ev.VerifiedAt
		}
	}

	return UserPatch{
		EmailVerified:    timePtr(verifiedAt),
		IdentityProvider: &tag,
	}, true
}
