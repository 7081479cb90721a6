package identity

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Token is the identity token carried between requests. It is recomputed on
// every authenticated request and never stored server side.
type Token struct {
	Subject       string         `json:"sub,omitempty"`
	ID            string         `json:"id,omitempty"`
	Name          string         `json:"name,omitempty"`
	Email         string         `json:"email,omitempty"`
	EmailVerified *time.Time     `json:"emailVerified"`
	LastSignedIn  *time.Time     `json:"lastSignedIn"`
	Extra         map[string]any `json:"extra,omitempty"`
}

// UserID parses the numeric store key from ID, falling back to Subject.
// Non numeric values are reported as ErrMalformedSubject.
func (t *Token) UserID() (int64, error) {
	if t == nil {
		return 0, fmt.Errorf("%w: token is nil", ErrMalformedSubject)
	}

	raw := strings.TrimSpace(t.ID)
	if raw == "" {
		raw = strings.TrimSpace(t.Subject)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedSubject, raw)
	}
	return id, nil
}

// IsEmailVerified reports whether the token carries a verification time
func (t *Token) IsEmailVerified() bool {
	return t != nil && t.EmailVerified != nil
}

// Clone returns a deep copy of the token
func (t *Token) Clone() *Token {
	if t == nil {
		return nil
	}

	out := &Token{
		Subject:       t.Subject,
		ID:            t.ID,
		Name:          t.Name,
		Email:         t.Email,
		EmailVerified: cloneTime(t.EmailVerified),
		LastSignedIn:  cloneTime(t.LastSignedIn),
	}

	if len(t.Extra) > 0 {
		out.Extra = make(map[string]any, len(t.Extra))
		for k, v := range t.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Project returns a token holding only id, name, email, lastSignedIn and
// emailVerified. Anything else accumulated along the way is dropped.
func (t *Token) Project() *Token {
	if t == nil {
		return nil
	}
	return &Token{
		ID:            t.ID,
		Name:          t.Name,
		Email:         t.Email,
		LastSignedIn:  cloneTime(t.LastSignedIn),
		EmailVerified: cloneTime(t.EmailVerified),
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func formatUserID(id int64) string {
	return strconv.FormatInt(id, 10)
}
