package codec

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-identity"
)

// Claims is the JWT payload carrying an identity token.
type Claims struct {
	jwt.RegisteredClaims
	UID           string         `json:"id,omitempty"`
	Name          string         `json:"name,omitempty"`
	Email         string         `json:"email,omitempty"`
	EmailVerified *time.Time     `json:"emailVerified"`
	LastSignedIn  *time.Time     `json:"lastSignedIn"`
	Extra         map[string]any `json:"extra,omitempty"`
}

// NewClaims copies tok into claims. The subject mirrors the user id.
func NewClaims(tok *identity.Token) *Claims {
	if tok == nil {
		return &Claims{}
	}

	subject := tok.ID
	if subject == "" {
		subject = tok.Subject
	}

	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: subject,
		},
		UID:           tok.ID,
		Name:          tok.Name,
		Email:         tok.Email,
		EmailVerified: tok.EmailVerified,
		LastSignedIn:  tok.LastSignedIn,
		Extra:         tok.Extra,
	}
}

// Token converts the claims back to an identity token.
func (c *Claims) Token() *identity.Token {
	if c == nil {
		return nil
	}

	tok := &identity.Token{
		Subject:       c.Subject,
		ID:            c.UID,
		Name:          c.Name,
		Email:         c.Email,
		EmailVerified: c.EmailVerified,
		LastSignedIn:  c.LastSignedIn,
		Extra:         c.Extra,
	}
	if tok.ID == "" {
		tok.ID = c.Subject
	}
	return tok.Clone()
}

// Expires returns the expiration time, or zero when unset.
func (c *Claims) Expires() time.Time {
	if c == nil || c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
