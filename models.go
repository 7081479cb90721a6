package identity

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// IdentityProvider tags how a user account authenticates
type IdentityProvider string

const (
	// IdentityProviderLocal is a first party account
	IdentityProviderLocal IdentityProvider = "LOCAL"
	// IdentityProviderGoogle is a Google federated account
	IdentityProviderGoogle IdentityProvider = "GOOGLE"
	// IdentityProviderOIDC is a generic OpenID Connect account
	IdentityProviderOIDC IdentityProvider = "OIDC"
)

// ParseIdentityProvider returns the provider tag matching value
func ParseIdentityProvider(value string) (IdentityProvider, bool) {
	switch IdentityProvider(strings.ToUpper(strings.TrimSpace(value))) {
	case IdentityProviderLocal:
		return IdentityProviderLocal, true
	case IdentityProviderGoogle:
		return IdentityProviderGoogle, true
	case IdentityProviderOIDC:
		return IdentityProviderOIDC, true
	default:
		return "", false
	}
}

// User is the persisted user record
type User struct {
	bun.BaseModel    `bun:"table:users,alias:usr"`
	ID               int64            `bun:"id,pk,autoincrement" json:"id"`
	Name             string           `bun:"name" json:"name,omitempty"`
	Email            string           `bun:"email,notnull,unique" json:"email"`
	EmailVerified    *time.Time       `bun:"email_verified,nullzero" json:"emailVerified"`
	LastSignedIn     *time.Time       `bun:"last_signed_in,nullzero" json:"lastSignedIn"`
	IdentityProvider IdentityProvider `bun:"identity_provider,notnull,nullzero,default:'LOCAL'" json:"identityProvider"`
	CreatedAt        *time.Time       `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt,omitempty"`
	UpdatedAt        *time.Time       `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt,omitempty"`
}

// IsEmailVerified reports whether a verification timestamp is recorded
func (u *User) IsEmailVerified() bool {
	return u != nil && u.EmailVerified != nil
}

// UserPatch lists the user fields this package is allowed to change.
// Nil fields are left untouched.
type UserPatch struct {
	EmailVerified    *time.Time
	LastSignedIn     *time.Time
	IdentityProvider *IdentityProvider
}

// IsEmpty reports whether the patch carries no changes
func (p UserPatch) IsEmpty() bool {
	return p.EmailVerified == nil && p.LastSignedIn == nil && p.IdentityProvider == nil
}

// Columns returns the column names touched by the patch
func (p UserPatch) Columns() []string {
	cols := make([]string, 0, 3)
	if p.EmailVerified != nil {
		cols = append(cols, "email_verified")
	}
	if p.LastSignedIn != nil {
		cols = append(cols, "last_signed_in")
	}
	if p.IdentityProvider != nil {
		cols = append(cols, "identity_provider")
	}
	return cols
}

// Apply copies the patched values onto user
func (p UserPatch) Apply(user *User) *User {
	if user == nil {
		return nil
	}
	if p.EmailVerified != nil {
		t := *p.EmailVerified
		user.EmailVerified = &t
	}
	if p.LastSignedIn != nil {
		t := *p.LastSignedIn
		user.LastSignedIn = &t
	}
	if p.IdentityProvider != nil {
		user.IdentityProvider = *p.IdentityProvider
	}
	return user
}
