package identity

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// UserStore is the only component allowed to read or write the persisted
// user record. Implementations must be safe for concurrent use.
type UserStore interface {
	// FindByID returns ErrUserNotFound when no record exists.
	FindByID(ctx context.Context, id int64) (*User, error)
	// Update applies patch in a single write and returns the post-write record.
	Update(ctx context.Context, id int64, patch UserPatch) (*User, error)
}

// UserFinder resolves users by email, used by sign-in gate policies
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// AccountLinker persists a sanitized provider account for a user
type AccountLinker interface {
	Link(ctx context.Context, userID int64, account map[string]any) error
}

// Config holds reconciliation options
type Config interface {
	GetTrustedProviders() map[string]IdentityProvider
	GetLastSignedInInterval() time.Duration
	GetDisableSignup() bool
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] IDENTITY "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] IDENTITY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] IDENTITY "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] IDENTITY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}
