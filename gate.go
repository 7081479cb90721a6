package identity

import (
	"context"
	"fmt"
	"strings"
)

// SignInGate decides whether a sign-in may complete. A denial is a plain
// false; errors are reserved for lookups that could not be performed.
type SignInGate interface {
	Allow(ctx context.Context, profile Profile) (bool, error)
}

// SignInGateFunc adapts a function to the SignInGate interface.
type SignInGateFunc func(ctx context.Context, profile Profile) (bool, error)

// Allow implements SignInGate.
func (f SignInGateFunc) Allow(ctx context.Context, profile Profile) (bool, error) {
	if f == nil {
		return true, nil
	}
	return f(ctx, profile)
}

// AllowAll is the default gate
func AllowAll() SignInGate {
	return SignInGateFunc(func(context.Context, Profile) (bool, error) {
		return true, nil
	})
}

// ExistingAccountsOnly denies profiles that do not match a persisted user
// by email. Use it when self-service signup is disabled so federated
// providers cannot create accounts.
func ExistingAccountsOnly(finder UserFinder) SignInGate {
	return SignInGateFunc(func(ctx context.Context, profile Profile) (bool, error) {
		email := strings.TrimSpace(profile.Email)
		if email == "" || finder == nil {
			return false, nil
		}

		user, err := finder.FindByEmail(ctx, email)
		if err != nil {
			if IsNotFound(err) {
				return false, nil
			}
			return false, fmt.Errorf("failed to look up user for sign-in gate: %w", err)
		}

		return user != nil, nil
	})
}

// GateForConfig picks ExistingAccountsOnly when signup is disabled and
// AllowAll otherwise.
func GateForConfig(cfg Config, finder UserFinder) SignInGate {
	if cfg != nil && cfg.GetDisableSignup() {
		return ExistingAccountsOnly(finder)
	}
	return AllowAll()
}
