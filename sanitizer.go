package identity

import (
	"context"
	"fmt"
)

// Protocol housekeeping fields some providers (Keycloak) add to their token
// exchange response. The accounts table does not model them.
const (
	AccountFieldNotBeforePolicy  = "not-before-policy"
	AccountFieldRefreshExpiresIn = "refresh_expires_in"
)

var excludedAccountFields = []string{
	AccountFieldNotBeforePolicy,
	AccountFieldRefreshExpiresIn,
}

// SanitizeAccount returns a copy of account without protocol housekeeping
// fields. Nothing is renamed or validated.
func SanitizeAccount(account map[string]any) map[string]any {
	if account == nil {
		return nil
	}

	out := make(map[string]any, len(account))
	for k, v := range account {
		out[k] = v
	}

	for _, key := range excludedAccountFields {
		delete(out, key)
	}

	return out
}

// LinkAccount sanitizes account, hands it to linker, and returns the typed
// assertion for the reconciler. The raw mapping does not go further.
func LinkAccount(ctx context.Context, linker AccountLinker, userID int64, account map[string]any) (Assertion, error) {
	sanitized := SanitizeAccount(account)

	if linker != nil {
		if err := linker.Link(ctx, userID, sanitized); err != nil {
			return nil, fmt.Errorf("failed to link account for user %d: %w", userID, err)
		}
	}

	return NewAssertion(sanitized), nil
}
