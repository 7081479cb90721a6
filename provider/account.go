package provider

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"golang.org/x/oauth2"
)

// extraKeys are the token response fields copied onto the raw account when
// the provider returns them. Some of them are not persisted and are dropped
// by identity.SanitizeAccount before linking.
var extraKeys = []string{
	"id_token",
	"scope",
	"session_state",
	"not-before-policy",
	"refresh_expires_in",
}

// AccountInput identifies the provider account a token belongs to.
type AccountInput struct {
	Provider          string
	ProviderAccountID string
	Type              string
	// EmailVerified is the provider's own assertion, when it makes one
	EmailVerified *bool
}

// Validate checks the identifying fields.
func (a AccountInput) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Provider, validation.Required),
		validation.Field(&a.ProviderAccountID, validation.Required),
		validation.Field(&a.Type, validation.In("oauth", "oidc")),
	)
}

// AccountFromToken builds the raw account mapping handed to the sign-in
// flow from a code exchange result.
func AccountFromToken(in AccountInput, tok *oauth2.Token) (map[string]any, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	accountType := in.Type
	if accountType == "" {
		accountType = "oauth"
	}

	account := map[string]any{
		"provider":          strings.ToLower(in.Provider),
		"type":              accountType,
		"providerAccountId": in.ProviderAccountID,
	}

	if in.EmailVerified != nil {
		account["emailVerified"] = *in.EmailVerified
	}

	if tok == nil {
		return account, nil
	}

	if tok.AccessToken != "" {
		account["access_token"] = tok.AccessToken
	}
	if tok.RefreshToken != "" {
		account["refresh_token"] = tok.RefreshToken
	}
	if tok.TokenType != "" {
		account["token_type"] = tok.TokenType
	}
	if !tok.Expiry.IsZero() {
		account["expires_at"] = tok.Expiry.Unix()
	}

	for _, key := range extraKeys {
		if v := tok.Extra(key); v != nil {
			account[key] = v
		}
	}

	return account, nil
}

// ExpiresAt converts an expires_at value back to a time.
func ExpiresAt(account map[string]any) (time.Time, bool) {
	switch v := account["expires_at"].(type) {
	case int64:
		return time.Unix(v, 0), true
	case float64:
		return time.Unix(int64(v), 0), true
	case int:
		return time.Unix(int64(v), 0), true
	default:
		return time.Time{}, false
	}
}
