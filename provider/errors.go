package provider

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/oauth2"
)

const (
	TextCodeInvalidConfig     = "provider_invalid_config"
	TextCodeDiscoveryFailed   = "provider_discovery_failed"
	TextCodeTokenExchangeFail = "provider_token_exchange_failed"
	TextCodeIDTokenInvalid    = "provider_id_token_invalid"
	TextCodeUserInfoFail      = "provider_user_info_failed"
)

// ErrInvalidConfig is returned when a provider is missing required settings.
var ErrInvalidConfig = goerrors.New("invalid provider configuration", goerrors.CategoryBadInput).
	WithTextCode(TextCodeInvalidConfig).
	WithCode(goerrors.CodeBadRequest)

// ErrDiscoveryFailed is returned when the issuer metadata cannot be loaded.
var ErrDiscoveryFailed = goerrors.New("provider discovery failed", goerrors.CategoryInternal).
	WithTextCode(TextCodeDiscoveryFailed).
	WithCode(goerrors.CodeInternal)

// ErrTokenExchangeFailed is returned when a provider token exchange fails.
var ErrTokenExchangeFailed = goerrors.New("token exchange failed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExchangeFail).
	WithCode(goerrors.CodeUnauthorized)

// ErrIDTokenInvalid is returned when the id_token is missing or fails verification.
var ErrIDTokenInvalid = goerrors.New("id token invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeIDTokenInvalid).
	WithCode(goerrors.CodeUnauthorized)

// ErrUserInfoFailed is returned when fetching user info fails.
var ErrUserInfoFailed = goerrors.New("failed to fetch user info", goerrors.CategoryAuth).
	WithTextCode(TextCodeUserInfoFail).
	WithCode(goerrors.CodeUnauthorized)

// wrapProviderError clones base and attaches the provider, the operation and
// whatever the OAuth layer reported about the failure.
func wrapProviderError(base *goerrors.Error, provider, operation string, err error) error {
	if base == nil {
		return err
	}

	meta := map[string]any{}
	if provider != "" {
		meta["provider"] = provider
	}
	if operation != "" {
		meta["operation"] = operation
	}

	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr != nil {
		if rerr.Response != nil {
			meta["status"] = rerr.Response.StatusCode
		}
		if rerr.ErrorCode != "" {
			meta["code"] = rerr.ErrorCode
		}
		if rerr.ErrorDescription != "" {
			meta["description"] = rerr.ErrorDescription
		}
	} else if err != nil {
		meta["error"] = err.Error()
	}

	clone := base.Clone()
	if clone == nil {
		clone = base
	}
	if err != nil {
		clone.Source = err
	}
	if len(meta) > 0 {
		clone.WithMetadata(meta)
	}

	return clone
}
