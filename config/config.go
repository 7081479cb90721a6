package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-identity"
	"github.com/joho/godotenv"
)

const (
	EnvSecret                 = "IDENTITY_SECRET"
	EnvLegacySecret           = "NEXTAUTH_SECRET"
	EnvDatabaseDSN            = "IDENTITY_DATABASE_DSN"
	EnvDisableSignup          = "IDENTITY_DISABLE_SIGNUP"
	EnvTrustedProviders       = "IDENTITY_TRUSTED_PROVIDERS"
	EnvLastSignedInInterval   = "IDENTITY_LAST_SIGNED_IN_INTERVAL"
	EnvTokenTTL               = "IDENTITY_TOKEN_TTL"
	EnvIssuer                 = "IDENTITY_ISSUER"
	EnvOIDCClientID           = "NEXT_PRIVATE_OIDC_CLIENT_ID"
	EnvOIDCClientSecret       = "NEXT_PRIVATE_OIDC_CLIENT_SECRET"
	EnvOIDCWellKnown          = "NEXT_PRIVATE_OIDC_WELL_KNOWN"
	defaultTokenTTL           = 720 * time.Hour
	defaultTrustedProviderEnv = "google=GOOGLE"
)

// Config is the runtime configuration read from the environment.
type Config struct {
	Secret               string
	DatabaseDSN          string
	DisableSignup        bool
	TrustedProviders     map[string]identity.IdentityProvider
	LastSignedInInterval time.Duration
	TokenTTL             time.Duration
	Issuer               string
	OIDC                 OIDC
}

// OIDC holds the optional OpenID Connect provider settings.
type OIDC struct {
	ClientID     string
	ClientSecret string
	WellKnown    string
}

// Enabled reports whether a provider is configured.
func (o OIDC) Enabled() bool {
	return o.WellKnown != ""
}

var _ identity.Config = (*Config)(nil)

// Load reads .env files (missing files are ignored) and then the process
// environment. Values already set in the environment win.
func Load(files ...string) (*Config, error) {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := &Config{
		Secret:      get(EnvSecret),
		DatabaseDSN: get(EnvDatabaseDSN),
		Issuer:      get(EnvIssuer),
		OIDC: OIDC{
			ClientID:     get(EnvOIDCClientID),
			ClientSecret: get(EnvOIDCClientSecret),
			WellKnown:    get(EnvOIDCWellKnown),
		},
	}

	if cfg.Secret == "" {
		cfg.Secret = get(EnvLegacySecret)
	}

	if raw := get(EnvDisableSignup); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvDisableSignup, err)
		}
		cfg.DisableSignup = v
	}

	interval, err := identity.ParseThreshold(get(EnvLastSignedInInterval), identity.DefaultLastSignedInInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvLastSignedInInterval, err)
	}
	cfg.LastSignedInInterval = interval

	ttl, err := identity.ParseThreshold(get(EnvTokenTTL), defaultTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvTokenTTL, err)
	}
	cfg.TokenTTL = ttl

	trusted := get(EnvTrustedProviders)
	if trusted == "" {
		trusted = defaultTrustedProviderEnv
	}
	cfg.TrustedProviders, err = ParseTrustedProviders(trusted)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvTrustedProviders, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseTrustedProviders parses a comma separated provider=TAG list. The
// value "none" yields an empty table.
func ParseTrustedProviders(raw string) (map[string]identity.IdentityProvider, error) {
	out := map[string]identity.IdentityProvider{}
	if strings.EqualFold(strings.TrimSpace(raw), "none") {
		return out, nil
	}

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		name, tag, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("expected provider=TAG, got %q", pair)
		}

		provider, ok := identity.ParseIdentityProvider(tag)
		if !ok {
			return nil, fmt.Errorf("unknown identity provider %q", tag)
		}

		out[strings.ToLower(strings.TrimSpace(name))] = provider
	}

	return out, nil
}

// Validate fails fast on a missing secret or database DSN.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("%w: set %s", identity.ErrMissingSecret, EnvSecret)
	}

	return validation.ValidateStruct(c,
		validation.Field(&c.DatabaseDSN, validation.Required),
		validation.Field(&c.OIDC),
	)
}

// Validate requires client credentials once a provider is configured.
func (o OIDC) Validate() error {
	if !o.Enabled() {
		return nil
	}
	return validation.ValidateStruct(&o,
		validation.Field(&o.ClientID, validation.Required),
		validation.Field(&o.ClientSecret, validation.Required),
	)
}

func (c *Config) GetSecret() string {
	return c.Secret
}

func (c *Config) GetDatabaseDSN() string {
	return c.DatabaseDSN
}

func (c *Config) GetIssuer() string {
	return c.Issuer
}

func (c *Config) GetTokenTTL() time.Duration {
	return c.TokenTTL
}

func (c *Config) GetDisableSignup() bool {
	return c.DisableSignup
}

func (c *Config) GetTrustedProviders() map[string]identity.IdentityProvider {
	out := make(map[string]identity.IdentityProvider, len(c.TrustedProviders))
	for k, v := range c.TrustedProviders {
		out[k] = v
	}
	return out
}

func (c *Config) GetLastSignedInInterval() time.Duration {
	return c.LastSignedInInterval
}
