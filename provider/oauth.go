package provider

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/goliatone/go-identity"
	"golang.org/x/oauth2"
)

// GoogleIssuer is Google's OpenID Connect issuer.
const GoogleIssuer = "https://accounts.google.com"

const wellKnownPath = "/.well-known/openid-configuration"

// Config holds OAuth configuration for one provider.
type Config struct {
	Name         string
	Issuer       string
	ClientID     string
	ClientSecret string
	CallbackURL  string
	Scopes       []string

	HTTPClient *http.Client
}

// DefaultScopes returns the OpenID Connect scopes every provider needs.
func DefaultScopes() []string {
	return []string{oidc.ScopeOpenID, "email", "profile"}
}

// Provider runs the authorization code flow against an OpenID provider and
// verifies the id_token it returns.
type Provider struct {
	name       string
	oauth      *oauth2.Config
	oidc       *oidc.Provider
	verifier   *oidc.IDTokenVerifier
	httpClient *http.Client
}

// New discovers cfg.Issuer and returns a provider for it. Issuer may be the
// issuer URL or its well-known document URL.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.Name == "" || cfg.Issuer == "" || cfg.ClientID == "" {
		return nil, wrapProviderError(ErrInvalidConfig, cfg.Name, "configure", nil)
	}

	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes()
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	name := strings.ToLower(cfg.Name)

	// the key set keeps this context for later JWKS fetches
	discoveryCtx := oidc.ClientContext(context.WithoutCancel(ctx), client)

	op, err := oidc.NewProvider(discoveryCtx, issuerURL(cfg.Issuer))
	if err != nil {
		return nil, wrapProviderError(ErrDiscoveryFailed, name, "discovery", err)
	}

	return &Provider{
		name: name,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       cfg.Scopes,
			Endpoint:     op.Endpoint(),
		},
		oidc:       op,
		verifier:   op.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		httpClient: client,
	}, nil
}

// Google returns a provider for Google's issuer.
func Google(ctx context.Context, clientID, clientSecret, callbackURL string) (*Provider, error) {
	return New(ctx, Config{
		Name:         "google",
		Issuer:       GoogleIssuer,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		CallbackURL:  callbackURL,
	})
}

// OIDC returns a provider named name for a generic issuer, such as the one
// configured through NEXT_PRIVATE_OIDC_WELL_KNOWN.
func OIDC(ctx context.Context, name string, cfg Config, issuer string) (*Provider, error) {
	cfg.Name = name
	cfg.Issuer = issuer
	return New(ctx, cfg)
}

func issuerURL(raw string) string {
	return strings.TrimSuffix(strings.TrimSuffix(raw, "/"), wellKnownPath)
}

// Name returns the lower case provider name.
func (p *Provider) Name() string {
	return p.name
}

// AuthCodeURL returns the consent page URL for state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token.
func (p *Provider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := p.oauth.Exchange(p.clientContext(ctx), code)
	if err != nil {
		return nil, wrapProviderError(ErrTokenExchangeFailed, p.name, "exchange", err)
	}
	return tok, nil
}

// UserInfo is the identity a provider vouched for.
type UserInfo struct {
	Subject string
	Email   string
	Name    string
	// EmailVerified is nil when the provider made no statement
	EmailVerified *bool
}

type standardClaims struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	EmailVerified *bool  `json:"email_verified"`
}

// VerifyIDToken checks the id_token carried by tok and returns its claims.
func (p *Provider) VerifyIDToken(ctx context.Context, tok *oauth2.Token) (*UserInfo, error) {
	if tok == nil {
		return nil, wrapProviderError(ErrIDTokenInvalid, p.name, "verify", nil)
	}

	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return nil, wrapProviderError(ErrIDTokenInvalid, p.name, "verify", nil)
	}

	idToken, err := p.verifier.Verify(p.clientContext(ctx), raw)
	if err != nil {
		return nil, wrapProviderError(ErrIDTokenInvalid, p.name, "verify", err)
	}

	var claims standardClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, wrapProviderError(ErrIDTokenInvalid, p.name, "verify", err)
	}

	return &UserInfo{
		Subject:       idToken.Subject,
		Email:         claims.Email,
		Name:          claims.Name,
		EmailVerified: claims.EmailVerified,
	}, nil
}

// UserInfo fetches the profile of the token owner from the userinfo endpoint.
func (p *Provider) UserInfo(ctx context.Context, tok *oauth2.Token) (*UserInfo, error) {
	info, err := p.oidc.UserInfo(p.clientContext(ctx), oauth2.StaticTokenSource(tok))
	if err != nil {
		return nil, wrapProviderError(ErrUserInfoFailed, p.name, "user_info", err)
	}

	var claims standardClaims
	if err := info.Claims(&claims); err != nil {
		return nil, wrapProviderError(ErrUserInfoFailed, p.name, "user_info", err)
	}

	return &UserInfo{
		Subject:       info.Subject,
		Email:         info.Email,
		Name:          claims.Name,
		EmailVerified: claims.EmailVerified,
	}, nil
}

// Result is the outcome of a completed authorization code flow.
type Result struct {
	Info    *UserInfo
	Account map[string]any
}

// Complete exchanges code, verifies the id_token and fills missing profile
// fields from the userinfo endpoint. Userinfo answering for a different
// subject than the id_token is rejected.
func (p *Provider) Complete(ctx context.Context, code string) (*Result, error) {
	tok, err := p.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	info, err := p.VerifyIDToken(ctx, tok)
	if err != nil {
		return nil, err
	}

	if info.Email == "" || info.EmailVerified == nil {
		extra, err := p.UserInfo(ctx, tok)
		if err != nil {
			return nil, err
		}
		if extra.Subject != info.Subject {
			return nil, wrapProviderError(ErrUserInfoFailed, p.name, "user_info", nil)
		}
		mergeUserInfo(info, extra)
	}

	account, err := AccountFromToken(AccountInput{
		Provider:          p.name,
		ProviderAccountID: info.Subject,
		Type:              "oidc",
		EmailVerified:     info.EmailVerified,
	}, tok)
	if err != nil {
		return nil, wrapProviderError(ErrIDTokenInvalid, p.name, "account", err)
	}

	return &Result{Info: info, Account: account}, nil
}

func mergeUserInfo(dst, src *UserInfo) {
	if dst.Email == "" {
		dst.Email = src.Email
	}
	if dst.Name == "" {
		dst.Name = src.Name
	}
	if dst.EmailVerified == nil {
		dst.EmailVerified = src.EmailVerified
	}
}

// SignInEvent builds the sign-in event for user, the persisted record the
// provider account resolved to.
func (r *Result) SignInEvent(event identity.Event, user *identity.User, prior *identity.Token, newAccount bool) identity.SignInEvent {
	profile := identity.Profile{}
	if user != nil {
		profile.ID = strconv.FormatInt(user.ID, 10)
		profile.Name = user.Name
		profile.Email = user.Email
		profile.EmailVerified = user.EmailVerified
	}

	return identity.SignInEvent{
		Event:      event,
		Token:      prior,
		Profile:    profile,
		Account:    r.Account,
		NewAccount: newAccount,
	}
}

func (p *Provider) clientContext(ctx context.Context) context.Context {
	return oidc.ClientContext(ctx, p.httpClient)
}
