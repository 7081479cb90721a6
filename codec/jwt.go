package codec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-identity"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired is returned when a decoded token is past its expiry
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed is returned for tokens that fail parsing or signature checks
	ErrTokenMalformed = errors.New("token malformed")
)

// DefaultTTL matches the session lifetime of the sign-in flow
const DefaultTTL = 30 * 24 * time.Hour

// Option configures the JWT codec.
type Option func(*JWT)

// WithIssuer sets the iss claim and requires it on decode.
func WithIssuer(issuer string) Option {
	return func(j *JWT) {
		j.issuer = issuer
	}
}

// WithTTL sets the token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(j *JWT) {
		if ttl > 0 {
			j.ttl = ttl
		}
	}
}

// WithClock injects the clock used for iat and exp.
func WithClock(now func() time.Time) Option {
	return func(j *JWT) {
		if now != nil {
			j.now = now
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(logger identity.Logger) Option {
	return func(j *JWT) {
		if logger != nil {
			j.logger = logger
		}
	}
}

// JWT encodes identity tokens as HS256 signed JWTs.
type JWT struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	logger identity.Logger
}

// NewJWT returns a codec signing with secret. An empty secret is rejected
// with identity.ErrMissingSecret; there is no development fallback.
func NewJWT(secret string, opts ...Option) (*JWT, error) {
	if secret == "" {
		return nil, identity.ErrMissingSecret
	}

	j := &JWT{
		secret: []byte(secret),
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: nopLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(j)
		}
	}

	return j, nil
}

// Encode signs tok.
func (j *JWT) Encode(tok *identity.Token) (string, error) {
	if tok == nil {
		return "", identity.ErrNilToken
	}

	now := j.now()
	claims := NewClaims(tok)
	claims.Issuer = j.issuer
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(j.ttl))
	claims.ID = uuid.NewString()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}
	return signed, nil
}

// Decode verifies raw and returns the token it carries.
func (j *JWT) Decode(raw string) (*identity.Token, error) {
	claims, err := j.DecodeClaims(raw)
	if err != nil {
		return nil, err
	}
	return claims.Token(), nil
}

// DecodeClaims verifies raw and returns its claims.
func (j *JWT) DecodeClaims(raw string) (*Claims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithTimeFunc(j.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if j.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(j.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			j.logger.Error("JWT decode encountered unexpected signing method %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.secret, nil
	}, parserOptions...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
