// Package auth issues and validates the bearer tokens that gate every
// protected route, and owns the credential check behind /auth/login.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken indicates the token failed validation. Every failure mode
// (malformed, bad signature, expired, missing claims) collapses to this one
// error; callers treat them all as unauthenticated.
var ErrInvalidToken = errors.New("invalid token")

const (
	// DefaultTTL bounds the lifetime of issued tokens. There is no
	// revocation, so a leaked token is only good for this long.
	DefaultTTL = time.Hour

	// minKeyBytes is the floor for the HMAC key: 256 bits.
	minKeyBytes = 32
)

// TokenService signs and verifies bearer tokens with a symmetric key held
// for the process lifetime. The key is read-only after construction and
// safe for unsynchronized concurrent use.
type TokenService struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// TokenOption configures a TokenService.
type TokenOption func(*TokenService)

// WithTTL overrides the token lifetime.
func WithTTL(ttl time.Duration) TokenOption {
	return func(s *TokenService) { s.ttl = ttl }
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService validates the signing key and builds the service. A key
// shorter than 256 bits is a configuration error, fatal at startup.
func NewTokenService(secret string, opts ...TokenOption) (*TokenService, error) {
	secret = strings.TrimSpace(secret)
	if len(secret) < minKeyBytes {
		return nil, fmt.Errorf("auth: signing key must be at least %d bytes, got %d", minKeyBytes, len(secret))
	}
	s := &TokenService{
		key: []byte(secret),
		ttl: DefaultTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a token carrying the identity as subject, expiring one TTL
// from now. Returns the signed token and its expiry.
func (s *TokenService) Issue(identity string) (string, time.Time, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return "", time.Time{}, errors.New("auth: identity is required")
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   identity,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate verifies signature, expiry, and structural integrity, and
// returns the identity claim.
func (s *TokenService) Validate(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return s.key, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if err := validateClaims(claims); err != nil {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func validateClaims(claims *jwt.RegisteredClaims) error {
	if strings.TrimSpace(claims.Subject) == "" {
		return errors.New("subject missing")
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return errors.New("timestamps missing")
	}
	if claims.ExpiresAt.Time.Before(claims.IssuedAt.Time) {
		return errors.New("token expiry precedes issued-at")
	}
	return nil
}
