package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants for the cookie session flow.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 2 * time.Hour

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 14 * 24 * time.Hour
)

// Kind separates access tokens from refresh tokens so one can never be
// replayed as the other.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims are the session claims carried in every token we issue.
type Claims struct {
	jwt.RegisteredClaims

	// UserID is the numeric account id. Subject carries the same value as a
	// string for anything that only understands registered claims.
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	Kind   Kind   `json:"kind"`
}

// NewClaims builds minimally-correct claims.
func NewClaims(userID int64, email string, kind Kind, ttl time.Duration, issuer string, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   formatSubject(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		UserID: userID,
		Email:  email,
		Kind:   kind,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim. Two tokens
// minted in the same second for the same user still differ because of it.
func NewJTI() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateExpiry reports ErrExpired once now has reached exp. A token whose
// exp equals its iat (ttl of zero) is therefore expired on arrival.
func (c *Claims) ValidateExpiry(now time.Time) error {
	if c.ExpiresAt == nil {
		return ErrInvalidClaim
	}
	if !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}
	return nil
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateKind rejects a token minted for a different purpose.
func (c *Claims) ValidateKind(want Kind) error {
	if want == "" {
		return nil
	}
	if c.Kind != want {
		return ErrKind
	}
	return nil
}

// ValidateIdentity makes sure the payload actually names somebody.
func (c *Claims) ValidateIdentity() error {
	if c.UserID <= 0 {
		return ErrInvalidClaim
	}
	return nil
}
