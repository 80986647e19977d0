package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT signature and gives you back the claims if it's
// legit. Expiry is left to the caller so it can be checked against an
// injected clock.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")

	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrKind         = errors.New("jwtx: token kind mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")

	// ErrInvalid groups every failure that is not an expiry.
	ErrInvalid = errors.New("jwtx: invalid token")
)

// HS256Verifier checks tokens signed with a shared secret.
type HS256Verifier struct {
	secret []byte
}

// NewVerifierHS256 creates a verifier for the given shared secret.
func NewVerifierHS256(secret []byte) *HS256Verifier {
	return &HS256Verifier{secret: secret}
}

// Verify validates the JWT string and returns its parsed Claims.
func (v *HS256Verifier) Verify(tokenStr string) (Claims, error) {
	return parse(tokenStr, AlgHS256, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
}

// parse is shared by every algorithm. Time based checks are disabled here
// because the Codec owns the clock.
func parse(tokenStr, alg string, key jwt.Keyfunc) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{alg}),
		jwt.WithoutClaimsValidation(),
	)

	var claims Claims
	token, err := parser.ParseWithClaims(tokenStr, &claims, key)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, fmt.Errorf("%w: %w", ErrMalformed, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, fmt.Errorf("%w: %w", ErrInvalidSig, err)
		case errors.Is(err, jwt.ErrTokenUnverifiable):
			return Claims{}, fmt.Errorf("%w: %w", ErrAlgMismatch, err)
		default:
			return Claims{}, fmt.Errorf("jwtx: parse or verify: %w", err)
		}
	}
	if !token.Valid {
		return Claims{}, ErrInvalidClaim
	}

	return claims, nil
}
