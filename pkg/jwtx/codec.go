package jwtx

import (
	"errors"
	"fmt"
	"time"
)

// Codec signs and verifies session tokens. It is pure apart from reading the
// clock, which tests can replace through Now.
type Codec struct {
	Signer   Signer
	Verifier Verifier
	Issuer   string

	// Now defaults to time.Now when nil.
	Now func() time.Time
}

// NewHS256Codec is the common case: one shared secret for both halves.
func NewHS256Codec(secret []byte, issuer string) (*Codec, error) {
	signer, err := NewSignerHS256(secret)
	if err != nil {
		return nil, err
	}
	return &Codec{
		Signer:   signer,
		Verifier: NewVerifierHS256(secret),
		Issuer:   issuer,
	}, nil
}

// NewEdDSACodec builds a codec around an Ed25519 PKCS8 PEM private key.
func NewEdDSACodec(pemKey []byte, issuer string) (*Codec, error) {
	signer, err := newEdDSASigner(pemKey)
	if err != nil {
		return nil, err
	}
	if err := signer.Validate(); err != nil {
		return nil, err
	}
	return &Codec{
		Signer:   signer,
		Verifier: NewVerifierEdDSA(signer.Public()),
		Issuer:   issuer,
	}, nil
}

func (c *Codec) now() time.Time {
	if c.Now != nil {
		return c.Now().UTC()
	}
	return time.Now().UTC()
}

// Sign mints a token of the given kind that stops being valid after ttl.
func (c *Codec) Sign(userID int64, email string, kind Kind, ttl time.Duration) (string, error) {
	claims := NewClaims(userID, email, kind, ttl, c.Issuer, c.now())
	token, err := c.Signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return token, nil
}

// Verify returns the claims of a well-formed, correctly signed, unexpired
// token of the wanted kind. Every failure is reported as either ErrExpired or
// ErrInvalid so callers only ever branch on those two.
func (c *Codec) Verify(token string, want Kind) (Claims, error) {
	claims, err := c.Verifier.Verify(token)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if err := claims.ValidateIdentity(); err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := claims.ValidateIssuer(c.Issuer); err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := claims.ValidateKind(want); err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := claims.ValidateExpiry(c.now()); err != nil {
		if errors.Is(err, ErrExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return claims, nil
}
