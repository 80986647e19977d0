package jwtx

import (
	"errors"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Supported signing algorithms.
const (
	AlgHS256 = "HS256"
	AlgEdDSA = "EdDSA"
)

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
	Validate() error
}

// NewSignerHS256 creates an HS256 signer from a shared secret.
func NewSignerHS256(secret []byte) (Signer, error) {
	return newHS256Signer(secret)
}

// HS256Signer signs with a symmetric secret shared with the verifier.
type HS256Signer struct {
	secret []byte
}

// minSecretLen is the smallest HMAC key we accept, matching the output size
// of SHA-256.
const minSecretLen = 32

func newHS256Signer(secret []byte) (*HS256Signer, error) {
	s := &HS256Signer{secret: secret}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *HS256Signer) Alg() string { return AlgHS256 }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Validate refuses secrets too short to be worth signing with.
func (s *HS256Signer) Validate() error {
	if len(s.secret) < minSecretLen {
		return errors.New("jwtx: HS256 secret must be at least 32 bytes")
	}
	return nil
}

func formatSubject(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
