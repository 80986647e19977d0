package jwtx

import (
	"crypto/ed25519"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// EdDSAVerifier validates JWTs signed using EdDSA (Ed25519).
type EdDSAVerifier struct {
	pub ed25519.PublicKey
}

// NewVerifierEdDSA creates a verifier for a single Ed25519 public key.
func NewVerifierEdDSA(pub ed25519.PublicKey) *EdDSAVerifier {
	return &EdDSAVerifier{pub: pub}
}

// Verify validates the JWT string and returns its parsed Claims.
func (v *EdDSAVerifier) Verify(tokenStr string) (Claims, error) {
	return parse(tokenStr, AlgEdDSA, func(*jwt.Token) (any, error) {
		if len(v.pub) != ed25519.PublicKeySize {
			return nil, errors.New("jwtx: invalid Ed25519 key type")
		}
		return v.pub, nil
	})
}
