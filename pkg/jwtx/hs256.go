package jwtx

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// MinHS256SecretLength is the shortest accepted shared secret, in bytes.
const MinHS256SecretLength = 32

// HS256 signs and verifies session tokens with a process-wide shared secret.
type HS256 struct {
	secret []byte
	opts   VerifyOptions
}

// NewHS256 builds an HMAC-SHA256 signer/verifier pair around secret.
func NewHS256(secret []byte, opts VerifyOptions) (*HS256, error) {
	if len(secret) < MinHS256SecretLength {
		return nil, fmt.Errorf("%w: HS256 secret must be at least %d bytes", ErrInvalidKey, MinHS256SecretLength)
	}
	return &HS256{secret: secret, opts: opts}, nil
}

func (h *HS256) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (h *HS256) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}

// Verify validates the JWT string and returns its parsed Claims.
func (h *HS256) Verify(token string) (Claims, error) {
	return parse(token, jwt.SigningMethodHS256.Alg(), h.secret, h.opts)
}
