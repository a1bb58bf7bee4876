package jwtx

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// EdDSA signs and verifies session tokens with an Ed25519 keypair.
type EdDSA struct {
	key  ed25519.PrivateKey
	pub  ed25519.PublicKey
	opts VerifyOptions
}

// NewEdDSA loads an Ed25519 private key from PEM bytes.
// Ed25519 keys must be in PKCS8 format.
func NewEdDSA(pemKey []byte, opts VerifyOptions) (*EdDSA, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, fmt.Errorf("%w: invalid PEM for Ed25519 key", ErrInvalidKey)
	}
	if block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("%w: expected PRIVATE KEY, got %q (Ed25519 requires PKCS8)", ErrInvalidKey, block.Type)
	}

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
	}
	key, ok := priv.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("jwtx: not Ed25519 private key")
	}

	return &EdDSA{
		key:  key,
		pub:  key.Public().(ed25519.PublicKey),
		opts: opts,
	}, nil
}

func (e *EdDSA) Alg() string { return jwt.SigningMethodEdDSA.Alg() }

// PublicKey returns the verification half of the keypair.
func (e *EdDSA) PublicKey() ed25519.PublicKey { return e.pub }

func (e *EdDSA) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(e.key)
}

func (e *EdDSA) Verify(token string) (Claims, error) {
	return parse(token, jwt.SigningMethodEdDSA.Alg(), e.pub, e.opts)
}
