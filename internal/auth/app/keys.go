package app

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aussiebroadwan/tally/pkg/cryptox"
	"github.com/aussiebroadwan/tally/pkg/jwtx"
)

// SigningKey both signs new sessions and verifies presented ones.
type SigningKey interface {
	jwtx.Signer
	jwtx.Verifier
}

// InitSigningKey builds the session signing key for the configured algorithm.
//
//   - HS256 uses AUTH_SIGNING_SECRET. In dev an empty secret is replaced by a
//     random one, which means sessions do not survive a restart.
//   - EdDSA loads a PKCS8 key from AUTH_SIGNING_KEY_FILE, generating and
//     persisting one on first start.
func InitSigningKey(cfg Config, logger *slog.Logger) (SigningKey, error) {
	opts := jwtx.VerifyOptions{Issuer: cfg.Issuer}

	switch cfg.Algorithm {
	case "EdDSA":
		pemKey, err := loadOrCreateEd25519(cfg.SigningKeyFile, logger)
		if err != nil {
			return nil, err
		}
		key, err := jwtx.NewEdDSA(pemKey, opts)
		if err != nil {
			return nil, err
		}
		logger.Info("session signing key loaded", "algorithm", key.Alg(), "file", cfg.SigningKeyFile)
		return key, nil

	case "HS256":
		secret := []byte(cfg.SigningSecret)
		if len(secret) == 0 {
			buf := make([]byte, 32)
			if _, err := rand.Read(buf); err != nil {
				return nil, err
			}
			secret = []byte(base64.RawURLEncoding.EncodeToString(buf))
			logger.Warn("AUTH_SIGNING_SECRET not set, using a random secret; sessions end on restart")
		}
		key, err := jwtx.NewHS256(secret, opts)
		if err != nil {
			return nil, err
		}
		logger.Info("session signing key loaded", "algorithm", key.Alg())
		return key, nil
	}

	return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
}

func loadOrCreateEd25519(file string, logger *slog.Logger) ([]byte, error) {
	file = filepath.Clean(file)

	pemKey, err := os.ReadFile(file)
	if err == nil {
		return pemKey, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read signing key: %w", err)
	}

	pemKey, err = cryptox.GenerateEd25519Key()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return nil, err
	}
	if err := os.WriteFile(file, pemKey, 0600); err != nil {
		return nil, fmt.Errorf("write signing key: %w", err)
	}

	logger.Info("generated new Ed25519 signing key", "file", file)
	return pemKey, nil
}
