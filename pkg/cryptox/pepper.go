package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// Configuration for Argon2id hashing.
const (
	memory      = 19 * 1024 // Memory usage in KiB (19 MiB)
	iterations  = 2         // Iteration count
	parallelism = 1         // Number of threads
	keyLength   = 32        // Length of the generated hash
	saltLength  = 16        // Length of the salt
)

var (
	pepperMu sync.RWMutex
	pepper   string
)

// SetPepper replaces the process-wide pepper mixed into password hashes.
func SetPepper(value string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	pepper = value
}

// GetPepper returns the current pepper. An unset pepper is the empty string.
func GetPepper() string {
	pepperMu.RLock()
	defer pepperMu.RUnlock()
	return pepper
}

// LoadPepper reads the pepper from file, generating and persisting a new one
// when the file does not exist yet.
func LoadPepper(file string) error {
	if file == "" {
		return errors.New("cryptox: pepper file path is empty")
	}

	file = filepath.Clean(file)
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return err
	}

	raw, err := os.ReadFile(file)
	if errors.Is(err, os.ErrNotExist) {
		buf := make([]byte, keyLength)
		if _, err := rand.Read(buf); err != nil {
			return err
		}
		generated := base64.RawURLEncoding.EncodeToString(buf)
		if err := os.WriteFile(file, []byte(generated), 0600); err != nil {
			return err
		}
		SetPepper(generated)
		return nil
	}
	if err != nil {
		return err
	}

	SetPepper(string(raw))
	return nil
}
