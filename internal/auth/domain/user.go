package domain

import (
	"strings"
	"time"
)

type User struct {
	ID           string // ULID
	DisplayName  string
	Email        string // lower-cased, trimmed, unique
	PasswordHash string // argon2id PHC string (bcrypt for legacy rows)
	Verified     bool

	// SessionsValidAfter rejects any session issued before it. It moves
	// forward whenever the password is reset or changed.
	SessionsValidAfter time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
