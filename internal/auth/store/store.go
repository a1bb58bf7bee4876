package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/tally/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Repositories hang off it so a Tx hands out the same repos
// bound to the transaction.
type Store interface {
	Users() Users
	Secrets() Secrets
	Throttles() Throttles

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when it returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail expects an already normalized email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user. A taken email yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	UpdateDisplayName(ctx context.Context, userID, displayName string, now time.Time) error

	// UpdatePasswordHash replaces the hash without touching sessions, used
	// for transparent rehashing on login.
	UpdatePasswordHash(ctx context.Context, userID, hash string, now time.Time) error

	// ReplaceCredentials sets a new password hash and moves
	// sessions_valid_after to now, invalidating earlier sessions.
	ReplaceCredentials(ctx context.Context, userID, hash string, now time.Time) error

	MarkVerified(ctx context.Context, userID string, now time.Time) error
}

type Secrets interface {
	// PutSecret stores s as the user's only pending secret, replacing any
	// previous one.
	PutSecret(ctx context.Context, s domain.PendingSecret) error

	GetSecret(ctx context.Context, userID string) (domain.PendingSecret, error)

	// GetSecretByValue finds a pending secret by its fingerprint.
	GetSecretByValue(ctx context.Context, kind domain.SecretKind, valueHash string) (domain.PendingSecret, error)

	// ClaimAttempt spends one of the limit guesses on the secret with the
	// given fingerprint. It returns false when the guesses are used up or the
	// secret was replaced or removed. The check and the increment are a
	// single statement, so concurrent callers never claim more than limit.
	ClaimAttempt(ctx context.Context, userID, valueHash string, limit int) (bool, error)

	// DeleteSecret removes the secret only if it still has the given
	// fingerprint, reporting whether a row was removed. Of two concurrent
	// callers exactly one sees true.
	DeleteSecret(ctx context.Context, userID, valueHash string) (bool, error)

	// DeleteExpiredSecrets removes secrets that expired before the cutoff.
	DeleteExpiredSecrets(ctx context.Context, before time.Time) (int64, error)
}

type Throttles interface {
	// AcquireThrottle claims key until expiresAt. It returns false while an
	// unexpired claim on the key exists.
	AcquireThrottle(ctx context.Context, key string, now, expiresAt time.Time) (bool, error)

	DeleteExpiredThrottles(ctx context.Context, before time.Time) (int64, error)
}
