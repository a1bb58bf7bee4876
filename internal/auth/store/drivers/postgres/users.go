package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/tally/internal/auth/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, display_name, email, password_hash, verified, sessions_valid_after, created_at, updated_at`

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u          domain.User
		validAfter sql.NullTime
	)
	err := row.Scan(&u.ID, &u.DisplayName, &u.Email, &u.PasswordHash, &u.Verified, &validAfter, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	if validAfter.Valid {
		u.SessionsValidAfter = validAfter.Time.UTC()
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.DisplayName, u.Email, u.PasswordHash, u.Verified,
		nullTime(u.SessionsValidAfter), u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdateDisplayName(ctx context.Context, userID, displayName string, now time.Time) error {
	return requireRow(r.db.ExecContext(ctx,
		`UPDATE users SET display_name = $1, updated_at = $2 WHERE id = $3`,
		displayName, now.UTC(), userID,
	))
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, hash string, now time.Time) error {
	return requireRow(r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		hash, now.UTC(), userID,
	))
}

func (r *usersRepo) ReplaceCredentials(ctx context.Context, userID, hash string, now time.Time) error {
	return requireRow(r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, sessions_valid_after = $2, updated_at = $2 WHERE id = $3`,
		hash, now.UTC(), userID,
	))
}

func (r *usersRepo) MarkVerified(ctx context.Context, userID string, now time.Time) error {
	return requireRow(r.db.ExecContext(ctx,
		`UPDATE users SET verified = TRUE, updated_at = $1 WHERE id = $2`,
		now.UTC(), userID,
	))
}
