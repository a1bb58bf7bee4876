package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tally/internal/auth/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, display_name, email, password_hash, verified, sessions_valid_after, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u                             domain.User
		validAfter, created, modified int64
	)
	err := row.Scan(&u.ID, &u.DisplayName, &u.Email, &u.PasswordHash, &u.Verified, &validAfter, &created, &modified)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.SessionsValidAfter = fromMillis(validAfter)
	u.CreatedAt = fromMillis(created)
	u.UpdatedAt = fromMillis(modified)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.DisplayName, u.Email, u.PasswordHash, u.Verified,
		millis(u.SessionsValidAfter), millis(u.CreatedAt), millis(u.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdateDisplayName(ctx context.Context, userID, displayName string, now time.Time) error {
	return requireRow(r.db.ExecContext(ctx,
		`UPDATE users SET display_name = ?, updated_at = ? WHERE id = ?`,
		displayName, millis(now), userID,
	))
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, hash string, now time.Time) error {
	return requireRow(r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, millis(now), userID,
	))
}

func (r *usersRepo) ReplaceCredentials(ctx context.Context, userID, hash string, now time.Time) error {
	return requireRow(r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, sessions_valid_after = ?, updated_at = ? WHERE id = ?`,
		hash, millis(now), millis(now), userID,
	))
}

func (r *usersRepo) MarkVerified(ctx context.Context, userID string, now time.Time) error {
	return requireRow(r.db.ExecContext(ctx,
		`UPDATE users SET verified = 1, updated_at = ? WHERE id = ?`,
		millis(now), userID,
	))
}
