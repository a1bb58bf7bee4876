package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tally/internal/auth/domain"
)

type secretsRepo struct {
	db dbtx
}

const secretColumns = `user_id, kind, purpose, value_hash, attempts, expires_at, created_at`

func scanSecret(row interface{ Scan(...any) error }) (domain.PendingSecret, error) {
	var (
		s                domain.PendingSecret
		expires, created int64
	)
	if err := row.Scan(&s.UserID, &s.Kind, &s.Purpose, &s.ValueHash, &s.Attempts, &expires, &created); err != nil {
		return domain.PendingSecret{}, mapNotFound(err)
	}
	s.ExpiresAt = fromMillis(expires)
	s.CreatedAt = fromMillis(created)
	return s, nil
}

func (r *secretsRepo) PutSecret(ctx context.Context, s domain.PendingSecret) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pending_secrets (`+secretColumns+`)
		VALUES (?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			kind = excluded.kind,
			purpose = excluded.purpose,
			value_hash = excluded.value_hash,
			attempts = 0,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at`,
		s.UserID, string(s.Kind), string(s.Purpose), s.ValueHash, millis(s.ExpiresAt), millis(s.CreatedAt),
	)
	return err
}

func (r *secretsRepo) GetSecret(ctx context.Context, userID string) (domain.PendingSecret, error) {
	return scanSecret(r.db.QueryRowContext(ctx,
		`SELECT `+secretColumns+` FROM pending_secrets WHERE user_id = ?`, userID))
}

func (r *secretsRepo) GetSecretByValue(ctx context.Context, kind domain.SecretKind, valueHash string) (domain.PendingSecret, error) {
	return scanSecret(r.db.QueryRowContext(ctx,
		`SELECT `+secretColumns+` FROM pending_secrets WHERE kind = ? AND value_hash = ?`, string(kind), valueHash))
}

func (r *secretsRepo) ClaimAttempt(ctx context.Context, userID, valueHash string, limit int) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE pending_secrets SET attempts = attempts + 1
		WHERE user_id = ? AND value_hash = ? AND attempts < ?`,
		userID, valueHash, limit,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *secretsRepo) DeleteSecret(ctx context.Context, userID, valueHash string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM pending_secrets WHERE user_id = ? AND value_hash = ?`, userID, valueHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *secretsRepo) DeleteExpiredSecrets(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pending_secrets WHERE expires_at < ?`, millis(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
