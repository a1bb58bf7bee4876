package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/tally/internal/auth/domain"
)

type secretsRepo struct {
	db dbtx
}

const secretColumns = `user_id, kind, purpose, value_hash, attempts, expires_at, created_at`

func scanSecret(row *sql.Row) (domain.PendingSecret, error) {
	var (
		s             domain.PendingSecret
		kind, purpose string
	)
	if err := row.Scan(&s.UserID, &kind, &purpose, &s.ValueHash, &s.Attempts, &s.ExpiresAt, &s.CreatedAt); err != nil {
		return domain.PendingSecret{}, mapNotFound(err)
	}
	s.Kind = domain.SecretKind(kind)
	s.Purpose = domain.Purpose(purpose)
	s.ExpiresAt = s.ExpiresAt.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	return s, nil
}

func (r *secretsRepo) PutSecret(ctx context.Context, s domain.PendingSecret) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pending_secrets (`+secretColumns+`)
		VALUES ($1, $2, $3, $4, 0, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			kind = EXCLUDED.kind,
			purpose = EXCLUDED.purpose,
			value_hash = EXCLUDED.value_hash,
			attempts = 0,
			expires_at = EXCLUDED.expires_at,
			created_at = EXCLUDED.created_at`,
		s.UserID, string(s.Kind), string(s.Purpose), s.ValueHash, s.ExpiresAt.UTC(), s.CreatedAt.UTC(),
	)
	return err
}

func (r *secretsRepo) GetSecret(ctx context.Context, userID string) (domain.PendingSecret, error) {
	return scanSecret(r.db.QueryRowContext(ctx,
		`SELECT `+secretColumns+` FROM pending_secrets WHERE user_id = $1`, userID))
}

func (r *secretsRepo) GetSecretByValue(ctx context.Context, kind domain.SecretKind, valueHash string) (domain.PendingSecret, error) {
	return scanSecret(r.db.QueryRowContext(ctx,
		`SELECT `+secretColumns+` FROM pending_secrets WHERE kind = $1 AND value_hash = $2`, string(kind), valueHash))
}

func (r *secretsRepo) ClaimAttempt(ctx context.Context, userID, valueHash string, limit int) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE pending_secrets SET attempts = attempts + 1
		WHERE user_id = $1 AND value_hash = $2 AND attempts < $3`,
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
		`DELETE FROM pending_secrets WHERE user_id = $1 AND value_hash = $2`, userID, valueHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *secretsRepo) DeleteExpiredSecrets(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pending_secrets WHERE expires_at < $1`, before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
