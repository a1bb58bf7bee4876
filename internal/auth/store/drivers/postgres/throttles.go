package postgres

import (
	"context"
	"time"
)

type throttlesRepo struct {
	db dbtx
}

func (r *throttlesRepo) AcquireThrottle(ctx context.Context, key string, now, expiresAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO throttles (key, expires_at) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET expires_at = EXCLUDED.expires_at
		WHERE throttles.expires_at <= $3`,
		key, expiresAt.UTC(), now.UTC(),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *throttlesRepo) DeleteExpiredThrottles(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM throttles WHERE expires_at < $1`, before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
