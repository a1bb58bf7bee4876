package sqlite

import (
	"context"
	"time"
)

type throttlesRepo struct {
	db dbtx
}

func (r *throttlesRepo) AcquireThrottle(ctx context.Context, key string, now, expiresAt time.Time) (bool, error) {
	// The conflict update only fires when the existing claim has lapsed, so
	// one affected row means the claim is ours.
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO throttles (key, expires_at) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET expires_at = excluded.expires_at
		WHERE throttles.expires_at <= ?`,
		key, millis(expiresAt), millis(now),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *throttlesRepo) DeleteExpiredThrottles(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM throttles WHERE expires_at < ?`, millis(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
