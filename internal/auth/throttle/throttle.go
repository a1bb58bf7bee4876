// Package throttle limits how often an action may happen per key across
// every instance of the service.
package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tally/internal/auth/store"
	"github.com/redis/go-redis/v9"
)

// Throttle grants one claim per key per window.
type Throttle interface {
	// Allow claims key for window. It returns false if the key was already
	// claimed within the last window.
	Allow(ctx context.Context, key string, window time.Duration) (bool, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

// Redis keeps claims as expiring keys.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) Allow(ctx context.Context, key string, window time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.prefix+key, 1, window).Result()
	if err != nil {
		return false, fmt.Errorf("throttle: %w", err)
	}
	return ok, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Database keeps claims in the credential store, for deployments without
// Redis. Expired rows are removed by housekeeping.
type Database struct {
	Store store.Store
	Now   func() time.Time
}

func NewDatabase(s store.Store) *Database {
	return &Database{Store: s, Now: time.Now}
}

func (d *Database) Allow(ctx context.Context, key string, window time.Duration) (bool, error) {
	now := d.Now().UTC()
	ok, err := d.Store.Throttles().AcquireThrottle(ctx, key, now, now.Add(window))
	if err != nil {
		return false, fmt.Errorf("throttle: %w", err)
	}
	return ok, nil
}

func (d *Database) Ping(ctx context.Context) error {
	return d.Store.Ping(ctx)
}
