package service

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHousekeepingCleanup(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()

	_, err := h.creds.Signup(ctx, SignupInput{DisplayName: "Ann", Email: "ann@x.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = h.creds.Signup(ctx, SignupInput{DisplayName: "Bob", Email: "bob@x.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = h.creds.ResendSignupOTP(ctx, "bob@x.com")
	require.NoError(t, err)

	hk := NewHousekeepingService(h.store, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Minute)
	hk.Now = h.clock.Now

	hk.Cleanup(ctx)
	ann, err := h.store.Users().GetUserByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	_, err = h.store.Secrets().GetSecret(ctx, ann.ID)
	require.NoError(t, err, "live secrets are kept")

	h.clock.Advance(DefaultOTPTTL + time.Minute)
	hk.Cleanup(ctx)

	_, err = h.store.Secrets().GetSecret(ctx, ann.ID)
	require.Error(t, err)

	n, err := h.store.Throttles().DeleteExpiredThrottles(ctx, h.clock.Now())
	require.NoError(t, err)
	require.Zero(t, n, "expired throttle rows are already gone")
}

func TestHousekeepingStartStop(t *testing.T) {
	h := newHarness(t)
	hk := NewHousekeepingService(h.store, slog.New(slog.NewTextHandler(io.Discard, nil)), 0)
	require.Equal(t, time.Hour, hk.Interval)

	hk.Start()
	hk.Stop()
}
