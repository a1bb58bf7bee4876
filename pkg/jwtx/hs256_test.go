package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/tally/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestHS256SignAndVerify(t *testing.T) {
	h, err := jwtx.NewHS256(testSecret, jwtx.VerifyOptions{Issuer: exampleIssuer})
	require.NoError(t, err)
	require.Equal(t, "HS256", h.Alg())

	claims := jwtx.NewSessionClaims("user-123", "u@example.com", exampleIssuer, time.Hour, time.Now().UTC())
	token, err := h.Sign(claims)
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(token, "."))

	parsed, err := h.Verify(token)
	require.NoError(t, err)
	require.Equal(t, claims.Subject, parsed.Subject)
	require.Equal(t, claims.ID, parsed.ID)
	require.Equal(t, claims.Email, parsed.Email)
	require.Equal(t, claims.IssuedAt.Unix(), parsed.IssuedAt.Unix())
}

func TestHS256RejectsShortSecret(t *testing.T) {
	_, err := jwtx.NewHS256([]byte("short"), jwtx.VerifyOptions{})
	require.ErrorIs(t, err, jwtx.ErrInvalidKey)
}

func TestHS256VerifyFailures(t *testing.T) {
	h, err := jwtx.NewHS256(testSecret, jwtx.VerifyOptions{Issuer: exampleIssuer})
	require.NoError(t, err)

	now := time.Now().UTC()
	valid, err := h.Sign(jwtx.NewSessionClaims("user-1", "", exampleIssuer, time.Hour, now))
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := h.Verify("not-a-token")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("tampered signature", func(t *testing.T) {
		sig := strings.LastIndex(valid, ".") + 1
		swap := byte('A')
		if valid[sig] == 'A' {
			swap = 'B'
		}
		tampered := valid[:sig] + string(swap) + valid[sig+1:]
		_, err := h.Verify(tampered)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("different secret", func(t *testing.T) {
		other, err := jwtx.NewHS256([]byte("fedcba9876543210fedcba9876543210"), jwtx.VerifyOptions{})
		require.NoError(t, err)
		_, err = other.Verify(valid)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := h.Sign(jwtx.NewSessionClaims("user-1", "", "someone-else", time.Hour, now))
		require.NoError(t, err)
		_, err = h.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := h.Sign(jwtx.NewSessionClaims("user-1", "", exampleIssuer, time.Minute, now.Add(-time.Hour)))
		require.NoError(t, err)
		_, err = h.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("missing subject", func(t *testing.T) {
		token, err := h.Sign(jwtx.NewSessionClaims("", "", exampleIssuer, time.Hour, now))
		require.NoError(t, err)
		_, err = h.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
	})
}

func TestHS256InjectedClock(t *testing.T) {
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := issued
	h, err := jwtx.NewHS256(testSecret, jwtx.VerifyOptions{Now: func() time.Time { return clock }})
	require.NoError(t, err)

	token, err := h.Sign(jwtx.NewSessionClaims("user-1", "", "", jwtx.DefaultSessionTTL, issued))
	require.NoError(t, err)

	clock = issued.Add(jwtx.DefaultSessionTTL - time.Second)
	_, err = h.Verify(token)
	require.NoError(t, err)

	clock = issued.Add(jwtx.DefaultSessionTTL + time.Second)
	_, err = h.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestHS256KeepsMillisecondIssuedAt(t *testing.T) {
	h, err := jwtx.NewHS256(testSecret, jwtx.VerifyOptions{})
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Millisecond)
	token, err := h.Sign(jwtx.NewSessionClaims("user-1", "", "", time.Hour, now))
	require.NoError(t, err)

	parsed, err := h.Verify(token)
	require.NoError(t, err)
	require.WithinDuration(t, now, parsed.IssuedAtTime(), time.Millisecond)
}
