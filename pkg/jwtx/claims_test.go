package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/tally/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const exampleIssuer = "https://auth.tally.test"

func TestNewSessionClaims(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := jwtx.NewSessionClaims("01HZX", "ada@example.com", exampleIssuer, jwtx.DefaultSessionTTL, now)

	require.Equal(t, "01HZX", c.Subject)
	require.Equal(t, exampleIssuer, c.Issuer)
	require.Equal(t, "ada@example.com", c.Email)
	require.Equal(t, now, c.IssuedAtTime())
	require.Equal(t, now.Add(7*24*time.Hour), c.ExpiresAt.Time)
	require.Len(t, c.ID, 36, "jti should be a UUID")

	other := jwtx.NewSessionClaims("01HZX", "ada@example.com", exampleIssuer, jwtx.DefaultSessionTTL, now)
	require.NotEqual(t, c.ID, other.ID)
}

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "auth-service"}}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer("auth-service"))
	})

	t.Run("empty expected issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(""))
	})

	t.Run("mismatched issuer", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateIssuer("someone-else"), jwtx.ErrIssuer)
	})
}

func TestValidateExpiry(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name   string
		claims jwtx.Claims
		leeway time.Duration
		want   error
	}{
		{
			name: "valid",
			claims: jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
				NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
			}},
		},
		{
			name: "expired",
			claims: jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
			}},
			want: jwtx.ErrExpired,
		},
		{
			name: "expired within leeway",
			claims: jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(-10 * time.Second)),
			}},
			leeway: 30 * time.Second,
		},
		{
			name: "not yet valid",
			claims: jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				NotBefore: jwt.NewNumericDate(now.Add(time.Minute)),
			}},
			want: jwtx.ErrNotYetValid,
		},
		{
			name:   "missing exp",
			claims: jwtx.Claims{},
			want:   jwtx.ErrInvalidClaim,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.claims.ValidateExpiry(now, tt.leeway)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}
