package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	require.Equal(t, "tally-auth", cfg.Issuer)
	require.Equal(t, "HS256", cfg.Algorithm)
	require.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	require.Equal(t, 15*time.Minute, cfg.OTPTTL)
	require.Equal(t, 6, cfg.OTPDigits)
	require.Equal(t, 5, cfg.OTPMaxAttempts)
	require.Equal(t, time.Hour, cfg.ResetTTL)
	require.Equal(t, 2*time.Minute, cfg.ResendInterval)
	require.Equal(t, 6, cfg.MinPasswordLen)
	require.Equal(t, "sqlite", cfg.DatabaseDriver)
	require.Equal(t, 8080, cfg.Port)
	require.NoError(t, cfg.Validate(), "defaults must be usable in dev")
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("AUTH_SESSION_TTL", "3d")
	t.Setenv("AUTH_OTP_TTL", "10")
	t.Setenv("AUTH_RESEND_INTERVAL", "45s")
	t.Setenv("AUTH_DATABASE_DRIVER", "Postgres")
	t.Setenv("AUTH_DATABASE_URL", "postgres://tally@localhost/tally")
	t.Setenv("PORT", "not-a-port")

	cfg := LoadConfig()

	require.Equal(t, 72*time.Hour, cfg.SessionTTL)
	require.Equal(t, 10*time.Minute, cfg.OTPTTL)
	require.Equal(t, 45*time.Second, cfg.ResendInterval)
	require.Equal(t, "postgres", cfg.DatabaseDriver)
	require.Equal(t, 8080, cfg.Port, "unparseable values fall back to the default")
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	base := LoadConfig()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"hs256 secret outside dev", func(c *Config) { c.Env = "prod" }, "AUTH_SIGNING_SECRET"},
		{"unknown algorithm", func(c *Config) { c.Algorithm = "RS256" }, "AUTH_ALGORITHM"},
		{"postgres without url", func(c *Config) { c.DatabaseDriver = "postgres" }, "AUTH_DATABASE_URL"},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mysql" }, "AUTH_DATABASE_DRIVER"},
		{"zero otp ttl", func(c *Config) { c.OTPTTL = 0 }, "AUTH_OTP_TTL"},
		{"negative session ttl", func(c *Config) { c.SessionTTL = -time.Hour }, "AUTH_SESSION_TTL"},
		{"odd otp width", func(c *Config) { c.OTPDigits = 4 }, "AUTH_OTP_DIGITS"},
		{"no attempts", func(c *Config) { c.OTPMaxAttempts = 0 }, "AUTH_OTP_MAX_ATTEMPTS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.ErrorContains(t, err, tt.want)
		})
	}

	t.Run("eddsa needs no secret", func(t *testing.T) {
		cfg := base
		cfg.Env = "prod"
		cfg.Algorithm = "EdDSA"
		require.NoError(t, cfg.Validate())
	})
}
