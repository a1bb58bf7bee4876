package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/tally/internal/auth/service"
	"github.com/aussiebroadwan/tally/pkg/jwtx"
)

type Config struct {
	Issuer          string        // Optional: iss claim of session tokens (default: tally-auth)
	Algorithm       string        // Optional: session signing algorithm, HS256 or EdDSA (default: HS256)
	SigningSecret   string        // Required for HS256 outside dev: at least 32 bytes
	SigningKeyFile  string        // Optional: PKCS8 Ed25519 key for EdDSA, generated if missing (default: ./signing.pem)
	SessionTTL      time.Duration // Optional: session lifetime (default: 7 days)
	OTPTTL          time.Duration // Optional: one-time code lifetime (default: 15m)
	OTPDigits       int           // Optional: one-time code width, 6 or 8 (default: 6)
	OTPMaxAttempts  int           // Optional: wrong guesses before a code is discarded (default: 5)
	ResetTTL        time.Duration // Optional: reset token lifetime (default: 1h)
	ResendInterval  time.Duration // Optional: minimum gap between signup code resends (default: 2m)
	MinPasswordLen  int           // Optional: minimum password length (default: 6)
	ResetURL        string        // Optional: page reset links point at
	DatabaseDriver  string        // Optional: sqlite or postgres (default: sqlite)
	DatabaseFile    string        // Optional: SQLite database file (default: ./auth.db)
	DatabaseURL     string        // Required for postgres: connection string
	PepperFile      string        // Optional: file holding the password pepper (default: ./pepper)
	RedisAddr       string        // Optional: Redis address for the resend throttle; the database is used when empty
	RedisPassword   string        // Optional
	RedisDB         int           // Optional (default: 0)
	SMTPHost        string        // Optional: mail relay; messages are only logged when empty
	SMTPPort        int           // Optional (default: 587)
	SMTPUsername    string        // Optional
	SMTPPassword    string        // Optional
	MailFrom        string        // Optional: sender address (default: no-reply@tally.local)
	MailFromName    string        // Optional: sender display name (default: Tally)
	NotifyWorkers   int           // Optional: concurrent mail senders (default: 2)
	NotifyQueueSize int           // Optional: pending mail buffer (default: 100)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		Issuer:          getEnvOrDefault("AUTH_ISSUER", "tally-auth"),
		Algorithm:       getEnvOrDefault("AUTH_ALGORITHM", "HS256"),
		SigningSecret:   os.Getenv("AUTH_SIGNING_SECRET"),
		SigningKeyFile:  getEnvOrDefault("AUTH_SIGNING_KEY_FILE", "signing.pem"),
		SessionTTL:      getEnvDurationOrDefault("AUTH_SESSION_TTL", jwtx.DefaultSessionTTL),
		OTPTTL:          getEnvDurationOrDefault("AUTH_OTP_TTL", service.DefaultOTPTTL),
		OTPDigits:       getEnvIntOrDefault("AUTH_OTP_DIGITS", int(service.DefaultOTPDigits)),
		OTPMaxAttempts:  getEnvIntOrDefault("AUTH_OTP_MAX_ATTEMPTS", service.DefaultOTPMaxAttempts),
		ResetTTL:        getEnvDurationOrDefault("AUTH_RESET_TTL", service.DefaultResetTTL),
		ResendInterval:  getEnvDurationOrDefault("AUTH_RESEND_INTERVAL", service.DefaultResendInterval),
		MinPasswordLen:  getEnvIntOrDefault("AUTH_MIN_PASSWORD_LENGTH", service.DefaultMinPasswordLength),
		ResetURL:        getEnvOrDefault("AUTH_RESET_URL", "http://localhost:3000/reset-password"),
		DatabaseDriver:  strings.ToLower(getEnvOrDefault("AUTH_DATABASE_DRIVER", "sqlite")),
		DatabaseFile:    getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		DatabaseURL:     os.Getenv("AUTH_DATABASE_URL"),
		PepperFile:      getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		RedisAddr:       os.Getenv("AUTH_REDIS_ADDR"),
		RedisPassword:   os.Getenv("AUTH_REDIS_PASSWORD"),
		RedisDB:         getEnvIntOrDefault("AUTH_REDIS_DB", 0),
		SMTPHost:        os.Getenv("SMTP_HOST"),
		SMTPPort:        getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername:    os.Getenv("SMTP_USERNAME"),
		SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
		MailFrom:        getEnvOrDefault("MAIL_FROM", "no-reply@tally.local"),
		MailFromName:    getEnvOrDefault("MAIL_FROM_NAME", "Tally"),
		NotifyWorkers:   getEnvIntOrDefault("NOTIFY_WORKERS", 2),
		NotifyQueueSize: getEnvIntOrDefault("NOTIFY_QUEUE_SIZE", 100),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs []error

	durations := map[string]time.Duration{
		"AUTH_SESSION_TTL":      c.SessionTTL,
		"AUTH_OTP_TTL":          c.OTPTTL,
		"AUTH_RESET_TTL":        c.ResetTTL,
		"AUTH_RESEND_INTERVAL":  c.ResendInterval,
		"HOUSEKEEPING_INTERVAL": c.HousekeepingInterval,
	}
	for key, d := range durations {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", key))
		}
	}

	if c.OTPDigits != 6 && c.OTPDigits != 8 {
		errs = append(errs, errors.New("AUTH_OTP_DIGITS must be 6 or 8"))
	}
	if c.OTPMaxAttempts <= 0 {
		errs = append(errs, errors.New("AUTH_OTP_MAX_ATTEMPTS must be positive"))
	}
	if c.MinPasswordLen <= 0 {
		errs = append(errs, errors.New("AUTH_MIN_PASSWORD_LENGTH must be positive"))
	}

	switch c.Algorithm {
	case "HS256":
		if c.SigningSecret == "" && c.Env != "dev" {
			errs = append(errs, errors.New("AUTH_SIGNING_SECRET is required outside dev"))
		}
	case "EdDSA":
	default:
		errs = append(errs, fmt.Errorf("AUTH_ALGORITHM %q is not supported (HS256, EdDSA)", c.Algorithm))
	}

	switch c.DatabaseDriver {
	case "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("AUTH_DATABASE_URL is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("AUTH_DATABASE_DRIVER %q is not supported (sqlite, postgres)", c.DatabaseDriver))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// "7d" style day counts, which time.ParseDuration does not accept
	if days, ok := strings.CutSuffix(value, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil {
			return time.Duration(n) * 24 * time.Hour
		}
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
