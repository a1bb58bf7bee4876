package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/tally/internal/auth/http"
	"github.com/aussiebroadwan/tally/internal/auth/notify"
	"github.com/aussiebroadwan/tally/internal/auth/service"
	"github.com/aussiebroadwan/tally/internal/auth/store"
	"github.com/aussiebroadwan/tally/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/tally/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/tally/internal/auth/throttle"
	"github.com/aussiebroadwan/tally/pkg/cryptox"
	"github.com/aussiebroadwan/tally/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	key      SigningKey
	redis    *redis.Client // nil when the throttle lives in the database
	throttle throttle.Throttle
	mailer   *notify.Async

	// Services
	sessionService      *service.SessionService
	credentialService   *service.CredentialService
	passwordService     *service.PasswordService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cryptox.LoadPepper(cfg.PepperFile); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	key, err := InitSigningKey(cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize signing key: %w", err)
	}
	app.key = key

	app.initThrottle()
	app.initNotifier()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown stops accepting requests, lets queued mail drain, then releases
// the backing stores.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.mailer.Close(ctx); err != nil {
		app.logger.Warn("mail queue not drained", "error", err)
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DatabaseDriver {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	default:
		dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initThrottle picks Redis when configured so that resend limits hold across
// replicas, and the credential store otherwise.
func (app *Application) initThrottle() {
	if app.cfg.RedisAddr == "" {
		app.throttle = throttle.NewDatabase(app.db)
		app.logger.Info("resend throttle backed by database")
		return
	}

	app.redis = redis.NewClient(&redis.Options{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})
	app.throttle = throttle.NewRedis(app.redis, "tally:auth:throttle:")

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := app.throttle.Ping(ctx); err != nil {
		app.logger.Warn("redis unreachable at startup", "addr", app.cfg.RedisAddr, "error", err)
		return
	}
	app.logger.Info("resend throttle backed by redis", "addr", app.cfg.RedisAddr)
}

// initNotifier sends mail through SMTP when a relay is configured and only
// logs it otherwise. Either way sending happens off the request path.
func (app *Application) initNotifier() {
	var next notify.Notifier
	if app.cfg.SMTPHost != "" {
		next = notify.NewSMTP(notify.SMTPConfig{
			Host:     app.cfg.SMTPHost,
			Port:     app.cfg.SMTPPort,
			Username: app.cfg.SMTPUsername,
			Password: app.cfg.SMTPPassword,
			FromName: app.cfg.MailFromName,
			FromAddr: app.cfg.MailFrom,
		})
		app.logger.Info("mail delivery via smtp", "host", app.cfg.SMTPHost, "port", app.cfg.SMTPPort)
	} else {
		next = notify.Log{Logger: app.logger}
		app.logger.Warn("SMTP_HOST not set, mail will only be logged")
	}

	app.mailer = notify.NewAsync(next, app.cfg.NotifyWorkers, app.cfg.NotifyQueueSize, app.logger)
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	policy := service.PasswordPolicy{MinLength: app.cfg.MinPasswordLen}

	secrets := &service.SecretKeeper{
		Store:       app.db,
		OTPTTL:      app.cfg.OTPTTL,
		ResetTTL:    app.cfg.ResetTTL,
		OTPDigits:   otp.Digits(app.cfg.OTPDigits),
		MaxAttempts: app.cfg.OTPMaxAttempts,
	}

	app.sessionService = &service.SessionService{
		Signer:   app.key,
		Verifier: app.key,
		Store:    app.db,
		Issuer:   app.cfg.Issuer,
		TTL:      app.cfg.SessionTTL,
	}

	app.credentialService = &service.CredentialService{
		Store:          app.db,
		Secrets:        secrets,
		Sessions:       app.sessionService,
		Notifier:       app.mailer,
		Throttle:       app.throttle,
		Policy:         policy,
		ResendInterval: app.cfg.ResendInterval,
	}

	app.passwordService = &service.PasswordService{
		Store:    app.db,
		Secrets:  secrets,
		Notifier: app.mailer,
		Policy:   policy,
		ResetURL: app.cfg.ResetURL,
	}

	app.userService = &service.UserService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.throttle, app.logger)

	router.CredentialService = app.credentialService
	router.PasswordService = app.passwordService
	router.SessionService = app.sessionService
	router.UserService = app.userService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
