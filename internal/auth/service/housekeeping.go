package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tally/internal/auth/store"
)

// HousekeepingService periodically deletes expired pending secrets and
// throttle claims so the tables do not grow without bound. Expiry is enforced
// at redemption time; this is only cleanup.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one pass. Each deletion is independent; a failure in one
// does not stop the other.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	now := clock(s.Now)

	secrets, err := s.Store.Secrets().DeleteExpiredSecrets(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired pending secrets", "error", err)
	}

	throttles, err := s.Store.Throttles().DeleteExpiredThrottles(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired throttles", "error", err)
	}

	s.Logger.Info("housekeeping cleanup completed",
		"expired_secrets", secrets,
		"expired_throttles", throttles,
	)
}
