package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/auth/store"
)

// HousekeepingService periodically clears 2FA secrets left behind by setups
// that were never enabled, so a pending secret does not outlive its setup.
type HousekeepingService struct {
	Store      store.Store
	Logger     *slog.Logger
	Interval   time.Duration
	PendingTTL time.Duration
	Now        func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to 1 hour and a non-positive pendingTTL to 24 hours.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval, pendingTTL time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if pendingTTL <= 0 {
		pendingTTL = 24 * time.Hour
	}

	return &HousekeepingService{
		Store:      store,
		Logger:     logger,
		Interval:   interval,
		PendingTTL: pendingTTL,
		Now:        time.Now,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "pending_ttl", s.PendingTTL)
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

// Cleanup runs one pass and returns the number of secrets cleared.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	cutoff := s.Now().Add(-s.PendingTTL)

	n, err := s.Store.Users().ClearAbandonedTwoFactorSecrets(ctx, cutoff)
	if err != nil {
		s.Logger.Error("failed to clear abandoned 2FA secrets", "error", err)
		return 0
	}

	s.Logger.Info("housekeeping cleanup completed", "cleared_pending_secrets", n)
	return n
}
