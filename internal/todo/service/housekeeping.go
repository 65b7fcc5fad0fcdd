package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/todo/internal/todo/store"
)

// HousekeepingService periodically revokes refresh tokens that have passed
// their expiry. Rows are never deleted; they stay as the session audit
// trail.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService defaults a non-positive interval to 1 hour.
func NewHousekeepingService(s store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}

	return &HousekeepingService{
		Store:    s,
		Logger:   logger,
		Interval: interval,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs a sweep immediately and then on every tick until Stop.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress sweep has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep revokes expired refresh tokens once and returns how many it revoked.
func (s *HousekeepingService) Sweep(ctx context.Context) int64 {
	n, err := s.Store.RefreshTokens().RevokeExpiredRefreshTokens(ctx, s.Now().UTC())
	if err != nil {
		s.Logger.Error("failed to revoke expired refresh tokens", "err", err)
		return 0
	}

	s.Logger.Info("housekeeping sweep completed", "revoked_refresh_tokens", n)
	return n
}
