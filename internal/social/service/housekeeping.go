package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/circle/internal/social/store"
)

// Sweeper is implemented by session caches that do not expire entries on
// their own schedule.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// HousekeepingService periodically clears expired email codes, drops read
// notifications past their retention and sweeps the in-process session cache.
type HousekeepingService struct {
	Store    store.Store
	Sweeper  Sweeper
	Logger   *slog.Logger
	Interval time.Duration

	// NotificationRetention is how long read notifications are kept.
	NotificationRetention time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:                 store,
		Logger:                logger,
		Interval:              interval,
		NotificationRetention: 30 * 24 * time.Hour,
		stopCh:                make(chan struct{}),
		doneCh:                make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop() to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
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

// Cleanup runs one pass. Each step is independent; a failure in one does
// not stop the others.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	now := time.Now().UTC()
	s.Logger.Debug("starting housekeeping cleanup")

	var successful int

	if n, err := s.Store.Users().ClearExpiredEmailAuthCodes(ctx, now); err != nil {
		s.Logger.Error("failed to clear expired email codes", "error", err)
	} else {
		s.Logger.Debug("cleared expired email codes", "count", n)
		successful++
	}

	if s.NotificationRetention > 0 {
		if n, err := s.Store.Notifications().DeleteReadBefore(ctx, now.Add(-s.NotificationRetention)); err != nil {
			s.Logger.Error("failed to delete old notifications", "error", err)
		} else {
			s.Logger.Debug("deleted old notifications", "count", n)
			successful++
		}
	}

	if s.Sweeper != nil {
		if n, err := s.Sweeper.Sweep(ctx); err != nil {
			s.Logger.Error("failed to sweep sessions", "error", err)
		} else {
			s.Logger.Debug("swept expired sessions", "count", n)
			successful++
		}
	}

	s.Logger.Info("housekeeping cleanup completed", "successful_cleanups", successful)
}
