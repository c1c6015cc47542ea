package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/monitordb/auth/internal/auth/store"
)

// Sessions older than this past their expiry are deleted outright rather
// than just deactivated, keeping the table bounded.
const staleSessionAge = 7 * 24 * time.Hour

// HousekeepingService periodically deactivates expired sessions and deletes
// long-dead ones so the sessions table does not grow without bound.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

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
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking and should be called after the database is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

// run is the main background worker loop.
func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup performs the actual sweep. Each step is independent so a failure
// in one won't stop the other.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	now := time.Now().UTC()

	if err := s.Store.Sessions().DeactivateExpiredSessions(ctx, now); err != nil {
		s.Logger.Error("failed to deactivate expired sessions", "error", err)
	} else {
		s.Logger.Debug("deactivated expired sessions")
	}

	if err := s.Store.Sessions().DeleteStaleSessions(ctx, now.Add(-staleSessionAge)); err != nil {
		s.Logger.Error("failed to delete stale sessions", "error", err)
	} else {
		s.Logger.Debug("deleted stale sessions")
	}
}
