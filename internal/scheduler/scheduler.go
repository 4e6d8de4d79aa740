package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Syncer runs one roster reconciliation pass.
type Syncer interface {
	Sync(ctx context.Context) error
}

// Refresher rebuilds the work-history index.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler periodically runs the roster sync and, after each sync
// completes, refreshes the work-history index. The refresh is
// sequenced strictly after the sync's writes and cache invalidation,
// never concurrent with them.
type Scheduler struct {
	syncer    Syncer
	refresher Refresher
	interval  time.Duration
	logger    zerolog.Logger
}

// NewScheduler creates a new Scheduler
func NewScheduler(syncer Syncer, refresher Refresher, interval time.Duration, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		syncer:    syncer,
		refresher: refresher,
		interval:  interval,
		logger:    logger.With().Str("component", "scheduler").Logger(),
	}
}

// Start runs the sync loop until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("sync scheduler started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("sync scheduler stopped")
			return

		case <-ticker.C:
			if err := s.syncer.Sync(ctx); err != nil {
				s.logger.Error().Err(err).Msg("scheduled sync failed")
				continue
			}
			if s.refresher != nil {
				if err := s.refresher.Refresh(ctx); err != nil {
					s.logger.Error().Err(err).Msg("post-sync index refresh failed")
				}
			}
		}
	}
}
