package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/studiomap/crewdeck/internal/cache"
	"github.com/studiomap/crewdeck/internal/metrics"
	"github.com/studiomap/crewdeck/internal/roster"
	"github.com/studiomap/crewdeck/internal/sheets"
	"github.com/studiomap/crewdeck/internal/storage"
	"github.com/studiomap/crewdeck/internal/types"
)

// Source provides the external system's current people directory.
type Source interface {
	People(ctx context.Context) ([]types.Person, error)
}

// Options configures the directory service.
type Options struct {
	RosterTab string
	TeamTab   string
	RosterTTL time.Duration
	TeamTTL   time.Duration
	Clock     cache.Clock
}

// Service serves cached reads of the two spreadsheet-backed directory
// tabs and runs the one-way roster sync against the external system.
type Service struct {
	source Source
	sheet  sheets.Store
	audit  storage.Store

	rosterTab  string
	teamTab    string
	rosterSlot *cache.Slot[*sheets.Table]
	teamSlot   *cache.Slot[*sheets.Table]
	clock      cache.Clock
	logger     zerolog.Logger
}

// NewService creates the directory service.
func NewService(source Source, sheet sheets.Store, audit storage.Store, opts Options, logger zerolog.Logger) *Service {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		source:     source,
		sheet:      sheet,
		audit:      audit,
		rosterTab:  opts.RosterTab,
		teamTab:    opts.TeamTab,
		rosterSlot: cache.NewSlot[*sheets.Table](opts.RosterTTL, clock),
		teamSlot:   cache.NewSlot[*sheets.Table](opts.TeamTTL, clock),
		clock:      clock,
		logger:     logger.With().Str("component", "directory").Logger(),
	}
}

// Roster returns the freelancer roster tab, cached on a short TTL
// because the sheet is live-edited.
func (s *Service) Roster(ctx context.Context) (*sheets.Table, error) {
	return s.rosterSlot.GetOrRefresh(ctx, func(ctx context.Context) (*sheets.Table, error) {
		return s.readTab(ctx, s.rosterTab)
	})
}

// Team returns the internal team directory tab, cached on its own TTL.
func (s *Service) Team(ctx context.Context) (*sheets.Table, error) {
	return s.teamSlot.GetOrRefresh(ctx, func(ctx context.Context) (*sheets.Table, error) {
		return s.readTab(ctx, s.teamTab)
	})
}

func (s *Service) readTab(ctx context.Context, tab string) (*sheets.Table, error) {
	values, err := s.sheet.ReadRange(ctx, tab)
	if err != nil {
		return nil, fmt.Errorf("read tab %s: %w", tab, err)
	}
	return sheets.NewTable(values), nil
}

// Sync runs one reconciliation pass: external directory in, minimal
// sheet diff out. The roster is re-read fresh (not from cache) so the
// plan is computed against current cells. Any write invalidates the
// roster slot before Sync returns, so the next read is guaranteed
// fresh.
func (s *Service) Sync(ctx context.Context) (*roster.ApplyResult, error) {
	start := s.clock()

	people, err := s.source.People(ctx)
	if err != nil {
		// A partial directory would deactivate everyone missing from
		// it; without a complete read there is nothing safe to do.
		return nil, fmt.Errorf("fetch directory: %w", err)
	}

	table, err := s.readTab(ctx, s.rosterTab)
	if err != nil {
		return nil, err
	}

	plan, err := roster.Compute(people, table)
	if err != nil {
		return nil, err
	}

	result := roster.Apply(ctx, s.sheet, s.rosterTab, plan, s.logger)

	if !plan.Empty() {
		s.rosterSlot.Invalidate()
	}

	duration := s.clock().Sub(start)
	metrics.Get().RecordSyncRun(duration, result.Added, result.Patched(), result.Failed)

	s.logger.Info().
		Int("added", result.Added).
		Int("role_updates", result.RoleUpdates).
		Int("reactivated", result.Reactivated).
		Int("deactivated", result.Deactivated).
		Int("failed", result.Failed).
		Dur("duration", duration).
		Msg("roster sync completed")

	if err := s.audit.SaveSyncRun(types.SyncRun{
		DateKey:       start.Format("2006-01-02"),
		RunID:         uuid.New().String(),
		StartedAt:     start,
		DurationMS:    duration.Milliseconds(),
		Added:         result.Added,
		RoleUpdates:   result.RoleUpdates,
		Reactivated:   result.Reactivated,
		Deactivated:   result.Deactivated,
		FailedWrites:  result.Failed,
		FailureDetail: result.Failures,
	}); err != nil {
		// Audit is best effort; the sync itself succeeded.
		s.logger.Error().Err(err).Msg("failed to save sync run")
	}

	return result, nil
}

// InvalidateRoster clears the roster cache slot.
func (s *Service) InvalidateRoster() {
	s.rosterSlot.Invalidate()
}

// InvalidateTeam clears the team directory cache slot.
func (s *Service) InvalidateTeam() {
	s.teamSlot.Invalidate()
}
