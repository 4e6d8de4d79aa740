package history

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/studiomap/crewdeck/internal/cache"
	"github.com/studiomap/crewdeck/internal/metrics"
	"github.com/studiomap/crewdeck/internal/storage"
	"github.com/studiomap/crewdeck/internal/types"
)

// Fetcher is the slice of the tracker client the aggregation needs.
type Fetcher interface {
	People(ctx context.Context) ([]types.Person, error)
	Engagements(ctx context.Context, pageSize, maxTotal int) []types.Engagement
	WorkItems(ctx context.Context, pageSize, maxTotal int) []types.WorkItem
	Assignments(ctx context.Context, pageSize, maxTotal int) []types.Assignment
}

// Limits carries the per-relation paging caps.
type Limits struct {
	PageSize       int
	EngagementsMax int
	WorkItemsMax   int
	AssignmentsMax int
}

// Service builds and caches the work-history index and records an
// audit row per run.
type Service struct {
	fetcher Fetcher
	limits  Limits
	store   storage.Store
	slot    *cache.Slot[*Result]
	clock   cache.Clock
	logger  zerolog.Logger
}

// NewService creates the aggregation service. A nil clock defaults to
// time.Now.
func NewService(fetcher Fetcher, limits Limits, store storage.Store, ttl time.Duration, clock cache.Clock, logger zerolog.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		fetcher: fetcher,
		limits:  limits,
		store:   store,
		slot:    cache.NewSlot[*Result](ttl, clock),
		clock:   clock,
		logger:  logger.With().Str("component", "history").Logger(),
	}
}

// Index returns the aggregated index, rebuilding it only when the
// cached copy has expired.
func (s *Service) Index(ctx context.Context) (*Result, error) {
	return s.slot.GetOrRefresh(ctx, s.build)
}

// Invalidate clears the cached index so the next read rebuilds.
func (s *Service) Invalidate() {
	s.slot.Invalidate()
}

// build fetches the four relations and folds them into the index.
// Engagements, work items and assignments have no data dependency on
// each other and are fetched concurrently; the join waits for all of
// them. A failed directory read degrades to an empty identity list so
// the run still produces (mostly skipped, fully reported) output
// instead of failing outright.
func (s *Service) build(ctx context.Context) (*Result, error) {
	start := s.clock()
	input := Input{}

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		people, err := s.fetcher.People(ctx)
		if err != nil {
			metrics.Get().RecordAggregationError()
			s.logger.Warn().Err(err).Msg("directory fetch failed, aggregating without identities")
			return
		}
		input.People = people
	}()
	go func() {
		defer wg.Done()
		input.Engagements = s.fetcher.Engagements(ctx, s.limits.PageSize, s.limits.EngagementsMax)
	}()
	go func() {
		defer wg.Done()
		input.WorkItems = s.fetcher.WorkItems(ctx, s.limits.PageSize, s.limits.WorkItemsMax)
	}()
	go func() {
		defer wg.Done()
		input.Assignments = s.fetcher.Assignments(ctx, s.limits.PageSize, s.limits.AssignmentsMax)
	}()
	wg.Wait()

	result := Build(input, start)
	duration := s.clock().Sub(start)

	metrics.Get().RecordAggregationRun(duration, result.Skipped)

	s.logger.Info().
		Str("run_id", result.RunID).
		Int("people", len(result.People)).
		Int("engagements", len(input.Engagements)).
		Int("work_items", len(input.WorkItems)).
		Int("assignments", len(input.Assignments)).
		Int("skipped", len(result.Skipped)).
		Dur("duration", duration).
		Msg("work-history index built")

	if err := s.store.SaveAggregationRun(types.AggregationRun{
		DateKey:     start.Format("2006-01-02"),
		RunID:       result.RunID,
		StartedAt:   start,
		DurationMS:  duration.Milliseconds(),
		People:      len(result.People),
		Engagements: len(input.Engagements),
		WorkItems:   len(input.WorkItems),
		Assignments: len(input.Assignments),
		Skipped:     len(result.Skipped),
	}); err != nil {
		// Audit is best effort; the index itself is fine.
		s.logger.Error().Err(err).Msg("failed to save aggregation run")
	}

	return result, nil
}
