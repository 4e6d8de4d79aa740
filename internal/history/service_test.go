package history

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/studiomap/crewdeck/internal/storage"
	"github.com/studiomap/crewdeck/internal/types"
)

type countingFetcher struct {
	calls       atomic.Int32
	people      []types.Person
	peopleErr   error
	engagements []types.Engagement
	workItems   []types.WorkItem
	assignments []types.Assignment
}

func (f *countingFetcher) People(_ context.Context) ([]types.Person, error) {
	f.calls.Add(1)
	return f.people, f.peopleErr
}

func (f *countingFetcher) Engagements(_ context.Context, _, _ int) []types.Engagement {
	return f.engagements
}

func (f *countingFetcher) WorkItems(_ context.Context, _, _ int) []types.WorkItem {
	return f.workItems
}

func (f *countingFetcher) Assignments(_ context.Context, _, _ int) []types.Assignment {
	return f.assignments
}

func TestServiceCachesIndexWithinTTL(t *testing.T) {
	fetcher := &countingFetcher{
		people: []types.Person{{ID: "p1", FirstName: "Jane", LastName: "Doe"}},
	}
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	service := NewService(fetcher, Limits{PageSize: 200}, storage.NewNoopStore(), 30*time.Minute, clock, zerolog.Nop())

	first, err := service.Index(context.Background())
	if err != nil {
		t.Fatalf("first index build failed: %v", err)
	}
	second, err := service.Index(context.Background())
	if err != nil {
		t.Fatalf("second index read failed: %v", err)
	}

	if first.RunID != second.RunID {
		t.Errorf("expected cached result, got run ids %s and %s", first.RunID, second.RunID)
	}
	if got := fetcher.calls.Load(); got != 1 {
		t.Errorf("expected 1 directory fetch, got %d", got)
	}
}

func TestServiceRebuildsAfterTTLExpiry(t *testing.T) {
	fetcher := &countingFetcher{}
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	service := NewService(fetcher, Limits{PageSize: 200}, storage.NewNoopStore(), 30*time.Minute, clock, zerolog.Nop())

	first, _ := service.Index(context.Background())
	now = now.Add(31 * time.Minute)
	second, _ := service.Index(context.Background())

	if first.RunID == second.RunID {
		t.Error("expected a fresh build after TTL expiry")
	}
	if got := fetcher.calls.Load(); got != 2 {
		t.Errorf("expected 2 directory fetches, got %d", got)
	}
}

func TestServiceInvalidateForcesRebuild(t *testing.T) {
	fetcher := &countingFetcher{}
	service := NewService(fetcher, Limits{PageSize: 200}, storage.NewNoopStore(), time.Hour, nil, zerolog.Nop())

	first, _ := service.Index(context.Background())
	service.Invalidate()
	second, _ := service.Index(context.Background())

	if first.RunID == second.RunID {
		t.Error("expected invalidation to force a rebuild")
	}
}

func TestServiceDegradesWhenDirectoryFails(t *testing.T) {
	fetcher := &countingFetcher{
		peopleErr:   errors.New("directory down"),
		engagements: []types.Engagement{{ID: "e1", Name: "Rebrand", PersonIDs: []string{"p1"}}},
	}
	service := NewService(fetcher, Limits{PageSize: 200}, storage.NewNoopStore(), time.Hour, nil, zerolog.Nop())

	result, err := service.Index(context.Background())
	if err != nil {
		t.Fatalf("expected degraded build, got error: %v", err)
	}

	if len(result.People) != 0 {
		t.Errorf("expected empty index without identities, got %d people", len(result.People))
	}
	// The engagement's person reference becomes a reported skip, not a loss.
	found := false
	for _, s := range result.Skipped {
		if s.Reason == types.SkipUnknownPerson {
			found = true
		}
	}
	if !found {
		t.Error("expected an unknown_person skip for the unresolvable reference")
	}
}
