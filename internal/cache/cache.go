package cache

import (
	"context"
	"sync"
	"time"

	"github.com/studiomap/crewdeck/internal/metrics"
)

// Clock returns the current time. Injectable so tests can control expiry.
type Clock func() time.Time

// Slot memoizes a single value with a TTL. Constructed once per process
// and passed to callers; there is no ambient global state.
//
// The mutex is held across the refresh, so under OS threads at most one
// fetch per slot is in flight at a time.
type Slot[T any] struct {
	ttl   time.Duration
	clock Clock

	mu          sync.Mutex
	value       T
	refreshedAt time.Time
	valid       bool
}

// NewSlot creates a cache slot with the given TTL. A nil clock defaults
// to time.Now.
func NewSlot[T any](ttl time.Duration, clock Clock) *Slot[T] {
	if clock == nil {
		clock = time.Now
	}
	return &Slot[T]{ttl: ttl, clock: clock}
}

// GetOrRefresh returns the cached value if its age is within the TTL,
// otherwise calls fetch, stores the result with a fresh timestamp and
// returns it. A failed fetch leaves the slot unchanged so the next read
// retries.
func (s *Slot[T]) GetOrRefresh(ctx context.Context, fetch func(context.Context) (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.valid && s.clock().Sub(s.refreshedAt) < s.ttl {
		metrics.Get().RecordCacheHit()
		return s.value, nil
	}
	metrics.Get().RecordCacheMiss()

	value, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	s.value = value
	s.refreshedAt = s.clock()
	s.valid = true
	return value, nil
}

// Peek returns the cached value without refreshing. The second return
// reports whether a live value was present.
func (s *Slot[T]) Peek() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.valid && s.clock().Sub(s.refreshedAt) < s.ttl {
		return s.value, true
	}
	var zero T
	return zero, false
}

// Invalidate clears the slot synchronously. Callers that mutate the
// underlying data must invalidate before reporting success, so the
// next read is guaranteed fresh.
func (s *Slot[T]) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	s.value = zero
	s.valid = false
}
