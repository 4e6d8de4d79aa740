package storage

import "github.com/studiomap/crewdeck/internal/types"

// Store defines the audit storage interface
type Store interface {
	SaveSyncRun(run types.SyncRun) error
	SaveAggregationRun(run types.AggregationRun) error
	GetSyncRuns(dateKey string) ([]types.SyncRun, error)
	GetAggregationRuns(dateKey string) ([]types.AggregationRun, error)
	TruncateAll() error
}

// NoopStore is a no-op implementation when DynamoDB is disabled
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (s *NoopStore) SaveSyncRun(_ types.SyncRun) error               { return nil }
func (s *NoopStore) SaveAggregationRun(_ types.AggregationRun) error { return nil }
func (s *NoopStore) GetSyncRuns(_ string) ([]types.SyncRun, error)   { return nil, nil }
func (s *NoopStore) GetAggregationRuns(_ string) ([]types.AggregationRun, error) {
	return nil, nil
}
func (s *NoopStore) TruncateAll() error { return nil }
