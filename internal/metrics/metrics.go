package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/studiomap/crewdeck/internal/types"
)

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Aggregation metrics
	AggregationRunsTotal    int64
	AggregationErrorsTotal  int64
	RecordsSkippedTotal     int64
	lastAggregationDuration time.Duration
	skippedByReason         map[types.SkipReason]int64

	// Reconciliation metrics
	SyncRunsTotal     int64
	SheetWritesTotal  int64
	SheetWriteErrors  int64
	RowsAddedTotal    int64
	CellsPatchedTotal int64
	lastSyncDuration  time.Duration

	// Tracker metrics
	TrackerPagesTotal  int64
	TrackerErrorsTotal int64

	// Cache metrics
	CacheHitsTotal   int64
	CacheMissesTotal int64

	// HTTP metrics
	httpRequestsTotal map[string]map[int]int64 // endpoint -> status -> count

	// Timing
	startTime time.Time
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			skippedByReason:   make(map[types.SkipReason]int64),
			httpRequestsTotal: make(map[string]map[int]int64),
			startTime:         time.Now(),
		}
	})
	return instance
}

// RecordAggregationRun records a completed aggregation run
func (m *Metrics) RecordAggregationRun(duration time.Duration, skipped []types.SkippedRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AggregationRunsTotal++
	m.lastAggregationDuration = duration
	m.RecordsSkippedTotal += int64(len(skipped))
	for _, s := range skipped {
		m.skippedByReason[s.Reason]++
	}
}

// RecordAggregationError increments the aggregation error counter
func (m *Metrics) RecordAggregationError() {
	m.mu.Lock()
	m.AggregationErrorsTotal++
	m.mu.Unlock()
}

// RecordSyncRun records a completed reconciliation run
func (m *Metrics) RecordSyncRun(duration time.Duration, added, patched, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SyncRunsTotal++
	m.lastSyncDuration = duration
	m.RowsAddedTotal += int64(added)
	m.CellsPatchedTotal += int64(patched)
	m.SheetWritesTotal += int64(added + patched)
	m.SheetWriteErrors += int64(failed)
}

// RecordTrackerPage increments the fetched page counter
func (m *Metrics) RecordTrackerPage() {
	m.mu.Lock()
	m.TrackerPagesTotal++
	m.mu.Unlock()
}

// RecordTrackerError increments the tracker error counter
func (m *Metrics) RecordTrackerError() {
	m.mu.Lock()
	m.TrackerErrorsTotal++
	m.mu.Unlock()
}

// RecordCacheHit increments the cache hit counter
func (m *Metrics) RecordCacheHit() {
	m.mu.Lock()
	m.CacheHitsTotal++
	m.mu.Unlock()
}

// RecordCacheMiss increments the cache miss counter
func (m *Metrics) RecordCacheMiss() {
	m.mu.Lock()
	m.CacheMissesTotal++
	m.mu.Unlock()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(endpoint string, statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.httpRequestsTotal[endpoint] == nil {
		m.httpRequestsTotal[endpoint] = make(map[int]int64)
	}
	m.httpRequestsTotal[endpoint][statusCode]++
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		// Helper to write metric
		write := func(name string, value interface{}, labels ...string) {
			labelStr := ""
			if len(labels) > 0 {
				labelStr = "{"
				for i := 0; i < len(labels); i += 2 {
					if i > 0 {
						labelStr += ","
					}
					labelStr += labels[i] + "=\"" + labels[i+1] + "\""
				}
				labelStr += "}"
			}

			switch v := value.(type) {
			case int:
				w.Write([]byte(name + labelStr + " " + strconv.Itoa(v) + "\n"))
			case int64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatInt(v, 10) + "\n"))
			case float64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatFloat(v, 'f', 6, 64) + "\n"))
			}
		}

		// System metrics
		write("crewdeck_uptime_seconds", time.Since(m.startTime).Seconds())

		// Aggregation metrics
		write("crewdeck_aggregation_runs_total", m.AggregationRunsTotal)
		write("crewdeck_aggregation_errors_total", m.AggregationErrorsTotal)
		write("crewdeck_aggregation_duration_seconds", m.lastAggregationDuration.Seconds())
		write("crewdeck_records_skipped_total", m.RecordsSkippedTotal)
		for reason, count := range m.skippedByReason {
			write("crewdeck_records_skipped_by_reason", count, "reason", string(reason))
		}

		// Reconciliation metrics
		write("crewdeck_sync_runs_total", m.SyncRunsTotal)
		write("crewdeck_sync_duration_seconds", m.lastSyncDuration.Seconds())
		write("crewdeck_sheet_writes_total", m.SheetWritesTotal)
		write("crewdeck_sheet_write_errors_total", m.SheetWriteErrors)
		write("crewdeck_rows_added_total", m.RowsAddedTotal)
		write("crewdeck_cells_patched_total", m.CellsPatchedTotal)

		// Tracker metrics
		write("crewdeck_tracker_pages_total", m.TrackerPagesTotal)
		write("crewdeck_tracker_errors_total", m.TrackerErrorsTotal)

		// Cache metrics
		write("crewdeck_cache_hits_total", m.CacheHitsTotal)
		write("crewdeck_cache_misses_total", m.CacheMissesTotal)

		// HTTP metrics
		for endpoint, statusCodes := range m.httpRequestsTotal {
			for status, count := range statusCodes {
				write("crewdeck_http_requests_total", count, "endpoint", endpoint, "status", strconv.Itoa(status))
			}
		}
	}
}
