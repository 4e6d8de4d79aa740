package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/studiomap/crewdeck/internal/auth"
	"github.com/studiomap/crewdeck/internal/directory"
	"github.com/studiomap/crewdeck/internal/history"
	"github.com/studiomap/crewdeck/internal/sheets"
	"github.com/studiomap/crewdeck/internal/types"
)

// stubStore records audit calls and serves canned query results.
type stubStore struct {
	syncRuns     []types.SyncRun
	aggRuns      []types.AggregationRun
	queriedDates []string
	truncated    bool
}

func (s *stubStore) SaveSyncRun(_ types.SyncRun) error               { return nil }
func (s *stubStore) SaveAggregationRun(_ types.AggregationRun) error { return nil }

func (s *stubStore) GetSyncRuns(dateKey string) ([]types.SyncRun, error) {
	s.queriedDates = append(s.queriedDates, dateKey)
	return s.syncRuns, nil
}

func (s *stubStore) GetAggregationRuns(dateKey string) ([]types.AggregationRun, error) {
	s.queriedDates = append(s.queriedDates, dateKey)
	return s.aggRuns, nil
}

func (s *stubStore) TruncateAll() error {
	s.truncated = true
	return nil
}

func newAdminFixture(store *stubStore) *chi.Mux {
	historyService := history.NewService(&fakeFetcher{}, history.Limits{PageSize: 200}, store, time.Minute, nil, zerolog.Nop())

	sheet := sheets.NewMemoryStore()
	sheet.Seed("Freelancers", [][]string{{"Name", "Role", "Status"}})
	sheet.Seed("Team", [][]string{{"Name", "Role"}})
	directoryService := directory.NewService(&fakeSource{}, sheet, store, directory.Options{
		RosterTab: "Freelancers",
		TeamTab:   "Team",
		RosterTTL: time.Minute,
		TeamTTL:   time.Minute,
	}, zerolog.Nop())

	handler := NewAdminHandler(historyService, directoryService, store, zerolog.Nop())

	r := chi.NewRouter()
	r.Get("/api/syncs", handler.GetSyncRuns)
	r.Get("/api/aggregations", handler.GetAggregationRuns)
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(RequireAdmin)
		r.Post("/cache/flush", handler.FlushCaches)
		r.Post("/audit/truncate", handler.TruncateAudit)
	})
	return r
}

func asAdmin(req *http.Request) *http.Request {
	ctx := context.WithValue(req.Context(), auth.UserContextKey, &auth.Claims{
		Email: "admin@studio.local",
		Name:  "Admin",
		Role:  "admin",
	})
	return req.WithContext(ctx)
}

func TestGetSyncRuns(t *testing.T) {
	store := &stubStore{syncRuns: []types.SyncRun{
		{DateKey: "2024-06-15", RunID: "run-1", Added: 2, Deactivated: 1},
	}}
	router := newAdminFixture(store)

	req := httptest.NewRequest(http.MethodGet, "/api/syncs?date=2024-06-15", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var runs []types.SyncRun
	if err := json.Unmarshal(rec.Body.Bytes(), &runs); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != "run-1" {
		t.Errorf("unexpected runs: %v", runs)
	}
	if len(store.queriedDates) != 1 || store.queriedDates[0] != "2024-06-15" {
		t.Errorf("expected query for 2024-06-15, got %v", store.queriedDates)
	}
}

func TestGetSyncRunsRejectsBadDate(t *testing.T) {
	router := newAdminFixture(&stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/syncs?date=June+15", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestGetSyncRunsDefaultsToToday(t *testing.T) {
	store := &stubStore{}
	router := newAdminFixture(store)

	req := httptest.NewRequest(http.MethodGet, "/api/syncs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	today := time.Now().Format("2006-01-02")
	if len(store.queriedDates) != 1 || store.queriedDates[0] != today {
		t.Errorf("expected query for %s, got %v", today, store.queriedDates)
	}
}

func TestGetAggregationRuns(t *testing.T) {
	store := &stubStore{aggRuns: []types.AggregationRun{
		{DateKey: "2024-06-15", RunID: "agg-1", People: 12},
	}}
	router := newAdminFixture(store)

	req := httptest.NewRequest(http.MethodGet, "/api/aggregations?date=2024-06-15", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var runs []types.AggregationRun
	json.Unmarshal(rec.Body.Bytes(), &runs)
	if len(runs) != 1 || runs[0].RunID != "agg-1" {
		t.Errorf("unexpected runs: %v", runs)
	}
}

func TestRequireAdminRejectsMissingClaims(t *testing.T) {
	router := newAdminFixture(&stubStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/audit/truncate", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

func TestRequireAdminRejectsNonAdminRole(t *testing.T) {
	router := newAdminFixture(&stubStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/audit/truncate", nil)
	ctx := context.WithValue(req.Context(), auth.UserContextKey, &auth.Claims{Role: "viewer"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req.WithContext(ctx))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

func TestTruncateAudit(t *testing.T) {
	store := &stubStore{}
	router := newAdminFixture(store)

	req := asAdmin(httptest.NewRequest(http.MethodPost, "/api/admin/audit/truncate", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !store.truncated {
		t.Error("expected TruncateAll to be called")
	}
}

func TestFlushCaches(t *testing.T) {
	router := newAdminFixture(&stubStore{})

	req := asAdmin(httptest.NewRequest(http.MethodPost, "/api/admin/cache/flush", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["status"] != "caches flushed" {
		t.Errorf("unexpected body: %v", body)
	}
}
