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
	"github.com/studiomap/crewdeck/internal/directory"
	"github.com/studiomap/crewdeck/internal/sheets"
	"github.com/studiomap/crewdeck/internal/storage"
	"github.com/studiomap/crewdeck/internal/types"
)

type fakeSource struct {
	people []types.Person
	err    error
}

func (f *fakeSource) People(_ context.Context) ([]types.Person, error) {
	return f.people, f.err
}

func newRosterFixture(source *fakeSource) (*chi.Mux, *sheets.MemoryStore) {
	sheet := sheets.NewMemoryStore()
	sheet.Seed("Freelancers", [][]string{
		{"Name", "Role", "Status", "Notes"},
		{"Jane Doe", "Designer", "Active", "prefers remote"},
	})
	sheet.Seed("Team", [][]string{
		{"Name", "Role"},
		{"Sam Lee", "Producer"},
	})

	service := directory.NewService(source, sheet, storage.NewNoopStore(), directory.Options{
		RosterTab: "Freelancers",
		TeamTab:   "Team",
		RosterTTL: time.Minute,
		TeamTTL:   time.Minute,
	}, zerolog.Nop())

	handler := NewRosterHandler(service, zerolog.Nop())

	r := chi.NewRouter()
	r.Get("/api/roster", handler.GetRoster)
	r.Get("/api/team", handler.GetTeam)
	r.Post("/api/roster/sync", handler.SyncRoster)
	return r, sheet
}

func TestGetRoster(t *testing.T) {
	router, _ := newRosterFixture(&fakeSource{})

	req := httptest.NewRequest(http.MethodGet, "/api/roster", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Headers []string            `json:"headers"`
		Rows    []map[string]string `json:"rows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if len(body.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(body.Rows))
	}
	if body.Rows[0]["Name"] != "Jane Doe" || body.Rows[0]["Status"] != "Active" {
		t.Errorf("unexpected row: %v", body.Rows[0])
	}
}

func TestGetTeam(t *testing.T) {
	router, _ := newRosterFixture(&fakeSource{})

	req := httptest.NewRequest(http.MethodGet, "/api/team", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Rows []map[string]string `json:"rows"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if len(body.Rows) != 1 || body.Rows[0]["Name"] != "Sam Lee" {
		t.Errorf("unexpected team rows: %v", body.Rows)
	}
}

func TestSyncRosterAddsNewPerson(t *testing.T) {
	source := &fakeSource{people: []types.Person{
		{ID: "p1", FirstName: "Jane", LastName: "Doe", Role: "Designer"},
		{ID: "p2", FirstName: "New", LastName: "Person", Role: "Editor"},
	}}
	router, sheet := newRosterFixture(source)

	req := httptest.NewRequest(http.MethodPost, "/api/roster/sync", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result struct {
		Added  int `json:"added"`
		Failed int `json:"failed"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if result.Added != 1 {
		t.Errorf("expected 1 addition, got %d", result.Added)
	}
	if result.Failed != 0 {
		t.Errorf("expected no failures, got %d", result.Failed)
	}

	rows, err := sheet.ReadRange(context.Background(), "Freelancers")
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows after sync, got %d", len(rows))
	}
	if rows[2][0] != "New Person" {
		t.Errorf("expected appended row for New Person, got %v", rows[2])
	}
}

func TestSyncRosterFailsWhenDirectoryUnavailable(t *testing.T) {
	source := &fakeSource{err: context.DeadlineExceeded}
	router, sheet := newRosterFixture(source)

	req := httptest.NewRequest(http.MethodPost, "/api/roster/sync", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rec.Code)
	}
	if sheet.WriteCount() != 0 {
		t.Errorf("expected no sheet writes on aborted sync, got %d", sheet.WriteCount())
	}
}
