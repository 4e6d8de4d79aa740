package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/studiomap/crewdeck/internal/auth"
	"github.com/studiomap/crewdeck/internal/directory"
	"github.com/studiomap/crewdeck/internal/history"
	"github.com/studiomap/crewdeck/internal/storage"
	"github.com/studiomap/crewdeck/internal/types"
)

// AdminHandler exposes audit queries and local reset operations
type AdminHandler struct {
	historySvc   *history.Service
	directorySvc *directory.Service
	store        storage.Store
	logger       zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(historySvc *history.Service, directorySvc *directory.Service, store storage.Store, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		historySvc:   historySvc,
		directorySvc: directorySvc,
		store:        store,
		logger:       logger.With().Str("component", "admin_handler").Logger(),
	}
}

// RequireAdmin middleware — only admin role allowed
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.GetUserFromContext(r.Context())
		if !ok || !auth.HasRole(claims, "admin") {
			w.Header().Set("Content-Type", "application/json")
			http.Error(w, `{"error":"admin role required"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// dateParam returns the validated ?date= query parameter, defaulting to
// today when absent.
func dateParam(r *http.Request) (string, bool) {
	date := r.URL.Query().Get("date")
	if date == "" {
		return time.Now().Format("2006-01-02"), true
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", false
	}
	return date, true
}

// GetSyncRuns returns roster sync audit records for a date
// GET /api/syncs?date=YYYY-MM-DD
func (h *AdminHandler) GetSyncRuns(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(r)
	if !ok {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	runs, err := h.store.GetSyncRuns(date)
	if err != nil {
		h.logger.Error().Err(err).Str("date", date).Msg("failed to get sync runs")
		http.Error(w, "failed to retrieve sync runs", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []types.SyncRun{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

// GetAggregationRuns returns aggregation audit records for a date
// GET /api/aggregations?date=YYYY-MM-DD
func (h *AdminHandler) GetAggregationRuns(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(r)
	if !ok {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	runs, err := h.store.GetAggregationRuns(date)
	if err != nil {
		h.logger.Error().Err(err).Str("date", date).Msg("failed to get aggregation runs")
		http.Error(w, "failed to retrieve aggregation runs", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []types.AggregationRun{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

// FlushCaches drops every cached slot so the next reads rebuild
// POST /api/admin/cache/flush
func (h *AdminHandler) FlushCaches(w http.ResponseWriter, r *http.Request) {
	h.historySvc.Invalidate()
	h.directorySvc.InvalidateRoster()
	h.directorySvc.InvalidateTeam()

	h.logger.Info().Msg("caches flushed")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "caches flushed"})
}

// TruncateAudit deletes all audit records
// POST /api/admin/audit/truncate
func (h *AdminHandler) TruncateAudit(w http.ResponseWriter, r *http.Request) {
	if err := h.store.TruncateAll(); err != nil {
		h.logger.Error().Err(err).Msg("failed to truncate audit tables")
		http.Error(w, "failed to truncate audit tables", http.StatusInternalServerError)
		return
	}

	h.logger.Info().Msg("audit tables truncated")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "audit truncated"})
}
