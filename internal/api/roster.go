package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/studiomap/crewdeck/internal/directory"
	"github.com/studiomap/crewdeck/internal/sheets"
)

// RosterHandler provides REST endpoints over the spreadsheet-backed directory
type RosterHandler struct {
	service *directory.Service
	logger  zerolog.Logger
}

// NewRosterHandler creates a new RosterHandler
func NewRosterHandler(service *directory.Service, logger zerolog.Logger) *RosterHandler {
	return &RosterHandler{
		service: service,
		logger:  logger.With().Str("component", "roster_handler").Logger(),
	}
}

// tableRows projects a sheet table into one JSON object per row, keyed
// by the header names so callers never depend on column positions.
func tableRows(table *sheets.Table) []map[string]string {
	rows := make([]map[string]string, 0, len(table.Rows))
	for i := range table.Rows {
		row := make(map[string]string, len(table.Headers))
		for _, header := range table.Headers {
			if header == "" {
				continue
			}
			row[header] = table.Cell(i, header)
		}
		rows = append(rows, row)
	}
	return rows
}

// GetRoster returns the cached freelancer roster rows
// GET /api/roster
func (h *RosterHandler) GetRoster(w http.ResponseWriter, r *http.Request) {
	table, err := h.service.Roster(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to read roster")
		http.Error(w, "failed to read roster", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"headers": table.Headers,
		"rows":    tableRows(table),
	})
}

// GetTeam returns the cached internal team directory rows
// GET /api/team
func (h *RosterHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	table, err := h.service.Team(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to read team directory")
		http.Error(w, "failed to read team directory", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"headers": table.Headers,
		"rows":    tableRows(table),
	})
}

// SyncRoster runs one reconciliation pass immediately
// POST /api/roster/sync
func (h *RosterHandler) SyncRoster(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Sync(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("roster sync failed")
		http.Error(w, "roster sync failed", http.StatusBadGateway)
		return
	}

	status := http.StatusOK
	if result.Failed > 0 {
		// Partial success: some writes landed, some did not.
		status = http.StatusMultiStatus
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(result)
}
