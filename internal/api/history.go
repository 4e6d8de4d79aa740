package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/studiomap/crewdeck/internal/history"
	"github.com/studiomap/crewdeck/internal/names"
)

// HistoryHandler provides REST endpoints over the aggregated work-history index
type HistoryHandler struct {
	service *history.Service
	logger  zerolog.Logger
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(service *history.Service, logger zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{
		service: service,
		logger:  logger.With().Str("component", "history_handler").Logger(),
	}
}

// personSummary is the list-view projection of one indexed person.
type personSummary struct {
	FullName        string `json:"fullName"`
	Role            string `json:"role"`
	Engagements     int    `json:"engagements"`
	CurrentBookings int    `json:"currentBookings"`
}

// ListPeople returns a summary of everyone in the index
// GET /api/people
func (h *HistoryHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Index(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to build work-history index")
		http.Error(w, "failed to build index", http.StatusInternalServerError)
		return
	}

	summaries := make([]personSummary, 0, len(result.People))
	for _, p := range result.People {
		summaries = append(summaries, personSummary{
			FullName:        p.FullName,
			Role:            p.Role,
			Engagements:     len(p.Engagements),
			CurrentBookings: len(p.CurrentBookings),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].FullName < summaries[j].FullName
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"people":  summaries,
		"skipped": len(result.Skipped),
		"builtAt": result.BuiltAt,
		"runId":   result.RunID,
	})
}

// GetHistory returns one person's work history plus its text rendering.
// The name match is case- and diacritic-insensitive.
// GET /api/people/{name}/history
func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	result, err := h.service.Index(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to build work-history index")
		http.Error(w, "failed to build index", http.StatusInternalServerError)
		return
	}

	person, ok := result.People[names.Normalize(name)]
	if !ok {
		http.Error(w, "person not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"history": person,
		"summary": history.FormatHistory(person),
	})
}
