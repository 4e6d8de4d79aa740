package roster

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/studiomap/crewdeck/internal/sheets"
)

// ApplyResult reports what a plan application actually wrote.
// Failures carry per-item detail: a failed patch never aborts the
// remaining queued writes, and because the plan computation is
// idempotent, re-running the sync is the recovery mechanism.
type ApplyResult struct {
	Added       int      `json:"added"`
	RoleUpdates int      `json:"roleUpdates"`
	Reactivated int      `json:"reactivated"`
	Deactivated int      `json:"deactivated"`
	Failed      int      `json:"failed"`
	Failures    []string `json:"failures,omitempty"`
}

// Patched returns the number of successful single-cell patches.
func (r *ApplyResult) Patched() int {
	return r.RoleUpdates + r.Reactivated + r.Deactivated
}

// Apply writes a plan to the sheet: all additions as a single batched
// append, then each patch as an individual single-cell write.
func Apply(ctx context.Context, store sheets.Store, tab string, plan *Plan, logger zerolog.Logger) *ApplyResult {
	result := &ApplyResult{}

	if rows := plan.AppendRows(); len(rows) > 0 {
		if err := store.AppendRows(ctx, tab, rows); err != nil {
			logger.Error().Err(err).Int("rows", len(rows)).Msg("failed to append roster rows")
			result.Failed += len(rows)
			result.Failures = append(result.Failures, fmt.Sprintf("append %d rows: %v", len(rows), err))
		} else {
			result.Added = len(rows)
		}
	}

	for _, patch := range plan.Patches {
		if err := store.UpdateCell(ctx, tab, patch.Column, patch.Row, patch.Value); err != nil {
			logger.Error().Err(err).
				Str("kind", string(patch.Kind)).
				Str("name", patch.Name).
				Str("cell", fmt.Sprintf("%s%d", patch.Column, patch.Row)).
				Msg("failed to patch roster cell")
			result.Failed++
			result.Failures = append(result.Failures, fmt.Sprintf("%s for %s: %v", patch.Kind, patch.Name, err))
			continue
		}

		switch patch.Kind {
		case PatchRoleUpdate:
			result.RoleUpdates++
		case PatchReactivate:
			result.Reactivated++
		case PatchDeactivate:
			result.Deactivated++
		}
	}

	return result
}
