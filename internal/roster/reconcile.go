package roster

import (
	"fmt"
	"strings"

	"github.com/studiomap/crewdeck/internal/names"
	"github.com/studiomap/crewdeck/internal/sheets"
	"github.com/studiomap/crewdeck/internal/types"
)

// PatchKind classifies a queued single-cell patch.
type PatchKind string

const (
	PatchRoleUpdate PatchKind = "role_update"
	PatchReactivate PatchKind = "reactivate"
	PatchDeactivate PatchKind = "deactivate"
)

// Patch is one queued single-cell write. It addresses exactly one cell;
// manually curated columns are never part of a patch.
type Patch struct {
	Kind   PatchKind `json:"kind"`
	Name   string    `json:"name"`
	Column string    `json:"column"`
	Row    int       `json:"row"`
	Value  string    `json:"value"`
}

// Plan is the minimal diff between the external directory and the
// roster sheet: new rows to append plus individual cell patches.
type Plan struct {
	Additions []AddedRow `json:"additions"`
	Patches   []Patch    `json:"patches"`

	rows [][]string // addition rows shaped to the sheet's headers
}

// AddedRow describes one queued roster addition.
type AddedRow struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Empty reports whether the plan contains no writes. Reconciling twice
// against unchanged inputs must produce an empty second plan.
func (p *Plan) Empty() bool {
	return len(p.Additions) == 0 && len(p.Patches) == 0
}

// AppendRows returns the addition rows shaped to the sheet's columns.
func (p *Plan) AppendRows() [][]string {
	return p.rows
}

// Compute builds the reconciliation plan. The external directory is
// authoritative for identity, role and active status; the sheet is
// authoritative for every other column, which the plan never touches.
//
// The sheet's Name column is located by header; without it no safe
// match is possible and the whole reconciliation aborts with no writes.
func Compute(directory []types.Person, table *sheets.Table) (*Plan, error) {
	nameCol, ok := table.Column("Name")
	if !ok {
		return nil, fmt.Errorf("roster sheet has no Name column")
	}
	roleCol, hasRole := table.Column("Role")
	statusCol, hasStatus := table.Column("Status")

	// Normalized name -> first matching sheet row.
	rowByName := make(map[string]int)
	for i := range table.Rows {
		key := names.Normalize(table.Cell(i, "Name"))
		if key == "" {
			continue
		}
		if _, seen := rowByName[key]; !seen {
			rowByName[key] = i
		}
	}

	// Normalized name -> active external record.
	active := make(map[string]types.Person)
	for _, p := range directory {
		if p.Archived {
			continue
		}
		key := names.Normalize(p.FullName())
		if key == "" {
			continue
		}
		if _, seen := active[key]; !seen {
			active[key] = p
		}
	}

	plan := &Plan{}

	for _, p := range directory {
		if p.Archived {
			continue
		}
		key := names.Normalize(p.FullName())
		if key == "" {
			continue
		}

		row, present := rowByName[key]
		if !present {
			if rec, first := active[key]; first && rec.ID == p.ID {
				plan.addRow(table, nameCol, roleCol, statusCol, hasRole, hasStatus, p)
			}
			continue
		}

		if hasRole && p.Role != "" && table.Cell(row, "Role") != p.Role {
			plan.Patches = append(plan.Patches, Patch{
				Kind:   PatchRoleUpdate,
				Name:   p.FullName(),
				Column: sheets.ColumnLetter(roleCol),
				Row:    table.RowNumber(row),
				Value:  p.Role,
			})
		}
	}

	if hasStatus {
		for i := range table.Rows {
			name := table.Cell(i, "Name")
			key := names.Normalize(name)
			if key == "" {
				continue
			}
			status := strings.ToLower(table.Cell(i, "Status"))

			if _, isActive := active[key]; isActive {
				if status != strings.ToLower(string(types.RosterActive)) {
					plan.Patches = append(plan.Patches, Patch{
						Kind:   PatchReactivate,
						Name:   name,
						Column: sheets.ColumnLetter(statusCol),
						Row:    table.RowNumber(i),
						Value:  string(types.RosterActive),
					})
				}
			} else if status != strings.ToLower(string(types.RosterInactive)) {
				plan.Patches = append(plan.Patches, Patch{
					Kind:   PatchDeactivate,
					Name:   name,
					Column: sheets.ColumnLetter(statusCol),
					Row:    table.RowNumber(i),
					Value:  string(types.RosterInactive),
				})
			}
		}
	}

	return plan, nil
}

// addRow queues a roster addition: Name and Role populated, Status set
// active, every other column left blank.
func (p *Plan) addRow(table *sheets.Table, nameCol, roleCol, statusCol int, hasRole, hasStatus bool, person types.Person) {
	width := len(table.Headers)
	if width == 0 {
		width = nameCol + 1
	}
	row := make([]string, width)
	row[nameCol] = person.FullName()
	if hasRole {
		row[roleCol] = person.Role
	}
	if hasStatus {
		row[statusCol] = string(types.RosterActive)
	}

	p.Additions = append(p.Additions, AddedRow{Name: person.FullName(), Role: person.Role})
	p.rows = append(p.rows, row)
}
