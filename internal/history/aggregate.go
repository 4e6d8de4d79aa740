package history

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/studiomap/crewdeck/internal/names"
	"github.com/studiomap/crewdeck/internal/types"
)

// Input holds the four independently fetched relations the join
// combines. Engagements may carry directly-assigned person ids;
// assignments reference work items which reference engagements.
type Input struct {
	People      []types.Person
	Engagements []types.Engagement
	WorkItems   []types.WorkItem
	Assignments []types.Assignment
}

// Result is one aggregation run. People is keyed by normalized full
// name. Skipped lists every record the run dropped, so partial results
// stay observable instead of vanishing into a log line.
type Result struct {
	People  map[string]*types.PersonWorkHistory
	Skipped []types.SkippedRecord
	RunID   string
	BuiltAt time.Time
}

// engagementAccum accumulates one person+engagement rollup before
// finalization. Hours are kept as raw minutes until the end so rounding
// error never accumulates.
type engagementAccum struct {
	summary  types.EngagementSummary
	taskSeen map[string]bool
	tasks    []string
	minutes  int
}

// personAccum tracks one person's engagement map in first-seen order.
type personAccum struct {
	history  *types.PersonWorkHistory
	order    []string
	byID     map[string]*engagementAccum
	bookings []types.Booking
}

type builder struct {
	today       string // YYYY-MM-DD
	peopleByID  map[string]types.Person
	engagements map[string]types.Engagement
	workItems   map[string]types.WorkItem
	accums      map[string]*personAccum
	result      *Result
}

// Build folds the input relations into per-person work histories.
// The whole structure is rebuilt from scratch on every call; the cache
// layer decides whether a rebuild executes at all.
//
// Two passes, both required: engagement-level assignment (who is "on"
// an engagement) and task-level assignment (who logged hours on which
// task) come from different relations that can each independently be
// the only data for a given engagement. Neither pass may lose a person
// the other one missed, and a person appearing in both must end up
// with a single summary per engagement.
func Build(input Input, today time.Time) *Result {
	b := &builder{
		today:       today.Format("2006-01-02"),
		peopleByID:  make(map[string]types.Person, len(input.People)),
		engagements: make(map[string]types.Engagement, len(input.Engagements)),
		workItems:   make(map[string]types.WorkItem, len(input.WorkItems)),
		accums:      make(map[string]*personAccum),
		result: &Result{
			People:  make(map[string]*types.PersonWorkHistory),
			Skipped: make([]types.SkippedRecord, 0),
			RunID:   uuid.New().String(),
			BuiltAt: today,
		},
	}

	b.indexRelations(input)
	b.engagementPass(input.Engagements)
	b.taskPass(input.Assignments)
	b.finalize()
	return b.result
}

func (b *builder) skip(reason types.SkipReason, format string, args ...interface{}) {
	b.result.Skipped = append(b.result.Skipped, types.SkippedRecord{
		Reason: reason,
		Detail: fmt.Sprintf(format, args...),
	})
}

// indexRelations builds the foreign-key lookup maps and reports
// identity collisions: two distinct directory ids normalizing to the
// same full name silently merge into one history, which is a latent
// correctness risk the caller should be able to see.
func (b *builder) indexRelations(input Input) {
	idsByName := make(map[string]string)
	for _, p := range input.People {
		if p.ID == "" {
			b.skip(types.SkipMissingID, "person %q has no id", p.FullName())
			continue
		}
		b.peopleByID[p.ID] = p

		key := names.Normalize(p.FullName())
		if key == "" {
			continue
		}
		if prior, seen := idsByName[key]; seen && prior != p.ID {
			b.skip(types.SkipNameCollision, "ids %s and %s both normalize to %q", prior, p.ID, key)
			continue
		}
		idsByName[key] = p.ID
	}

	for _, e := range input.Engagements {
		if e.ID == "" {
			b.skip(types.SkipMissingID, "engagement %q has no id", e.Name)
			continue
		}
		b.engagements[e.ID] = e
	}

	for _, w := range input.WorkItems {
		if w.ID == "" {
			b.skip(types.SkipMissingID, "work item %q has no id", w.Name)
			continue
		}
		b.workItems[w.ID] = w
	}
}

// ensure returns the accumulators for a person and engagement, lazily
// creating both. Dedup happens here: the same engagement reached via
// the engagement-level and the task-level relation collapses into one
// accumulator keyed by engagement id.
func (b *builder) ensure(person types.Person, engagement types.Engagement) *engagementAccum {
	key := names.Normalize(person.FullName())

	pa, ok := b.accums[key]
	if !ok {
		pa = &personAccum{
			history: &types.PersonWorkHistory{
				FullName:    person.FullName(),
				DisplayName: person.DisplayName,
				Role:        person.Role,
			},
			byID: make(map[string]*engagementAccum),
		}
		b.accums[key] = pa
	}

	ea, ok := pa.byID[engagement.ID]
	if !ok {
		ea = &engagementAccum{
			summary: types.EngagementSummary{
				Number:      engagement.Number,
				Name:        engagement.Name,
				CompanyName: engagement.CompanyName,
				Status:      engagement.Status,
			},
			taskSeen: make(map[string]bool),
		}
		pa.byID[engagement.ID] = ea
		pa.order = append(pa.order, engagement.ID)
	}
	return ea
}

// engagementPass records every person directly listed on an engagement,
// creating empty summaries so people with no logged task hours still
// appear in the index.
func (b *builder) engagementPass(engagements []types.Engagement) {
	for _, e := range engagements {
		if e.ID == "" {
			continue // already reported during indexing
		}
		for _, personID := range e.PersonIDs {
			person, ok := b.peopleByID[personID]
			if !ok {
				b.skip(types.SkipUnknownPerson, "engagement %s lists unknown person %s", e.ID, personID)
				continue
			}
			b.ensure(person, e)
		}
	}
}

// taskPass folds task-level assignments into the summaries: task names,
// logged minutes and current bookings. Unresolvable foreign keys drop
// the single offending record, never the run.
func (b *builder) taskPass(assignments []types.Assignment) {
	for _, a := range assignments {
		if a.WorkItemID == "" || a.PersonID == "" {
			b.skip(types.SkipMissingID, "assignment missing work item or person id")
			continue
		}

		workItem, ok := b.workItems[a.WorkItemID]
		if !ok {
			b.skip(types.SkipUnknownWorkItem, "assignment references unknown work item %s", a.WorkItemID)
			continue
		}
		engagement, ok := b.engagements[workItem.EngagementID]
		if !ok {
			b.skip(types.SkipUnknownEngagement, "work item %s references unknown engagement %s", workItem.ID, workItem.EngagementID)
			continue
		}
		person, ok := b.peopleByID[a.PersonID]
		if !ok {
			b.skip(types.SkipUnknownPerson, "assignment on work item %s references unknown person %s", workItem.ID, a.PersonID)
			continue
		}

		ea := b.ensure(person, engagement)
		if workItem.Name != "" && !ea.taskSeen[workItem.Name] {
			ea.taskSeen[workItem.Name] = true
			ea.tasks = append(ea.tasks, workItem.Name)
		}
		ea.minutes += a.LoggedMinutes

		if b.isCurrent(a) {
			pa := b.accums[names.Normalize(person.FullName())]
			pa.bookings = append(pa.bookings, types.Booking{
				EngagementLabel: engagement.Label(),
				TaskName:        workItem.Name,
				StartsOn:        a.StartsOn,
				EndsOn:          a.EndsOn,
				Status:          a.Status,
			})
		}
	}
}

// isCurrent applies the booking rule: scheduled or in-play, and either
// open-ended or ending today or later. ISO dates compare lexically.
func (b *builder) isCurrent(a types.Assignment) bool {
	if a.Status != types.AssignmentScheduled && a.Status != types.AssignmentInPlay {
		return false
	}
	return a.EndsOn == "" || a.EndsOn >= b.today
}

// finalize flattens each accumulator into its public shape: engagement
// maps become lists in first-seen order, minutes become hours rounded
// to one decimal, and bookings are deduplicated by engagement label.
func (b *builder) finalize() {
	for key, pa := range b.accums {
		for _, engagementID := range pa.order {
			ea := pa.byID[engagementID]
			summary := ea.summary
			summary.Tasks = ea.tasks
			if summary.Tasks == nil {
				summary.Tasks = []string{}
			}
			summary.TotalHours = math.Round(float64(ea.minutes)/60*10) / 10
			pa.history.Engagements = append(pa.history.Engagements, summary)
		}

		seen := make(map[string]bool, len(pa.bookings))
		pa.history.CurrentBookings = make([]types.Booking, 0, len(pa.bookings))
		for _, booking := range pa.bookings {
			if seen[booking.EngagementLabel] {
				continue
			}
			seen[booking.EngagementLabel] = true
			pa.history.CurrentBookings = append(pa.history.CurrentBookings, booking)
		}

		b.result.People[key] = pa.history
	}
}
