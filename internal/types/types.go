package types

import "time"

// AssignmentStatus represents the scheduling status of an assignment
// as reported by the project tracker.
type AssignmentStatus string

const (
	AssignmentScheduled AssignmentStatus = "Scheduled"
	AssignmentInPlay    AssignmentStatus = "In-Play"
	AssignmentCompleted AssignmentStatus = "Completed"
	AssignmentCancelled AssignmentStatus = "Cancelled"
)

// RosterStatus represents the Status column values in the roster sheet.
type RosterStatus string

const (
	RosterActive   RosterStatus = "Active"
	RosterInactive RosterStatus = "Inactive"
)

// Person is one entry from the tracker's people directory.
type Person struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	Archived    bool   `json:"archived"`
}

// FullName returns the trimmed concatenation of first and last name,
// falling back to the display name when both parts are empty.
func (p Person) FullName() string {
	name := p.FirstName
	if p.LastName != "" {
		if name != "" {
			name += " "
		}
		name += p.LastName
	}
	if name == "" {
		return p.DisplayName
	}
	return name
}

// Engagement is a billable unit of client work in the tracker.
// PersonIDs holds people assigned directly at the engagement level.
type Engagement struct {
	ID          string   `json:"id"`
	Number      string   `json:"number"`
	Name        string   `json:"name"`
	CompanyName string   `json:"companyName"`
	Status      string   `json:"status"`
	PersonIDs   []string `json:"personIds,omitempty"`
}

// Label returns the human-readable engagement label used in summaries
// and booking dedup ("#1042 Spring Campaign").
func (e Engagement) Label() string {
	if e.Number == "" {
		return e.Name
	}
	return "#" + e.Number + " " + e.Name
}

// WorkItem is a task within an engagement.
type WorkItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	EngagementID string `json:"engagementId"`
}

// Assignment links a person to a work item with logged time and schedule.
type Assignment struct {
	WorkItemID    string           `json:"workItemId"`
	PersonID      string           `json:"personId"`
	LoggedMinutes int              `json:"loggedMinutes"`
	Status        AssignmentStatus `json:"status"`
	StartsOn      string           `json:"startsOn,omitempty"` // YYYY-MM-DD
	EndsOn        string           `json:"endsOn,omitempty"`   // YYYY-MM-DD, empty means open-ended
}

// EngagementSummary is the per-person rollup of one engagement.
type EngagementSummary struct {
	Number      string   `json:"number"`
	Name        string   `json:"name"`
	CompanyName string   `json:"companyName"`
	Status      string   `json:"status"`
	Tasks       []string `json:"tasks"`
	TotalHours  float64  `json:"totalHours"`
}

// Label returns the engagement label for this summary.
func (s EngagementSummary) Label() string {
	if s.Number == "" {
		return s.Name
	}
	return "#" + s.Number + " " + s.Name
}

// Booking is a still-open-or-future assignment for a person.
type Booking struct {
	EngagementLabel string           `json:"engagementLabel"`
	TaskName        string           `json:"taskName"`
	StartsOn        string           `json:"startsOn,omitempty"`
	EndsOn          string           `json:"endsOn,omitempty"`
	Status          AssignmentStatus `json:"status"`
}

// PersonWorkHistory is the denormalized per-person aggregate, keyed
// by normalized full name. Rebuilt from scratch on every run.
type PersonWorkHistory struct {
	FullName        string              `json:"fullName"`
	DisplayName     string              `json:"displayName"`
	Role            string              `json:"role"`
	Engagements     []EngagementSummary `json:"engagements"`
	CurrentBookings []Booking           `json:"currentBookings"`
}

// SkipReason classifies why the aggregation dropped a record.
type SkipReason string

const (
	SkipMissingID         SkipReason = "missing_id"
	SkipUnknownWorkItem   SkipReason = "unknown_work_item"
	SkipUnknownEngagement SkipReason = "unknown_engagement"
	SkipUnknownPerson     SkipReason = "unknown_person"
	SkipNameCollision     SkipReason = "name_collision"
)

// SkippedRecord reports one record the aggregation dropped and why.
// The engine never aborts a run for a single bad record; it collects
// these so callers and tests can assert on them.
type SkippedRecord struct {
	Reason SkipReason `json:"reason"`
	Detail string     `json:"detail"`
}

// SyncRun is the audit record of one roster reconciliation run.
type SyncRun struct {
	DateKey       string    `dynamodbav:"DateKey" json:"dateKey"` // YYYY-MM-DD
	RunID         string    `dynamodbav:"RunID" json:"runId"`
	StartedAt     time.Time `dynamodbav:"StartedAt" json:"startedAt"`
	DurationMS    int64     `dynamodbav:"DurationMS" json:"durationMs"`
	Added         int       `dynamodbav:"Added" json:"added"`
	RoleUpdates   int       `dynamodbav:"RoleUpdates" json:"roleUpdates"`
	Reactivated   int       `dynamodbav:"Reactivated" json:"reactivated"`
	Deactivated   int       `dynamodbav:"Deactivated" json:"deactivated"`
	FailedWrites  int       `dynamodbav:"FailedWrites" json:"failedWrites"`
	FailureDetail []string  `dynamodbav:"FailureDetail,omitempty" json:"failureDetail,omitempty"`
}

// AggregationRun is the audit record of one work-history build.
type AggregationRun struct {
	DateKey     string    `dynamodbav:"DateKey" json:"dateKey"`
	RunID       string    `dynamodbav:"RunID" json:"runId"`
	StartedAt   time.Time `dynamodbav:"StartedAt" json:"startedAt"`
	DurationMS  int64     `dynamodbav:"DurationMS" json:"durationMs"`
	People      int       `dynamodbav:"People" json:"people"`
	Engagements int       `dynamodbav:"Engagements" json:"engagements"`
	WorkItems   int       `dynamodbav:"WorkItems" json:"workItems"`
	Assignments int       `dynamodbav:"Assignments" json:"assignments"`
	Skipped     int       `dynamodbav:"Skipped" json:"skipped"`
}
