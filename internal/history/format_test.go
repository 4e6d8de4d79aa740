package history

import (
	"fmt"
	"strings"
	"testing"

	"github.com/studiomap/crewdeck/internal/types"
)

func TestFormatHistory(t *testing.T) {
	h := &types.PersonWorkHistory{
		FullName: "Jane Doe",
		Role:     "Designer",
		Engagements: []types.EngagementSummary{
			{Number: "1042", Name: "Spring Campaign", CompanyName: "Acme", Tasks: []string{"Storyboard", "Edit"}, TotalHours: 12.5},
			{Number: "1043", Name: "Rebrand", CompanyName: "Globex", Tasks: []string{}, TotalHours: 0.5},
		},
		CurrentBookings: []types.Booking{
			{EngagementLabel: "#1042 Spring Campaign", TaskName: "Edit", EndsOn: "2024-07-01", Status: types.AssignmentInPlay},
		},
	}

	out := FormatHistory(h)

	if !strings.Contains(out, "Jane Doe (Designer)") {
		t.Errorf("missing header line:\n%s", out)
	}
	if !strings.Contains(out, "#1042 Spring Campaign for Acme: Storyboard, Edit (12.5h logged)") {
		t.Errorf("missing engagement line:\n%s", out)
	}
	// Hours under 1 are not shown.
	if strings.Contains(out, "0.5h") {
		t.Errorf("sub-hour totals should be omitted:\n%s", out)
	}
	if !strings.Contains(out, "Currently booked:") {
		t.Errorf("missing bookings section:\n%s", out)
	}
	if !strings.Contains(out, "#1042 Spring Campaign: Edit until 2024-07-01") {
		t.Errorf("missing booking line:\n%s", out)
	}
}

func TestFormatHistoryCapsLists(t *testing.T) {
	h := &types.PersonWorkHistory{FullName: "Busy Person"}
	for i := 0; i < 15; i++ {
		h.Engagements = append(h.Engagements, types.EngagementSummary{
			Number: fmt.Sprintf("%d", 2000+i),
			Name:   "Job",
			Tasks:  []string{"a", "b", "c", "d", "e"},
		})
		h.CurrentBookings = append(h.CurrentBookings, types.Booking{
			EngagementLabel: fmt.Sprintf("#%d Job", 2000+i),
		})
	}

	out := FormatHistory(h)

	if got := strings.Count(out, "- #"); got != maxEngagements+maxBookings {
		t.Errorf("expected %d capped lines, got %d:\n%s", maxEngagements+maxBookings, got, out)
	}
	if strings.Contains(out, "d, e") {
		t.Errorf("tasks should be capped at %d:\n%s", maxTasks, out)
	}
}

func TestFormatHistoryNoEngagements(t *testing.T) {
	h := &types.PersonWorkHistory{FullName: "New Person", Role: "Editor"}
	out := FormatHistory(h)

	if !strings.Contains(out, "No recorded engagements.") {
		t.Errorf("missing empty-state line:\n%s", out)
	}
	if strings.Contains(out, "Currently booked:") {
		t.Errorf("unexpected bookings section:\n%s", out)
	}
}

func TestFormatHistoryOpenEndedBooking(t *testing.T) {
	h := &types.PersonWorkHistory{
		FullName: "Jane Doe",
		CurrentBookings: []types.Booking{
			{EngagementLabel: "#1042 Spring Campaign", TaskName: "Edit"},
		},
	}
	out := FormatHistory(h)

	if !strings.Contains(out, "(open-ended)") {
		t.Errorf("missing open-ended marker:\n%s", out)
	}
}
