package history

import (
	"fmt"
	"strings"

	"github.com/studiomap/crewdeck/internal/types"
)

const (
	// maxEngagements bounds how many engagements a person's summary shows.
	maxEngagements = 10
	// maxTasks bounds how many task names appear per engagement line.
	maxTasks = 3
	// maxBookings bounds how many current bookings are flagged.
	maxBookings = 3
)

// FormatHistory renders one person's work history as the plain text
// handed to the language-model layer. It is a pure projection of
// PersonWorkHistory and the only thing this package exposes outward.
func FormatHistory(h *types.PersonWorkHistory) string {
	var sb strings.Builder

	sb.WriteString(h.FullName)
	if h.Role != "" {
		sb.WriteString(" (" + h.Role + ")")
	}
	sb.WriteString("\n")

	if len(h.Engagements) == 0 {
		sb.WriteString("No recorded engagements.\n")
	} else {
		sb.WriteString("Recent engagements:\n")
		engagements := h.Engagements
		if len(engagements) > maxEngagements {
			engagements = engagements[:maxEngagements]
		}
		for _, e := range engagements {
			sb.WriteString("- " + e.Label())
			if e.CompanyName != "" {
				sb.WriteString(" for " + e.CompanyName)
			}
			if len(e.Tasks) > 0 {
				tasks := e.Tasks
				if len(tasks) > maxTasks {
					tasks = tasks[:maxTasks]
				}
				sb.WriteString(": " + strings.Join(tasks, ", "))
			}
			if e.TotalHours >= 1 {
				sb.WriteString(fmt.Sprintf(" (%.1fh logged)", e.TotalHours))
			}
			sb.WriteString("\n")
		}
	}

	if len(h.CurrentBookings) > 0 {
		sb.WriteString("Currently booked:\n")
		bookings := h.CurrentBookings
		if len(bookings) > maxBookings {
			bookings = bookings[:maxBookings]
		}
		for _, booking := range bookings {
			sb.WriteString("- " + booking.EngagementLabel)
			if booking.TaskName != "" {
				sb.WriteString(": " + booking.TaskName)
			}
			if booking.EndsOn != "" {
				sb.WriteString(" until " + booking.EndsOn)
			} else {
				sb.WriteString(" (open-ended)")
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
