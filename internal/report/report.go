// Package report renders weekly statistics for the human-readable export
// path. It consumes the accountant's output directly and owns only
// formatting; it degrades to a "no data" message rather than erroring on
// empty input.
package report

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/example/goal-planner/internal/allocation"
)

const dateLayout = "Mon 02 Jan 2006"

// Render formats aggregate weekly statistics as a plain-text summary. The
// goals slice labels each allocation row; allocations without a matching
// goal fall back to the goal id.
func Render(stats allocation.AggregateStats, goals []allocation.Goal) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Week of %s - %s\n",
		stats.WeekStart.Format(dateLayout),
		stats.WeekEnd.Format(dateLayout),
	)

	if !hasData(stats) {
		b.WriteString("No data for this period.\n")
		return b.String()
	}

	titles := make(map[string]string, len(goals))
	for _, goal := range goals {
		titles[goal.ID] = goal.Title
	}

	w := tabwriter.NewWriter(&b, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GOAL\tALLOCATED\tCOMPLETED\tSCHEDULED\tUNSCHEDULED")
	for _, alloc := range stats.Goals {
		label := titles[alloc.GoalID]
		if label == "" {
			label = alloc.GoalID
		}
		fmt.Fprintf(w, "%s\t%s\t%s (%.0f%%)\t%s (%.0f%%)\t%s\n",
			label,
			hours(alloc.TotalAllocatedHours),
			hours(alloc.CompletedHours), alloc.CompletedPercent,
			hours(alloc.ScheduledHours), alloc.ScheduledPercent,
			hours(alloc.UnscheduledHours),
		)
	}
	w.Flush()

	fmt.Fprintf(&b, "\nTotals: %s allocated, %s completed, %s scheduled (%d%% complete)\n",
		hours(stats.TotalAllocatedHours),
		hours(stats.TotalCompletedHours),
		hours(stats.TotalScheduledHours),
		stats.CompletionRate,
	)
	if stats.UnassociatedCompletedHours > 0 || stats.UnassociatedScheduledHours > 0 {
		fmt.Fprintf(&b, "Unassociated: %s completed, %s scheduled\n",
			hours(stats.UnassociatedCompletedHours),
			hours(stats.UnassociatedScheduledHours),
		)
	}
	fmt.Fprintf(&b, "Free time: %s of %s available\n",
		hours(stats.FreeTimeHours),
		hours(stats.TotalAvailableHours),
	)

	return b.String()
}

func hasData(stats allocation.AggregateStats) bool {
	return len(stats.Goals) > 0 ||
		stats.UnassociatedCompletedHours > 0 ||
		stats.UnassociatedScheduledHours > 0
}

func hours(value float64) string {
	return fmt.Sprintf("%.1fh", value)
}
