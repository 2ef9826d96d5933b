package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/goal-planner/internal/allocation"
	"github.com/example/goal-planner/internal/testfixtures"
)

func TestRender(t *testing.T) {
	t.Parallel()

	weekStart := testfixtures.ReferenceWeekStart()
	weekEnd := weekStart.AddDate(0, 0, 7).Add(-time.Nanosecond)

	t.Run("renders a table row per goal plus totals", func(t *testing.T) {
		t.Parallel()

		stats := allocation.AggregateStats{
			WeekStart:           weekStart,
			WeekEnd:             weekEnd,
			TotalAvailableHours: 112,
			TotalAllocatedHours: 10,
			TotalCompletedHours: 2,
			TotalScheduledHours: 1,
			FreeTimeHours:       102,
			CompletionRate:      20,
			Goals: []allocation.WeeklyAllocation{
				{
					GoalID:              "goal-1",
					TotalAllocatedHours: 10,
					CompletedHours:      2,
					ScheduledHours:      1,
					UnscheduledHours:    7,
					CompletedPercent:    20,
					ScheduledPercent:    10,
					UnscheduledPercent:  70,
				},
			},
		}
		goals := []allocation.Goal{{ID: "goal-1", Title: "Fitness"}}

		out := Render(stats, goals)

		assert.Contains(t, out, "Week of Mon 04 Mar 2024 - Sun 10 Mar 2024")
		assert.Contains(t, out, "GOAL")
		assert.Contains(t, out, "Fitness")
		assert.Contains(t, out, "2.0h (20%)")
		assert.Contains(t, out, "1.0h (10%)")
		assert.Contains(t, out, "Totals: 10.0h allocated, 2.0h completed, 1.0h scheduled (20% complete)")
		assert.Contains(t, out, "Free time: 102.0h of 112.0h available")
		assert.NotContains(t, out, "Unassociated")
	})

	t.Run("unknown goals fall back to the id", func(t *testing.T) {
		t.Parallel()

		stats := allocation.AggregateStats{
			WeekStart: weekStart,
			WeekEnd:   weekEnd,
			Goals:     []allocation.WeeklyAllocation{{GoalID: "goal-gone"}},
		}

		out := Render(stats, nil)

		assert.Contains(t, out, "goal-gone")
	})

	t.Run("unassociated hours get their own line", func(t *testing.T) {
		t.Parallel()

		stats := allocation.AggregateStats{
			WeekStart:                  weekStart,
			WeekEnd:                    weekEnd,
			UnassociatedCompletedHours: 1.5,
			UnassociatedScheduledHours: 0.5,
		}

		out := Render(stats, nil)

		assert.Contains(t, out, "Unassociated: 1.5h completed, 0.5h scheduled")
	})

	t.Run("empty statistics degrade to a notice", func(t *testing.T) {
		t.Parallel()

		stats := allocation.AggregateStats{WeekStart: weekStart, WeekEnd: weekEnd}

		out := Render(stats, nil)

		assert.Contains(t, out, "No data for this period.")
		assert.NotContains(t, out, "GOAL")
		assert.NotContains(t, out, "Totals")
	})
}
