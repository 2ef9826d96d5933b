package allocation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/goal-planner/internal/allocation"
	"github.com/example/goal-planner/internal/recurrence"
	"github.com/example/goal-planner/internal/testfixtures"
)

func TestAccountant_AccountForGoal(t *testing.T) {
	t.Parallel()

	accountant := allocation.NewAccountant(recurrence.NewEngine(time.UTC))
	goalID := testfixtures.StringPtr("goal-1")
	weekStart := testfixtures.ReferenceWeekStart()

	t.Run("splits the budget across completed, scheduled and unscheduled", func(t *testing.T) {
		t.Parallel()

		// Mon/Wed/Fri 13:00, one hour each. By Wednesday 14:05 the Monday
		// and Wednesday sessions have ended; Friday is still ahead.
		defs := []recurrence.Definition{
			testfixtures.WeeklyDefinition("def-1", goalID, 13, 0, 60, time.Monday, time.Wednesday, time.Friday),
		}
		now := time.Date(2024, time.March, 6, 14, 5, 0, 0, time.UTC)

		alloc := accountant.AccountForGoal("goal-1", 10, defs, nil, 0, now)

		assert.Equal(t, 10.0, alloc.TotalAllocatedHours)
		assert.Equal(t, 2.0, alloc.CompletedHours)
		assert.Equal(t, 1.0, alloc.ScheduledHours)
		assert.Equal(t, 7.0, alloc.UnscheduledHours)
		assert.InDelta(t, 20.0, alloc.CompletedPercent, 1e-9)
		assert.InDelta(t, 10.0, alloc.ScheduledPercent, 1e-9)
		assert.InDelta(t, 70.0, alloc.UnscheduledPercent, 1e-9)
	})

	t.Run("an interval ending exactly now is still scheduled", func(t *testing.T) {
		t.Parallel()

		defs := []recurrence.Definition{
			testfixtures.WeeklyDefinition("def-1", goalID, 13, 0, 60, time.Wednesday),
		}
		now := time.Date(2024, time.March, 6, 14, 0, 0, 0, time.UTC)

		alloc := accountant.AccountForGoal("goal-1", 10, defs, nil, 0, now)

		assert.Equal(t, 0.0, alloc.CompletedHours)
		assert.Equal(t, 1.0, alloc.ScheduledHours)
	})

	t.Run("past weeks count everything as completed", func(t *testing.T) {
		t.Parallel()

		defs := []recurrence.Definition{
			testfixtures.WeeklyDefinition("def-1", goalID, 13, 0, 60, time.Monday, time.Wednesday, time.Friday),
		}

		alloc := accountant.AccountForGoal("goal-1", 10, defs, nil, -1, testfixtures.ReferenceTime())

		assert.Equal(t, 3.0, alloc.CompletedHours)
		assert.Equal(t, 0.0, alloc.ScheduledHours)
		assert.Equal(t, 7.0, alloc.UnscheduledHours)
	})

	t.Run("no occurrences leaves the full allocation unscheduled", func(t *testing.T) {
		t.Parallel()

		alloc := accountant.AccountForGoal("goal-1", 8, nil, nil, 0, testfixtures.ReferenceTime())

		assert.Equal(t, 0.0, alloc.CompletedHours)
		assert.Equal(t, 0.0, alloc.ScheduledHours)
		assert.Equal(t, 8.0, alloc.UnscheduledHours)
		assert.InDelta(t, 100.0, alloc.UnscheduledPercent, 1e-9)
	})

	t.Run("zero allocation reports zero percentages", func(t *testing.T) {
		t.Parallel()

		defs := []recurrence.Definition{
			testfixtures.WeeklyDefinition("def-1", goalID, 13, 0, 60, time.Monday),
		}

		alloc := accountant.AccountForGoal("goal-1", 0, defs, nil, 0, testfixtures.ReferenceTime())

		assert.Equal(t, 1.0, alloc.CompletedHours)
		assert.Equal(t, 0.0, alloc.CompletedPercent)
		assert.Equal(t, 0.0, alloc.ScheduledPercent)
		assert.Equal(t, 0.0, alloc.UnscheduledPercent)
	})

	t.Run("unscheduled hours never go negative", func(t *testing.T) {
		t.Parallel()

		// Seven daily hours against a one-hour budget.
		def := testfixtures.WeeklyDefinition("def-1", goalID, 6, 0, 60)
		def.Rule = recurrence.Rule{Frequency: recurrence.FrequencyDaily, Interval: 1}

		alloc := accountant.AccountForGoal("goal-1", 1, []recurrence.Definition{def}, nil, 0, testfixtures.ReferenceTime())

		assert.Equal(t, 0.0, alloc.UnscheduledHours)
		assert.Greater(t, alloc.CompletedHours+alloc.ScheduledHours, alloc.TotalAllocatedHours)
	})

	t.Run("one-off events inside the week contribute", func(t *testing.T) {
		t.Parallel()

		events := []allocation.Event{
			testfixtures.Event("evt-1", goalID, weekStart.Add(9*time.Hour), 90*time.Minute),             // Monday, past
			testfixtures.Event("evt-2", goalID, weekStart.AddDate(0, 0, 4).Add(9*time.Hour), time.Hour), // Friday, ahead
		}

		alloc := accountant.AccountForGoal("goal-1", 5, nil, events, 0, testfixtures.ReferenceTime())

		assert.Equal(t, 1.5, alloc.CompletedHours)
		assert.Equal(t, 1.0, alloc.ScheduledHours)
		assert.Equal(t, 2.5, alloc.UnscheduledHours)
	})

	t.Run("events outside the week are ignored", func(t *testing.T) {
		t.Parallel()

		events := []allocation.Event{
			testfixtures.Event("evt-prev", goalID, weekStart.Add(-24*time.Hour), time.Hour),
			testfixtures.Event("evt-next", goalID, weekStart.AddDate(0, 0, 8), time.Hour),
		}

		alloc := accountant.AccountForGoal("goal-1", 5, nil, events, 0, testfixtures.ReferenceTime())

		assert.Equal(t, 0.0, alloc.CompletedHours)
		assert.Equal(t, 0.0, alloc.ScheduledHours)
	})

	t.Run("events for other goals are ignored", func(t *testing.T) {
		t.Parallel()

		events := []allocation.Event{
			testfixtures.Event("evt-1", testfixtures.StringPtr("goal-2"), weekStart.Add(9*time.Hour), time.Hour),
			testfixtures.Event("evt-2", nil, weekStart.Add(10*time.Hour), time.Hour),
		}

		alloc := accountant.AccountForGoal("goal-1", 5, nil, events, 0, testfixtures.ReferenceTime())

		assert.Equal(t, 0.0, alloc.CompletedHours)
		assert.Equal(t, 5.0, alloc.UnscheduledHours)
	})

	t.Run("inactive definitions are excluded", func(t *testing.T) {
		t.Parallel()

		def := testfixtures.WeeklyDefinition("def-1", goalID, 13, 0, 60, time.Monday)
		def.IsActive = false

		alloc := accountant.AccountForGoal("goal-1", 5, []recurrence.Definition{def}, nil, 0, testfixtures.ReferenceTime())

		assert.Equal(t, 0.0, alloc.CompletedHours)
		assert.Equal(t, 0.0, alloc.ScheduledHours)
	})

	t.Run("fractional durations round to one decimal", func(t *testing.T) {
		t.Parallel()

		// 50 minutes is 0.8333... hours.
		defs := []recurrence.Definition{
			testfixtures.WeeklyDefinition("def-1", goalID, 9, 0, 50, time.Monday),
		}

		alloc := accountant.AccountForGoal("goal-1", 5, defs, nil, 0, testfixtures.ReferenceTime())

		assert.Equal(t, 0.8, alloc.CompletedHours)
		assert.Equal(t, 4.2, alloc.UnscheduledHours)
	})

	t.Run("identical inputs yield identical output", func(t *testing.T) {
		t.Parallel()

		defs := []recurrence.Definition{
			testfixtures.WeeklyDefinition("def-1", goalID, 13, 0, 60, time.Monday, time.Friday),
		}
		now := testfixtures.ReferenceTime()

		first := accountant.AccountForGoal("goal-1", 10, defs, nil, 0, now)
		second := accountant.AccountForGoal("goal-1", 10, defs, nil, 0, now)

		require.Equal(t, first, second)
	})
}
