package allocation

import (
	"math"
	"time"

	"github.com/example/goal-planner/internal/recurrence"
	"github.com/example/goal-planner/internal/week"
)

// Aggregate runs AccountForGoal over every goal and sums the results, then
// tallies occurrences and events linked to no known goal into the separate
// unassociated bucket. The per-goal allocations in the result preserve the
// order of the goals argument.
//
// FreeTimeHours is the capacity remaining for new commitments:
// max(0, totalAvailableHours - allocated - unassociated).
func (a *Accountant) Aggregate(goals []Goal, defs []recurrence.Definition, events []Event, weekOffset int, now time.Time, totalAvailableHours float64) AggregateStats {
	weekStart, weekEnd := week.Bounds(now, weekOffset)
	stats := AggregateStats{
		WeekStart:           weekStart,
		WeekEnd:             weekEnd,
		TotalAvailableHours: totalAvailableHours,
		Goals:               make([]WeeklyAllocation, 0, len(goals)),
	}

	known := make(map[string]struct{}, len(goals))
	for _, goal := range goals {
		known[goal.ID] = struct{}{}
	}

	for _, goal := range goals {
		alloc := a.AccountForGoal(goal.ID, goal.TimeAllocatedHoursPerWeek, defs, events, weekOffset, now)
		stats.Goals = append(stats.Goals, alloc)
		stats.TotalAllocatedHours += alloc.TotalAllocatedHours
		stats.TotalCompletedHours += alloc.CompletedHours
		stats.TotalScheduledHours += alloc.ScheduledHours
	}

	var unassocCompleted, unassocScheduled time.Duration
	for _, def := range defs {
		if !def.IsActive || associated(def.GoalID, known) {
			continue
		}
		for _, occ := range a.engine.Generate(def, weekStart, weekEnd) {
			c, s := classify(occ.Start, occ.End, weekOffset, now)
			unassocCompleted += c
			unassocScheduled += s
		}
	}
	for _, event := range events {
		if associated(event.GoalID, known) {
			continue
		}
		if !overlapsWindow(event.Start, event.End, weekStart, weekEnd) {
			continue
		}
		c, s := classify(event.Start, event.End, weekOffset, now)
		unassocCompleted += c
		unassocScheduled += s
	}
	stats.UnassociatedCompletedHours = hoursOf(unassocCompleted)
	stats.UnassociatedScheduledHours = hoursOf(unassocScheduled)

	free := totalAvailableHours - stats.TotalAllocatedHours - stats.UnassociatedCompletedHours - stats.UnassociatedScheduledHours
	if free < 0 {
		free = 0
	}
	stats.FreeTimeHours = roundHours(free)

	if stats.TotalAllocatedHours > 0 {
		stats.CompletionRate = int(math.Round(stats.TotalCompletedHours / stats.TotalAllocatedHours * 100))
	}

	return stats
}

// associated reports whether the reference resolves to one of the known
// goals. Dangling references are tolerated silently and land in the
// unassociated bucket.
func associated(goalID *string, known map[string]struct{}) bool {
	if goalID == nil {
		return false
	}
	_, ok := known[*goalID]
	return ok
}
