package allocation

import (
	"math"
	"time"

	"github.com/example/goal-planner/internal/recurrence"
	"github.com/example/goal-planner/internal/week"
)

// Accountant computes weekly time allocations from recurring definitions and
// one-off events. It holds no mutable state and is safe for concurrent use.
type Accountant struct {
	engine *recurrence.Engine
}

// NewAccountant wires the occurrence engine used to expand recurring
// definitions. A nil engine defaults to one in the process-local timezone.
func NewAccountant(engine *recurrence.Engine) *Accountant {
	if engine == nil {
		engine = recurrence.NewEngine(nil)
	}
	return &Accountant{engine: engine}
}

// AccountForGoal splits one goal's weekly budget into completed, scheduled
// and unscheduled hours for the week at weekOffset relative to now.
//
// For a strictly past week every interval counts as completed: the week is
// closed and nothing remains scheduled into the future. Otherwise an interval
// is completed iff its end instant is strictly before now. A goal with no
// matching occurrences reports its full allocation as unscheduled.
func (a *Accountant) AccountForGoal(goalID string, allocatedHours float64, defs []recurrence.Definition, events []Event, weekOffset int, now time.Time) WeeklyAllocation {
	weekStart, weekEnd := week.Bounds(now, weekOffset)

	var completed, scheduled time.Duration
	for _, def := range defs {
		if !def.IsActive || !matchesGoal(def.GoalID, goalID) {
			continue
		}
		for _, occ := range a.engine.Generate(def, weekStart, weekEnd) {
			c, s := classify(occ.Start, occ.End, weekOffset, now)
			completed += c
			scheduled += s
		}
	}
	for _, event := range events {
		if !matchesGoal(event.GoalID, goalID) {
			continue
		}
		if !overlapsWindow(event.Start, event.End, weekStart, weekEnd) {
			continue
		}
		c, s := classify(event.Start, event.End, weekOffset, now)
		completed += c
		scheduled += s
	}

	completedHours := hoursOf(completed)
	scheduledHours := hoursOf(scheduled)
	unscheduledHours := allocatedHours - completedHours - scheduledHours
	if unscheduledHours < 0 {
		unscheduledHours = 0
	}
	unscheduledHours = roundHours(unscheduledHours)

	out := WeeklyAllocation{
		GoalID:              goalID,
		TotalAllocatedHours: allocatedHours,
		CompletedHours:      completedHours,
		ScheduledHours:      scheduledHours,
		UnscheduledHours:    unscheduledHours,
	}
	if allocatedHours > 0 {
		out.CompletedPercent = completedHours / allocatedHours * 100
		out.ScheduledPercent = scheduledHours / allocatedHours * 100
		out.UnscheduledPercent = unscheduledHours / allocatedHours * 100
	}
	return out
}

// classify assigns an interval's duration to the completed or scheduled
// bucket. Negative durations contribute nothing.
func classify(start, end time.Time, weekOffset int, now time.Time) (completed, scheduled time.Duration) {
	d := end.Sub(start)
	if d < 0 {
		d = 0
	}
	if weekOffset < 0 || end.Before(now) {
		return d, 0
	}
	return 0, d
}

func matchesGoal(goalID *string, target string) bool {
	return goalID != nil && *goalID == target
}

// overlapsWindow reports whether [start, end) intersects the inclusive
// window [windowStart, windowEnd].
func overlapsWindow(start, end, windowStart, windowEnd time.Time) bool {
	return !start.After(windowEnd) && end.After(windowStart)
}

func hoursOf(d time.Duration) float64 {
	return roundHours(d.Minutes() / 60)
}

// roundHours rounds to one decimal place.
func roundHours(hours float64) float64 {
	return math.Round(hours*10) / 10
}
