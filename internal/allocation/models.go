// Package allocation turns occurrences and one-off events into a weekly
// accounting of completed, scheduled and unscheduled time against per-goal
// budgets. Everything here is pure computation; callers supply now and all
// data collections explicitly.
package allocation

import "time"

// Goal is a read-only snapshot of a goal as supplied by the storage
// collaborator.
type Goal struct {
	ID    string
	Title string
	// TimeAllocatedHoursPerWeek is the goal's weekly time budget.
	TimeAllocatedHoursPerWeek float64
	Category                  string
	Status                    string
}

// Event is a one-off calendar entry. Events with a nil or dangling GoalID
// are tallied in the unassociated bucket.
type Event struct {
	ID     string
	Title  string
	GoalID *string
	Start  time.Time
	End    time.Time
}

// WeeklyAllocation is the accountant's output for a single goal and week.
// Hour figures are rounded to one decimal; percent figures are relative to
// TotalAllocatedHours and are all zero when the allocation is zero.
type WeeklyAllocation struct {
	GoalID              string
	TotalAllocatedHours float64
	CompletedHours      float64
	ScheduledHours      float64
	// UnscheduledHours is clamped at zero: it never goes negative even when
	// the allocation shrank mid-week.
	UnscheduledHours   float64
	CompletedPercent   float64
	ScheduledPercent   float64
	UnscheduledPercent float64
}

// AggregateStats sums weekly allocations across all of a user's goals and
// carries the parallel unassociated tally for occurrences linked to no known
// goal.
type AggregateStats struct {
	WeekStart           time.Time
	WeekEnd             time.Time
	TotalAvailableHours float64
	TotalAllocatedHours float64
	TotalCompletedHours float64
	TotalScheduledHours float64
	// Unassociated hours are reported separately and never counted against
	// any goal's allocation.
	UnassociatedCompletedHours float64
	UnassociatedScheduledHours float64
	// FreeTimeHours is the capacity remaining for new commitments.
	FreeTimeHours float64
	// CompletionRate is completed over allocated as a rounded percentage,
	// zero when nothing is allocated.
	CompletionRate int
	Goals          []WeeklyAllocation
}
