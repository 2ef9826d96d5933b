// Package snapshot freezes a week's aggregate accounting into immutable
// history. The materializer is the only component in the engine with side
// effects; it talks to storage through the narrow Store and DataSource ports.
package snapshot

import (
	"time"

	"github.com/example/goal-planner/internal/allocation"
	"github.com/example/goal-planner/internal/recurrence"
)

// WeeklySnapshot is the persisted parent record freezing one user's weekly
// statistics. At most one exists per (UserID, WeekStart) pair and it is never
// mutated after creation except by an explicit freeze.
type WeeklySnapshot struct {
	ID                  string
	UserID              string
	WeekStart           time.Time
	WeekEnd             time.Time
	TotalAvailableHours float64
	TotalAllocatedHours float64
	TotalCompletedHours float64
	TotalScheduledHours float64
	FreeTimeHours       float64
	// Fingerprint is informational metadata; row existence, not the
	// fingerprint, is the idempotency key.
	Fingerprint string
	// IsFrozen marks manually pinned snapshots; cron-generated rows start
	// out false.
	IsFrozen  bool
	CreatedAt time.Time
}

// GoalSnapshot copies a goal and its weekly allocation at creation time, so
// history survives later edits or deletion of the live goal.
type GoalSnapshot struct {
	ID         string
	SnapshotID string
	// GoalID references the live goal for traceability only.
	GoalID     string
	Title      string
	Category   string
	Status     string
	Allocation allocation.WeeklyAllocation
	CreatedAt  time.Time
}

// RecurringEventSnapshot copies a definition active during the snapshot week.
// GoalSnapshotID references the locally scoped GoalSnapshot, never the live
// goal.
type RecurringEventSnapshot struct {
	ID              string
	SnapshotID      string
	GoalSnapshotID  *string
	DefinitionID    string
	Title           string
	StartHour       int
	StartMinute     int
	DurationMinutes int
	Frequency       recurrence.Frequency
	Weekdays        []time.Weekday
	CreatedAt       time.Time
}
