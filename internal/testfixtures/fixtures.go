// Package testfixtures provides shared deterministic building blocks for
// tests: a controllable clock, a sequential id generator, an in-memory
// snapshot store, and entity builders anchored to a fixed reference week.
package testfixtures

import (
	"time"

	"github.com/example/goal-planner/internal/allocation"
	"github.com/example/goal-planner/internal/recurrence"
)

// ReferenceTime returns Wednesday 2024-03-06 12:00 UTC. The surrounding week
// runs Monday 2024-03-04 through Sunday 2024-03-10, which tests rely on for
// stable weekday arithmetic.
func ReferenceTime() time.Time {
	return time.Date(2024, time.March, 6, 12, 0, 0, 0, time.UTC)
}

// ReferenceWeekStart returns Monday 2024-03-04 00:00 UTC.
func ReferenceWeekStart() time.Time {
	return time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
}

// Goal builds a goal snapshot with the given weekly budget.
func Goal(id string, hoursPerWeek float64) allocation.Goal {
	return allocation.Goal{
		ID:                        id,
		Title:                     "Goal " + id,
		TimeAllocatedHoursPerWeek: hoursPerWeek,
		Category:                  "personal",
		Status:                    "active",
	}
}

// WeeklyDefinition builds an active weekly definition anchored at the given
// wall-clock time, filtered to the supplied weekdays.
func WeeklyDefinition(id string, goalID *string, hour, minute, durationMinutes int, days ...time.Weekday) recurrence.Definition {
	return recurrence.Definition{
		ID:              id,
		Title:           "Definition " + id,
		StartHour:       hour,
		StartMinute:     minute,
		DurationMinutes: durationMinutes,
		Rule: recurrence.Rule{
			Frequency: recurrence.FrequencyWeekly,
			Interval:  1,
			Weekdays:  days,
		},
		GoalID:   goalID,
		IsActive: true,
	}
}

// Event builds a one-off event.
func Event(id string, goalID *string, start time.Time, duration time.Duration) allocation.Event {
	return allocation.Event{
		ID:     id,
		Title:  "Event " + id,
		GoalID: goalID,
		Start:  start,
		End:    start.Add(duration),
	}
}

// StringPtr returns a pointer to the supplied string literal.
func StringPtr(s string) *string {
	return &s
}
