// Package persistence defines the storage row models and repository ports of
// the planner. Implementations live in subpackages; the engine consumes only
// the read-only domain snapshots derived from these rows.
package persistence

import (
	"time"

	"github.com/example/goal-planner/internal/allocation"
	"github.com/example/goal-planner/internal/recurrence"
)

// Goal represents a stored goal with its weekly time budget.
type Goal struct {
	ID                        string
	UserID                    string
	Title                     string
	TimeAllocatedHoursPerWeek float64
	Category                  string
	Status                    string
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// Domain projects the row onto the read-only snapshot the engine consumes.
func (g Goal) Domain() allocation.Goal {
	return allocation.Goal{
		ID:                        g.ID,
		Title:                     g.Title,
		TimeAllocatedHoursPerWeek: g.TimeAllocatedHoursPerWeek,
		Category:                  g.Category,
		Status:                    g.Status,
	}
}

// RecurringEvent represents a stored recurring event definition.
type RecurringEvent struct {
	ID              string
	UserID          string
	Title           string
	Description     *string
	StartHour       int
	StartMinute     int
	DurationMinutes int
	Frequency       recurrence.Frequency
	Interval        int
	Weekdays        []time.Weekday
	EndsOn          *time.Time
	MaxOccurrences  int
	GoalID          *string
	IsActive        bool
	Color           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Definition projects the row onto the engine's definition snapshot.
func (r RecurringEvent) Definition() recurrence.Definition {
	return recurrence.Definition{
		ID:              r.ID,
		Title:           r.Title,
		Description:     cloneStringPtr(r.Description),
		StartHour:       r.StartHour,
		StartMinute:     r.StartMinute,
		DurationMinutes: r.DurationMinutes,
		Rule: recurrence.Rule{
			Frequency:      r.Frequency,
			Interval:       r.Interval,
			Weekdays:       append([]time.Weekday(nil), r.Weekdays...),
			EndsOn:         cloneTimePtr(r.EndsOn),
			MaxOccurrences: r.MaxOccurrences,
		},
		GoalID:   cloneStringPtr(r.GoalID),
		IsActive: r.IsActive,
		Color:    cloneStringPtr(r.Color),
	}
}

// CalendarEvent represents a stored one-off event.
type CalendarEvent struct {
	ID        string
	UserID    string
	Title     string
	Start     time.Time
	End       time.Time
	GoalID    *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Domain projects the row onto the engine's one-off event snapshot.
func (e CalendarEvent) Domain() allocation.Event {
	return allocation.Event{
		ID:     e.ID,
		Title:  e.Title,
		GoalID: cloneStringPtr(e.GoalID),
		Start:  e.Start,
		End:    e.End,
	}
}

// UserSettings holds per-user engine configuration.
type UserSettings struct {
	UserID                string
	AvailableHoursPerWeek float64
	UpdatedAt             time.Time
}

func cloneStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}

func cloneTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	out := *t
	return &out
}
