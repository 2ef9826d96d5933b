package persistence

import (
	"context"
	"time"

	"github.com/example/goal-planner/internal/snapshot"
)

// GoalRepository exposes CRUD operations for goals.
type GoalRepository interface {
	CreateGoal(ctx context.Context, goal Goal) error
	GetGoal(ctx context.Context, id string) (Goal, error)
	ListGoals(ctx context.Context, userID string) ([]Goal, error)
	UpdateGoal(ctx context.Context, goal Goal) error
	DeleteGoal(ctx context.Context, id string) error
}

// RecurringEventRepository exposes CRUD operations for recurring event
// definitions.
type RecurringEventRepository interface {
	CreateRecurringEvent(ctx context.Context, event RecurringEvent) error
	GetRecurringEvent(ctx context.Context, id string) (RecurringEvent, error)
	ListRecurringEvents(ctx context.Context, userID string) ([]RecurringEvent, error)
	UpdateRecurringEvent(ctx context.Context, event RecurringEvent) error
	DeleteRecurringEvent(ctx context.Context, id string) error
}

// CalendarEventRepository exposes operations for one-off events.
type CalendarEventRepository interface {
	CreateCalendarEvent(ctx context.Context, event CalendarEvent) error
	ListCalendarEvents(ctx context.Context, userID string, from, to time.Time) ([]CalendarEvent, error)
	DeleteCalendarEvent(ctx context.Context, id string) error
}

// SettingsRepository stores per-user engine configuration and enumerates the
// users known to the store.
type SettingsRepository interface {
	UpsertSettings(ctx context.Context, settings UserSettings) error
	GetSettings(ctx context.Context, userID string) (UserSettings, error)
	ListUserIDs(ctx context.Context) ([]string, error)
}

// SnapshotRepository persists weekly snapshots and their child rows.
type SnapshotRepository interface {
	SnapshotExists(ctx context.Context, userID string, weekStart time.Time) (bool, error)
	GetWeeklySnapshot(ctx context.Context, userID string, weekStart time.Time) (snapshot.WeeklySnapshot, error)
	CreateWeeklySnapshot(ctx context.Context, snap snapshot.WeeklySnapshot) error
	CreateGoalSnapshot(ctx context.Context, snap snapshot.GoalSnapshot) error
	CreateRecurringEventSnapshot(ctx context.Context, snap snapshot.RecurringEventSnapshot) error
	// FreezeSnapshot pins an existing snapshot; frozen rows represent
	// manually preserved history.
	FreezeSnapshot(ctx context.Context, userID string, weekStart time.Time) error
}
