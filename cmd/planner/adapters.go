package main

import (
	"context"
	"errors"
	"time"

	"github.com/example/goal-planner/internal/allocation"
	"github.com/example/goal-planner/internal/persistence"
	"github.com/example/goal-planner/internal/recurrence"
	"github.com/example/goal-planner/internal/snapshot"
)

// dataSourceAdapter bridges the persistence repositories to the
// materializer's read port, projecting rows onto domain snapshots and
// substituting the configured default for users without a settings row.
type dataSourceAdapter struct {
	goals        persistence.GoalRepository
	recurring    persistence.RecurringEventRepository
	calendar     persistence.CalendarEventRepository
	settings     persistence.SettingsRepository
	defaultHours float64
}

func newDataSourceAdapter(rt *runtime) *dataSourceAdapter {
	return &dataSourceAdapter{
		goals:        rt.store,
		recurring:    rt.store,
		calendar:     rt.store,
		settings:     rt.store,
		defaultHours: rt.cfg.DefaultAvailableHoursPerWeek,
	}
}

func (a *dataSourceAdapter) ListGoals(ctx context.Context, userID string) ([]allocation.Goal, error) {
	rows, err := a.goals.ListGoals(ctx, userID)
	if err != nil {
		return nil, err
	}
	goals := make([]allocation.Goal, len(rows))
	for i, row := range rows {
		goals[i] = row.Domain()
	}
	return goals, nil
}

func (a *dataSourceAdapter) ListRecurringEvents(ctx context.Context, userID string) ([]recurrence.Definition, error) {
	rows, err := a.recurring.ListRecurringEvents(ctx, userID)
	if err != nil {
		return nil, err
	}
	defs := make([]recurrence.Definition, len(rows))
	for i, row := range rows {
		defs[i] = row.Definition()
	}
	return defs, nil
}

func (a *dataSourceAdapter) ListEvents(ctx context.Context, userID string, from, to time.Time) ([]allocation.Event, error) {
	rows, err := a.calendar.ListCalendarEvents(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	events := make([]allocation.Event, len(rows))
	for i, row := range rows {
		events[i] = row.Domain()
	}
	return events, nil
}

func (a *dataSourceAdapter) AvailableHours(ctx context.Context, userID string) (float64, error) {
	settings, err := a.settings.GetSettings(ctx, userID)
	if errors.Is(err, persistence.ErrNotFound) {
		return a.defaultHours, nil
	}
	if err != nil {
		return 0, err
	}
	return settings.AvailableHoursPerWeek, nil
}

var _ snapshot.DataSource = (*dataSourceAdapter)(nil)
