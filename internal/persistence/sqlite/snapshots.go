package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/goal-planner/internal/persistence"
	"github.com/example/goal-planner/internal/recurrence"
	"github.com/example/goal-planner/internal/snapshot"
)

// SnapshotExists reports whether a snapshot row exists for the user and week.
// Row existence is the materializer's sole idempotency key.
func (s *Store) SnapshotExists(ctx context.Context, userID string, weekStart time.Time) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM weekly_snapshots WHERE user_id = ? AND week_start = ?`,
		userID, encodeTime(weekStart),
	).Scan(&count)
	if err != nil {
		return false, mapError(err)
	}
	return count > 0, nil
}

// GetWeeklySnapshot retrieves the snapshot for the user and week.
func (s *Store) GetWeeklySnapshot(ctx context.Context, userID string, weekStart time.Time) (snapshot.WeeklySnapshot, error) {
	var (
		snap                           snapshot.WeeklySnapshot
		weekStartRaw, weekEndRaw, crtd string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, week_start, week_end, total_available_hours, total_allocated_hours,
		  total_completed_hours, total_scheduled_hours, free_time_hours, fingerprint, is_frozen, created_at
		 FROM weekly_snapshots WHERE user_id = ? AND week_start = ?`,
		userID, encodeTime(weekStart),
	).Scan(&snap.ID, &snap.UserID, &weekStartRaw, &weekEndRaw, &snap.TotalAvailableHours,
		&snap.TotalAllocatedHours, &snap.TotalCompletedHours, &snap.TotalScheduledHours,
		&snap.FreeTimeHours, &snap.Fingerprint, &snap.IsFrozen, &crtd)
	if err != nil {
		return snapshot.WeeklySnapshot{}, mapError(err)
	}
	if snap.WeekStart, err = decodeTime(weekStartRaw); err != nil {
		return snapshot.WeeklySnapshot{}, err
	}
	if snap.WeekEnd, err = decodeTime(weekEndRaw); err != nil {
		return snapshot.WeeklySnapshot{}, err
	}
	if snap.CreatedAt, err = decodeTime(crtd); err != nil {
		return snapshot.WeeklySnapshot{}, err
	}
	return snap, nil
}

// CreateWeeklySnapshot inserts the parent snapshot row. A second insert for
// the same (user, week) fails with ErrDuplicate.
func (s *Store) CreateWeeklySnapshot(ctx context.Context, snap snapshot.WeeklySnapshot) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO weekly_snapshots
		 (id, user_id, week_start, week_end, total_available_hours, total_allocated_hours,
		  total_completed_hours, total_scheduled_hours, free_time_hours, fingerprint, is_frozen, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.UserID, encodeTime(snap.WeekStart), encodeTime(snap.WeekEnd),
		snap.TotalAvailableHours, snap.TotalAllocatedHours, snap.TotalCompletedHours,
		snap.TotalScheduledHours, snap.FreeTimeHours, snap.Fingerprint, snap.IsFrozen,
		encodeTime(snap.CreatedAt),
	)
	return mapError(err)
}

// CreateGoalSnapshot inserts one goal child row.
func (s *Store) CreateGoalSnapshot(ctx context.Context, snap snapshot.GoalSnapshot) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO goal_snapshots
		 (id, snapshot_id, goal_id, title, category, status, total_allocated_hours, completed_hours,
		  scheduled_hours, unscheduled_hours, completed_percent, scheduled_percent, unscheduled_percent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.SnapshotID, snap.GoalID, snap.Title, snap.Category, snap.Status,
		snap.Allocation.TotalAllocatedHours, snap.Allocation.CompletedHours,
		snap.Allocation.ScheduledHours, snap.Allocation.UnscheduledHours,
		snap.Allocation.CompletedPercent, snap.Allocation.ScheduledPercent,
		snap.Allocation.UnscheduledPercent, encodeTime(snap.CreatedAt),
	)
	return mapError(err)
}

// CreateRecurringEventSnapshot inserts one recurring-event child row.
func (s *Store) CreateRecurringEventSnapshot(ctx context.Context, snap snapshot.RecurringEventSnapshot) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recurring_event_snapshots
		 (id, snapshot_id, goal_snapshot_id, definition_id, title, start_hour, start_minute,
		  duration_minutes, frequency, weekdays, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.SnapshotID, nullString(snap.GoalSnapshotID), snap.DefinitionID, snap.Title,
		snap.StartHour, snap.StartMinute, snap.DurationMinutes, snap.Frequency.String(),
		encodeWeekdays(snap.Weekdays), encodeTime(snap.CreatedAt),
	)
	return mapError(err)
}

// FreezeSnapshot pins an existing snapshot for the user and week.
func (s *Store) FreezeSnapshot(ctx context.Context, userID string, weekStart time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE weekly_snapshots SET is_frozen = 1 WHERE user_id = ? AND week_start = ?`,
		userID, encodeTime(weekStart),
	)
	if err != nil {
		return mapError(err)
	}
	return requireRow(res)
}

// ListGoalSnapshots returns the goal children of a snapshot ordered by title.
func (s *Store) ListGoalSnapshots(ctx context.Context, snapshotID string) ([]snapshot.GoalSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, snapshot_id, goal_id, title, category, status, total_allocated_hours, completed_hours,
		  scheduled_hours, unscheduled_hours, completed_percent, scheduled_percent, unscheduled_percent, created_at
		 FROM goal_snapshots WHERE snapshot_id = ? ORDER BY title, id`, snapshotID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	snaps := make([]snapshot.GoalSnapshot, 0)
	for rows.Next() {
		var (
			snap      snapshot.GoalSnapshot
			createdAt string
		)
		err := rows.Scan(&snap.ID, &snap.SnapshotID, &snap.GoalID, &snap.Title, &snap.Category,
			&snap.Status, &snap.Allocation.TotalAllocatedHours, &snap.Allocation.CompletedHours,
			&snap.Allocation.ScheduledHours, &snap.Allocation.UnscheduledHours,
			&snap.Allocation.CompletedPercent, &snap.Allocation.ScheduledPercent,
			&snap.Allocation.UnscheduledPercent, &createdAt)
		if err != nil {
			return nil, mapError(err)
		}
		snap.Allocation.GoalID = snap.GoalID
		if snap.CreatedAt, err = decodeTime(createdAt); err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// ListRecurringEventSnapshots returns the recurring-event children of a
// snapshot ordered by title.
func (s *Store) ListRecurringEventSnapshots(ctx context.Context, snapshotID string) ([]snapshot.RecurringEventSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, snapshot_id, goal_snapshot_id, definition_id, title, start_hour, start_minute,
		  duration_minutes, frequency, weekdays, created_at
		 FROM recurring_event_snapshots WHERE snapshot_id = ? ORDER BY title, id`, snapshotID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	snaps := make([]snapshot.RecurringEventSnapshot, 0)
	for rows.Next() {
		var (
			snap           snapshot.RecurringEventSnapshot
			goalSnapshotID sql.NullString
			frequency      string
			weekdays       string
			createdAt      string
		)
		err := rows.Scan(&snap.ID, &snap.SnapshotID, &goalSnapshotID, &snap.DefinitionID, &snap.Title,
			&snap.StartHour, &snap.StartMinute, &snap.DurationMinutes, &frequency, &weekdays, &createdAt)
		if err != nil {
			return nil, mapError(err)
		}
		snap.GoalSnapshotID = stringPtr(goalSnapshotID)
		if snap.Frequency, err = recurrence.ParseFrequency(frequency); err != nil {
			return nil, err
		}
		if snap.Weekdays, err = decodeWeekdays(weekdays); err != nil {
			return nil, err
		}
		if snap.CreatedAt, err = decodeTime(createdAt); err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

var _ persistence.SnapshotRepository = (*Store)(nil)
var _ persistence.GoalRepository = (*Store)(nil)
var _ persistence.RecurringEventRepository = (*Store)(nil)
var _ persistence.CalendarEventRepository = (*Store)(nil)
var _ persistence.SettingsRepository = (*Store)(nil)
