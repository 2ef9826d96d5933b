// Package sqlite implements the persistence repositories on SQLite via the
// modernc.org driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/example/goal-planner/internal/persistence"
	"github.com/example/goal-planner/internal/recurrence"
)

// Store implements every repository interface in the persistence package on
// a single SQLite database.
type Store struct {
	db *sql.DB
}

// Open connects to the SQLite database at dsn and applies connection
// pragmas. The connection pool is capped at one writer; SQLite serializes
// writes anyway and a single connection avoids busy errors under the
// materializer's fan-out.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// --- GoalRepository implementation ---

// CreateGoal stores a new goal.
func (s *Store) CreateGoal(ctx context.Context, goal persistence.Goal) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO goals (id, user_id, title, time_allocated_hours, category, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		goal.ID, goal.UserID, goal.Title, goal.TimeAllocatedHoursPerWeek, goal.Category, goal.Status,
		encodeTime(goal.CreatedAt), encodeTime(goal.UpdatedAt),
	)
	return mapError(err)
}

// GetGoal retrieves a goal by id.
func (s *Store) GetGoal(ctx context.Context, id string) (persistence.Goal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, time_allocated_hours, category, status, created_at, updated_at
		 FROM goals WHERE id = ?`, id)
	return scanGoal(row)
}

// ListGoals returns a user's goals ordered by creation time.
func (s *Store) ListGoals(ctx context.Context, userID string) ([]persistence.Goal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, time_allocated_hours, category, status, created_at, updated_at
		 FROM goals WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	goals := make([]persistence.Goal, 0)
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

// UpdateGoal updates an existing goal.
func (s *Store) UpdateGoal(ctx context.Context, goal persistence.Goal) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE goals SET title = ?, time_allocated_hours = ?, category = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		goal.Title, goal.TimeAllocatedHoursPerWeek, goal.Category, goal.Status, encodeTime(goal.UpdatedAt), goal.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireRow(res)
}

// DeleteGoal removes a goal by id.
func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireRow(res)
}

// --- RecurringEventRepository implementation ---

// CreateRecurringEvent stores a new recurring event definition.
func (s *Store) CreateRecurringEvent(ctx context.Context, event persistence.RecurringEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recurring_events
		 (id, user_id, title, description, start_hour, start_minute, duration_minutes, frequency,
		  repeat_interval, weekdays, ends_on, max_occurrences, goal_id, is_active, color, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.UserID, event.Title, nullString(event.Description),
		event.StartHour, event.StartMinute, event.DurationMinutes, event.Frequency.String(),
		event.Interval, encodeWeekdays(event.Weekdays), nullTime(event.EndsOn), event.MaxOccurrences,
		nullString(event.GoalID), event.IsActive, nullString(event.Color),
		encodeTime(event.CreatedAt), encodeTime(event.UpdatedAt),
	)
	return mapError(err)
}

// GetRecurringEvent retrieves a definition by id.
func (s *Store) GetRecurringEvent(ctx context.Context, id string) (persistence.RecurringEvent, error) {
	row := s.db.QueryRowContext(ctx, selectRecurringEvent+` WHERE id = ?`, id)
	return scanRecurringEvent(row)
}

// ListRecurringEvents returns a user's definitions ordered by creation time.
func (s *Store) ListRecurringEvents(ctx context.Context, userID string) ([]persistence.RecurringEvent, error) {
	rows, err := s.db.QueryContext(ctx, selectRecurringEvent+` WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	events := make([]persistence.RecurringEvent, 0)
	for rows.Next() {
		event, err := scanRecurringEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// UpdateRecurringEvent updates an existing definition.
func (s *Store) UpdateRecurringEvent(ctx context.Context, event persistence.RecurringEvent) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE recurring_events SET title = ?, description = ?, start_hour = ?, start_minute = ?,
		  duration_minutes = ?, frequency = ?, repeat_interval = ?, weekdays = ?, ends_on = ?,
		  max_occurrences = ?, goal_id = ?, is_active = ?, color = ?, updated_at = ?
		 WHERE id = ?`,
		event.Title, nullString(event.Description), event.StartHour, event.StartMinute,
		event.DurationMinutes, event.Frequency.String(), event.Interval, encodeWeekdays(event.Weekdays),
		nullTime(event.EndsOn), event.MaxOccurrences, nullString(event.GoalID), event.IsActive,
		nullString(event.Color), encodeTime(event.UpdatedAt), event.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireRow(res)
}

// DeleteRecurringEvent removes a definition by id.
func (s *Store) DeleteRecurringEvent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recurring_events WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireRow(res)
}

// --- CalendarEventRepository implementation ---

// CreateCalendarEvent stores a new one-off event.
func (s *Store) CreateCalendarEvent(ctx context.Context, event persistence.CalendarEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO calendar_events (id, user_id, title, start_at, end_at, goal_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.UserID, event.Title, encodeTime(event.Start), encodeTime(event.End),
		nullString(event.GoalID), encodeTime(event.CreatedAt), encodeTime(event.UpdatedAt),
	)
	return mapError(err)
}

// ListCalendarEvents returns a user's events intersecting [from, to],
// ordered by start.
func (s *Store) ListCalendarEvents(ctx context.Context, userID string, from, to time.Time) ([]persistence.CalendarEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, start_at, end_at, goal_id, created_at, updated_at
		 FROM calendar_events
		 WHERE user_id = ? AND start_at <= ? AND end_at > ?
		 ORDER BY start_at, id`,
		userID, encodeTime(to), encodeTime(from),
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	events := make([]persistence.CalendarEvent, 0)
	for rows.Next() {
		event, err := scanCalendarEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// DeleteCalendarEvent removes an event by id.
func (s *Store) DeleteCalendarEvent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM calendar_events WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireRow(res)
}

// --- SettingsRepository implementation ---

// UpsertSettings creates or replaces a user's settings.
func (s *Store) UpsertSettings(ctx context.Context, settings persistence.UserSettings) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_settings (user_id, available_hours_per_week, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET available_hours_per_week = excluded.available_hours_per_week,
		  updated_at = excluded.updated_at`,
		settings.UserID, settings.AvailableHoursPerWeek, encodeTime(settings.UpdatedAt),
	)
	return mapError(err)
}

// GetSettings retrieves a user's settings.
func (s *Store) GetSettings(ctx context.Context, userID string) (persistence.UserSettings, error) {
	var (
		settings  persistence.UserSettings
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, available_hours_per_week, updated_at FROM user_settings WHERE user_id = ?`,
		userID,
	).Scan(&settings.UserID, &settings.AvailableHoursPerWeek, &updatedAt)
	if err != nil {
		return persistence.UserSettings{}, mapError(err)
	}
	settings.UpdatedAt, err = decodeTime(updatedAt)
	if err != nil {
		return persistence.UserSettings{}, err
	}
	return settings, nil
}

// ListUserIDs enumerates every user known to the store, across goals and
// settings.
func (s *Store) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM goals UNION SELECT user_id FROM user_settings ORDER BY user_id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- Scan and encoding helpers ---

const selectRecurringEvent = `SELECT id, user_id, title, description, start_hour, start_minute,
 duration_minutes, frequency, repeat_interval, weekdays, ends_on, max_occurrences, goal_id,
 is_active, color, created_at, updated_at FROM recurring_events`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (persistence.Goal, error) {
	var (
		goal                 persistence.Goal
		createdAt, updatedAt string
	)
	err := row.Scan(&goal.ID, &goal.UserID, &goal.Title, &goal.TimeAllocatedHoursPerWeek,
		&goal.Category, &goal.Status, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Goal{}, mapError(err)
	}
	if goal.CreatedAt, err = decodeTime(createdAt); err != nil {
		return persistence.Goal{}, err
	}
	if goal.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return persistence.Goal{}, err
	}
	return goal, nil
}

func scanRecurringEvent(row rowScanner) (persistence.RecurringEvent, error) {
	var (
		event                      persistence.RecurringEvent
		description, goalID, color sql.NullString
		endsOn                     sql.NullString
		frequency                  string
		weekdays                   string
		createdAt, updatedAt       string
	)
	err := row.Scan(&event.ID, &event.UserID, &event.Title, &description, &event.StartHour,
		&event.StartMinute, &event.DurationMinutes, &frequency, &event.Interval, &weekdays,
		&endsOn, &event.MaxOccurrences, &goalID, &event.IsActive, &color, &createdAt, &updatedAt)
	if err != nil {
		return persistence.RecurringEvent{}, mapError(err)
	}

	if event.Frequency, err = recurrence.ParseFrequency(frequency); err != nil {
		return persistence.RecurringEvent{}, err
	}
	if event.Weekdays, err = decodeWeekdays(weekdays); err != nil {
		return persistence.RecurringEvent{}, err
	}
	event.Description = stringPtr(description)
	event.GoalID = stringPtr(goalID)
	event.Color = stringPtr(color)
	if endsOn.Valid {
		t, err := decodeTime(endsOn.String)
		if err != nil {
			return persistence.RecurringEvent{}, err
		}
		event.EndsOn = &t
	}
	if event.CreatedAt, err = decodeTime(createdAt); err != nil {
		return persistence.RecurringEvent{}, err
	}
	if event.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return persistence.RecurringEvent{}, err
	}
	return event, nil
}

func scanCalendarEvent(row rowScanner) (persistence.CalendarEvent, error) {
	var (
		event                                persistence.CalendarEvent
		goalID                               sql.NullString
		startAt, endAt, createdAt, updatedAt string
	)
	err := row.Scan(&event.ID, &event.UserID, &event.Title, &startAt, &endAt, &goalID, &createdAt, &updatedAt)
	if err != nil {
		return persistence.CalendarEvent{}, mapError(err)
	}
	event.GoalID = stringPtr(goalID)
	if event.Start, err = decodeTime(startAt); err != nil {
		return persistence.CalendarEvent{}, err
	}
	if event.End, err = decodeTime(endAt); err != nil {
		return persistence.CalendarEvent{}, err
	}
	if event.CreatedAt, err = decodeTime(createdAt); err != nil {
		return persistence.CalendarEvent{}, err
	}
	if event.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return persistence.CalendarEvent{}, err
	}
	return event, nil
}

// encodeTime stores instants as RFC3339Nano in UTC so lexical comparison
// matches chronological order.
func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode stored time %q: %w", value, err)
	}
	return t, nil
}

func encodeWeekdays(days []time.Weekday) string {
	parts := make([]string, len(days))
	for i, day := range days {
		parts[i] = strconv.Itoa(int(day))
	}
	return strings.Join(parts, ",")
}

func decodeWeekdays(value string) ([]time.Weekday, error) {
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	days := make([]time.Weekday, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("decode stored weekdays %q: %w", value, err)
		}
		days = append(days, time.Weekday(n))
	}
	return days, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: encodeTime(*t), Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	out := s.String
	return &out
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// mapError translates driver errors into the persistence sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return persistence.ErrDuplicate
	}
	return err
}
