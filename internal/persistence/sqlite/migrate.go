package sqlite

import (
	"context"
	"fmt"
)

// migration is one ordered schema step. Applied versions are tracked in
// PRAGMA user_version so partially migrated databases resume correctly.
type migration struct {
	version    int
	statements []string
}

var migrations = []migration{
	{
		version: 1,
		statements: []string{
			`CREATE TABLE goals (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				title TEXT NOT NULL,
				time_allocated_hours REAL NOT NULL DEFAULT 0,
				category TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX idx_goals_user ON goals(user_id)`,
			`CREATE TABLE recurring_events (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				title TEXT NOT NULL,
				description TEXT,
				start_hour INTEGER NOT NULL,
				start_minute INTEGER NOT NULL,
				duration_minutes INTEGER NOT NULL,
				frequency TEXT NOT NULL,
				repeat_interval INTEGER NOT NULL DEFAULT 1,
				weekdays TEXT NOT NULL DEFAULT '',
				ends_on TEXT,
				max_occurrences INTEGER NOT NULL DEFAULT 0,
				goal_id TEXT,
				is_active INTEGER NOT NULL DEFAULT 1,
				color TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX idx_recurring_events_user ON recurring_events(user_id)`,
			`CREATE TABLE calendar_events (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				title TEXT NOT NULL,
				start_at TEXT NOT NULL,
				end_at TEXT NOT NULL,
				goal_id TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX idx_calendar_events_user_start ON calendar_events(user_id, start_at)`,
			`CREATE TABLE user_settings (
				user_id TEXT PRIMARY KEY,
				available_hours_per_week REAL NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE weekly_snapshots (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				week_start TEXT NOT NULL,
				week_end TEXT NOT NULL,
				total_available_hours REAL NOT NULL,
				total_allocated_hours REAL NOT NULL,
				total_completed_hours REAL NOT NULL,
				total_scheduled_hours REAL NOT NULL,
				free_time_hours REAL NOT NULL,
				fingerprint TEXT NOT NULL,
				is_frozen INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				UNIQUE(user_id, week_start)
			)`,
			`CREATE TABLE goal_snapshots (
				id TEXT PRIMARY KEY,
				snapshot_id TEXT NOT NULL REFERENCES weekly_snapshots(id),
				goal_id TEXT NOT NULL,
				title TEXT NOT NULL,
				category TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT '',
				total_allocated_hours REAL NOT NULL,
				completed_hours REAL NOT NULL,
				scheduled_hours REAL NOT NULL,
				unscheduled_hours REAL NOT NULL,
				completed_percent REAL NOT NULL,
				scheduled_percent REAL NOT NULL,
				unscheduled_percent REAL NOT NULL,
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX idx_goal_snapshots_parent ON goal_snapshots(snapshot_id)`,
			`CREATE TABLE recurring_event_snapshots (
				id TEXT PRIMARY KEY,
				snapshot_id TEXT NOT NULL REFERENCES weekly_snapshots(id),
				goal_snapshot_id TEXT REFERENCES goal_snapshots(id),
				definition_id TEXT NOT NULL,
				title TEXT NOT NULL,
				start_hour INTEGER NOT NULL,
				start_minute INTEGER NOT NULL,
				duration_minutes INTEGER NOT NULL,
				frequency TEXT NOT NULL,
				weekdays TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX idx_recurring_event_snapshots_parent ON recurring_event_snapshots(snapshot_id)`,
		},
	},
}

// Migrate applies all pending schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := s.applyMigration(ctx, m); err != nil {
			return err
		}
		current = m.version
	}

	return nil
}

func (s *Store) applyMigration(ctx context.Context, m migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", m.version, err)
	}

	for _, stmt := range m.statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}
	}

	// PRAGMA statements cannot be parameterized.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %d: %w", m.version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", m.version, err)
	}
	return nil
}
