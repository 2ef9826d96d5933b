package testfixtures

import (
	"context"
	"sync"
	"time"

	"github.com/example/goal-planner/internal/allocation"
	"github.com/example/goal-planner/internal/persistence"
	"github.com/example/goal-planner/internal/recurrence"
	"github.com/example/goal-planner/internal/snapshot"
)

// MemoryStore is an in-memory implementation of the materializer's Store and
// DataSource ports with per-user failure injection. All reads and writes copy
// values so callers never share state with the store.
type MemoryStore struct {
	mu             sync.RWMutex
	goals          map[string][]allocation.Goal
	definitions    map[string][]recurrence.Definition
	events         map[string][]allocation.Event
	availableHours map[string]float64

	snapshots      map[string]snapshot.WeeklySnapshot
	goalSnapshots  []snapshot.GoalSnapshot
	eventSnapshots []snapshot.RecurringEventSnapshot

	failures map[string]error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		goals:          make(map[string][]allocation.Goal),
		definitions:    make(map[string][]recurrence.Definition),
		events:         make(map[string][]allocation.Event),
		availableHours: make(map[string]float64),
		snapshots:      make(map[string]snapshot.WeeklySnapshot),
		failures:       make(map[string]error),
	}
}

// SeedUser installs the read-side data for one user.
func (m *MemoryStore) SeedUser(userID string, goals []allocation.Goal, defs []recurrence.Definition, events []allocation.Event, availableHours float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goals[userID] = append([]allocation.Goal(nil), goals...)
	m.definitions[userID] = append([]recurrence.Definition(nil), defs...)
	m.events[userID] = append([]allocation.Event(nil), events...)
	m.availableHours[userID] = availableHours
}

// FailUser makes every snapshot write for the user fail with err.
func (m *MemoryStore) FailUser(userID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[userID] = err
}

// --- snapshot.DataSource implementation ---

// ListGoals returns the seeded goals for the user.
func (m *MemoryStore) ListGoals(ctx context.Context, userID string) ([]allocation.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]allocation.Goal(nil), m.goals[userID]...), nil
}

// ListRecurringEvents returns the seeded definitions for the user.
func (m *MemoryStore) ListRecurringEvents(ctx context.Context, userID string) ([]recurrence.Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]recurrence.Definition(nil), m.definitions[userID]...), nil
}

// ListEvents returns the seeded events intersecting [from, to].
func (m *MemoryStore) ListEvents(ctx context.Context, userID string, from, to time.Time) ([]allocation.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]allocation.Event, 0)
	for _, event := range m.events[userID] {
		if event.Start.After(to) || !event.End.After(from) {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// AvailableHours returns the seeded weekly capacity for the user.
func (m *MemoryStore) AvailableHours(ctx context.Context, userID string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.availableHours[userID], nil
}

// --- snapshot.Store implementation ---

// SnapshotExists reports whether a snapshot was stored for the user and week.
func (m *MemoryStore) SnapshotExists(ctx context.Context, userID string, weekStart time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.snapshots[snapshotKey(userID, weekStart)]
	return ok, nil
}

// CreateWeeklySnapshot stores the parent row, honouring injected failures.
func (m *MemoryStore) CreateWeeklySnapshot(ctx context.Context, snap snapshot.WeeklySnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failures[snap.UserID]; err != nil {
		return err
	}

	key := snapshotKey(snap.UserID, snap.WeekStart)
	if _, ok := m.snapshots[key]; ok {
		return persistence.ErrDuplicate
	}
	m.snapshots[key] = snap
	return nil
}

// CreateGoalSnapshot stores one goal child row.
func (m *MemoryStore) CreateGoalSnapshot(ctx context.Context, snap snapshot.GoalSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goalSnapshots = append(m.goalSnapshots, snap)
	return nil
}

// CreateRecurringEventSnapshot stores one recurring-event child row.
func (m *MemoryStore) CreateRecurringEventSnapshot(ctx context.Context, snap snapshot.RecurringEventSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventSnapshots = append(m.eventSnapshots, snap)
	return nil
}

// --- Assertion helpers ---

// Snapshot returns the stored parent snapshot for the user and week.
func (m *MemoryStore) Snapshot(userID string, weekStart time.Time) (snapshot.WeeklySnapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snapshots[snapshotKey(userID, weekStart)]
	return snap, ok
}

// GoalSnapshotsFor returns the goal children stored under the snapshot id.
func (m *MemoryStore) GoalSnapshotsFor(snapshotID string) []snapshot.GoalSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snaps := make([]snapshot.GoalSnapshot, 0)
	for _, snap := range m.goalSnapshots {
		if snap.SnapshotID == snapshotID {
			snaps = append(snaps, snap)
		}
	}
	return snaps
}

// RecurringEventSnapshotsFor returns the recurring-event children stored
// under the snapshot id.
func (m *MemoryStore) RecurringEventSnapshotsFor(snapshotID string) []snapshot.RecurringEventSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snaps := make([]snapshot.RecurringEventSnapshot, 0)
	for _, snap := range m.eventSnapshots {
		if snap.SnapshotID == snapshotID {
			snaps = append(snaps, snap)
		}
	}
	return snaps
}

func snapshotKey(userID string, weekStart time.Time) string {
	return userID + "|" + weekStart.UTC().Format(time.RFC3339Nano)
}

var _ snapshot.Store = (*MemoryStore)(nil)
var _ snapshot.DataSource = (*MemoryStore)(nil)
