package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/example/goal-planner/internal/allocation"
	"github.com/example/goal-planner/internal/logging"
	"github.com/example/goal-planner/internal/recurrence"
	"github.com/example/goal-planner/internal/week"
)

// Store captures the snapshot writes issued by the materializer.
type Store interface {
	SnapshotExists(ctx context.Context, userID string, weekStart time.Time) (bool, error)
	CreateWeeklySnapshot(ctx context.Context, snap WeeklySnapshot) error
	CreateGoalSnapshot(ctx context.Context, snap GoalSnapshot) error
	CreateRecurringEventSnapshot(ctx context.Context, snap RecurringEventSnapshot) error
}

// DataSource supplies the read-only per-user input contracts.
type DataSource interface {
	ListGoals(ctx context.Context, userID string) ([]allocation.Goal, error)
	ListRecurringEvents(ctx context.Context, userID string) ([]recurrence.Definition, error)
	ListEvents(ctx context.Context, userID string, from, to time.Time) ([]allocation.Event, error)
	AvailableHours(ctx context.Context, userID string) (float64, error)
}

// Status classifies the outcome of one user's materialization.
type Status string

const (
	// StatusCreated indicates a new snapshot was persisted.
	StatusCreated Status = "created"
	// StatusSkipped indicates a snapshot already existed or the user has no
	// goals.
	StatusSkipped Status = "skipped"
	// StatusFailed indicates the user's snapshot could not be persisted.
	StatusFailed Status = "failed"
)

// UserError records a single user's failure within a batch.
type UserError struct {
	UserID string
	Err    error
}

// Tally reports the outcome of one batch invocation.
type Tally struct {
	Total   int
	Created int
	Skipped int
	Failed  int
	Errors  []UserError
}

// childWriteLimit bounds concurrent child-row inserts within one user.
const childWriteLimit = 4

// Materializer persists weekly snapshots for batches of users. Each user is
// processed in isolation: a failure is recorded in the tally and never aborts
// the remaining users.
type Materializer struct {
	store       Store
	data        DataSource
	accountant  *allocation.Accountant
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewMaterializer wires dependencies for snapshot materialization. A nil
// idGenerator defaults to random UUIDs and a nil now to the wall clock.
func NewMaterializer(store Store, data DataSource, accountant *allocation.Accountant, idGenerator func() string, now func() time.Time, logger *slog.Logger) *Materializer {
	if accountant == nil {
		accountant = allocation.NewAccountant(nil)
	}
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Materializer{
		store:       store,
		data:        data,
		accountant:  accountant,
		idGenerator: idGenerator,
		now:         now,
		logger:      logger,
	}
}

// MaterializeWeek creates the snapshot for the week at weekOffset for every
// supplied user, skipping users whose snapshot already exists or who have no
// goals. Users are processed sequentially; once the context is cancelled the
// remaining users are left untouched for a later invocation, which is safe
// because the existence check is idempotent.
func (m *Materializer) MaterializeWeek(ctx context.Context, weekOffset int, userIDs []string) Tally {
	tally := Tally{Total: len(userIDs)}
	logger := logging.WithOperation(ctx, m.logger, "snapshot", "materialize_week", "week_offset", weekOffset)

	for _, userID := range userIDs {
		if ctx.Err() != nil {
			logger.Warn("batch interrupted, remaining users untouched", "error", ctx.Err())
			break
		}

		status, err := m.materializeUser(ctx, userID, weekOffset)
		switch status {
		case StatusCreated:
			tally.Created++
		case StatusSkipped:
			tally.Skipped++
		case StatusFailed:
			tally.Failed++
			tally.Errors = append(tally.Errors, UserError{UserID: userID, Err: err})
			logger.Warn("snapshot materialization failed", "user_id", userID, "error", err)
		}
	}

	logger.Info("batch complete",
		"total", tally.Total,
		"created", tally.Created,
		"skipped", tally.Skipped,
		"failed", tally.Failed,
	)
	return tally
}

func (m *Materializer) materializeUser(ctx context.Context, userID string, weekOffset int) (Status, error) {
	now := m.now()
	weekStart, weekEnd := week.Bounds(now, weekOffset)

	exists, err := m.store.SnapshotExists(ctx, userID, weekStart)
	if err != nil {
		return StatusFailed, fmt.Errorf("check existing snapshot: %w", err)
	}
	if exists {
		return StatusSkipped, nil
	}

	goals, err := m.data.ListGoals(ctx, userID)
	if err != nil {
		return StatusFailed, fmt.Errorf("load goals: %w", err)
	}
	if len(goals) == 0 {
		return StatusSkipped, nil
	}

	defs, err := m.data.ListRecurringEvents(ctx, userID)
	if err != nil {
		return StatusFailed, fmt.Errorf("load recurring events: %w", err)
	}
	events, err := m.data.ListEvents(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return StatusFailed, fmt.Errorf("load events: %w", err)
	}
	available, err := m.data.AvailableHours(ctx, userID)
	if err != nil {
		return StatusFailed, fmt.Errorf("load available hours: %w", err)
	}

	stats := m.accountant.Aggregate(goals, defs, events, weekOffset, now, available)

	parent := WeeklySnapshot{
		ID:                  m.idGenerator(),
		UserID:              userID,
		WeekStart:           stats.WeekStart,
		WeekEnd:             stats.WeekEnd,
		TotalAvailableHours: stats.TotalAvailableHours,
		TotalAllocatedHours: stats.TotalAllocatedHours,
		TotalCompletedHours: stats.TotalCompletedHours,
		TotalScheduledHours: stats.TotalScheduledHours,
		FreeTimeHours:       stats.FreeTimeHours,
		Fingerprint:         Fingerprint(goals, defs),
		IsFrozen:            false,
		CreatedAt:           now,
	}

	// The parent row must be durable and its id known before any child row
	// references it.
	if err := m.store.CreateWeeklySnapshot(ctx, parent); err != nil {
		return StatusFailed, fmt.Errorf("create weekly snapshot: %w", err)
	}

	// Child ids are generated up front so the goal-snapshot map is complete
	// before either fan-out phase begins.
	goalSnapshots := make([]GoalSnapshot, 0, len(goals))
	snapshotIDByGoal := make(map[string]string, len(goals))
	for i, goal := range goals {
		gs := GoalSnapshot{
			ID:         m.idGenerator(),
			SnapshotID: parent.ID,
			GoalID:     goal.ID,
			Title:      goal.Title,
			Category:   goal.Category,
			Status:     goal.Status,
			Allocation: stats.Goals[i],
			CreatedAt:  now,
		}
		goalSnapshots = append(goalSnapshots, gs)
		snapshotIDByGoal[goal.ID] = gs.ID
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(childWriteLimit)
	for _, gs := range goalSnapshots {
		gs := gs
		g.Go(func() error {
			return m.store.CreateGoalSnapshot(gctx, gs)
		})
	}
	if err := g.Wait(); err != nil {
		return StatusFailed, fmt.Errorf("create goal snapshots: %w", err)
	}

	// Second phase: recurring-event snapshots reference the new goal
	// snapshot ids, never the live goal ids.
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(childWriteLimit)
	for _, def := range defs {
		if !def.IsActive {
			continue
		}
		res := RecurringEventSnapshot{
			ID:              m.idGenerator(),
			SnapshotID:      parent.ID,
			DefinitionID:    def.ID,
			Title:           def.Title,
			StartHour:       def.StartHour,
			StartMinute:     def.StartMinute,
			DurationMinutes: def.DurationMinutes,
			Frequency:       def.Rule.Frequency,
			Weekdays:        append([]time.Weekday(nil), def.Rule.Weekdays...),
			CreatedAt:       now,
		}
		if def.GoalID != nil {
			if id, ok := snapshotIDByGoal[*def.GoalID]; ok {
				res.GoalSnapshotID = &id
			}
		}
		g.Go(func() error {
			return m.store.CreateRecurringEventSnapshot(gctx, res)
		})
	}
	if err := g.Wait(); err != nil {
		return StatusFailed, fmt.Errorf("create recurring event snapshots: %w", err)
	}

	return StatusCreated, nil
}
