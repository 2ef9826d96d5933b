package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/goal-planner/internal/allocation"
	"github.com/example/goal-planner/internal/persistence"
	"github.com/example/goal-planner/internal/recurrence"
	"github.com/example/goal-planner/internal/report"
	"github.com/example/goal-planner/internal/week"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a user's weekly time-allocation summary",
	Long:  "Report renders the weekly statistics for one user. Weeks that were already materialized are read back from their snapshot; other weeks are computed live.",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().String("user", "", "User to report on")
	reportCmd.Flags().Int("week-offset", 0, "Week offset relative to the current week")
	_ = reportCmd.MarkFlagRequired("user")
}

func runReport(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	userID, _ := cmd.Flags().GetString("user")
	weekOffset, _ := cmd.Flags().GetInt("week-offset")

	ctx := rt.ctx(cmd)
	data := newDataSourceAdapter(rt)
	now := rt.now()
	weekStart, weekEnd := week.Bounds(now, weekOffset)

	goals, err := data.ListGoals(ctx, userID)
	if err != nil {
		return err
	}

	stats, found, err := snapshotStats(ctx, rt, userID, weekStart)
	if err != nil {
		return err
	}
	if !found {
		defs, err := data.ListRecurringEvents(ctx, userID)
		if err != nil {
			return err
		}
		events, err := data.ListEvents(ctx, userID, weekStart, weekEnd)
		if err != nil {
			return err
		}
		available, err := data.AvailableHours(ctx, userID)
		if err != nil {
			return err
		}

		accountant := allocation.NewAccountant(recurrence.NewEngine(rt.location))
		stats = accountant.Aggregate(goals, defs, events, weekOffset, now, available)
	}

	fmt.Fprint(cmd.OutOrStdout(), report.Render(stats, goals))
	return nil
}

// snapshotStats reconstructs aggregate statistics from a previously
// materialized snapshot, so already-frozen history is reported verbatim
// rather than recomputed against live data that may have changed since.
func snapshotStats(ctx context.Context, rt *runtime, userID string, weekStart time.Time) (allocation.AggregateStats, bool, error) {
	snap, err := rt.store.GetWeeklySnapshot(ctx, userID, weekStart)
	if errors.Is(err, persistence.ErrNotFound) {
		return allocation.AggregateStats{}, false, nil
	}
	if err != nil {
		return allocation.AggregateStats{}, false, err
	}

	children, err := rt.store.ListGoalSnapshots(ctx, snap.ID)
	if err != nil {
		return allocation.AggregateStats{}, false, err
	}

	stats := allocation.AggregateStats{
		WeekStart:           snap.WeekStart,
		WeekEnd:             snap.WeekEnd,
		TotalAvailableHours: snap.TotalAvailableHours,
		TotalAllocatedHours: snap.TotalAllocatedHours,
		TotalCompletedHours: snap.TotalCompletedHours,
		TotalScheduledHours: snap.TotalScheduledHours,
		FreeTimeHours:       snap.FreeTimeHours,
		Goals:               make([]allocation.WeeklyAllocation, 0, len(children)),
	}
	if stats.TotalAllocatedHours > 0 {
		stats.CompletionRate = int(math.Round(stats.TotalCompletedHours / stats.TotalAllocatedHours * 100))
	}
	for _, child := range children {
		stats.Goals = append(stats.Goals, child.Allocation)
	}
	return stats, true, nil
}
