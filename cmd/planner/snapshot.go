package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/goal-planner/internal/allocation"
	"github.com/example/goal-planner/internal/recurrence"
	"github.com/example/goal-planner/internal/snapshot"
	"github.com/example/goal-planner/internal/week"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Materialize weekly snapshots for every user",
	Long:  "Snapshot computes and persists the weekly statistics for all users, skipping weeks that were already materialized. Intended to be invoked by an external scheduler once per week.",
	RunE:  runSnapshot,
}

var freezeCmd = &cobra.Command{
	Use:   "freeze",
	Short: "Pin a user's existing weekly snapshot",
	RunE:  runFreeze,
}

func init() {
	snapshotCmd.Flags().Int("week-offset", -1, "Week offset relative to the current week (negative values are past weeks)")
	freezeCmd.Flags().String("user", "", "User whose snapshot to freeze")
	freezeCmd.Flags().Int("week-offset", -1, "Week offset relative to the current week")
	_ = freezeCmd.MarkFlagRequired("user")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	weekOffset, _ := cmd.Flags().GetInt("week-offset")
	ctx := rt.ctx(cmd)

	userIDs, err := rt.store.ListUserIDs(ctx)
	if err != nil {
		return err
	}

	accountant := allocation.NewAccountant(recurrence.NewEngine(rt.location))
	materializer := snapshot.NewMaterializer(rt.store, newDataSourceAdapter(rt), accountant, nil, rt.now, rt.logger)

	tally := materializer.MaterializeWeek(ctx, weekOffset, userIDs)

	fmt.Fprintf(cmd.OutOrStdout(), "total=%d created=%d skipped=%d failed=%d\n",
		tally.Total, tally.Created, tally.Skipped, tally.Failed)
	for _, userErr := range tally.Errors {
		fmt.Fprintf(cmd.OutOrStdout(), "failed user %s: %v\n", userErr.UserID, userErr.Err)
	}
	return nil
}

func runFreeze(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	userID, _ := cmd.Flags().GetString("user")
	weekOffset, _ := cmd.Flags().GetInt("week-offset")

	weekStart, _ := week.Bounds(rt.now(), weekOffset)
	if err := rt.store.FreezeSnapshot(rt.ctx(cmd), userID, weekStart); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "froze snapshot for %s, week of %s\n",
		userID, weekStart.Format("2006-01-02"))
	return nil
}
