package snapshot

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/example/goal-planner/internal/allocation"
	"github.com/example/goal-planner/internal/recurrence"
)

// Fingerprint digests the goal and recurring-definition state relevant to a
// weekly snapshot, returned as a hex string.
//
// The digest is deterministic and order-invariant: both inputs are sorted by
// id and projected onto a fixed field tuple before hashing, so two calls with
// equal sets yield an identical fingerprint regardless of input ordering.
// The canonical form is built by hand rather than serialized, keeping field
// order explicit and pointer fields from introducing instability.
func Fingerprint(goals []allocation.Goal, defs []recurrence.Definition) string {
	sortedGoals := make([]allocation.Goal, len(goals))
	copy(sortedGoals, goals)
	sort.Slice(sortedGoals, func(i, j int) bool { return sortedGoals[i].ID < sortedGoals[j].ID })

	sortedDefs := make([]recurrence.Definition, len(defs))
	copy(sortedDefs, defs)
	sort.Slice(sortedDefs, func(i, j int) bool { return sortedDefs[i].ID < sortedDefs[j].ID })

	var b strings.Builder
	for _, goal := range sortedGoals {
		fmt.Fprintf(&b, "goal|%s|%s|%s|%s\n",
			goal.ID,
			strconv.FormatFloat(goal.TimeAllocatedHoursPerWeek, 'f', -1, 64),
			goal.Status,
			goal.Category,
		)
	}
	for _, def := range sortedDefs {
		fmt.Fprintf(&b, "def|%s|%s|%02d:%02d|%d|%s|%s|%t\n",
			def.ID,
			deref(def.GoalID),
			def.StartHour,
			def.StartMinute,
			def.DurationMinutes,
			def.Rule.Frequency,
			weekdayKey(def.Rule.Weekdays),
			def.IsActive,
		)
	}

	sum := blake2b.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// weekdayKey renders a weekday set in a canonical sorted form.
func weekdayKey(days []time.Weekday) string {
	sorted := make([]int, 0, len(days))
	for _, day := range days {
		sorted = append(sorted, int(day))
	}
	sort.Ints(sorted)

	parts := make([]string, len(sorted))
	for i, day := range sorted {
		parts[i] = strconv.Itoa(day)
	}
	return strings.Join(parts, ",")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
