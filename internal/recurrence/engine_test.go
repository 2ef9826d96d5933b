package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Generate(t *testing.T) {
	t.Parallel()

	// Monday 2024-03-04 through the last instant of Sunday 2024-03-10.
	windowStart := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	windowEnd := windowStart.AddDate(0, 0, 7).Add(-time.Nanosecond)
	engine := NewEngine(time.UTC)

	goalID := "goal-1"
	base := Definition{
		ID:              "def-1",
		Title:           "Deep work",
		StartHour:       13,
		StartMinute:     0,
		DurationMinutes: 60,
		GoalID:          &goalID,
		IsActive:        true,
		Rule:            Rule{Frequency: FrequencyDaily, Interval: 1},
	}

	t.Run("daily rule includes every day", func(t *testing.T) {
		t.Parallel()

		occurrences := engine.Generate(base, windowStart, windowEnd)

		require.Len(t, occurrences, 7)
		for i, occ := range occurrences {
			assert.Equal(t, 13, occ.Start.Hour())
			assert.Equal(t, windowStart.AddDate(0, 0, i).Day(), occ.Start.Day())
			assert.Equal(t, occ.Start.Add(time.Hour), occ.End)
		}
	})

	t.Run("inactive definitions generate nothing", func(t *testing.T) {
		t.Parallel()

		def := base
		def.IsActive = false

		assert.Empty(t, engine.Generate(def, windowStart, windowEnd))
	})

	t.Run("daily interval skips days", func(t *testing.T) {
		t.Parallel()

		def := base
		def.Rule.Interval = 2

		occurrences := engine.Generate(def, windowStart, windowEnd)

		require.Len(t, occurrences, 4)
		assert.Equal(t, time.Monday, occurrences[0].Start.Weekday())
		assert.Equal(t, time.Wednesday, occurrences[1].Start.Weekday())
		assert.Equal(t, time.Friday, occurrences[2].Start.Weekday())
		assert.Equal(t, time.Sunday, occurrences[3].Start.Weekday())
	})

	t.Run("weekly weekday set over two weeks", func(t *testing.T) {
		t.Parallel()

		def := base
		def.Rule = Rule{
			Frequency: FrequencyWeekly,
			Interval:  1,
			Weekdays:  []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		}
		twoWeekEnd := windowStart.AddDate(0, 0, 14).Add(-time.Nanosecond)

		occurrences := engine.Generate(def, windowStart, twoWeekEnd)

		require.Len(t, occurrences, 6)
		want := []time.Weekday{time.Monday, time.Wednesday, time.Friday, time.Monday, time.Wednesday, time.Friday}
		for i, occ := range occurrences {
			assert.Equal(t, want[i], occ.Start.Weekday())
		}
	})

	t.Run("weekly weekday set does not apply the interval", func(t *testing.T) {
		t.Parallel()

		def := base
		def.Rule = Rule{
			Frequency: FrequencyWeekly,
			Interval:  2,
			Weekdays:  []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		}
		twoWeekEnd := windowStart.AddDate(0, 0, 14).Add(-time.Nanosecond)

		// Every week is scanned; the weekday set alone filters.
		assert.Len(t, engine.Generate(def, windowStart, twoWeekEnd), 6)
	})

	t.Run("weekly without weekday set repeats the anchor weekday", func(t *testing.T) {
		t.Parallel()

		def := base
		def.Rule = Rule{Frequency: FrequencyWeekly, Interval: 1}
		twoWeekEnd := windowStart.AddDate(0, 0, 14).Add(-time.Nanosecond)

		occurrences := engine.Generate(def, windowStart, twoWeekEnd)

		require.Len(t, occurrences, 2)
		assert.Equal(t, time.Monday, occurrences[0].Start.Weekday())
		assert.Equal(t, time.Monday, occurrences[1].Start.Weekday())
	})

	t.Run("monthly yields one occurrence per cycle", func(t *testing.T) {
		t.Parallel()

		def := base
		def.Rule = Rule{Frequency: FrequencyMonthly, Interval: 1}
		monthlyStart := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
		monthlyEnd := time.Date(2024, time.June, 14, 23, 59, 59, 0, time.UTC)

		occurrences := engine.Generate(def, monthlyStart, monthlyEnd)

		require.Len(t, occurrences, 3)
		for _, occ := range occurrences {
			assert.Equal(t, 15, occ.Start.Day())
		}
		assert.Equal(t, time.March, occurrences[0].Start.Month())
		assert.Equal(t, time.April, occurrences[1].Start.Month())
		assert.Equal(t, time.May, occurrences[2].Start.Month())
	})

	t.Run("end date bounds generation inclusively", func(t *testing.T) {
		t.Parallel()

		def := base
		endsOn := windowStart.AddDate(0, 0, 2) // Wednesday 00:00
		def.Rule.EndsOn = &endsOn

		occurrences := engine.Generate(def, windowStart, windowEnd)

		require.Len(t, occurrences, 3)
		assert.Equal(t, time.Wednesday, occurrences[2].Start.Weekday())
	})

	t.Run("occurrence limit stops generation", func(t *testing.T) {
		t.Parallel()

		def := base
		def.Rule.MaxOccurrences = 3

		assert.Len(t, engine.Generate(def, windowStart, windowEnd), 3)
	})

	t.Run("zero duration yields zero-length occurrences", func(t *testing.T) {
		t.Parallel()

		def := base
		def.DurationMinutes = 0

		occurrences := engine.Generate(def, windowStart, windowEnd)

		require.NotEmpty(t, occurrences)
		for _, occ := range occurrences {
			assert.True(t, occ.Start.Equal(occ.End))
		}
	})

	t.Run("interval below one is treated as one", func(t *testing.T) {
		t.Parallel()

		def := base
		def.Rule.Interval = 0

		assert.Len(t, engine.Generate(def, windowStart, windowEnd), 7)
	})

	t.Run("identical arguments yield identical output", func(t *testing.T) {
		t.Parallel()

		first := engine.Generate(base, windowStart, windowEnd)
		second := engine.Generate(base, windowStart, windowEnd)

		assert.Equal(t, first, second)
	})

	t.Run("occurrences stay within the window", func(t *testing.T) {
		t.Parallel()

		def := base
		def.Rule = Rule{
			Frequency: FrequencyWeekly,
			Interval:  1,
			Weekdays:  []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		}
		// Window opens mid-week: Monday must not be generated.
		midWeekStart := time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC)

		occurrences := engine.Generate(def, midWeekStart, windowEnd)

		require.Len(t, occurrences, 2)
		for _, occ := range occurrences {
			assert.False(t, occ.Start.Before(midWeekStart))
			assert.False(t, occ.Start.After(windowEnd))
		}
	})

	t.Run("occurrences may cross midnight", func(t *testing.T) {
		t.Parallel()

		def := base
		def.StartHour = 23
		def.StartMinute = 30

		occurrences := engine.Generate(def, windowStart, windowEnd)

		require.NotEmpty(t, occurrences)
		first := occurrences[0]
		assert.Equal(t, first.Start.Day()+1, first.End.Day())
	})

	t.Run("occurrences carry source references", func(t *testing.T) {
		t.Parallel()

		occurrences := engine.Generate(base, windowStart, windowEnd)

		require.NotEmpty(t, occurrences)
		assert.Equal(t, "def-1", occurrences[0].DefinitionID)
		require.NotNil(t, occurrences[0].GoalID)
		assert.Equal(t, "goal-1", *occurrences[0].GoalID)
	})

	t.Run("inverted window generates nothing", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, engine.Generate(base, windowEnd, windowStart))
	})
}

func TestEngine_GenerateNormalizesLocation(t *testing.T) {
	t.Parallel()

	berlin := time.FixedZone("CET", 60*60)
	engine := NewEngine(berlin)

	def := Definition{
		ID:              "def-tz",
		StartHour:       9,
		DurationMinutes: 30,
		IsActive:        true,
		Rule:            Rule{Frequency: FrequencyDaily, Interval: 1},
	}

	// Window supplied in UTC; occurrences come back in the engine's location.
	windowStart := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	windowEnd := windowStart.AddDate(0, 0, 1)

	occurrences := engine.Generate(def, windowStart, windowEnd)

	require.NotEmpty(t, occurrences)
	assert.Equal(t, berlin, occurrences[0].Start.Location())
	assert.Equal(t, 9, occurrences[0].Start.Hour())
}
