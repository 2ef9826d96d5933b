package recurrence

import (
	"fmt"
	"time"
)

// Frequency represents supported recurrence cadences.
type Frequency int

const (
	// FrequencyUnspecified indicates the rule frequency is not set.
	FrequencyUnspecified Frequency = iota
	// FrequencyDaily repeats every Interval days.
	FrequencyDaily
	// FrequencyWeekly repeats weekly, optionally filtered by a weekday set.
	FrequencyWeekly
	// FrequencyMonthly repeats every Interval calendar months.
	FrequencyMonthly
)

// String returns the lowercase token used in storage and configuration.
func (f Frequency) String() string {
	switch f {
	case FrequencyDaily:
		return "daily"
	case FrequencyWeekly:
		return "weekly"
	case FrequencyMonthly:
		return "monthly"
	default:
		return "unspecified"
	}
}

// ParseFrequency converts a stored token back into a Frequency.
func ParseFrequency(value string) (Frequency, error) {
	switch value {
	case "daily":
		return FrequencyDaily, nil
	case "weekly":
		return FrequencyWeekly, nil
	case "monthly":
		return FrequencyMonthly, nil
	default:
		return FrequencyUnspecified, fmt.Errorf("recurrence: unknown frequency %q", value)
	}
}

// Rule describes a declarative repetition pattern.
//
// Interval values below 1 are treated as 1 by the engine; the generator has
// no failure modes. Weekdays is meaningful only for weekly rules. When a
// weekday set is present the engine scans every day of every week and
// Interval is not applied: a week-skip multiplier would need a stable anchor
// date the rule does not carry, so occurrences would drift between query
// windows.
type Rule struct {
	Frequency Frequency
	Interval  int
	Weekdays  []time.Weekday
	// EndsOn is an inclusive upper bound on generation, if set.
	EndsOn *time.Time
	// MaxOccurrences caps the number of generated occurrences. Zero means
	// unbounded; whichever of EndsOn and MaxOccurrences is hit first stops
	// generation.
	MaxOccurrences int
}

// Definition is an immutable snapshot of a recurring event as read from
// storage for the duration of one computation.
type Definition struct {
	ID          string
	Title       string
	Description *string
	// StartHour and StartMinute anchor each occurrence's wall-clock start.
	StartHour   int
	StartMinute int
	// DurationMinutes may be zero; zero-length occurrences are legal.
	DurationMinutes int
	Rule            Rule
	// GoalID links the definition to a goal for accounting. A nil or dangling
	// reference places its occurrences in the unassociated bucket.
	GoalID   *string
	IsActive bool
	// Color is a display hint carried through verbatim.
	Color *string
}

// Validate rejects boundary contract violations before a definition reaches
// the engine. It reports field-level issues via a ValidationError.
func (d Definition) Validate() error {
	vErr := &ValidationError{}

	if d.ID == "" {
		vErr.add("id", "id is required")
	}
	if d.StartHour < 0 || d.StartHour > 23 {
		vErr.add("start_hour", "must be between 0 and 23")
	}
	if d.StartMinute < 0 || d.StartMinute > 59 {
		vErr.add("start_minute", "must be between 0 and 59")
	}
	if d.DurationMinutes < 0 {
		vErr.add("duration_minutes", "must not be negative")
	}
	if d.Rule.Frequency == FrequencyUnspecified {
		vErr.add("frequency", "frequency is required")
	}
	for _, day := range d.Rule.Weekdays {
		if day < time.Sunday || day > time.Saturday {
			vErr.add("weekdays", "contains an invalid weekday")
			break
		}
	}
	if len(d.Rule.Weekdays) > 0 && d.Rule.Frequency != FrequencyWeekly {
		vErr.add("weekdays", "weekday sets apply to weekly rules only")
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
