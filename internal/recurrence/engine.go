package recurrence

import "time"

// Occurrence represents one concrete, time-bounded instance produced by
// expanding a definition's rule. Occurrences are derived values and are never
// persisted.
type Occurrence struct {
	DefinitionID string
	GoalID       *string
	Start        time.Time
	End          time.Time
}

// Engine expands recurring event definitions into occurrences.
type Engine struct {
	location *time.Location
}

// NewEngine constructs an Engine that computes occurrences in the provided
// location. If loc is nil, the process-local timezone is used.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{location: loc}
}

// Generate expands the definition into occurrences whose start instants fall
// within [windowStart, windowEnd].
//
// Semantics:
//   - An inactive definition yields no occurrences.
//   - The cursor begins at windowStart and is tested against the rule before
//     each advancement; daily rules include every cursor position, weekly
//     rules filter by the weekday set when one is present, monthly rules
//     include every cursor position (the month-sized step yields at most one
//     occurrence per cycle).
//   - Generation stops at windowEnd, at the rule's inclusive EndsOn, or once
//     MaxOccurrences have been emitted, whichever comes first.
//
// Generate never fails and is deterministic for identical arguments: an
// interval below 1 is treated as 1, and malformed anchor values must be
// rejected by the caller via Definition.Validate.
func (e *Engine) Generate(def Definition, windowStart, windowEnd time.Time) []Occurrence {
	loc := e.location
	if loc == nil {
		loc = time.Local
	}

	if !def.IsActive {
		return nil
	}

	windowStart = windowStart.In(loc)
	windowEnd = windowEnd.In(loc)
	if windowEnd.Before(windowStart) {
		return nil
	}

	rule := def.Rule
	interval := rule.Interval
	if interval < 1 {
		interval = 1
	}

	weekdaySet := make(map[time.Weekday]struct{}, len(rule.Weekdays))
	for _, day := range rule.Weekdays {
		weekdaySet[day] = struct{}{}
	}

	var endsOn time.Time
	if rule.EndsOn != nil {
		endsOn = rule.EndsOn.In(loc)
	}

	duration := time.Duration(def.DurationMinutes) * time.Minute
	occurrences := make([]Occurrence, 0)

	for cursor := windowStart; !cursor.After(windowEnd); cursor = advance(cursor, rule.Frequency, interval, len(weekdaySet) > 0) {
		if !endsOn.IsZero() && cursor.After(endsOn) {
			break
		}

		if includes(rule.Frequency, weekdaySet, cursor.Weekday()) {
			start := time.Date(cursor.Year(), cursor.Month(), cursor.Day(), def.StartHour, def.StartMinute, 0, 0, loc)
			if !start.Before(windowStart) && !start.After(windowEnd) {
				occurrences = append(occurrences, Occurrence{
					DefinitionID: def.ID,
					GoalID:       def.GoalID,
					Start:        start,
					End:          start.Add(duration),
				})
				if rule.MaxOccurrences > 0 && len(occurrences) >= rule.MaxOccurrences {
					break
				}
			}
		}
	}

	return occurrences
}

func includes(freq Frequency, weekdaySet map[time.Weekday]struct{}, day time.Weekday) bool {
	switch freq {
	case FrequencyDaily, FrequencyMonthly:
		return true
	case FrequencyWeekly:
		if len(weekdaySet) == 0 {
			return true
		}
		_, ok := weekdaySet[day]
		return ok
	default:
		return false
	}
}

func advance(cursor time.Time, freq Frequency, interval int, hasWeekdays bool) time.Time {
	switch freq {
	case FrequencyWeekly:
		if hasWeekdays {
			// Day scan: each day is tested individually against the weekday
			// set. See the Rule doc for why Interval is not applied here.
			return cursor.AddDate(0, 0, 1)
		}
		return cursor.AddDate(0, 0, 7*interval)
	case FrequencyMonthly:
		// AddDate normalizes overflowing days (Jan 31 + 1 month = Mar 2/3).
		return cursor.AddDate(0, interval, 0)
	default:
		return cursor.AddDate(0, 0, interval)
	}
}
