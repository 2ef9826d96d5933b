// Package week resolves Monday-start week windows. Every component that needs
// a week boundary goes through Bounds so the whole engine agrees on what "the
// week at offset N" means.
package week

import "time"

// Bounds returns the week window containing reference shifted by weekOffset
// whole weeks, computed in reference's location. The window runs from Monday
// 00:00:00 through the last nanosecond of Sunday, so both bounds are
// inclusive. weekOffset zero is the current week; negative offsets are past
// weeks.
func Bounds(reference time.Time, weekOffset int) (time.Time, time.Time) {
	shifted := reference.AddDate(0, 0, 7*weekOffset)
	start := StartOfWeek(shifted)
	end := start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	return start, end
}

// StartOfWeek returns the Monday 00:00:00 opening the week containing t.
func StartOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	// In Go, Monday == 1 and Sunday == 0; shift Sunday to the end of the week.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
