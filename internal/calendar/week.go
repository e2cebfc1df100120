// Package calendar buckets calendar days into Monday-to-Sunday weeks.
package calendar

import (
	"fmt"
	"time"
)

const daysPerWeek = 7

// DayOf normalizes a timestamp to the calendar day it falls on in the given
// location. Days are represented as UTC midnights so they compare and hash
// as plain values.
func DayOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay normalizes a timestamp to its own wall-clock calendar day. Every
// ledger and schedule operation buckets its inputs through this, so a
// timestamp always means the same day everywhere in the core.
func SameDay(t time.Time) time.Time {
	return DayOf(t, t.Location())
}

// Day builds a normalized day value directly from a date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Week identifies one Monday-to-Sunday bucket by its Monday. The zero value
// is not a valid week; build one with WeekOf.
type Week struct {
	monday time.Time
}

// WeekOf returns the week containing day. The argument is normalized first,
// so any timestamp within the week maps to the same Week value.
func WeekOf(day time.Time) Week {
	day = SameDay(day)
	offset := (int(day.Weekday()) + 6) % daysPerWeek // Monday = 0
	return Week{monday: day.AddDate(0, 0, -offset)}
}

func (w Week) Monday() time.Time {
	return w.monday
}

func (w Week) Sunday() time.Time {
	return w.monday.AddDate(0, 0, daysPerWeek-1)
}

// Days returns the 7 days of the week in order, Monday first.
func (w Week) Days() []time.Time {
	days := make([]time.Time, daysPerWeek)
	for i := range days {
		days[i] = w.monday.AddDate(0, 0, i)
	}
	return days
}

// Contains reports whether day falls inside the week.
func (w Week) Contains(day time.Time) bool {
	return !day.Before(w.monday) && !day.After(w.Sunday())
}

func (w Week) Before(other Week) bool {
	return w.monday.Before(other.monday)
}

func (w Week) After(other Week) bool {
	return w.monday.After(other.monday)
}

func (w Week) Equal(other Week) bool {
	return w.monday.Equal(other.monday)
}

func (w Week) Next() Week {
	return Week{monday: w.monday.AddDate(0, 0, daysPerWeek)}
}

func (w Week) Prev() Week {
	return Week{monday: w.monday.AddDate(0, 0, -daysPerWeek)}
}

func (w Week) String() string {
	return fmt.Sprintf("week of %s", w.monday.Format("2006-01-02"))
}
