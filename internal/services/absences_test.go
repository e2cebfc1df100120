package services

import (
	"testing"
	"time"

	"github.com/LionelROLLAND/colocatron/internal/calendar"
)

const multiDayFeed = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//test//EN
BEGIN:VEVENT
UID:vacation-1
DTSTART;VALUE=DATE:20260310
DTEND;VALUE=DATE:20260313
SUMMARY:Ski trip
END:VEVENT
END:VCALENDAR
`

const timedFeed = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//test//EN
BEGIN:VEVENT
UID:trip-1
DTSTART:20260310T150000Z
DTEND:20260311T100000Z
SUMMARY:Overnight trip
END:VEVENT
END:VCALENDAR
`

const overlappingFeed = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//test//EN
BEGIN:VEVENT
UID:a
DTSTART;VALUE=DATE:20260310
DTEND;VALUE=DATE:20260312
SUMMARY:First
END:VEVENT
BEGIN:VEVENT
UID:b
DTSTART;VALUE=DATE:20260311
DTEND;VALUE=DATE:20260313
SUMMARY:Second
END:VEVENT
END:VCALENDAR
`

func TestParseAbsenceDays_AllDayEventExclusiveEnd(t *testing.T) {
	days, err := parseAbsenceDays(multiDayFeed, time.UTC)
	if err != nil {
		t.Fatalf("parseAbsenceDays: %v", err)
	}

	// Mar 10 through Mar 12: the DTEND day itself is excluded.
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d: %v", len(days), days)
	}
	if !days[0].Equal(calendar.Day(2026, time.March, 10)) {
		t.Errorf("expected first day Mar 10, got %v", days[0])
	}
	if !days[2].Equal(calendar.Day(2026, time.March, 12)) {
		t.Errorf("expected last day Mar 12, got %v", days[2])
	}
}

func TestParseAbsenceDays_TimedEventCoversOverlappedDays(t *testing.T) {
	days, err := parseAbsenceDays(timedFeed, time.UTC)
	if err != nil {
		t.Fatalf("parseAbsenceDays: %v", err)
	}

	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d: %v", len(days), days)
	}
	if !days[0].Equal(calendar.Day(2026, time.March, 10)) || !days[1].Equal(calendar.Day(2026, time.March, 11)) {
		t.Errorf("expected Mar 10 and Mar 11, got %v", days)
	}
}

func TestParseAbsenceDays_DeduplicatesOverlappingEvents(t *testing.T) {
	days, err := parseAbsenceDays(overlappingFeed, time.UTC)
	if err != nil {
		t.Fatalf("parseAbsenceDays: %v", err)
	}

	if len(days) != 3 {
		t.Fatalf("expected 3 distinct days, got %d: %v", len(days), days)
	}
}

func TestParseAbsenceDays_TimezoneShiftsDayBucket(t *testing.T) {
	auckland, err := time.LoadLocation("Pacific/Auckland")
	if err != nil {
		t.Fatalf("loading location: %v", err)
	}

	// 15:00 UTC on Mar 10 is already Mar 11 in Auckland.
	days, err := parseAbsenceDays(timedFeed, auckland)
	if err != nil {
		t.Fatalf("parseAbsenceDays: %v", err)
	}
	if len(days) == 0 {
		t.Fatal("expected at least one day")
	}
	if !days[0].Equal(calendar.Day(2026, time.March, 11)) {
		t.Errorf("expected first day Mar 11 in household timezone, got %v", days[0])
	}
}

func TestParseAbsenceDays_RejectsGarbage(t *testing.T) {
	if _, err := parseAbsenceDays("not a calendar", time.UTC); err == nil {
		t.Fatal("expected parse error")
	}
}
