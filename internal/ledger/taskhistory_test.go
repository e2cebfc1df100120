package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/LionelROLLAND/colocatron/internal/calendar"
)

func week(year int, month time.Month, dayOfMonth int) calendar.Week {
	return calendar.WeekOf(calendar.Day(year, month, dayOfMonth))
}

func TestTaskHistory_AddAndContains(t *testing.T) {
	history := NewTaskHistory(week(2026, time.January, 5))
	target := week(2026, time.January, 12)

	done, err := history.Contains(target)
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if done {
		t.Error("expected fresh history not to contain the week")
	}

	if err := history.Add(target); err != nil {
		t.Fatalf("Add: %v", err)
	}
	done, err = history.Contains(target)
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !done {
		t.Error("expected added week to be contained")
	}
}

func TestTaskHistory_AddIsIdempotent(t *testing.T) {
	history := NewTaskHistory(week(2026, time.January, 5))
	target := week(2026, time.January, 12)

	if err := history.Add(target); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	if err := history.Add(target); err != nil {
		t.Fatalf("second Add: %v", err)
	}
	if got := len(history.Weeks()); got != 1 {
		t.Errorf("expected 1 recorded week, got %d", got)
	}
}

func TestTaskHistory_RejectsWeeksBeforeStart(t *testing.T) {
	history := NewTaskHistory(week(2026, time.January, 12))
	early := week(2026, time.January, 5)

	var beforeStart *BeforeStartError
	if err := history.Add(early); !errors.As(err, &beforeStart) {
		t.Errorf("Add: expected BeforeStartError, got %v", err)
	}
	if err := history.Discard(early); !errors.As(err, &beforeStart) {
		t.Errorf("Discard: expected BeforeStartError, got %v", err)
	}
	if _, err := history.Contains(early); !errors.As(err, &beforeStart) {
		t.Errorf("Contains: expected BeforeStartError, got %v", err)
	}
}

func TestTaskHistory_RemoveFailsOnMissingWeek(t *testing.T) {
	history := NewTaskHistory(week(2026, time.January, 5))

	var notFound *NotFoundError
	if err := history.Remove(week(2026, time.January, 12)); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestTaskHistory_DiscardMissingWeekIsNoOp(t *testing.T) {
	history := NewTaskHistory(week(2026, time.January, 5))

	if err := history.Discard(week(2026, time.January, 12)); err != nil {
		t.Fatalf("Discard: %v", err)
	}
}

func TestTaskHistory_WeeksBetweenSortsAndFilters(t *testing.T) {
	history := NewTaskHistory(week(2026, time.January, 5))
	for _, w := range []calendar.Week{
		week(2026, time.February, 16),
		week(2026, time.January, 5),
		week(2026, time.January, 26),
	} {
		if err := history.Add(w); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	first := week(2026, time.January, 12)
	weeks, err := history.WeeksBetween(&first, nil)
	if err != nil {
		t.Fatalf("WeeksBetween: %v", err)
	}
	if len(weeks) != 2 {
		t.Fatalf("expected 2 weeks, got %d", len(weeks))
	}
	if !weeks[0].Equal(week(2026, time.January, 26)) || !weeks[1].Equal(week(2026, time.February, 16)) {
		t.Errorf("expected sorted weeks, got %v", weeks)
	}
}

func TestTaskHistory_WeeksBetweenRejectsReversedRange(t *testing.T) {
	history := NewTaskHistory(week(2026, time.January, 5))

	first := week(2026, time.February, 2)
	last := week(2026, time.January, 12)
	var invalid *InvalidArgumentError
	if _, err := history.WeeksBetween(&first, &last); !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidArgumentError, got %v", err)
	}
}

func TestTaskHistory_ForwardBeginToDropsOlderWeeks(t *testing.T) {
	history := NewTaskHistory(week(2026, time.January, 5))
	for _, w := range []calendar.Week{
		week(2026, time.January, 5),
		week(2026, time.January, 19),
		week(2026, time.February, 2),
	} {
		if err := history.Add(w); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	if err := history.ForwardBeginTo(week(2026, time.January, 19)); err != nil {
		t.Fatalf("ForwardBeginTo: %v", err)
	}

	if !history.Begin().Equal(week(2026, time.January, 19)) {
		t.Errorf("expected start to move to Jan 19 week, got %v", history.Begin())
	}
	weeks := history.Weeks()
	if len(weeks) != 2 {
		t.Fatalf("expected 2 surviving weeks, got %d", len(weeks))
	}
	if !weeks[0].Equal(week(2026, time.January, 19)) {
		t.Errorf("expected the boundary week to survive, got %v", weeks[0])
	}
}

func TestTaskHistory_ForwardBeginToRejectsMovingBackward(t *testing.T) {
	history := NewTaskHistory(week(2026, time.January, 19))

	var beforeStart *BeforeStartError
	if err := history.ForwardBeginTo(week(2026, time.January, 5)); !errors.As(err, &beforeStart) {
		t.Fatalf("expected BeforeStartError, got %v", err)
	}
}

func TestRestoreTaskHistory_DropsWeeksBeforeStart(t *testing.T) {
	history := RestoreTaskHistory(week(2026, time.January, 19), []calendar.Week{
		week(2026, time.January, 5),
		week(2026, time.January, 26),
	})

	weeks := history.Weeks()
	if len(weeks) != 1 {
		t.Fatalf("expected 1 week after restore, got %d", len(weeks))
	}
	if !weeks[0].Equal(week(2026, time.January, 26)) {
		t.Errorf("expected Jan 26 week, got %v", weeks[0])
	}
}

func TestTaskHistory_EmptySinceStart(t *testing.T) {
	history := NewTaskHistory(week(2026, time.January, 5))
	if !history.EmptySinceStart() {
		t.Error("expected fresh history to be empty")
	}
	if err := history.Add(week(2026, time.January, 12)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if history.EmptySinceStart() {
		t.Error("expected history with a week not to be empty")
	}
}
