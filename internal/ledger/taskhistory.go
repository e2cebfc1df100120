package ledger

import (
	"sort"

	"github.com/LionelROLLAND/colocatron/internal/calendar"
)

// TaskHistory stores the weeks during which one occupant did one chore.
// Granularity is the week, never the day. Weeks before the start are not
// stored and cannot be edited.
type TaskHistory struct {
	start calendar.Week
	done  map[calendar.Week]struct{}
}

// NewTaskHistory returns an empty history accepting weeks from start on.
func NewTaskHistory(start calendar.Week) *TaskHistory {
	return &TaskHistory{
		start: start,
		done:  make(map[calendar.Week]struct{}),
	}
}

// RestoreTaskHistory rebuilds a history from persisted weeks; weeks before
// start are dropped silently.
func RestoreTaskHistory(start calendar.Week, weeks []calendar.Week) *TaskHistory {
	history := NewTaskHistory(start)
	for _, week := range weeks {
		if !week.Before(start) {
			history.done[week] = struct{}{}
		}
	}
	return history
}

func (h *TaskHistory) Begin() calendar.Week { return h.start }

func (h *TaskHistory) checkWeek(week calendar.Week) error {
	if week.Before(h.start) {
		return &BeforeStartError{Week: week, Start: h.start}
	}
	return nil
}

// Add records that the chore was done at least once during week.
func (h *TaskHistory) Add(week calendar.Week) error {
	if err := h.checkWeek(week); err != nil {
		return err
	}
	h.done[week] = struct{}{}
	return nil
}

// Discard removes week from the history; missing weeks are a no-op.
func (h *TaskHistory) Discard(week calendar.Week) error {
	if err := h.checkWeek(week); err != nil {
		return err
	}
	delete(h.done, week)
	return nil
}

// Remove removes week from the history and fails when it was never there.
func (h *TaskHistory) Remove(week calendar.Week) error {
	if err := h.checkWeek(week); err != nil {
		return err
	}
	if _, ok := h.done[week]; !ok {
		return &NotFoundError{Week: week}
	}
	delete(h.done, week)
	return nil
}

// Contains reports whether the chore was done during week.
func (h *TaskHistory) Contains(week calendar.Week) (bool, error) {
	if err := h.checkWeek(week); err != nil {
		return false, err
	}
	_, ok := h.done[week]
	return ok, nil
}

// WeeksBetween returns the recorded weeks within [first, last], sorted.
// Either bound may be nil for an open end. The result is a snapshot: later
// edits to the history do not affect it.
func (h *TaskHistory) WeeksBetween(first, last *calendar.Week) ([]calendar.Week, error) {
	if first != nil && last != nil && first.After(*last) {
		return nil, &InvalidArgumentError{Reason: "week range ends before it starts"}
	}
	if first != nil {
		if err := h.checkWeek(*first); err != nil {
			return nil, err
		}
	}
	if last != nil {
		if err := h.checkWeek(*last); err != nil {
			return nil, err
		}
	}
	var weeks []calendar.Week
	for week := range h.done {
		if first != nil && week.Before(*first) {
			continue
		}
		if last != nil && week.After(*last) {
			continue
		}
		weeks = append(weeks, week)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })
	return weeks, nil
}

// Weeks returns every recorded week, sorted.
func (h *TaskHistory) Weeks() []calendar.Week {
	weeks, _ := h.WeeksBetween(nil, nil)
	return weeks
}

// ForwardBeginTo raises the history start to week, dropping every recorded
// week strictly before it.
func (h *TaskHistory) ForwardBeginTo(week calendar.Week) error {
	if err := h.checkWeek(week); err != nil {
		return err
	}
	// Snapshot before filtering: never mutate the set while ranging it.
	var dropped []calendar.Week
	for recorded := range h.done {
		if recorded.Before(week) {
			dropped = append(dropped, recorded)
		}
	}
	for _, recorded := range dropped {
		delete(h.done, recorded)
	}
	h.start = week
	return nil
}

// EmptySinceStart reports whether no week is recorded at or after start.
func (h *TaskHistory) EmptySinceStart() bool {
	return len(h.done) == 0
}
