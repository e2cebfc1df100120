// Package schedule keeps one occupant's presence ledger and per-chore task
// histories consistent with each other. Its central job is the
// reconciliation run after absence edits: marking a day absent can
// invalidate a cached "last time this chore was done" value that depended
// on presence on exactly that day.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/LionelROLLAND/colocatron/internal/calendar"
	"github.com/LionelROLLAND/colocatron/internal/identity"
	"github.com/LionelROLLAND/colocatron/internal/ledger"
)

// ErrChoreAlreadyTracked is returned when registering prior history for a
// chore that already has a record. The prior-history snapshot can be set
// only once, at record creation.
var ErrChoreAlreadyTracked = errors.New("chore is already tracked for this occupant")

// NeverDoneError reports a last-time query for a chore with no evidence,
// live or snapshot, of ever having been done.
type NeverDoneError struct {
	Chore identity.Key
}

func (e *NeverDoneError) Error() string {
	return fmt.Sprintf("chore %s has never been done by this occupant", e.Chore)
}

// choreRecord pairs a task history with the derived last-performed state.
// oldLast/oldEver are the immutable snapshot captured at record creation:
// externally supplied history predating tracking. last/ever are the live
// derivation and fall back to the snapshot when absence edits strip every
// live evidence day.
type choreRecord struct {
	history *ledger.TaskHistory

	oldLast time.Time
	oldEver bool

	last time.Time
	ever bool
}

// Occupant is the per-occupant schedule: one presence ledger plus one task
// history per chore. All methods are synchronous state transitions; a host
// embedding this in a concurrent program must serialize mutations per
// occupant.
type Occupant struct {
	onboarding time.Time
	presence   *ledger.Presence
	chores     map[identity.Key]*choreRecord
}

// NewOccupant creates a schedule for an occupant onboarded on the given
// day.
func NewOccupant(onboarding time.Time) *Occupant {
	presence := ledger.NewPresence(onboarding)
	return &Occupant{
		onboarding: presence.Start(),
		presence:   presence,
		chores:     make(map[identity.Key]*choreRecord),
	}
}

func (o *Occupant) Onboarding() time.Time { return o.onboarding }

// PresenceLedger exposes the underlying presence ledger for read-only use
// and persistence.
func (o *Occupant) PresenceLedger() *ledger.Presence { return o.presence }

func (o *Occupant) ensureChore(chore identity.Key) *choreRecord {
	record, ok := o.chores[chore]
	if !ok {
		record = &choreRecord{
			history: ledger.NewTaskHistory(calendar.WeekOf(o.onboarding)),
		}
		o.chores[chore] = record
	}
	return record
}

// AddChoreWithHistory creates the chore record with a known prior
// last-performed day, from before tracking started. It fails if the chore
// already has a record: the snapshot is set once and never merged.
func (o *Occupant) AddChoreWithHistory(chore identity.Key, lastDone time.Time) error {
	if _, ok := o.chores[chore]; ok {
		return ErrChoreAlreadyTracked
	}
	done := calendar.SameDay(lastDone)
	o.chores[chore] = &choreRecord{
		history: ledger.NewTaskHistory(calendar.WeekOf(o.onboarding)),
		oldLast: done,
		oldEver: true,
		last:    done,
		ever:    true,
	}
	return nil
}

// RecordChoreOnWeek records that the occupant did the chore during week.
// The week is always added to the history, even if the occupant was absent
// part of it; the last-performed day only advances when presence within
// the week gives a day at least as late as the current value.
func (o *Occupant) RecordChoreOnWeek(chore identity.Key, week calendar.Week) error {
	record := o.ensureChore(chore)
	if err := record.history.Add(week); err != nil {
		return err
	}

	days := week.Days()
	for i := len(days) - 1; i >= 0; i-- {
		present, err := o.presence.PresentOn(days[i])
		if err != nil {
			// Day is older than the presence watermark: no live
			// evidence either way.
			continue
		}
		if !present {
			continue
		}
		if !record.ever || !days[i].Before(record.last) {
			record.last = days[i]
			record.ever = true
		}
		break
	}
	return nil
}

// AddAbsence marks days absent, then repairs every chore record whose
// cached last-performed day was one of them. The repair re-scans the
// chore's history against current presence and falls back to the
// creation-time snapshot when no present day remains.
func (o *Occupant) AddAbsence(days []time.Time) error {
	if err := o.presence.AddAbsences(days); err != nil {
		return err
	}

	// Bucket through the same normalization as the ledger, so the day the
	// ledger just marked absent is the day looked up here.
	affected := make(map[time.Time]struct{}, len(days))
	for _, day := range days {
		affected[calendar.SameDay(day)] = struct{}{}
	}

	for _, record := range o.chores {
		if !record.ever {
			continue
		}
		if _, hit := affected[record.last]; !hit {
			continue
		}
		o.rederive(record)
	}
	return nil
}

// rederive recomputes last/ever from scratch: the latest day that is both
// present and inside a recorded week, or the snapshot when none exists.
func (o *Occupant) rederive(record *choreRecord) {
	var best time.Time
	found := false
	for _, week := range record.history.Weeks() {
		for _, day := range week.Days() {
			present, err := o.presence.PresentOn(day)
			if err != nil || !present {
				continue
			}
			if !found || day.After(best) {
				best = day
				found = true
			}
		}
	}
	if found {
		record.last = best
		record.ever = true
	} else {
		record.last = record.oldLast
		record.ever = record.oldEver
	}
}

// AddPresence clears absences, then advances the last-performed day of
// every chore whose history contains an affected week. The advance is
// monotonic: a re-presenced day never moves a later value backward.
func (o *Occupant) AddPresence(days []time.Time) error {
	if err := o.presence.RemoveAbsences(days); err != nil {
		return err
	}

	for _, day := range days {
		day = calendar.SameDay(day)
		week := calendar.WeekOf(day)
		for _, record := range o.chores {
			if week.Before(record.history.Begin()) {
				continue
			}
			done, err := record.history.Contains(week)
			if err != nil || !done {
				continue
			}
			if !record.ever || day.After(record.last) {
				record.last = day
				record.ever = true
			}
		}
	}
	return nil
}

// ReportPresenceChange applies one logical edit touching both directions.
// Absences are applied (and reconciled) first, presences second; a day in
// both sets therefore ends up present.
func (o *Occupant) ReportPresenceChange(absences, presences []time.Time) error {
	if err := o.AddAbsence(absences); err != nil {
		return err
	}
	return o.AddPresence(presences)
}

// PresenceDaysWithChore returns, in order, every day after onboarding on
// which the occupant was present and the chore's week is recorded. The
// result is a snapshot, safe to keep across later edits.
func (o *Occupant) PresenceDaysWithChore(chore identity.Key) []time.Time {
	record, ok := o.chores[chore]
	if !ok {
		return nil
	}
	var days []time.Time
	for _, week := range record.history.Weeks() {
		for _, day := range week.Days() {
			present, err := o.presence.PresentOn(day)
			if err != nil || !present {
				continue
			}
			days = append(days, day)
		}
	}
	return days
}

// LastTime returns the most recent day evidence shows the chore was done
// while the occupant was present, or the prior-history snapshot.
func (o *Occupant) LastTime(chore identity.Key) (time.Time, error) {
	record, ok := o.chores[chore]
	if !ok || !record.ever {
		return time.Time{}, &NeverDoneError{Chore: chore}
	}
	return record.last, nil
}

// EverDone reports whether any evidence, live or snapshot, shows the chore
// was ever done by this occupant.
func (o *Occupant) EverDone(chore identity.Key) bool {
	record, ok := o.chores[chore]
	return ok && record.ever
}

// ChoreHistory exposes the task history ledger for a tracked chore.
func (o *Occupant) ChoreHistory(chore identity.Key) (*ledger.TaskHistory, bool) {
	record, ok := o.chores[chore]
	if !ok {
		return nil, false
	}
	return record.history, true
}

// CompactChoreHistory raises the chore history's start, dropping older
// weeks. It never touches the prior-history snapshot.
func (o *Occupant) CompactChoreHistory(chore identity.Key, week calendar.Week) error {
	record, ok := o.chores[chore]
	if !ok {
		return &NeverDoneError{Chore: chore}
	}
	return record.history.ForwardBeginTo(week)
}

// PresenceDayCount returns the occupant's presence days up to until.
func (o *Occupant) PresenceDayCount(until time.Time) (int, error) {
	return o.presence.PresenceDayCount(until)
}

// CompactPresence folds old per-day absence detail into the aggregate.
func (o *Occupant) CompactPresence(until time.Time, presenceDays int, from *time.Time) error {
	return o.presence.CompactForward(until, presenceDays, from)
}
