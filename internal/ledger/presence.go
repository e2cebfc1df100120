// Package ledger implements the two watermark-compacting interval ledgers
// behind an occupant's schedule: the presence ledger (absence days) and the
// task history ledger (weeks a chore was done).
//
// Both ledgers track an unbounded historical range while storing only a
// sparse exception set after a moving watermark; everything earlier is
// folded into an aggregate. Every operation validates all of its input
// before mutating anything, so a rejected call leaves no partial state.
package ledger

import (
	"sort"
	"time"

	"github.com/LionelROLLAND/colocatron/internal/calendar"
)

const oneDay = 24 * time.Hour

// Presence stores the absence days of one occupant. Days default to
// present; only exceptions (absences) are stored, and only since the
// watermark. Absences accrued before the watermark survive as a count.
type Presence struct {
	start       time.Time
	watermark   time.Time
	absences    map[time.Time]struct{}
	preAbsences int
}

// NewPresence returns an empty presence ledger starting on the occupant's
// onboarding day. The watermark starts there too: the whole history is
// granular until the first compaction.
func NewPresence(onboarding time.Time) *Presence {
	day := normalize(onboarding)
	return &Presence{
		start:     day,
		watermark: day,
		absences:  make(map[time.Time]struct{}),
	}
}

// RestorePresence rebuilds a ledger from persisted state. Absence days
// before the watermark are dropped silently; they are already covered by
// preAbsences.
func RestorePresence(start, watermark time.Time, preAbsences int, absences []time.Time) *Presence {
	presence := &Presence{
		start:       normalize(start),
		watermark:   normalize(watermark),
		absences:    make(map[time.Time]struct{}, len(absences)),
		preAbsences: preAbsences,
	}
	for _, day := range absences {
		day = normalize(day)
		if !day.Before(presence.watermark) {
			presence.absences[day] = struct{}{}
		}
	}
	return presence
}

func normalize(t time.Time) time.Time {
	return calendar.SameDay(t)
}

func daysBetween(from, until time.Time) int {
	return int(until.Sub(from) / oneDay)
}

func (p *Presence) Start() time.Time     { return p.start }
func (p *Presence) Watermark() time.Time { return p.watermark }

// PreAbsenceCount returns the absence-days folded into the aggregate.
func (p *Presence) PreAbsenceCount() int { return p.preAbsences }

// AbsenceDays returns a sorted snapshot of the stored absence days.
func (p *Presence) AbsenceDays() []time.Time {
	days := make([]time.Time, 0, len(p.absences))
	for day := range p.absences {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

func (p *Presence) checkEditable(day time.Time) error {
	if day.Before(p.watermark) {
		return &BeforeWatermarkError{Day: day, Watermark: p.watermark}
	}
	return nil
}

// AddAbsence marks a single day absent.
func (p *Presence) AddAbsence(day time.Time) error {
	day = normalize(day)
	if err := p.checkEditable(day); err != nil {
		return err
	}
	p.absences[day] = struct{}{}
	return nil
}

// AddAbsences marks every given day absent. All days are validated before
// any of them is applied.
func (p *Presence) AddAbsences(days []time.Time) error {
	normalized := make([]time.Time, len(days))
	for i, day := range days {
		normalized[i] = normalize(day)
		if err := p.checkEditable(normalized[i]); err != nil {
			return err
		}
	}
	for _, day := range normalized {
		p.absences[day] = struct{}{}
	}
	return nil
}

// RemoveAbsence marks a day present again. Removing a day that was never
// absent is a no-op once the watermark check passes.
func (p *Presence) RemoveAbsence(day time.Time) error {
	day = normalize(day)
	if err := p.checkEditable(day); err != nil {
		return err
	}
	delete(p.absences, day)
	return nil
}

// RemoveAbsences marks every given day present again, validating all days
// before touching the set.
func (p *Presence) RemoveAbsences(days []time.Time) error {
	normalized := make([]time.Time, len(days))
	for i, day := range days {
		normalized[i] = normalize(day)
		if err := p.checkEditable(normalized[i]); err != nil {
			return err
		}
	}
	for _, day := range normalized {
		delete(p.absences, day)
	}
	return nil
}

// PresentOn reports whether the occupant was present on day. Days before
// onboarding count as not present; days between onboarding and the
// watermark are no longer tracked individually and are an error to query.
func (p *Presence) PresentOn(day time.Time) (bool, error) {
	day = normalize(day)
	if day.Before(p.start) {
		return false, nil
	}
	if day.Before(p.watermark) {
		return false, &BeforeWatermarkError{Day: day, Watermark: p.watermark}
	}
	_, absent := p.absences[day]
	return !absent, nil
}

// PresentOnAll reports whether the occupant was present on every given day.
func (p *Presence) PresentOnAll(days []time.Time) (bool, error) {
	present := true
	for _, day := range days {
		dayPresent, err := p.PresentOn(day)
		if err != nil {
			return false, err
		}
		present = present && dayPresent
	}
	return present, nil
}

// AbsentOn reports whether the occupant was absent on day. Days before
// onboarding carry no absence record and do not count as absent evidence.
func (p *Presence) AbsentOn(day time.Time) (bool, error) {
	day = normalize(day)
	if day.Before(p.start) {
		return true, nil
	}
	if day.Before(p.watermark) {
		return false, &BeforeWatermarkError{Day: day, Watermark: p.watermark}
	}
	_, absent := p.absences[day]
	return absent, nil
}

// AbsentOnAll reports whether the occupant was absent on every given day.
func (p *Presence) AbsentOnAll(days []time.Time) (bool, error) {
	absent := true
	for _, day := range days {
		dayAbsent, err := p.AbsentOn(day)
		if err != nil {
			return false, err
		}
		absent = absent && dayAbsent
	}
	return absent, nil
}

// PresenceDayCount returns the number of presence days from onboarding up
// to until, included. Compaction never changes the result for days the
// ledger still answers for.
func (p *Presence) PresenceDayCount(until time.Time) (int, error) {
	until = normalize(until)
	if until.Before(p.start) {
		return 0, nil
	}
	if until.Before(p.watermark) {
		return 0, &BeforeWatermarkError{Day: until, Watermark: p.watermark}
	}
	total := daysBetween(p.start, until) + 1
	absent := p.preAbsences
	for day := range p.absences {
		if !day.After(until) {
			absent++
		}
	}
	return total - absent, nil
}

// CompactForward folds the range ending on until into the aggregate,
// advancing the watermark to the day after. presenceDays is the number of
// presence days to credit for the folded range. When from is nil the range
// starts at onboarding and replaces the aggregate; otherwise it must abut
// the current watermark and its absences are added to the aggregate.
//
// All preconditions are hard: the call rejects rather than clamps.
func (p *Presence) CompactForward(until time.Time, presenceDays int, from *time.Time) error {
	until = normalize(until)
	if until.Before(p.watermark.Add(-oneDay)) {
		return &CompactionBeforeWatermarkError{Until: until, Watermark: p.watermark}
	}

	rangeStart := p.start
	replace := true
	if from != nil {
		rangeStart = normalize(*from)
		replace = false
		if rangeStart.After(until) {
			return &InvalidArgumentError{Reason: "compaction range ends before it starts"}
		}
		if rangeStart.After(p.watermark) {
			return &GapInHistoryError{From: rangeStart, Watermark: p.watermark}
		}
		if rangeStart.Before(p.start) {
			return &BeforeWatermarkError{Day: rangeStart, Watermark: p.start}
		}
		if rangeStart.Before(p.watermark) {
			// Re-covering an already aggregated range is only allowed
			// from the very beginning, and only while no aggregate exists.
			if p.preAbsences != 0 || !rangeStart.Equal(p.start) {
				return &BeforeWatermarkError{Day: rangeStart, Watermark: p.watermark}
			}
		}
	}

	rangeLen := 0
	if !until.Before(rangeStart) {
		rangeLen = daysBetween(rangeStart, until) + 1
	}
	if presenceDays < 0 || presenceDays > rangeLen {
		return &InvalidArgumentError{Reason: "presence day count does not fit the compacted range"}
	}

	absorbed := rangeLen - presenceDays
	if replace {
		p.preAbsences = absorbed
	} else {
		p.preAbsences += absorbed
	}

	// Snapshot before filtering: never mutate the set while ranging it.
	var folded []time.Time
	for day := range p.absences {
		if !day.After(until) {
			folded = append(folded, day)
		}
	}
	for _, day := range folded {
		delete(p.absences, day)
	}

	if next := until.Add(oneDay); next.After(p.watermark) {
		p.watermark = next
	}
	return nil
}
