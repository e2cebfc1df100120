package ledger

import (
	"fmt"
	"time"

	"github.com/LionelROLLAND/colocatron/internal/calendar"
)

// All ledger errors are caller-input violations: nothing here is transient,
// and a failed operation never leaves partial state behind.

// BeforeWatermarkError reports an operation targeting a day earlier than
// the presence ledger's granular-tracking floor.
type BeforeWatermarkError struct {
	Day       time.Time
	Watermark time.Time
}

func (e *BeforeWatermarkError) Error() string {
	return fmt.Sprintf("day %s is before the absence tracking watermark %s",
		e.Day.Format(time.DateOnly), e.Watermark.Format(time.DateOnly))
}

// CompactionBeforeWatermarkError reports a compaction that ends strictly
// before the range already folded into the aggregate.
type CompactionBeforeWatermarkError struct {
	Until     time.Time
	Watermark time.Time
}

func (e *CompactionBeforeWatermarkError) Error() string {
	return fmt.Sprintf("cannot compact up to %s: absences are already aggregated up to %s",
		e.Until.Format(time.DateOnly), e.Watermark.Format(time.DateOnly))
}

// GapInHistoryError reports a compaction that would leave an untracked
// interval between the aggregated range and the new one.
type GapInHistoryError struct {
	From      time.Time
	Watermark time.Time
}

func (e *GapInHistoryError) Error() string {
	return fmt.Sprintf("compacting from %s would leave days since %s untracked",
		e.From.Format(time.DateOnly), e.Watermark.Format(time.DateOnly))
}

// BeforeStartError reports an operation targeting a week earlier than a
// task history's start.
type BeforeStartError struct {
	Week  calendar.Week
	Start calendar.Week
}

func (e *BeforeStartError) Error() string {
	return fmt.Sprintf("%s is before the task history start (%s)", e.Week, e.Start)
}

// NotFoundError reports a strict removal of a week that was never recorded.
type NotFoundError struct {
	Week calendar.Week
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s is not recorded in the task history", e.Week)
}

// InvalidArgumentError reports a malformed range or an inconsistent
// combination of arguments.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return e.Reason
}
