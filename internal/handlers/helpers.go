package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/LionelROLLAND/colocatron/internal/ledger"
	"github.com/LionelROLLAND/colocatron/internal/schedule"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeScheduleError maps core validation errors to client statuses.
// Everything the ledgers reject is a caller mistake, never a server fault.
func writeScheduleError(w http.ResponseWriter, err error) {
	var (
		beforeWatermark  *ledger.BeforeWatermarkError
		beforeCompaction *ledger.CompactionBeforeWatermarkError
		gap              *ledger.GapInHistoryError
		beforeStart      *ledger.BeforeStartError
		invalidArgument  *ledger.InvalidArgumentError
		weekNotFound     *ledger.NotFoundError
		neverDone        *schedule.NeverDoneError
	)
	switch {
	case errors.As(err, &beforeWatermark),
		errors.As(err, &beforeCompaction),
		errors.As(err, &gap),
		errors.As(err, &beforeStart),
		errors.As(err, &invalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &weekNotFound), errors.As(err, &neverDone):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, schedule.ErrChoreAlreadyTracked):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, sql.ErrNoRows):
		writeError(w, http.StatusNotFound, "not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func parseDay(value string) (time.Time, error) {
	day, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: expected YYYY-MM-DD", value)
	}
	return day, nil
}

func parseDays(values []string) ([]time.Time, error) {
	days := make([]time.Time, 0, len(values))
	for _, value := range values {
		day, err := parseDay(value)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}

func formatDay(day time.Time) string {
	return day.Format(time.DateOnly)
}

func formatDays(days []time.Time) []string {
	formatted := make([]string, 0, len(days))
	for _, day := range days {
		formatted = append(formatted, day.Format(time.DateOnly))
	}
	return formatted
}
