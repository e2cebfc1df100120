package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/LionelROLLAND/colocatron/internal/calendar"
	"github.com/LionelROLLAND/colocatron/internal/models"
	"github.com/LionelROLLAND/colocatron/internal/repository"
)

// AbsenceImporter turns each occupant's shared calendar into absence days.
// Every event in a source counts as absence for its occupant: a vacation
// calendar, not a general agenda. Only days from today on are imported, so
// already-compacted history is never touched.
type AbsenceImporter struct {
	sourceRepo   repository.AbsenceSourceRepository
	settingsRepo repository.SettingsRepository
	schedules    *ScheduleService
	cacheTTL     time.Duration
	client       *http.Client
}

func NewAbsenceImporter(
	sourceRepo repository.AbsenceSourceRepository,
	settingsRepo repository.SettingsRepository,
	schedules *ScheduleService,
) *AbsenceImporter {
	return &AbsenceImporter{
		sourceRepo:   sourceRepo,
		settingsRepo: settingsRepo,
		schedules:    schedules,
		cacheTTL:     30 * time.Minute,
		client:       &http.Client{Timeout: 10 * time.Second},
	}
}

// ImportAll refreshes every absence source and reports the resulting
// absence days. A failing source is skipped, not fatal.
func (imp *AbsenceImporter) ImportAll(ctx context.Context) error {
	sources, err := imp.sourceRepo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("loading absence sources: %w", err)
	}

	timezone, err := imp.householdLocation(ctx)
	if err != nil {
		return err
	}

	today := calendar.DayOf(time.Now(), timezone)
	for _, source := range sources {
		days, err := imp.fetchAbsenceDays(ctx, source, timezone)
		if err != nil {
			slog.Warn("skipping absence source", "name", source.Name, "error", err)
			continue
		}

		var upcoming []time.Time
		for _, day := range days {
			if !day.Before(today) {
				upcoming = append(upcoming, day)
			}
		}
		if len(upcoming) == 0 {
			continue
		}

		if err := imp.schedules.ReportAbsence(ctx, source.OccupantID, upcoming); err != nil {
			slog.Warn("applying imported absences", "name", source.Name, "error", err)
			continue
		}
		slog.Info("imported absences", "name", source.Name, "days", len(upcoming))
	}
	return nil
}

// ForceRefreshByID re-fetches one source's calendar, ignoring the cache.
func (imp *AbsenceImporter) ForceRefreshByID(ctx context.Context, id string) error {
	source, err := imp.sourceRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("finding absence source: %w", err)
	}
	data, err := imp.fetchURL(source.URL)
	if err != nil {
		return fmt.Errorf("fetching url: %w", err)
	}
	return imp.sourceRepo.UpdateCache(ctx, source.ID, data, time.Now())
}

// householdLocation resolves the configured household timezone. Day
// bucketing always goes through this explicit value, never a process-wide
// default.
func (imp *AbsenceImporter) householdLocation(ctx context.Context) (*time.Location, error) {
	name, err := imp.settingsRepo.GetOrDefault(ctx, repository.SettingTimezone, "UTC")
	if err != nil {
		return nil, fmt.Errorf("loading household timezone: %w", err)
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("parsing household timezone %q: %w", name, err)
	}
	return location, nil
}

func (imp *AbsenceImporter) fetchAbsenceDays(ctx context.Context, source models.AbsenceSource, timezone *time.Location) ([]time.Time, error) {
	needsFetch := source.LastFetchedAt == nil || time.Since(*source.LastFetchedAt) > imp.cacheTTL

	if needsFetch {
		data, err := imp.fetchURL(source.URL)
		if err != nil {
			slog.Warn("fetching absence calendar", "url", source.URL, "error", err)
		} else {
			now := time.Now()
			if updateErr := imp.sourceRepo.UpdateCache(ctx, source.ID, data, now); updateErr != nil {
				slog.Error("updating absence source cache", "error", updateErr)
			}
			source.CachedData = &data
			source.LastFetchedAt = &now
		}
	}

	if source.CachedData == nil {
		return nil, fmt.Errorf("no cached data for source %q", source.Name)
	}

	return parseAbsenceDays(*source.CachedData, timezone)
}

func (imp *AbsenceImporter) fetchURL(url string) (string, error) {
	resp, err := imp.client.Get(url)
	if err != nil {
		return "", fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}
	return string(data), nil
}

// parseAbsenceDays expands every event in the feed into the calendar days
// it covers, in the household timezone.
func parseAbsenceDays(data string, timezone *time.Location) ([]time.Time, error) {
	cal, err := ical.ParseCalendar(strings.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing ical: %w", err)
	}

	seen := make(map[time.Time]struct{})
	var days []time.Time
	for _, event := range cal.Events() {
		first, last, err := eventDayRange(event, timezone)
		if err != nil {
			slog.Debug("skipping absence event", "error", err)
			continue
		}
		for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
			if _, ok := seen[day]; ok {
				continue
			}
			seen[day] = struct{}{}
			days = append(days, day)
		}
	}
	return days, nil
}

// eventDayRange returns the first and last day an event covers. All-day
// events use an exclusive DTEND per RFC 5545; timed events cover every day
// they overlap.
func eventDayRange(event *ical.VEvent, timezone *time.Location) (time.Time, time.Time, error) {
	dtStart := event.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("event has no DTSTART")
	}
	allDay := isAllDayProperty(dtStart)

	var start time.Time
	var err error
	if allDay {
		start, err = event.GetAllDayStartAt()
	} else {
		start, err = event.GetStartAt()
	}
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing DTSTART: %w", err)
	}

	first := calendar.DayOf(start, timezone)
	last := first
	if allDay {
		if end, endErr := event.GetAllDayEndAt(); endErr == nil {
			// DTEND is exclusive for all-day events.
			last = calendar.DayOf(end, timezone).AddDate(0, 0, -1)
		}
	} else {
		if end, endErr := event.GetEndAt(); endErr == nil {
			last = calendar.DayOf(end, timezone)
		}
	}
	if last.Before(first) {
		last = first
	}
	return first, last, nil
}

func isAllDayProperty(prop *ical.IANAProperty) bool {
	for _, values := range prop.ICalParameters {
		for _, v := range values {
			if strings.EqualFold(v, "DATE") {
				return true
			}
		}
	}
	// Date-only values have exactly 8 chars (YYYYMMDD).
	return len(strings.TrimSpace(prop.Value)) == 8
}
