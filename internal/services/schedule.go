package services

import (
	"context"
	"fmt"
	"time"

	"github.com/LionelROLLAND/colocatron/internal/calendar"
	"github.com/LionelROLLAND/colocatron/internal/identity"
	"github.com/LionelROLLAND/colocatron/internal/ledger"
	"github.com/LionelROLLAND/colocatron/internal/models"
	"github.com/LionelROLLAND/colocatron/internal/repository"
	"github.com/LionelROLLAND/colocatron/internal/schedule"
)

// ScheduleService is the household's scheduling front door: it loads an
// occupant's ledgers from the database, applies an edit through the
// in-memory core, and persists the resulting state. Edits for one occupant
// must not run concurrently; sqlite's single writer plus the full-state
// rewrite per edit keeps the stored picture consistent.
type ScheduleService struct {
	occupantRepo repository.OccupantRepository
	choreRepo    repository.ChoreRepository
	stateRepo    repository.ScheduleStateRepository
}

func NewScheduleService(
	occupantRepo repository.OccupantRepository,
	choreRepo repository.ChoreRepository,
	stateRepo repository.ScheduleStateRepository,
) *ScheduleService {
	return &ScheduleService{
		occupantRepo: occupantRepo,
		choreRepo:    choreRepo,
		stateRepo:    stateRepo,
	}
}

// choreKey converts a catalog entry to its in-core identity key.
func choreKey(chore models.Chore) identity.Key {
	return identity.Key{Name: chore.IdentityName, Seq: chore.IdentitySeq}
}

// load rebuilds the occupant's in-memory schedule from its persisted rows.
// The returned key map translates between catalog chore IDs and in-core
// identity keys.
func (service *ScheduleService) load(ctx context.Context, occupantID string) (*schedule.Occupant, map[identity.Key]string, error) {
	occupant, err := service.occupantRepo.FindByID(ctx, occupantID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading occupant: %w", err)
	}

	presenceState, err := service.stateRepo.LoadPresence(ctx, occupantID)
	if err != nil {
		return nil, nil, err
	}
	presence := ledger.RestorePresence(
		occupant.OnboardingDate, presenceState.Watermark,
		presenceState.PreAbsences, presenceState.AbsenceDays,
	)

	recordStates, err := service.stateRepo.LoadChoreRecords(ctx, occupantID)
	if err != nil {
		return nil, nil, err
	}

	chores, err := service.choreRepo.FindAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading chore catalog: %w", err)
	}
	keyByID := make(map[string]identity.Key, len(chores))
	idByKey := make(map[identity.Key]string, len(chores))
	for _, chore := range chores {
		key := choreKey(chore)
		keyByID[chore.ID] = key
		idByKey[key] = chore.ID
	}

	var states []schedule.ChoreState
	for _, recordState := range recordStates {
		key, ok := keyByID[recordState.ChoreID]
		if !ok {
			// Chore was deleted from the catalog; its history goes with it.
			continue
		}
		state := schedule.ChoreState{
			Chore: key,
			Begin: calendar.WeekOf(recordState.BeginMonday),
		}
		for _, monday := range recordState.WeekMondays {
			state.Weeks = append(state.Weeks, calendar.WeekOf(monday))
		}
		if recordState.OldLastTime != nil {
			state.OldLast = calendar.DayOf(*recordState.OldLastTime, time.UTC)
			state.OldEver = true
		}
		if recordState.LastTime != nil {
			state.Last = calendar.DayOf(*recordState.LastTime, time.UTC)
			state.Ever = true
		}
		states = append(states, state)
	}

	return schedule.Restore(presence, states), idByKey, nil
}

// save persists the occupant's full ledger state.
func (service *ScheduleService) save(ctx context.Context, occupantID string, occupant *schedule.Occupant, idByKey map[identity.Key]string) error {
	presence := occupant.PresenceLedger()
	err := service.stateRepo.SavePresence(ctx, models.PresenceState{
		OccupantID:  occupantID,
		Watermark:   presence.Watermark(),
		PreAbsences: presence.PreAbsenceCount(),
		AbsenceDays: presence.AbsenceDays(),
	})
	if err != nil {
		return err
	}

	for _, state := range occupant.ChoreStates() {
		choreID, ok := idByKey[state.Chore]
		if !ok {
			return fmt.Errorf("chore %s has no catalog entry", state.Chore)
		}
		recordState := models.ChoreRecordState{
			OccupantID:  occupantID,
			ChoreID:     choreID,
			BeginMonday: state.Begin.Monday(),
		}
		for _, week := range state.Weeks {
			recordState.WeekMondays = append(recordState.WeekMondays, week.Monday())
		}
		if state.OldEver {
			oldLast := state.OldLast
			recordState.OldLastTime = &oldLast
		}
		if state.Ever {
			last := state.Last
			recordState.LastTime = &last
		}
		if err := service.stateRepo.SaveChoreRecord(ctx, recordState); err != nil {
			return err
		}
	}
	return nil
}

// ReportAbsence marks days absent for the occupant and persists the
// reconciled state.
func (service *ScheduleService) ReportAbsence(ctx context.Context, occupantID string, days []time.Time) error {
	occupant, idByKey, err := service.load(ctx, occupantID)
	if err != nil {
		return err
	}
	if err := occupant.AddAbsence(days); err != nil {
		return err
	}
	return service.save(ctx, occupantID, occupant, idByKey)
}

// ReportPresence clears absences for the occupant and persists the state.
func (service *ScheduleService) ReportPresence(ctx context.Context, occupantID string, days []time.Time) error {
	occupant, idByKey, err := service.load(ctx, occupantID)
	if err != nil {
		return err
	}
	if err := occupant.AddPresence(days); err != nil {
		return err
	}
	return service.save(ctx, occupantID, occupant, idByKey)
}

// ReportPresenceChange applies absences then presences as one logical
// edit.
func (service *ScheduleService) ReportPresenceChange(ctx context.Context, occupantID string, absences, presences []time.Time) error {
	occupant, idByKey, err := service.load(ctx, occupantID)
	if err != nil {
		return err
	}
	if err := occupant.ReportPresenceChange(absences, presences); err != nil {
		return err
	}
	return service.save(ctx, occupantID, occupant, idByKey)
}

// RecordChoreWeek records that the occupant did the chore during the week
// containing day.
func (service *ScheduleService) RecordChoreWeek(ctx context.Context, occupantID string, choreID string, day time.Time) error {
	occupant, idByKey, err := service.load(ctx, occupantID)
	if err != nil {
		return err
	}
	chore, err := service.choreRepo.FindByID(ctx, choreID)
	if err != nil {
		return err
	}
	key := choreKey(chore)
	idByKey[key] = chore.ID
	if err := occupant.RecordChoreOnWeek(key, calendar.WeekOf(day)); err != nil {
		return err
	}
	return service.save(ctx, occupantID, occupant, idByKey)
}

// RegisterChoreHistory creates the occupant's record for a chore with a
// known last-performed day predating tracking. It fails once the chore is
// already tracked for the occupant.
func (service *ScheduleService) RegisterChoreHistory(ctx context.Context, occupantID string, choreID string, lastDone time.Time) error {
	occupant, idByKey, err := service.load(ctx, occupantID)
	if err != nil {
		return err
	}
	chore, err := service.choreRepo.FindByID(ctx, choreID)
	if err != nil {
		return err
	}
	key := choreKey(chore)
	idByKey[key] = chore.ID
	if err := occupant.AddChoreWithHistory(key, lastDone); err != nil {
		return err
	}
	return service.save(ctx, occupantID, occupant, idByKey)
}

// CompactPresence folds the occupant's absence detail up to until into the
// aggregate count.
func (service *ScheduleService) CompactPresence(ctx context.Context, occupantID string, until time.Time, presenceDays int, from *time.Time) error {
	occupant, idByKey, err := service.load(ctx, occupantID)
	if err != nil {
		return err
	}
	if err := occupant.CompactPresence(until, presenceDays, from); err != nil {
		return err
	}
	return service.save(ctx, occupantID, occupant, idByKey)
}

// CompactChoreHistory raises the start of the occupant's history for a
// chore to the week containing day.
func (service *ScheduleService) CompactChoreHistory(ctx context.Context, occupantID string, choreID string, day time.Time) error {
	occupant, idByKey, err := service.load(ctx, occupantID)
	if err != nil {
		return err
	}
	chore, err := service.choreRepo.FindByID(ctx, choreID)
	if err != nil {
		return err
	}
	key := choreKey(chore)
	idByKey[key] = chore.ID
	if err := occupant.CompactChoreHistory(key, calendar.WeekOf(day)); err != nil {
		return err
	}
	return service.save(ctx, occupantID, occupant, idByKey)
}

// PresenceDayCount returns the occupant's presence days up to until.
func (service *ScheduleService) PresenceDayCount(ctx context.Context, occupantID string, until time.Time) (int, error) {
	occupant, _, err := service.load(ctx, occupantID)
	if err != nil {
		return 0, err
	}
	return occupant.PresenceDayCount(until)
}

// LastPerformed returns the most recent day evidence shows the occupant
// did the chore while present.
func (service *ScheduleService) LastPerformed(ctx context.Context, occupantID string, choreID string) (time.Time, error) {
	occupant, _, err := service.load(ctx, occupantID)
	if err != nil {
		return time.Time{}, err
	}
	chore, err := service.choreRepo.FindByID(ctx, choreID)
	if err != nil {
		return time.Time{}, err
	}
	return occupant.LastTime(choreKey(chore))
}

// PresenceDaysWithChore returns the days feeding the external weighting
// engine: present days whose week carries a record for the chore.
func (service *ScheduleService) PresenceDaysWithChore(ctx context.Context, occupantID string, choreID string) ([]time.Time, error) {
	occupant, _, err := service.load(ctx, occupantID)
	if err != nil {
		return nil, err
	}
	chore, err := service.choreRepo.FindByID(ctx, choreID)
	if err != nil {
		return nil, err
	}
	return occupant.PresenceDaysWithChore(choreKey(chore)), nil
}
