package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/LionelROLLAND/colocatron/internal/calendar"
	"github.com/LionelROLLAND/colocatron/internal/models"
	"github.com/LionelROLLAND/colocatron/internal/repository"
	"github.com/LionelROLLAND/colocatron/internal/testutil"
)

func TestScheduleStateRepository_SaveAndLoadPresence(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	occupantRepo := repository.NewOccupantRepository(db)
	stateRepo := repository.NewScheduleStateRepository(db)
	ctx := context.Background()

	occupant, err := occupantRepo.Create(ctx, newOccupant("alex"))
	if err != nil {
		t.Fatalf("creating occupant: %v", err)
	}

	state := models.PresenceState{
		OccupantID:  occupant.ID,
		Watermark:   calendar.Day(2026, time.January, 15),
		PreAbsences: 3,
		AbsenceDays: []time.Time{
			calendar.Day(2026, time.January, 20),
			calendar.Day(2026, time.January, 17),
		},
	}
	if err := stateRepo.SavePresence(ctx, state); err != nil {
		t.Fatalf("saving presence: %v", err)
	}

	loaded, err := stateRepo.LoadPresence(ctx, occupant.ID)
	if err != nil {
		t.Fatalf("loading presence: %v", err)
	}
	if !loaded.Watermark.Equal(state.Watermark) {
		t.Errorf("expected watermark %v, got %v", state.Watermark, loaded.Watermark)
	}
	if loaded.PreAbsences != 3 {
		t.Errorf("expected 3 pre-absences, got %d", loaded.PreAbsences)
	}
	if len(loaded.AbsenceDays) != 2 {
		t.Fatalf("expected 2 absence days, got %d", len(loaded.AbsenceDays))
	}
	// Days come back ordered.
	if !loaded.AbsenceDays[0].Equal(calendar.Day(2026, time.January, 17)) {
		t.Errorf("expected first day Jan 17, got %v", loaded.AbsenceDays[0])
	}
}

func TestScheduleStateRepository_SavePresenceRewritesDays(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	occupantRepo := repository.NewOccupantRepository(db)
	stateRepo := repository.NewScheduleStateRepository(db)
	ctx := context.Background()

	occupant, err := occupantRepo.Create(ctx, newOccupant("alex"))
	if err != nil {
		t.Fatalf("creating occupant: %v", err)
	}

	first := models.PresenceState{
		OccupantID:  occupant.ID,
		Watermark:   occupant.OnboardingDate,
		AbsenceDays: []time.Time{calendar.Day(2026, time.January, 10)},
	}
	if err := stateRepo.SavePresence(ctx, first); err != nil {
		t.Fatalf("first save: %v", err)
	}

	second := first
	second.AbsenceDays = []time.Time{calendar.Day(2026, time.January, 12)}
	if err := stateRepo.SavePresence(ctx, second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, err := stateRepo.LoadPresence(ctx, occupant.ID)
	if err != nil {
		t.Fatalf("loading presence: %v", err)
	}
	if len(loaded.AbsenceDays) != 1 {
		t.Fatalf("expected the save to replace days, got %d", len(loaded.AbsenceDays))
	}
	if !loaded.AbsenceDays[0].Equal(calendar.Day(2026, time.January, 12)) {
		t.Errorf("expected Jan 12, got %v", loaded.AbsenceDays[0])
	}
}

func TestScheduleStateRepository_SaveAndLoadChoreRecords(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	occupantRepo := repository.NewOccupantRepository(db)
	choreRepo := repository.NewChoreRepository(db)
	stateRepo := repository.NewScheduleStateRepository(db)
	ctx := context.Background()

	occupant, err := occupantRepo.Create(ctx, newOccupant("alex"))
	if err != nil {
		t.Fatalf("creating occupant: %v", err)
	}
	chore, err := choreRepo.Create(ctx, models.Chore{
		Name:                "dishes",
		IdentityName:        "dishes",
		CreatedByOccupantID: occupant.ID,
	})
	if err != nil {
		t.Fatalf("creating chore: %v", err)
	}

	oldLast := calendar.Day(2025, time.December, 20)
	last := calendar.Day(2026, time.January, 11)
	state := models.ChoreRecordState{
		OccupantID:  occupant.ID,
		ChoreID:     chore.ID,
		BeginMonday: calendar.Day(2026, time.January, 5),
		WeekMondays: []time.Time{calendar.Day(2026, time.January, 5)},
		OldLastTime: &oldLast,
		LastTime:    &last,
	}
	if err := stateRepo.SaveChoreRecord(ctx, state); err != nil {
		t.Fatalf("saving chore record: %v", err)
	}

	records, err := stateRepo.LoadChoreRecords(ctx, occupant.ID)
	if err != nil {
		t.Fatalf("loading chore records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	record := records[0]
	if record.ChoreID != chore.ID {
		t.Errorf("expected chore ID %s, got %s", chore.ID, record.ChoreID)
	}
	if record.LastTime == nil || !record.LastTime.Equal(last) {
		t.Errorf("expected last time %v, got %v", last, record.LastTime)
	}
	if record.OldLastTime == nil || !record.OldLastTime.Equal(oldLast) {
		t.Errorf("expected old last time %v, got %v", oldLast, record.OldLastTime)
	}
	if len(record.WeekMondays) != 1 {
		t.Fatalf("expected 1 week, got %d", len(record.WeekMondays))
	}
}

func TestScheduleStateRepository_SaveChoreRecordUpserts(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	occupantRepo := repository.NewOccupantRepository(db)
	choreRepo := repository.NewChoreRepository(db)
	stateRepo := repository.NewScheduleStateRepository(db)
	ctx := context.Background()

	occupant, err := occupantRepo.Create(ctx, newOccupant("alex"))
	if err != nil {
		t.Fatalf("creating occupant: %v", err)
	}
	chore, err := choreRepo.Create(ctx, models.Chore{
		Name:                "dishes",
		IdentityName:        "dishes",
		CreatedByOccupantID: occupant.ID,
	})
	if err != nil {
		t.Fatalf("creating chore: %v", err)
	}

	state := models.ChoreRecordState{
		OccupantID:  occupant.ID,
		ChoreID:     chore.ID,
		BeginMonday: calendar.Day(2026, time.January, 5),
		WeekMondays: []time.Time{calendar.Day(2026, time.January, 5)},
	}
	if err := stateRepo.SaveChoreRecord(ctx, state); err != nil {
		t.Fatalf("first save: %v", err)
	}

	state.BeginMonday = calendar.Day(2026, time.January, 12)
	state.WeekMondays = []time.Time{
		calendar.Day(2026, time.January, 12),
		calendar.Day(2026, time.January, 19),
	}
	if err := stateRepo.SaveChoreRecord(ctx, state); err != nil {
		t.Fatalf("second save: %v", err)
	}

	records, err := stateRepo.LoadChoreRecords(ctx, occupant.ID)
	if err != nil {
		t.Fatalf("loading chore records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected a single upserted record, got %d", len(records))
	}
	if !records[0].BeginMonday.Equal(calendar.Day(2026, time.January, 12)) {
		t.Errorf("expected updated begin, got %v", records[0].BeginMonday)
	}
	if len(records[0].WeekMondays) != 2 {
		t.Errorf("expected 2 weeks after upsert, got %d", len(records[0].WeekMondays))
	}
}
