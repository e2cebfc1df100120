package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/LionelROLLAND/colocatron/internal/calendar"
	"github.com/LionelROLLAND/colocatron/internal/middleware"
	"github.com/LionelROLLAND/colocatron/internal/models"
	"github.com/LionelROLLAND/colocatron/internal/repository"
	"github.com/LionelROLLAND/colocatron/internal/services"
	"github.com/LionelROLLAND/colocatron/internal/testutil"
)

type apiFixture struct {
	router   *chi.Mux
	token    string
	occupant models.Occupant
	chore    models.Chore
	service  *services.ScheduleService
}

func newAPIFixture(t *testing.T) apiFixture {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	occupantRepo := repository.NewOccupantRepository(db)
	choreRepo := repository.NewChoreRepository(db)
	stateRepo := repository.NewScheduleStateRepository(db)
	tokenRepo := repository.NewAPITokenRepository(db)
	ctx := context.Background()

	occupant, err := occupantRepo.Create(ctx, models.Occupant{
		Name:           "alex",
		IdentityName:   "alex",
		Role:           models.RoleAdmin,
		OnboardingDate: calendar.Day(2026, time.January, 5),
	})
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

	rawToken := "engine-test-token"
	if _, err := tokenRepo.Create(ctx, models.APIToken{
		Name:                "Engine",
		TokenHash:           repository.HashToken(rawToken),
		CreatedByOccupantID: occupant.ID,
	}); err != nil {
		t.Fatalf("creating token: %v", err)
	}

	scheduleService := services.NewScheduleService(occupantRepo, choreRepo, stateRepo)
	apiHandler := NewAPIHandler(tokenRepo, scheduleService)

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(middleware.APITokenAuth(tokenRepo, occupantRepo))
		r.Get("/api/occupants/{occupantID}/presence-day-count", apiHandler.PresenceDayCount)
		r.Get("/api/occupants/{occupantID}/chores/{choreID}/last-performed", apiHandler.LastPerformed)
		r.Get("/api/occupants/{occupantID}/chores/{choreID}/presence-days", apiHandler.PresenceDaysWithChore)
	})

	return apiFixture{
		router:   router,
		token:    rawToken,
		occupant: occupant,
		chore:    chore,
		service:  scheduleService,
	}
}

func (fixture apiFixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodGet, path, nil)
	request.Header.Set("Authorization", "Bearer "+fixture.token)
	recorder := httptest.NewRecorder()
	fixture.router.ServeHTTP(recorder, request)
	return recorder
}

func TestAPI_RejectsMissingToken(t *testing.T) {
	fixture := newAPIFixture(t)

	request := httptest.NewRequest(http.MethodGet, "/api/occupants/"+fixture.occupant.ID+"/presence-day-count?until=2026-01-11", nil)
	recorder := httptest.NewRecorder()
	fixture.router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", recorder.Code)
	}
}

func TestAPI_RejectsUnknownToken(t *testing.T) {
	fixture := newAPIFixture(t)

	request := httptest.NewRequest(http.MethodGet, "/api/occupants/"+fixture.occupant.ID+"/presence-day-count?until=2026-01-11", nil)
	request.Header.Set("Authorization", "Bearer wrong-token")
	recorder := httptest.NewRecorder()
	fixture.router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for unknown token, got %d", recorder.Code)
	}
}

func TestAPI_PresenceDayCount(t *testing.T) {
	fixture := newAPIFixture(t)
	ctx := context.Background()

	if err := fixture.service.ReportAbsence(ctx, fixture.occupant.ID, []time.Time{calendar.Day(2026, time.January, 8)}); err != nil {
		t.Fatalf("ReportAbsence: %v", err)
	}

	recorder := fixture.get(t, "/api/occupants/"+fixture.occupant.ID+"/presence-day-count?until=2026-01-11")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var response struct {
		PresenceDays int `json:"presence_days"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if response.PresenceDays != 6 {
		t.Errorf("expected 6 presence days, got %d", response.PresenceDays)
	}
}

func TestAPI_PresenceDayCountRejectsBadDay(t *testing.T) {
	fixture := newAPIFixture(t)

	recorder := fixture.get(t, "/api/occupants/"+fixture.occupant.ID+"/presence-day-count?until=garbage")
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unparsable day, got %d", recorder.Code)
	}
}

func TestAPI_LastPerformed(t *testing.T) {
	fixture := newAPIFixture(t)
	ctx := context.Background()

	if err := fixture.service.RecordChoreWeek(ctx, fixture.occupant.ID, fixture.chore.ID, calendar.Day(2026, time.January, 7)); err != nil {
		t.Fatalf("RecordChoreWeek: %v", err)
	}

	recorder := fixture.get(t, "/api/occupants/"+fixture.occupant.ID+"/chores/"+fixture.chore.ID+"/last-performed")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var response struct {
		LastDone string `json:"last_done"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if response.LastDone != "2026-01-11" {
		t.Errorf("expected last done 2026-01-11, got %q", response.LastDone)
	}
}

func TestAPI_LastPerformedNeverDoneIs404(t *testing.T) {
	fixture := newAPIFixture(t)

	recorder := fixture.get(t, "/api/occupants/"+fixture.occupant.ID+"/chores/"+fixture.chore.ID+"/last-performed")
	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected 404 for never-done chore, got %d: %s", recorder.Code, recorder.Body.String())
	}
}

func TestAPI_PresenceDaysWithChore(t *testing.T) {
	fixture := newAPIFixture(t)
	ctx := context.Background()

	if err := fixture.service.ReportAbsence(ctx, fixture.occupant.ID, []time.Time{calendar.Day(2026, time.January, 9)}); err != nil {
		t.Fatalf("ReportAbsence: %v", err)
	}
	if err := fixture.service.RecordChoreWeek(ctx, fixture.occupant.ID, fixture.chore.ID, calendar.Day(2026, time.January, 7)); err != nil {
		t.Fatalf("RecordChoreWeek: %v", err)
	}

	recorder := fixture.get(t, "/api/occupants/"+fixture.occupant.ID+"/chores/"+fixture.chore.ID+"/presence-days")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var response struct {
		Days []string `json:"days"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(response.Days) != 6 {
		t.Fatalf("expected 6 days, got %d: %v", len(response.Days), response.Days)
	}
	if strings.Contains(strings.Join(response.Days, ","), "2026-01-09") {
		t.Error("expected the absent day to be excluded")
	}
}

func TestAPI_UnknownOccupantIs404(t *testing.T) {
	fixture := newAPIFixture(t)

	recorder := fixture.get(t, "/api/occupants/missing/presence-day-count?until=2026-01-11")
	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown occupant, got %d", recorder.Code)
	}
}
