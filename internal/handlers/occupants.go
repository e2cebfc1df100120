package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/LionelROLLAND/colocatron/internal/middleware"
	"github.com/LionelROLLAND/colocatron/internal/models"
	"github.com/LionelROLLAND/colocatron/internal/repository"
	"github.com/LionelROLLAND/colocatron/internal/services"
)

type OccupantHandler struct {
	occupantRepo    repository.OccupantRepository
	scheduleService *services.ScheduleService
}

func NewOccupantHandler(occupantRepo repository.OccupantRepository, scheduleService *services.ScheduleService) *OccupantHandler {
	return &OccupantHandler{
		occupantRepo:    occupantRepo,
		scheduleService: scheduleService,
	}
}

type occupantResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	Role           string `json:"role"`
	Identity       string `json:"identity"`
	OnboardingDate string `json:"onboarding_date"`
}

func toOccupantResponse(occupant models.Occupant) occupantResponse {
	return occupantResponse{
		ID:             occupant.ID,
		Name:           occupant.Name,
		Email:          occupant.Email,
		AvatarURL:      occupant.AvatarURL,
		Role:           string(occupant.Role),
		Identity:       occupant.IdentityName,
		OnboardingDate: formatDay(occupant.OnboardingDate),
	}
}

func (handler *OccupantHandler) List(w http.ResponseWriter, r *http.Request) {
	occupants, err := handler.occupantRepo.FindAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing occupants failed")
		return
	}
	responses := make([]occupantResponse, 0, len(occupants))
	for _, occupant := range occupants {
		responses = append(responses, toOccupantResponse(occupant))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (handler *OccupantHandler) Get(w http.ResponseWriter, r *http.Request) {
	occupant, err := handler.occupantRepo.FindByID(r.Context(), chi.URLParam(r, "occupantID"))
	if err != nil {
		writeScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOccupantResponse(occupant))
}

func (handler *OccupantHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	role := models.Role(request.Role)
	if role != models.RoleAdmin && role != models.RoleMember {
		writeError(w, http.StatusBadRequest, "role must be admin or member")
		return
	}
	if err := handler.occupantRepo.UpdateRole(r.Context(), chi.URLParam(r, "occupantID"), role); err != nil {
		writeScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// canEditSchedule allows occupants to edit their own history and admins to
// edit anyone's.
func canEditSchedule(r *http.Request, occupantID string) bool {
	current := middleware.GetOccupant(r.Context())
	return current.ID == occupantID || current.Role == models.RoleAdmin
}

func (handler *OccupantHandler) ReportAbsence(w http.ResponseWriter, r *http.Request) {
	occupantID := chi.URLParam(r, "occupantID")
	if !canEditSchedule(r, occupantID) {
		writeError(w, http.StatusForbidden, "cannot edit another occupant's schedule")
		return
	}
	var request struct {
		Days []string `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	days, err := parseDays(request.Days)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := handler.scheduleService.ReportAbsence(r.Context(), occupantID, days); err != nil {
		writeScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (handler *OccupantHandler) ReportPresence(w http.ResponseWriter, r *http.Request) {
	occupantID := chi.URLParam(r, "occupantID")
	if !canEditSchedule(r, occupantID) {
		writeError(w, http.StatusForbidden, "cannot edit another occupant's schedule")
		return
	}
	var request struct {
		Days []string `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	days, err := parseDays(request.Days)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := handler.scheduleService.ReportPresence(r.Context(), occupantID, days); err != nil {
		writeScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// ReportPresenceChange applies absences and presences as a single edit, so
// a day moved from one list to the other never ends up in both states.
func (handler *OccupantHandler) ReportPresenceChange(w http.ResponseWriter, r *http.Request) {
	occupantID := chi.URLParam(r, "occupantID")
	if !canEditSchedule(r, occupantID) {
		writeError(w, http.StatusForbidden, "cannot edit another occupant's schedule")
		return
	}
	var request struct {
		Absences  []string `json:"absences"`
		Presences []string `json:"presences"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	absences, err := parseDays(request.Absences)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	presences, err := parseDays(request.Presences)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := handler.scheduleService.ReportPresenceChange(r.Context(), occupantID, absences, presences); err != nil {
		writeScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (handler *OccupantHandler) RecordChoreWeek(w http.ResponseWriter, r *http.Request) {
	occupantID := chi.URLParam(r, "occupantID")
	if !canEditSchedule(r, occupantID) {
		writeError(w, http.StatusForbidden, "cannot edit another occupant's schedule")
		return
	}
	var request struct {
		ChoreID string `json:"chore_id"`
		Day     string `json:"day"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	day, err := parseDay(request.Day)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := handler.scheduleService.RecordChoreWeek(r.Context(), occupantID, request.ChoreID, day); err != nil {
		writeScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// RegisterChoreHistory seeds an occupant's record for a chore with a
// last-performed day predating tracking, typically at onboarding.
func (handler *OccupantHandler) RegisterChoreHistory(w http.ResponseWriter, r *http.Request) {
	occupantID := chi.URLParam(r, "occupantID")
	if !canEditSchedule(r, occupantID) {
		writeError(w, http.StatusForbidden, "cannot edit another occupant's schedule")
		return
	}
	var request struct {
		ChoreID  string `json:"chore_id"`
		LastDone string `json:"last_done"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	lastDone, err := parseDay(request.LastDone)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := handler.scheduleService.RegisterChoreHistory(r.Context(), occupantID, request.ChoreID, lastDone); err != nil {
		writeScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "registered"})
}

func (handler *OccupantHandler) CompactPresence(w http.ResponseWriter, r *http.Request) {
	occupantID := chi.URLParam(r, "occupantID")
	var request struct {
		Until        string  `json:"until"`
		PresenceDays int     `json:"presence_days"`
		From         *string `json:"from,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	until, err := parseDay(request.Until)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var from *time.Time
	if request.From != nil {
		day, err := parseDay(*request.From)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		from = &day
	}
	if err := handler.scheduleService.CompactPresence(r.Context(), occupantID, until, request.PresenceDays, from); err != nil {
		writeScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "compacted"})
}

func (handler *OccupantHandler) CompactChoreHistory(w http.ResponseWriter, r *http.Request) {
	occupantID := chi.URLParam(r, "occupantID")
	var request struct {
		ChoreID string `json:"chore_id"`
		Day     string `json:"day"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	day, err := parseDay(request.Day)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := handler.scheduleService.CompactChoreHistory(r.Context(), occupantID, request.ChoreID, day); err != nil {
		writeScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "compacted"})
}
