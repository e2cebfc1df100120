package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/LionelROLLAND/colocatron/internal/middleware"
	"github.com/LionelROLLAND/colocatron/internal/models"
	"github.com/LionelROLLAND/colocatron/internal/repository"
	"github.com/LionelROLLAND/colocatron/internal/services"
)

type AbsenceSourceHandler struct {
	sourceRepo repository.AbsenceSourceRepository
	importer   *services.AbsenceImporter
}

func NewAbsenceSourceHandler(sourceRepo repository.AbsenceSourceRepository, importer *services.AbsenceImporter) *AbsenceSourceHandler {
	return &AbsenceSourceHandler{sourceRepo: sourceRepo, importer: importer}
}

type absenceSourceResponse struct {
	ID            string `json:"id"`
	OccupantID    string `json:"occupant_id"`
	Name          string `json:"name"`
	URL           string `json:"url"`
	LastFetchedAt string `json:"last_fetched_at,omitempty"`
}

func toAbsenceSourceResponse(source models.AbsenceSource) absenceSourceResponse {
	response := absenceSourceResponse{
		ID:         source.ID,
		OccupantID: source.OccupantID,
		Name:       source.Name,
		URL:        source.URL,
	}
	if source.LastFetchedAt != nil {
		response.LastFetchedAt = source.LastFetchedAt.Format(time.RFC3339)
	}
	return response
}

func (handler *AbsenceSourceHandler) List(w http.ResponseWriter, r *http.Request) {
	sources, err := handler.sourceRepo.FindAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing absence sources failed")
		return
	}
	responses := make([]absenceSourceResponse, 0, len(sources))
	for _, source := range sources {
		responses = append(responses, toAbsenceSourceResponse(source))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (handler *AbsenceSourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request struct {
		OccupantID string `json:"occupant_id"`
		Name       string `json:"name"`
		URL        string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if request.Name == "" || request.URL == "" {
		writeError(w, http.StatusBadRequest, "name and url are required")
		return
	}
	if !strings.HasPrefix(request.URL, "http://") && !strings.HasPrefix(request.URL, "https://") {
		writeError(w, http.StatusBadRequest, "url must be http or https")
		return
	}
	if request.OccupantID == "" {
		request.OccupantID = middleware.GetOccupant(r.Context()).ID
	}
	if !canEditSchedule(r, request.OccupantID) {
		writeError(w, http.StatusForbidden, "cannot add a source for another occupant")
		return
	}

	source := models.AbsenceSource{
		ID:         uuid.New().String(),
		OccupantID: request.OccupantID,
		Name:       request.Name,
		URL:        request.URL,
	}
	created, err := handler.sourceRepo.Create(r.Context(), source)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "creating absence source failed")
		return
	}
	writeJSON(w, http.StatusCreated, toAbsenceSourceResponse(created))
}

func (handler *AbsenceSourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	source, err := handler.sourceRepo.FindByID(r.Context(), chi.URLParam(r, "sourceID"))
	if err != nil {
		writeScheduleError(w, err)
		return
	}
	if !canEditSchedule(r, source.OccupantID) {
		writeError(w, http.StatusForbidden, "cannot remove another occupant's source")
		return
	}
	if err := handler.sourceRepo.Delete(r.Context(), source.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "deleting absence source failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Refresh re-fetches one source immediately, bypassing the cache window.
func (handler *AbsenceSourceHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	source, err := handler.sourceRepo.FindByID(r.Context(), chi.URLParam(r, "sourceID"))
	if err != nil {
		writeScheduleError(w, err)
		return
	}
	if !canEditSchedule(r, source.OccupantID) {
		writeError(w, http.StatusForbidden, "cannot refresh another occupant's source")
		return
	}
	if err := handler.importer.ForceRefreshByID(r.Context(), source.ID); err != nil {
		writeScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}
