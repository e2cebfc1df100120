package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/LionelROLLAND/colocatron/internal/middleware"
	"github.com/LionelROLLAND/colocatron/internal/models"
	"github.com/LionelROLLAND/colocatron/internal/repository"
)

type ChoreHandler struct {
	choreRepo repository.ChoreRepository
}

func NewChoreHandler(choreRepo repository.ChoreRepository) *ChoreHandler {
	return &ChoreHandler{choreRepo: choreRepo}
}

type choreRequest struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Proportional      bool     `json:"proportional"`
	MinProportion     float64  `json:"min_proportion"`
	MinOccupants      int      `json:"min_occupants"`
	WeightPerOccupant *float64 `json:"weight_per_occupant,omitempty"`
	TotalWeight       *float64 `json:"total_weight,omitempty"`
	EachNDays         *int     `json:"each_n_days,omitempty"`
}

type choreResponse struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Identity          string   `json:"identity"`
	Proportional      bool     `json:"proportional"`
	MinProportion     float64  `json:"min_proportion"`
	MinOccupants      int      `json:"min_occupants"`
	WeightPerOccupant *float64 `json:"weight_per_occupant,omitempty"`
	TotalWeight       *float64 `json:"total_weight,omitempty"`
	EachNDays         *int     `json:"each_n_days,omitempty"`
}

func toChoreResponse(chore models.Chore) choreResponse {
	return choreResponse{
		ID:                chore.ID,
		Name:              chore.Name,
		Description:       chore.Description,
		Identity:          chore.IdentityName,
		Proportional:      chore.Proportional,
		MinProportion:     chore.MinProportion,
		MinOccupants:      chore.MinOccupants,
		WeightPerOccupant: chore.WeightPerOccupant,
		TotalWeight:       chore.TotalWeight,
		EachNDays:         chore.EachNDays,
	}
}

func validateChoreRequest(request choreRequest) string {
	if request.Name == "" {
		return "name is required"
	}
	if request.MinProportion < 0 || request.MinProportion > 1 {
		return "min_proportion must be between 0 and 1"
	}
	if request.MinOccupants < 0 {
		return "min_occupants must not be negative"
	}
	if request.EachNDays != nil && *request.EachNDays < 1 {
		return "each_n_days must be at least 1"
	}
	// Exactly one of the two weight parameters applies, picked by the
	// proportional flag; the engine rejects any other combination.
	if request.Proportional {
		if request.WeightPerOccupant == nil {
			return "proportional chores require weight_per_occupant"
		}
		if request.TotalWeight != nil {
			return "proportional chores must not set total_weight"
		}
	} else {
		if request.TotalWeight == nil {
			return "non-proportional chores require total_weight"
		}
		if request.WeightPerOccupant != nil {
			return "non-proportional chores must not set weight_per_occupant"
		}
	}
	return ""
}

func (handler *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	chores, err := handler.choreRepo.FindAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing chores failed")
		return
	}
	responses := make([]choreResponse, 0, len(chores))
	for _, chore := range chores {
		responses = append(responses, toChoreResponse(chore))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (handler *ChoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	chore, err := handler.choreRepo.FindByID(r.Context(), chi.URLParam(r, "choreID"))
	if err != nil {
		writeScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChoreResponse(chore))
}

func (handler *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request choreRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if message := validateChoreRequest(request); message != "" {
		writeError(w, http.StatusBadRequest, message)
		return
	}

	seq, err := handler.choreRepo.NextIdentitySeq(r.Context(), request.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "creating chore failed")
		return
	}
	chore := models.Chore{
		ID:                  uuid.New().String(),
		Name:                request.Name,
		Description:         request.Description,
		IdentityName:        request.Name,
		IdentitySeq:         seq,
		Proportional:        request.Proportional,
		MinProportion:       request.MinProportion,
		MinOccupants:        request.MinOccupants,
		WeightPerOccupant:   request.WeightPerOccupant,
		TotalWeight:         request.TotalWeight,
		EachNDays:           request.EachNDays,
		CreatedByOccupantID: middleware.GetOccupant(r.Context()).ID,
	}
	created, err := handler.choreRepo.Create(r.Context(), chore)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "creating chore failed")
		return
	}
	writeJSON(w, http.StatusCreated, toChoreResponse(created))
}

func (handler *ChoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	chore, err := handler.choreRepo.FindByID(r.Context(), chi.URLParam(r, "choreID"))
	if err != nil {
		writeScheduleError(w, err)
		return
	}
	var request choreRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if message := validateChoreRequest(request); message != "" {
		writeError(w, http.StatusBadRequest, message)
		return
	}

	// The identity pair is fixed at creation so occupant histories keep
	// pointing at the same chore across renames.
	chore.Name = request.Name
	chore.Description = request.Description
	chore.Proportional = request.Proportional
	chore.MinProportion = request.MinProportion
	chore.MinOccupants = request.MinOccupants
	chore.WeightPerOccupant = request.WeightPerOccupant
	chore.TotalWeight = request.TotalWeight
	chore.EachNDays = request.EachNDays
	if err := handler.choreRepo.Update(r.Context(), chore); err != nil {
		writeError(w, http.StatusInternalServerError, "updating chore failed")
		return
	}
	writeJSON(w, http.StatusOK, toChoreResponse(chore))
}

func (handler *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := handler.choreRepo.Delete(r.Context(), chi.URLParam(r, "choreID")); err != nil {
		writeScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
