package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/LionelROLLAND/colocatron/internal/middleware"
	"github.com/LionelROLLAND/colocatron/internal/models"
	"github.com/LionelROLLAND/colocatron/internal/repository"
	"github.com/LionelROLLAND/colocatron/internal/services"
)

// APIHandler serves the read endpoints consumed by the external assignment
// engine, plus the admin-side token management for them.
type APIHandler struct {
	tokenRepo       repository.APITokenRepository
	scheduleService *services.ScheduleService
}

func NewAPIHandler(tokenRepo repository.APITokenRepository, scheduleService *services.ScheduleService) *APIHandler {
	return &APIHandler{
		tokenRepo:       tokenRepo,
		scheduleService: scheduleService,
	}
}

func (handler *APIHandler) CreateToken(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name      string `json:"name"`
		ExpiresAt string `json:"expires_at,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if request.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	var expiresAt *time.Time
	if request.ExpiresAt != "" {
		parsed, err := time.Parse(time.RFC3339, request.ExpiresAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "expires_at must be RFC 3339")
			return
		}
		expiresAt = &parsed
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		writeError(w, http.StatusInternalServerError, "generating token failed")
		return
	}
	secret := hex.EncodeToString(raw)

	token := models.APIToken{
		ID:                  uuid.New().String(),
		Name:                request.Name,
		TokenHash:           repository.HashToken(secret),
		CreatedByOccupantID: middleware.GetOccupant(r.Context()).ID,
		ExpiresAt:           expiresAt,
	}
	created, err := handler.tokenRepo.Create(r.Context(), token)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "creating token failed")
		return
	}

	// The secret is only shown once; we store the hash.
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":    created.ID,
		"name":  created.Name,
		"token": secret,
	})
}

func (handler *APIHandler) ListTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := handler.tokenRepo.FindAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing tokens failed")
		return
	}
	type tokenResponse struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		ExpiresAt string `json:"expires_at,omitempty"`
		CreatedAt string `json:"created_at"`
	}
	responses := make([]tokenResponse, 0, len(tokens))
	for _, token := range tokens {
		response := tokenResponse{
			ID:        token.ID,
			Name:      token.Name,
			CreatedAt: token.CreatedAt.Format(time.RFC3339),
		}
		if token.ExpiresAt != nil {
			response.ExpiresAt = token.ExpiresAt.Format(time.RFC3339)
		}
		responses = append(responses, response)
	}
	writeJSON(w, http.StatusOK, responses)
}

func (handler *APIHandler) DeleteToken(w http.ResponseWriter, r *http.Request) {
	if err := handler.tokenRepo.Delete(r.Context(), chi.URLParam(r, "tokenID")); err != nil {
		writeScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// PresenceDayCount answers how many days the occupant was present from
// onboarding up to the given day inclusive.
func (handler *APIHandler) PresenceDayCount(w http.ResponseWriter, r *http.Request) {
	until, err := parseDay(r.URL.Query().Get("until"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	count, err := handler.scheduleService.PresenceDayCount(r.Context(), chi.URLParam(r, "occupantID"), until)
	if err != nil {
		writeScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"occupant_id":   chi.URLParam(r, "occupantID"),
		"until":         formatDay(until),
		"presence_days": count,
	})
}

func (handler *APIHandler) LastPerformed(w http.ResponseWriter, r *http.Request) {
	day, err := handler.scheduleService.LastPerformed(r.Context(), chi.URLParam(r, "occupantID"), chi.URLParam(r, "choreID"))
	if err != nil {
		writeScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"occupant_id": chi.URLParam(r, "occupantID"),
		"chore_id":    chi.URLParam(r, "choreID"),
		"last_done":   formatDay(day),
	})
}

// PresenceDaysWithChore lists the present days whose week carries a record
// for the chore, the evidence set the engine weighs contributions with.
func (handler *APIHandler) PresenceDaysWithChore(w http.ResponseWriter, r *http.Request) {
	days, err := handler.scheduleService.PresenceDaysWithChore(r.Context(), chi.URLParam(r, "occupantID"), chi.URLParam(r, "choreID"))
	if err != nil {
		writeScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"occupant_id": chi.URLParam(r, "occupantID"),
		"chore_id":    chi.URLParam(r, "choreID"),
		"days":        formatDays(days),
	})
}
