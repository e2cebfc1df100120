package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/LionelROLLAND/colocatron/internal/repository"
)

type SettingsHandler struct {
	settingsRepo repository.SettingsRepository
}

func NewSettingsHandler(settingsRepo repository.SettingsRepository) *SettingsHandler {
	return &SettingsHandler{settingsRepo: settingsRepo}
}

func (handler *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	name, err := handler.settingsRepo.GetOrDefault(r.Context(), repository.SettingHouseholdName, "Colocatron")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "loading settings failed")
		return
	}
	timezone, err := handler.settingsRepo.GetOrDefault(r.Context(), repository.SettingTimezone, "UTC")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "loading settings failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"household_name": name,
		"timezone":       timezone,
	})
}

func (handler *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var request struct {
		HouseholdName string `json:"household_name,omitempty"`
		Timezone      string `json:"timezone,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if request.Timezone != "" {
		if _, err := time.LoadLocation(request.Timezone); err != nil {
			writeError(w, http.StatusBadRequest, "unknown timezone")
			return
		}
		if err := handler.settingsRepo.Set(r.Context(), repository.SettingTimezone, request.Timezone); err != nil {
			writeError(w, http.StatusInternalServerError, "saving settings failed")
			return
		}
	}
	if request.HouseholdName != "" {
		if err := handler.settingsRepo.Set(r.Context(), repository.SettingHouseholdName, request.HouseholdName); err != nil {
			writeError(w, http.StatusInternalServerError, "saving settings failed")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
