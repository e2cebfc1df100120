package handlers

import (
	"log/slog"
	"net/http"

	"github.com/LionelROLLAND/colocatron/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login redirects to the OIDC provider, or provisions the dev admin when
// OIDC is disabled.
func (handler *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !handler.authService.OIDCConfigured() {
		occupant, err := handler.authService.DevLogin(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "dev login failed")
			return
		}
		if err := handler.authService.SetSession(w, occupant.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "setting session failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"occupant_id": occupant.ID})
		return
	}

	state, err := handler.authService.GenerateState()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "generating state failed")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   300,
	})
	http.Redirect(w, r, handler.authService.LoginURL(state), http.StatusFound)
}

func (handler *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		writeError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}

	occupant, err := handler.authService.HandleCallback(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		slog.Error("oidc callback failed", "error", err)
		writeError(w, http.StatusUnauthorized, "login failed")
		return
	}

	if err := handler.authService.SetSession(w, occupant.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "setting session failed")
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (handler *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	handler.authService.ClearSession(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
