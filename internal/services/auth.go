package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/LionelROLLAND/colocatron/internal/calendar"
	"github.com/LionelROLLAND/colocatron/internal/config"
	"github.com/LionelROLLAND/colocatron/internal/models"
	"github.com/LionelROLLAND/colocatron/internal/repository"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gorilla/securecookie"
	"golang.org/x/oauth2"
)

type AuthService struct {
	oauthConfig  *oauth2.Config
	oidcVerifier *oidc.IDTokenVerifier
	secureCookie *securecookie.SecureCookie
	occupantRepo repository.OccupantRepository
}

type SessionData struct {
	OccupantID string `json:"occupant_id"`
}

func NewAuthService(ctx context.Context, cfg config.Config, occupantRepo repository.OccupantRepository) (*AuthService, error) {
	if cfg.OIDCIssuer == "" {
		slog.Warn("OIDC not configured, auth will be disabled")
		return &AuthService{
			secureCookie: securecookie.New([]byte(cfg.SessionSecret), nil),
			occupantRepo: occupantRepo,
		}, nil
	}

	provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		return nil, fmt.Errorf("creating OIDC provider: %w", err)
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		RedirectURL:  cfg.OIDCRedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID})

	return &AuthService{
		oauthConfig:  oauthConfig,
		oidcVerifier: verifier,
		secureCookie: securecookie.New([]byte(cfg.SessionSecret), nil),
		occupantRepo: occupantRepo,
	}, nil
}

func (service *AuthService) OIDCConfigured() bool {
	return service.oauthConfig != nil
}

func (service *AuthService) LoginURL(state string) string {
	if service.oauthConfig == nil {
		return ""
	}
	return service.oauthConfig.AuthCodeURL(state)
}

func (service *AuthService) GenerateState() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

func (service *AuthService) HandleCallback(ctx context.Context, code string) (models.Occupant, error) {
	if service.oauthConfig == nil {
		return models.Occupant{}, errors.New("OIDC not configured")
	}

	token, err := service.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return models.Occupant{}, fmt.Errorf("exchanging code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return models.Occupant{}, errors.New("no id_token in response")
	}

	idToken, err := service.oidcVerifier.Verify(ctx, rawIDToken)
	if err != nil {
		return models.Occupant{}, fmt.Errorf("verifying id token: %w", err)
	}

	var claims struct {
		Subject           string `json:"sub"`
		Email             string `json:"email"`
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
		Picture           string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return models.Occupant{}, fmt.Errorf("parsing claims: %w", err)
	}

	displayName := claims.Name
	if displayName == "" {
		displayName = claims.PreferredUsername
	}
	if displayName == "" {
		displayName = claims.Email
	}

	return service.provisionOccupant(ctx, claims.Subject, claims.Email, displayName, claims.Picture)
}

// provisionOccupant looks up or onboards the occupant behind an OIDC
// subject. A first login onboards the occupant today: presence and chore
// tracking start on the login day, earlier history only enters through
// explicit prior-history registration or compaction.
func (service *AuthService) provisionOccupant(ctx context.Context, subject, email, name, avatarURL string) (models.Occupant, error) {
	existing, err := service.occupantRepo.FindByOIDCSubject(ctx, subject)
	if err == nil {
		if err := service.occupantRepo.UpdateProfile(ctx, existing.ID, name, email, avatarURL); err != nil {
			slog.Warn("failed to update occupant profile on login", "error", err)
		}
		existing.Name = name
		existing.Email = email
		existing.AvatarURL = avatarURL
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Occupant{}, fmt.Errorf("looking up occupant: %w", err)
	}

	occupantCount, err := service.occupantRepo.Count(ctx)
	if err != nil {
		return models.Occupant{}, fmt.Errorf("counting occupants: %w", err)
	}

	role := models.RoleMember
	if occupantCount == 0 {
		role = models.RoleAdmin
	}

	seq, err := service.occupantRepo.NextIdentitySeq(ctx, name)
	if err != nil {
		return models.Occupant{}, err
	}

	created, err := service.occupantRepo.Create(ctx, models.Occupant{
		OIDCSubject:    subject,
		Email:          email,
		Name:           name,
		AvatarURL:      avatarURL,
		Role:           role,
		IdentityName:   name,
		IdentitySeq:    seq,
		OnboardingDate: calendar.DayOf(time.Now(), time.UTC),
	})
	if err != nil {
		return models.Occupant{}, fmt.Errorf("creating occupant: %w", err)
	}

	slog.Info("onboarded new occupant", "id", created.ID, "name", created.Name, "role", created.Role)
	return created, nil
}

// DevLogin provisions a fixed admin occupant when OIDC is disabled.
func (service *AuthService) DevLogin(ctx context.Context) (models.Occupant, error) {
	if service.OIDCConfigured() {
		return models.Occupant{}, errors.New("dev login is disabled when OIDC is configured")
	}
	return service.provisionOccupant(ctx, "dev-admin", "dev@localhost", "Dev Admin", "")
}

func (service *AuthService) SetSession(w http.ResponseWriter, occupantID string) error {
	data := SessionData{OccupantID: occupantID}
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	value, err := service.secureCookie.Encode("session", string(encoded))
	if err != nil {
		return fmt.Errorf("encoding session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 30,
	})
	return nil
}

func (service *AuthService) GetSession(r *http.Request) (SessionData, error) {
	cookie, err := r.Cookie("session")
	if err != nil {
		return SessionData{}, fmt.Errorf("no session cookie: %w", err)
	}

	var decoded string
	if err := service.secureCookie.Decode("session", cookie.Value, &decoded); err != nil {
		return SessionData{}, fmt.Errorf("decoding session cookie: %w", err)
	}

	var session SessionData
	if err := json.Unmarshal([]byte(decoded), &session); err != nil {
		return SessionData{}, fmt.Errorf("unmarshaling session: %w", err)
	}
	return session, nil
}

func (service *AuthService) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func (service *AuthService) GetCurrentOccupant(r *http.Request) (models.Occupant, error) {
	session, err := service.GetSession(r)
	if err != nil {
		return models.Occupant{}, err
	}

	occupant, err := service.occupantRepo.FindByID(r.Context(), session.OccupantID)
	if err != nil {
		return models.Occupant{}, fmt.Errorf("finding occupant: %w", err)
	}
	return occupant, nil
}
