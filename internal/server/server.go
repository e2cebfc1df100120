package server

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/LionelROLLAND/colocatron/internal/config"
	"github.com/LionelROLLAND/colocatron/internal/handlers"
	"github.com/LionelROLLAND/colocatron/internal/middleware"
	"github.com/LionelROLLAND/colocatron/internal/repository"
	"github.com/LionelROLLAND/colocatron/internal/services"
)

type Server struct {
	router *chi.Mux
	config config.Config
}

func New(database *sql.DB, cfg config.Config, authService *services.AuthService, importer *services.AbsenceImporter) *Server {
	occupantRepo := repository.NewOccupantRepository(database)
	choreRepo := repository.NewChoreRepository(database)
	stateRepo := repository.NewScheduleStateRepository(database)
	sourceRepo := repository.NewAbsenceSourceRepository(database)
	tokenRepo := repository.NewAPITokenRepository(database)
	settingsRepo := repository.NewSettingsRepository(database)

	scheduleService := services.NewScheduleService(occupantRepo, choreRepo, stateRepo)

	authHandler := handlers.NewAuthHandler(authService)
	occupantHandler := handlers.NewOccupantHandler(occupantRepo, scheduleService)
	choreHandler := handlers.NewChoreHandler(choreRepo)
	sourceHandler := handlers.NewAbsenceSourceHandler(sourceRepo, importer)
	apiHandler := handlers.NewAPIHandler(tokenRepo, scheduleService)
	settingsHandler := handlers.NewSettingsHandler(settingsRepo)

	router := chi.NewRouter()

	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Compress(5))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Get("/login", authHandler.Login)
	router.Get("/auth/callback", authHandler.Callback)
	router.Get("/logout", authHandler.Logout)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(authService))

		r.Get("/occupants", occupantHandler.List)
		r.Get("/occupants/{occupantID}", occupantHandler.Get)

		r.Post("/occupants/{occupantID}/absences", occupantHandler.ReportAbsence)
		r.Post("/occupants/{occupantID}/presences", occupantHandler.ReportPresence)
		r.Post("/occupants/{occupantID}/presence-changes", occupantHandler.ReportPresenceChange)
		r.Post("/occupants/{occupantID}/chore-weeks", occupantHandler.RecordChoreWeek)
		r.Post("/occupants/{occupantID}/chore-histories", occupantHandler.RegisterChoreHistory)

		r.Get("/chores", choreHandler.List)
		r.Get("/chores/{choreID}", choreHandler.Get)

		r.Get("/settings", settingsHandler.Get)

		r.Get("/absence-sources", sourceHandler.List)
		r.Post("/absence-sources", sourceHandler.Create)
		r.Post("/absence-sources/{sourceID}/refresh", sourceHandler.Refresh)
		r.Delete("/absence-sources/{sourceID}", sourceHandler.Delete)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Post("/occupants/{occupantID}/role", occupantHandler.UpdateRole)
			r.Post("/occupants/{occupantID}/presence-compactions", occupantHandler.CompactPresence)
			r.Post("/occupants/{occupantID}/chore-compactions", occupantHandler.CompactChoreHistory)

			r.Post("/settings", settingsHandler.Update)

			r.Post("/chores", choreHandler.Create)
			r.Post("/chores/{choreID}", choreHandler.Update)
			r.Delete("/chores/{choreID}", choreHandler.Delete)

			r.Get("/api/tokens", apiHandler.ListTokens)
			r.Post("/api/tokens", apiHandler.CreateToken)
			r.Delete("/api/tokens/{tokenID}", apiHandler.DeleteToken)
		})
	})

	// Read-only surface for the external assignment engine.
	router.Group(func(r chi.Router) {
		r.Use(middleware.APITokenAuth(tokenRepo, occupantRepo))

		r.Get("/api/occupants", occupantHandler.List)
		r.Get("/api/chores", choreHandler.List)
		r.Get("/api/occupants/{occupantID}/presence-day-count", apiHandler.PresenceDayCount)
		r.Get("/api/occupants/{occupantID}/chores/{choreID}/last-performed", apiHandler.LastPerformed)
		r.Get("/api/occupants/{occupantID}/chores/{choreID}/presence-days", apiHandler.PresenceDaysWithChore)
	})

	return &Server{
		router: router,
		config: cfg,
	}
}

func (server *Server) Handler() http.Handler {
	return server.router
}

func (server *Server) Start() error {
	address := ":" + server.config.Port
	slog.Info("starting server", "address", address)
	return http.ListenAndServe(address, server.router)
}
