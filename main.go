package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/LionelROLLAND/colocatron/internal/config"
	"github.com/LionelROLLAND/colocatron/internal/database"
	"github.com/LionelROLLAND/colocatron/internal/repository"
	"github.com/LionelROLLAND/colocatron/internal/server"
	"github.com/LionelROLLAND/colocatron/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg.LogLevel)

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		slog.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	occupantRepo := repository.NewOccupantRepository(db)
	choreRepo := repository.NewChoreRepository(db)
	stateRepo := repository.NewScheduleStateRepository(db)
	sourceRepo := repository.NewAbsenceSourceRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	ctx := context.Background()

	// Seed the household timezone from the environment on first start; the
	// admin settings endpoint owns it afterwards.
	if _, err := settingsRepo.Get(ctx, repository.SettingTimezone); err != nil {
		if err := settingsRepo.Set(ctx, repository.SettingTimezone, cfg.HouseholdTZ); err != nil {
			slog.Error("seeding household timezone", "error", err)
			os.Exit(1)
		}
	}
	authService, err := services.NewAuthService(ctx, cfg, occupantRepo)
	if err != nil {
		slog.Error("creating auth service", "error", err)
		os.Exit(1)
	}

	scheduleService := services.NewScheduleService(occupantRepo, choreRepo, stateRepo)
	importer := services.NewAbsenceImporter(sourceRepo, settingsRepo, scheduleService)

	go runAbsenceImporter(importer)

	srv := server.New(db, cfg, authService, importer)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

func runAbsenceImporter(importer *services.AbsenceImporter) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		ctx := context.Background()
		if err := importer.ImportAll(ctx); err != nil {
			slog.Error("importing absences", "error", err)
		}
		<-ticker.C
	}
}
