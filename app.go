package main

import (
	"context"
	"fmt"
	"log/slog"

	"Vidshelf/config"
	"Vidshelf/database"
	"Vidshelf/services"
)

// app holds the long-lived services shared by every command.
type app struct {
	cfg       *config.Config
	db        *database.DB
	catalog   *services.Catalog
	locations *services.Locations
	history   *services.ScanHistory
	worker    *services.ScanWorker
}

func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.RunMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	catalog := services.NewCatalog(db)
	history := services.NewScanHistory(db)
	scanner := services.NewScanner(db, services.FileTagReader{})

	return &app{
		cfg:       cfg,
		db:        db,
		catalog:   catalog,
		locations: services.NewLocations(db, cfg.MediaDir),
		history:   history,
		worker:    services.NewScanWorker(scanner, history, catalog),
	}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}
}
