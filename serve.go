package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"Vidshelf/config"
	"Vidshelf/handlers"
	"Vidshelf/server"
	"Vidshelf/services"
)

const shutdownTimeout = 10 * time.Second

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func runServe(parent context.Context, cfg *config.Config) error {
	ctx, stop := signalContext(parent)
	defer stop()

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	if n, err := a.history.MarkInterrupted(ctx); err != nil {
		slog.Warn("Failed to mark interrupted scans", "error", err)
	} else if n > 0 {
		slog.Info("Marked interrupted scans as failed", "count", n)
	}
	if _, err := a.locations.EnsureLinks(ctx); err != nil {
		slog.Warn("Failed to restore media links", "error", err)
	}
	if err := services.RefreshCatalogMetrics(ctx, a.catalog); err != nil {
		slog.Warn("Failed to load catalog metrics", "error", err)
	}

	sessions, err := services.NewSessionStore(cfg)
	if err != nil {
		return err
	}
	if cfg.IsProduction() && cfg.SessionSecret == config.DefaultSessionSecret {
		slog.Warn("SESSION_SECRET is not set, flash cookies use the default key")
	}

	h, err := handlers.New(handlers.Services{
		Catalog:   a.catalog,
		Locations: a.locations,
		Worker:    a.worker,
		History:   a.history,
		Sessions:  sessions,
	})
	if err != nil {
		return err
	}

	srvCfg := server.DefaultConfig(":" + cfg.ServerPort)
	srvCfg.MaxConnections = cfg.MaxConnections
	srv := server.CreateServer(srvCfg, server.NewRouter(h, cfg.MediaDir))

	ln, err := server.Listen(srvCfg)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", srvCfg.Addr, err)
	}

	if cfg.ScanOnStart {
		a.worker.Trigger()
	}
	a.worker.Schedule(cfg.ScanInterval)

	if cfg.WatchLocations {
		watcher, err := startWatcher(ctx, a)
		if err != nil {
			slog.Error("Failed to start location watcher", "error", err)
		} else {
			defer watcher.Close()
		}
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Vidshelf is starting",
			"addr", srvCfg.Addr,
			"environment", cfg.Environment,
			"debug", cfg.Debug,
			"media_dir", cfg.MediaDir)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		slog.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Failed to shut down HTTP server", "error", err)
	}
	if err := a.worker.Shutdown(shutdownCtx); err != nil {
		slog.Error("Scan worker did not stop in time", "error", err)
	}
	return nil
}

// startWatcher watches every source known at startup.
func startWatcher(ctx context.Context, a *app) (*services.Watcher, error) {
	watcher, err := services.NewWatcher(func() { a.worker.Trigger() }, a.cfg.WatchDebounce)
	if err != nil {
		return nil, err
	}

	locations, err := a.locations.List(ctx)
	if err != nil {
		_ = watcher.Close()
		return nil, err
	}
	for _, loc := range locations {
		if err := watcher.Add(loc.Path); err != nil {
			slog.Warn("Failed to watch media source", "location_id", loc.ID, "path", loc.Path, "error", err)
		}
	}

	watcher.Start(ctx)
	slog.Info("Watching media sources for changes", "count", len(locations), "debounce", a.cfg.WatchDebounce)
	return watcher, nil
}
