package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tonica-app/tonica/internal/api"
	"github.com/tonica-app/tonica/internal/catalog"
	"github.com/tonica-app/tonica/internal/config"
	"github.com/tonica-app/tonica/internal/db"
	"github.com/tonica-app/tonica/internal/logger"
	"github.com/tonica-app/tonica/internal/notify"
	"github.com/tonica-app/tonica/internal/repository/sqlite"
	"github.com/tonica-app/tonica/internal/services"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Tonica Progress Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("catalog_source=%s", cfg.CatalogSource)
	log.Debug("cors_allowed_origins=%v", cfg.CORSAllowedOrigins)
	log.Debug("event_worker_count=%d", cfg.EventWorkerCount)
	log.Debug("event_queue_size=%d", cfg.EventQueueSize)
	log.Debug("recent_attempts_limit=%d", cfg.RecentAttemptsLimit)
	log.Debug("shutdown_timeout_secs=%d", cfg.ShutdownTimeoutSecs)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Load the content catalog before serving traffic
	catalogService := services.NewCatalogService(catalog.SourceFor(cfg.CatalogSource))
	log.Debug("loading catalog from %s source", catalogService.Describe())
	if err := catalogService.Reload(context.Background()); err != nil {
		log.Error("failed to load catalog: %v", err)
		os.Exit(1)
	}

	// Initialize event delivery
	broadcaster := notify.NewBroadcaster()
	hub := notify.NewHub(cfg.EventWorkerCount, cfg.EventQueueSize)
	broadcaster.Subscribe(hub)

	// Initialize services
	progressRepo := sqlite.NewProgressRepository(database.DB)
	progressService := services.NewProgressService(progressRepo, catalogService, broadcaster, cfg.RecentAttemptsLimit)

	srv := &api.Server{
		DB:                 database,
		Progress:           progressService,
		Catalog:            catalogService,
		Hub:                hub,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}

	ctx, cancel := context.WithCancel(context.Background())
	hub.Start(ctx)

	// Configure HTTP server. No WriteTimeout: the event stream endpoint
	// writes for the connection's lifetime. Request contexts derive from
	// ctx so open streams end when shutdown cancels it.
	httpServer := &http.Server{
		Addr:        cfg.Addr,
		Handler:     srv.Routes(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSecs)*time.Second)
	defer shutdownCancel()

	// Cancel the base context so event streams drain
	log.Debug("closing event streams")
	cancel()

	// Shutdown HTTP server
	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping event hub")
	hub.Stop()

	log.Info("===========================================")
	log.Info("Tonica Progress Server Stopped")
	log.Info("===========================================")
}
