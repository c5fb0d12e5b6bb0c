package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mediapeek/twitchpeek/internal/api"
	"github.com/mediapeek/twitchpeek/internal/api/handler"
	"github.com/mediapeek/twitchpeek/internal/config"
	"github.com/mediapeek/twitchpeek/internal/poster"
	"github.com/mediapeek/twitchpeek/internal/prober"
	"github.com/mediapeek/twitchpeek/internal/repository"
	"github.com/mediapeek/twitchpeek/internal/service"
	"github.com/mediapeek/twitchpeek/internal/worker"
	"github.com/mediapeek/twitchpeek/pkg/twitch"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("twitchpeek %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting twitchpeek",
		"version", Version,
		"build_time", BuildTime,
	)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Ensure the store directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
		logger.Error("failed to create store directory", "error", err)
		os.Exit(1)
	}

	// Initialize dependencies
	store, err := repository.NewSQLiteMediaStore(cfg.Store.Path)
	if err != nil {
		logger.Error("failed to open media store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	httpProber := prober.NewHTTPProber(cfg.Poster)
	httpProber.SetLogger(logger)
	posterSvc := poster.NewService(cfg.Poster, httpProber, logger)

	// Helix enrichment is optional; without credentials the service
	// serves identity, embed URLs, and channel posters only.
	var enricher service.Enricher
	if cfg.Twitch.HelixEnabled() {
		e, err := twitch.NewEnricher(cfg.Twitch, logger)
		if err != nil {
			logger.Error("failed to create helix client", "error", err)
			os.Exit(1)
		}
		enricher = e
	} else {
		logger.Info("helix credentials not configured, metadata enrichment disabled")
	}

	resolveSvc := service.NewResolveService(
		enricher,
		posterSvc,
		store,
		cfg.Twitch.ParentDomain,
		logger,
	)

	// Initialize handlers
	resolveHandler := handler.NewResolveHandler(resolveSvc, logger)
	healthHandler := handler.NewHealthHandler(store)

	// Setup router
	router := api.NewRouter(resolveHandler, healthHandler, cfg.Server.APIKey)

	// Initialize warmup pool
	pool := worker.NewPool(
		worker.Config{
			Workers:  cfg.Warmup.Workers,
			Interval: cfg.Warmup.Interval,
			Channels: cfg.Warmup.Channels,
		},
		resolveSvc,
		logger,
	)

	// Start warmup pool
	pool.Start()

	// Setup HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop accepting new requests
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Stop warmup workers (allow in-flight probes to complete)
	if err := pool.Stop(10 * time.Second); err != nil {
		logger.Error("warmup pool shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
