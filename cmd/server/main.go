package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cesargomez89/gtstats/internal/config"
	"github.com/cesargomez89/gtstats/internal/constants"
	"github.com/cesargomez89/gtstats/internal/granturismo"
	httpapp "github.com/cesargomez89/gtstats/internal/http"
	"github.com/cesargomez89/gtstats/internal/httpclient"
	"github.com/cesargomez89/gtstats/internal/logger"
	"github.com/cesargomez89/gtstats/internal/metrics"
	"github.com/cesargomez89/gtstats/internal/pipeline"
	"github.com/cesargomez89/gtstats/internal/scheduler"
	"github.com/cesargomez89/gtstats/internal/storage"
	"github.com/cesargomez89/gtstats/internal/store"
)

// Derived output files served by the read routes, one route per file.
var outputFiles = map[string]string{
	"cars":          constants.FileCars,
	"categories":    constants.FileCategories,
	"courses":       constants.FileCourses,
	"courseranking": constants.FileCourseRanking,
	"profiles":      constants.FileProfiles,
	"dailyraces":    constants.FileDailyRaces,
}

func main() {
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// Initialize run-history DB
	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize file store and static roster; a missing roster aborts startup
	fileStore := storage.New(cfg.DataDir)
	roster, err := fileStore.LoadRoster()
	if err != nil {
		appLogger.Error("Failed to load user roster", "error", err)
		os.Exit(1)
	}
	appLogger.Info("roster loaded", "users", len(roster))

	// Initialize metrics
	registry := prometheus.NewRegistry()
	appMetrics := metrics.New(registry)

	// Initialize remote client and pipeline
	rateLimited := httpclient.NewClient(&http.Client{Timeout: cfg.HTTPTimeout}, cfg.FetchDelay)
	gtClient := granturismo.NewClient(cfg.BaseURL, cfg.APIBaseURL, rateLimited)
	p := pipeline.New(gtClient, fileStore, roster, appLogger, appMetrics)

	// Initialize scheduler
	sched := scheduler.New(appLogger, appMetrics, db, cfg.Development())
	sched.Register(scheduler.Definitions(p)...)
	sched.Start()

	// Watch the derived output files for the read routes
	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()

	snapshots := make(map[string]*storage.Snapshot, len(outputFiles))
	for name, file := range outputFiles {
		snap, err := fileStore.Watch(watchCtx, file, appLogger)
		if err != nil {
			appLogger.Error("Failed to watch output file", "file", file, "error", err)
			os.Exit(1)
		}
		snapshots[name] = snap
	}

	// Initialize Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(httpapp.CORSMiddleware(cfg.CORSOrigin))

	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	h := httpapp.NewHandler(sched, db, snapshots, metricsHandler, appLogger)
	h.RegisterRoutes(r)

	// Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		appLogger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Let any in-flight job run finish; triggers are already deactivated.
	<-sched.Stop().Done()

	appLogger.Info("server exiting")
}
