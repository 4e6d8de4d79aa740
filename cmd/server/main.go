package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/studiomap/crewdeck/internal/api"
	"github.com/studiomap/crewdeck/internal/auth"
	"github.com/studiomap/crewdeck/internal/config"
	"github.com/studiomap/crewdeck/internal/directory"
	"github.com/studiomap/crewdeck/internal/history"
	"github.com/studiomap/crewdeck/internal/metrics"
	"github.com/studiomap/crewdeck/internal/scheduler"
	"github.com/studiomap/crewdeck/internal/sheets"
	"github.com/studiomap/crewdeck/internal/storage"
	"github.com/studiomap/crewdeck/internal/tracker"
	"github.com/studiomap/crewdeck/pkg/middleware"
)

// syncAdapter narrows the directory service to the scheduler's Syncer
// interface, dropping the apply result it does not need.
type syncAdapter struct {
	service *directory.Service
}

func (a *syncAdapter) Sync(ctx context.Context) error {
	_, err := a.service.Sync(ctx)
	return err
}

// refreshAdapter rebuilds the work-history index eagerly so the first
// request after a sync does not pay the rebuild latency.
type refreshAdapter struct {
	service *history.Service
}

func (a *refreshAdapter) Refresh(ctx context.Context) error {
	a.service.Invalidate()
	_, err := a.service.Index(ctx)
	return err
}

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("log_level", cfg.LogLevel).
		Msg("starting crewdeck server")

	// Create context for background services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create audit store (dynamodb local/aws or noop)
	store, err := storage.NewStore(ctx, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize audit store")
	}

	// Create project tracker client
	trackerClient := tracker.NewClient(cfg.TrackerBaseURL, cfg.TrackerToken, log.Logger)

	// Create spreadsheet store
	sheetStore := sheets.NewClient(cfg.SheetBaseURL, cfg.SheetID, cfg.SheetToken, log.Logger)

	// Create work-history aggregation service
	historyService := history.NewService(trackerClient, history.Limits{
		PageSize:       cfg.PageSize,
		EngagementsMax: cfg.EngagementsMax,
		WorkItemsMax:   cfg.WorkItemsMax,
		AssignmentsMax: cfg.AssignmentsMax,
	}, store, cfg.HistoryTTL, nil, log.Logger)

	// Create directory service (cached sheet reads + roster sync)
	directoryService := directory.NewService(trackerClient, sheetStore, store, directory.Options{
		RosterTab: cfg.RosterTab,
		TeamTab:   cfg.TeamTab,
		RosterTTL: cfg.RosterTTL,
		TeamTTL:   cfg.TeamTTL,
	}, log.Logger)

	// Start the background sync scheduler when configured
	if cfg.SyncInterval > 0 {
		sched := scheduler.NewScheduler(
			&syncAdapter{service: directoryService},
			&refreshAdapter{service: historyService},
			cfg.SyncInterval,
			log.Logger,
		)
		go sched.Start(ctx)
	} else {
		log.Info().Msg("background sync disabled (SYNC_INTERVAL_SECONDS=0)")
	}

	// Create handlers
	historyHandler := api.NewHistoryHandler(historyService, log.Logger)
	rosterHandler := api.NewRosterHandler(directoryService, log.Logger)
	adminHandler := api.NewAdminHandler(historyService, directoryService, store, log.Logger)

	// Create router
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Register public routes (no auth required)
	r.Get("/health", healthHandler)
	r.Get("/metrics", metrics.Get().Handler())

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Route("/api", func(r chi.Router) {
			r.Get("/people", historyHandler.ListPeople)
			r.Get("/people/{name}/history", historyHandler.GetHistory)
			r.Get("/roster", rosterHandler.GetRoster)
			r.Get("/team", rosterHandler.GetTeam)
			r.Post("/roster/sync", rosterHandler.SyncRoster)
			r.Get("/syncs", adminHandler.GetSyncRuns)
			r.Get("/aggregations", adminHandler.GetAggregationRuns)

			r.Route("/admin", func(r chi.Router) {
				r.Use(api.RequireAdmin)
				r.Post("/cache/flush", adminHandler.FlushCaches)
				r.Post("/audit/truncate", adminHandler.TruncateAudit)
			})
		})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Stop the scheduler
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"crewdeck"}`)
}
