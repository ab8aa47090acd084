package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/thezig/be-sow-service/internal/client"
	"github.com/thezig/be-sow-service/internal/config"
	"github.com/thezig/be-sow-service/internal/database"
	"github.com/thezig/be-sow-service/internal/handler"
	"github.com/thezig/be-sow-service/internal/logger"
	"github.com/thezig/be-sow-service/internal/middleware"
	"github.com/thezig/be-sow-service/internal/repository"
	"github.com/thezig/be-sow-service/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: cfg.Service.Name,
		Version:     cfg.Service.Version,
		Environment: cfg.Service.Environment,
	})

	log.Info().
		Str("service", cfg.Service.Name).
		Str("version", cfg.Service.Version).
		Str("environment", cfg.Service.Environment).
		Msg("Starting SOW Service")

	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	if cfg.Database.Migrate {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
		log.Info().Msg("Database migrations applied")
	}

	// Initialize team-directory cache (optional)
	var cache *redis.Client
	if cfg.Redis.Addr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := cache.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("Redis unreachable; continuing without team cache")
			cache = nil
		} else {
			defer cache.Close()
			log.Info().Str("addr", cfg.Redis.Addr).Msg("Team cache connected")
		}
	}

	// Initialize event publisher (optional, disabled on empty URL)
	publisher, err := client.NewEventPublisher(cfg.Broker.URL, cfg.Broker.Exchange, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to event broker")
	}
	defer publisher.Close()

	// Initialize repositories
	documentRepo := repository.NewDocumentRepository(db)
	stepsRepo := repository.NewApprovalStepsRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	teamRepo := repository.NewTeamRepository(db, cache, cfg.Redis.CacheTTL, log)
	projectRepo := repository.NewProjectRepository(db)

	// Initialize services
	documentService := service.NewDocumentService(documentRepo, stepsRepo, historyRepo, teamRepo, publisher, log)
	staffingService := service.NewStaffingService(documentRepo, teamRepo, projectRepo, nil, nil, cfg.Staffing.SessionTTL, publisher, log)

	// Setup HTTP routes
	httpHandler := handler.NewHTTPHandler(documentService, staffingService, log)
	mux := http.NewServeMux()

	// Health check and metrics
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Pool.Ping(r.Context()); err != nil {
			http.Error(w, `{"status":"unhealthy"}`, http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Document routes
	mux.HandleFunc("/api/v1/sows", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			httpHandler.ListDocuments(w, r)
		case http.MethodPost:
			httpHandler.CreateDocument(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/v1/sows/get", httpHandler.GetDocument)
	mux.HandleFunc("/api/v1/sows/submit", httpHandler.SubmitDocument)
	mux.HandleFunc("/api/v1/sows/approve", httpHandler.ApproveDocument)
	mux.HandleFunc("/api/v1/sows/reject", httpHandler.RejectDocument)
	mux.HandleFunc("/api/v1/sows/status", httpHandler.OverrideStatus)
	mux.HandleFunc("/api/v1/sows/history", httpHandler.DocumentHistory)
	mux.HandleFunc("/api/v1/activity", httpHandler.RecentActivity)

	// Approval step configuration
	mux.HandleFunc("/api/v1/approval-steps", httpHandler.ApprovalSteps)

	// Staffing routes
	mux.HandleFunc("/api/v1/staffing/requirements", httpHandler.RoleRequirements)
	mux.HandleFunc("/api/v1/team", httpHandler.ListTeam)
	mux.HandleFunc("/api/v1/team/eligible", httpHandler.EligibleMembers)
	mux.HandleFunc("/api/v1/assignments/open", httpHandler.OpenAssignmentSession)
	mux.HandleFunc("/api/v1/assignments/set", httpHandler.SetAssignment)
	mux.HandleFunc("/api/v1/assignments/validate", httpHandler.ValidateAssignments)
	mux.HandleFunc("/api/v1/assignments/cancel", httpHandler.CancelAssignmentSession)
	mux.HandleFunc("/api/v1/assignments/confirm", httpHandler.ConfirmProject)

	// Project routes
	mux.HandleFunc("/api/v1/projects", httpHandler.ListProjects)
	mux.HandleFunc("/api/v1/projects/get", httpHandler.GetProject)

	// Apply middleware
	var h http.Handler = mux
	h = middleware.RequestID(h)
	h = middleware.Logger(&log)(h)
	h = middleware.Recovery(&log)(h)
	h = middleware.CORS([]string{"*"})(h)
	h = middleware.Timeout(cfg.Server.RequestTimeout)(h)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	log.Info().Msg("Server stopped")
}
