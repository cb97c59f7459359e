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
	"github.com/go-chi/cors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/NoLS-Tanzania/nols-app-sub009/internal/cache"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/config"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/database"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/handler"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/middleware"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/notify"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/repository"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize New Relic (optional)
	var nrApp *newrelic.Application
	if cfg.NewRelicEnabled && cfg.NewRelicLicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelicAppName),
			newrelic.ConfigLicense(cfg.NewRelicLicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigInfoLogger(os.Stdout),
		)
		if err != nil {
			log.Printf("Warning: Failed to initialize New Relic: %v", err)
		} else if err := nrApp.WaitForConnection(10 * time.Second); err != nil {
			log.Printf("Warning: New Relic connection timeout: %v", err)
		} else {
			log.Println("New Relic connected")
		}
	}

	// Initialize PostgreSQL
	db, err := database.NewPostgres(
		cfg.DatabaseURL,
		cfg.DBMaxConnections,
		cfg.DBMaxIdleConnections,
	)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis
	redis, err := database.NewRedis(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()
	log.Println("Connected to Redis")

	// Initialize cache and notifier
	locationCache := cache.NewDriverLocationCache(redis.Client)
	notifier := notify.NewRedisNotifier(redis.Client)

	// Initialize repositories
	driverRepo := repository.NewDriverRepository(db.DB)
	tripRepo := repository.NewTripRepository(db.DB)
	claimRepo := repository.NewClaimRepository(db.DB)
	auditRepo := repository.NewAuditRepository(db.DB)
	assignmentStore := repository.NewAssignmentStore(db.DB)

	// Initialize services
	finder := service.NewCandidateFinder(driverRepo, locationCache)
	matchingService := service.NewMatchingService(finder, cfg.Matching)
	driverService := service.NewDriverService(driverRepo, locationCache)
	scheduleService := service.NewScheduleService(tripRepo, claimRepo, auditRepo)
	assignmentService := service.NewAssignmentService(assignmentStore, notifier)

	// Initialize handlers
	matchingHandler := handler.NewMatchingHandler(matchingService)
	driverHandler := handler.NewDriverHandler(driverService, scheduleService, assignmentService)
	adminHandler := handler.NewAdminTripHandler(scheduleService, assignmentService)

	// Auth is delegated to the identity collaborator; we only verify its tokens
	auth := middleware.NewAuthenticator(cfg.JWTSecret)

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// New Relic middleware
	if nrApp != nil {
		r.Use(middleware.NewRelicMiddleware(nrApp))
	}

	// Idempotency middleware
	idempotencyMw := middleware.NewIdempotencyMiddleware(redis.Client)
	r.Use(idempotencyMw.Handler)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := db.Health(ctx); err != nil {
			http.Error(w, "database unhealthy", http.StatusServiceUnavailable)
			return
		}
		if err := redis.Health(ctx); err != nil {
			http.Error(w, "redis unhealthy", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","services":{"database":"up","redis":"up"}}`))
	})

	// Driver-facing routes
	r.Route("/driver", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(middleware.RoleDriver, middleware.RoleAdmin))
			matchingHandler.RegisterRoutes(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(middleware.RoleDriver))
			driverHandler.RegisterRoutes(r)
		})
	})

	// Admin dispatch routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireRole(middleware.RoleAdmin))
		adminHandler.RegisterRoutes(r)
	})

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	log.Printf("Dispatch server starting on port %s", cfg.Port)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped gracefully")
}
