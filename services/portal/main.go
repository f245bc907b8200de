package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diagnosis/wedding-portal/pkg/cache"
	"github.com/diagnosis/wedding-portal/pkg/config"
	"github.com/diagnosis/wedding-portal/pkg/database"
	"github.com/diagnosis/wedding-portal/pkg/events"
	"github.com/diagnosis/wedding-portal/pkg/logger"
	mw "github.com/diagnosis/wedding-portal/pkg/middleware"
	"github.com/diagnosis/wedding-portal/services/portal/internal/handlers"
	"github.com/diagnosis/wedding-portal/services/portal/internal/repository"
	"github.com/diagnosis/wedding-portal/services/portal/internal/service"
	"github.com/diagnosis/wedding-portal/services/portal/internal/session"
	"github.com/diagnosis/wedding-portal/services/portal/internal/storage"
	"github.com/go-chi/chi/v5"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Log)

	// Connect to database
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			logger.Error("Failed to apply schema", "error", err)
			os.Exit(1)
		}
	}

	// Connect to event bus
	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL, "portal")
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	avatars, err := storage.NewDiskBucket(cfg.Storage)
	if err != nil {
		logger.Error("Failed to prepare avatar storage", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	guestRepo := repository.NewGuestRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	answerRepo := repository.NewAnswerRepository(pool)
	checklistRepo := repository.NewChecklistRepository(pool)
	stateRepo := repository.NewChecklistStateRepository(pool)
	timelineRepo := repository.NewTimelineRepository(pool)

	// Initialize services
	authService := service.NewAuthService(guestRepo, eventBus, cfg)
	guestService := service.NewGuestService(guestRepo, profileRepo, questionRepo, answerRepo, checklistRepo, stateRepo, avatars, eventBus, cfg)
	checklistService := service.NewChecklistService(checklistRepo, stateRepo, eventBus, cfg)
	timelineService := service.NewTimelineService(timelineRepo, eventBus, cfg)

	// Initialize handlers
	h := handlers.New(authService, guestService, checklistService, timelineService, session.NewCodec(cfg.Auth), cfg)

	// Redis is optional: without it logins are not throttled and POSTs are not replayed
	redisClient, err := cache.Connect(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, running without rate limiting and idempotency", "error", err)
	} else {
		defer redisClient.Close()
		h.UseRateLimiter(cache.NewRateLimiter(redisClient, "portal"))
		h.UseIdempotency(cache.NewIdempotencyStore(redisClient))
	}

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("portal"))
	r.Use(mw.Logging)
	r.Use(mw.Recoverer)
	r.Use(mw.CORS(cfg.CORS))
	r.Use(mw.Health)

	r.Handle("/avatars/*", http.StripPrefix("/avatars/", http.FileServer(http.Dir(avatars.Dir()))))
	h.Mount(r)

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down portal service...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Portal service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting portal service", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Portal service error", "error", err)
		os.Exit(1)
	}
}
