package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diagnosis/wedding-portal/pkg/config"
	"github.com/diagnosis/wedding-portal/pkg/events"
	"github.com/diagnosis/wedding-portal/pkg/logger"
	mw "github.com/diagnosis/wedding-portal/pkg/middleware"
	"github.com/diagnosis/wedding-portal/services/notify/internal/activity"
	"github.com/go-chi/chi/v5"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Log)

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL, "notify")
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	log := logger.Default().With("service", "notify")
	if err := eventBus.QueueSubscribe(events.AllPortalEvents, cfg.NATS.Queue, activity.Handler(log)); err != nil {
		logger.Error("Failed to subscribe", "subject", events.AllPortalEvents, "error", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("notify"))
	r.Use(mw.Logging)
	r.Use(mw.Health)

	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     r,
		ReadTimeout: cfg.Server.ReadTimeout,
		IdleTimeout: cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down notify service...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Notify service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting notify service", "port", cfg.Server.Port, "subject", events.AllPortalEvents, "queue", cfg.NATS.Queue)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Notify service error", "error", err)
		os.Exit(1)
	}
}
