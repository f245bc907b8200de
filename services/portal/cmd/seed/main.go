package main

import (
	"context"
	"os"

	"github.com/diagnosis/wedding-portal/pkg/config"
	"github.com/diagnosis/wedding-portal/pkg/database"
	"github.com/diagnosis/wedding-portal/pkg/logger"
	"github.com/diagnosis/wedding-portal/services/portal/internal/seed"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Log)

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Error("Failed to apply schema", "error", err)
		os.Exit(1)
	}

	summary, err := seed.New(pool).Run(ctx)
	if err != nil {
		logger.Error("Seed failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Seed complete", "guests", summary.Guests, "checklist_items", summary.ChecklistItems, "timeline_events", summary.TimelineEvents)
}
