package main

import (
	"context"
	"time"

	"brokemate/internal/cli"
	"brokemate/internal/services"
)

// recurring-worker runs the subscription scheduler against the shared
// SQLite store without serving the HTTP API.
func main() {
	cfg, logger := cli.Bootstrap()
	logger.Info("Starting recurring-worker",
		"interval", cfg.RecurringInterval,
		"backend", cfg.DataBackend,
		"concurrency", cfg.RecurringConcurrency)

	be := cli.InitBackend(context.Background(), logger, cfg)
	app := cli.NewApp(context.Background(), logger, cfg, be)

	scheduler := services.NewScheduler(app.Recurring, app.Clock, services.SchedulerConfig{
		Interval:   cfg.RecurringInterval,
		RunOnStart: true,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := scheduler.Stop(ctx); err != nil {
			logger.Error("Scheduler stop error", "error", err)
		}
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	if err := scheduler.Start(ctx); err != nil {
		logger.Error("Failed to start scheduler", "error", err)
		return
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Recurring-worker shutdown complete")
}
