package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"brokemate/internal/cache"
	"brokemate/internal/cli"
	apphttp "brokemate/internal/http"
	applog "brokemate/internal/log"
	"brokemate/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, logger := cli.Bootstrap()
	logger.Info("Starting brokemate server", "port", cfg.Port, "backend", cfg.DataBackend)

	be := cli.InitBackend(context.Background(), logger, cfg)
	app := cli.NewApp(context.Background(), logger, cfg, be)

	cacheManager := cache.NewManager()
	if app.Overviews != nil {
		cacheManager.Register(app.Overviews)
		cacheManager.StartCleanup(10 * time.Minute)
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		OverviewCache:      app.Overviews,
		Logger:             applog.New(applog.Config{Handler: logger.Handler(), Component: applog.ComponentHTTP}),
	}, apphttp.Services{
		Finance:   app.Finance,
		Profiles:  app.Profiles,
		Assistant: app.Assistant,
		Recurring: app.Recurring,
	})

	scheduler := services.NewScheduler(app.Recurring, app.Clock, services.SchedulerConfig{
		Interval:   cfg.RecurringInterval,
		RunOnStart: true,
	})

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := scheduler.Stop(ctx); err != nil {
			logger.Error("Scheduler stop error", "error", err)
		}
		cacheManager.Stop()
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return scheduler.Start(gctx)
	})
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
