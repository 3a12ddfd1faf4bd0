package cli

import (
	"context"
	"log/slog"

	"brokemate/internal/assistant/gemini"
	"brokemate/internal/backend"
	"brokemate/internal/config"
	"brokemate/internal/core"
	apphttp "brokemate/internal/http"
	"brokemate/internal/services"
)

const overviewCacheSize = 500

// App wires the services every command works with.
type App struct {
	Clock     core.Clock
	Overviews *apphttp.OverviewCache
	Finance   *services.FinanceService
	Profiles  *services.ProfileService
	Assistant *services.AssistantService
	Recurring *services.RecurringProcessor
}

// NewApp builds the services on top of be. Finance and the recurring
// processor share partition locks. The assistant is nil without a Gemini
// key or when the client cannot be created.
func NewApp(ctx context.Context, logger *slog.Logger, cfg *config.Config, be *backend.BackendResult) *App {
	app := &App{Clock: core.SystemClock{Location: cfg.Location()}}

	var hook services.ChangeHook
	if cfg.OverviewCacheTTL > 0 {
		app.Overviews = apphttp.NewOverviewCache(overviewCacheSize, cfg.OverviewCacheTTL)
		hook = apphttp.OverviewInvalidator(app.Overviews)
	}

	locks := services.NewUserLocks()
	opts := []services.FinanceOption{
		services.WithLocks(locks),
		services.WithClock(app.Clock),
		services.WithMaxPasses(cfg.RecurringMaxPasses),
	}
	if hook != nil {
		opts = append(opts, services.WithChangeHook(hook))
	}
	app.Finance = services.NewFinanceService(be.Store, be.Events(), opts...)
	app.Profiles = services.NewProfileService(be.Store)

	app.Recurring = services.NewRecurringProcessor(be.Store, be.Events(), locks, services.RecurringConfig{
		MaxPasses:   cfg.RecurringMaxPasses,
		Concurrency: cfg.RecurringConcurrency,
	})
	if hook != nil {
		app.Recurring.OnChange(hook)
	}

	if cfg.AssistantEnabled() {
		adapter, err := gemini.New(ctx, gemini.Config{
			APIKey:    cfg.GeminiAPIKey,
			Model:     cfg.GeminiModel,
			FastModel: cfg.GeminiFastModel,
		})
		if err != nil {
			logger.Warn("Assistant disabled, Gemini client failed", "error", err)
		} else {
			app.Assistant = services.NewAssistantService(adapter, app.Finance, cfg.AssistantTimeout)
			logger.Info("Assistant enabled", "model", cfg.GeminiModel, "fast_model", cfg.GeminiFastModel)
		}
	} else {
		logger.Info("Assistant disabled, no GEMINI_API_KEY provided")
	}
	return app
}
