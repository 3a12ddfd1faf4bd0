package cli

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"brokemate/internal/backend"
	"brokemate/internal/config"
	"brokemate/internal/core"
	"brokemate/internal/store/memory"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		OverviewCacheTTL:     time.Minute,
		RecurringMaxPasses:   10,
		RecurringConcurrency: 2,
		Timezone:             "UTC",
		AssistantTimeout:     time.Second,
	}
}

func TestNewApp_InvalidatesOverviewsOnWrite(t *testing.T) {
	be := &backend.BackendResult{Store: memory.New(nil)}
	app := NewApp(context.Background(), slog.Default(), testConfig(t), be)

	if app.Assistant != nil {
		t.Error("assistant should be disabled without an API key")
	}
	app.Overviews.Store("u1", "2024-03", app.Overviews.Generation("u1"), core.MonthOverview{Month: "2024-03"})
	app.Overviews.Store("u2", "2024-03", app.Overviews.Generation("u2"), core.MonthOverview{Month: "2024-03"})

	if _, err := app.Finance.AddCategory(context.Background(), "u1", "Pets"); err != nil {
		t.Fatal(err)
	}

	if _, ok := app.Overviews.Get("u1", "2024-03"); ok {
		t.Error("u1 overview should be invalidated")
	}
	if _, ok := app.Overviews.Get("u2", "2024-03"); !ok {
		t.Error("u2 overview should survive")
	}
}

func TestNewApp_CacheDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.OverviewCacheTTL = 0
	app := NewApp(context.Background(), slog.Default(), cfg, &backend.BackendResult{Store: memory.New(nil)})
	if app.Overviews != nil {
		t.Error("zero TTL should disable the overview cache")
	}
	if _, err := app.Finance.AddCategory(context.Background(), "u1", "Pets"); err != nil {
		t.Fatal(err)
	}
}

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger("debug", "json")
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level not enabled")
	}
	if slog.Default().Handler() != logger.Handler() {
		t.Error("SetupLogger() did not install the default logger")
	}
}

func TestSheetsOptions(t *testing.T) {
	cfg := &config.Config{
		GoogleSpreadsheetID:      "sheet-id",
		GoogleSheetName:          "Ledger",
		GoogleServiceAccountJSON: "{}",
	}
	opts, err := SheetsOptions(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if opts.UsesOAuth() || opts.CredentialsJSON != "{}" || opts.SpreadsheetID != "sheet-id" {
		t.Errorf("service account options = %+v", opts)
	}

	cfg.GoogleOAuthClientJSON = `{"installed":{}}`
	cfg.GoogleOAuthTokenFile = "token.json"
	opts, err = SheetsOptions(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !opts.UsesOAuth() || opts.OAuthClientJSON != `{"installed":{}}` {
		t.Errorf("oauth options = %+v", opts)
	}
}
