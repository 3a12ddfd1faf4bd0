package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"brokemate/internal/backend"
	"brokemate/internal/cli"
	"brokemate/internal/config"
)

// environment is handed to every command. The backend is opened on first use
// so help and flags never touch storage.
type environment struct {
	cfg    *config.Config
	logger *slog.Logger
	be     *backend.BackendResult
	app    *cli.App
}

func (e *environment) App(ctx context.Context) *cli.App {
	if e.app == nil {
		e.be = cli.InitBackend(ctx, e.logger, e.cfg)
		e.app = cli.NewApp(ctx, e.logger, e.cfg, e.be)
	}
	return e.app
}

func (e *environment) close() {
	if e.be == nil {
		return
	}
	if err := e.be.Cleanup(); err != nil {
		e.logger.Error("Backend cleanup error", "error", err)
	}
}

func envFrom(args []interface{}) *environment {
	if len(args) == 0 {
		return nil
	}
	env, _ := args[0].(*environment)
	return env
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return subcommands.ExitFailure
}

func requireUser(user string) error {
	if user == "" {
		return fmt.Errorf("-u <user id> is required")
	}
	return nil
}
