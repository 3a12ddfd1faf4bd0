// Command brokemate-cli inspects and edits stored partitions without the
// HTTP server. It reads the same environment as cmd/brokemate.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path"

	"github.com/google/subcommands"

	"brokemate/internal/cli"
	applog "brokemate/internal/log"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	for _, c := range profileCommands {
		commander.Register(c, "profiles")
	}
	for _, c := range ledgerCommands {
		commander.Register(c, "ledger")
	}
	commander.Register(&recurringCmd{}, "recurring")
	commander.Register(&exportRowsCmd{}, "export")

	flag.Parse()

	// Logs go to stderr so command output stays pipeable.
	cli.LoadEnvFile()
	logger := applog.New(applog.Config{
		Level:     slog.LevelWarn,
		Format:    "text",
		Component: applog.ComponentCLI,
		Output:    os.Stderr,
	})
	applog.SetDefault(logger)
	cfg := cli.LoadAndValidateConfig(logger.Logger)

	env := &environment{cfg: cfg, logger: logger.Logger}
	status := commander.Execute(context.Background(), env)
	env.close()
	os.Exit(int(status))
}
