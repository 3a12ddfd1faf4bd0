package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"brokemate/internal/core"
)

type recurringCmd struct {
	user  string
	today string
}

func (*recurringCmd) Name() string     { return "recurring" }
func (*recurringCmd) Synopsis() string { return "materialize due subscription payments" }
func (*recurringCmd) Usage() string {
	return `brokemate-cli recurring [-u <user>] [-today <date>]

  Runs one catch-up for a single partition, or for every stored partition
  when -u is omitted, and prints the number of transactions added.
`
}

func (c *recurringCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "u", "", "Only this user id.")
	f.StringVar(&c.today, "today", "", "Evaluate as of this date (YYYY-MM-DD), defaults to today.")
}

func (c *recurringCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	env := envFrom(args)
	app := env.App(ctx)

	today := app.Clock.Today()
	if c.today != "" {
		var err error
		if today, err = core.ParseDate(c.today); err != nil {
			return fail("-today: %v", err)
		}
	}

	var (
		added int
		err   error
	)
	if c.user != "" {
		added, err = app.Recurring.ProcessUser(ctx, c.user, today)
	} else {
		added, err = app.Recurring.ProcessAll(ctx, today)
	}
	if err != nil {
		return fail("recurring: %v", err)
	}
	fmt.Printf("%d transaction(s) added as of %s\n", added, today)
	return subcommands.ExitSuccess
}
