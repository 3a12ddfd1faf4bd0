package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"brokemate/internal/cli"
	"brokemate/internal/core"
	gsheet "brokemate/internal/sheets/google"
)

type exportRowsCmd struct {
	year int
	user string
}

func (*exportRowsCmd) Name() string     { return "export-rows" }
func (*exportRowsCmd) Synopsis() string { return "print the rows mirrored to the spreadsheet" }
func (*exportRowsCmd) Usage() string {
	return `brokemate-cli export-rows [-year <yyyy>] [-u <user>]

  Reads the yearly ledger sheet written by the export worker. Needs the
  GOOGLE_* settings.
`
}

func (c *exportRowsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", time.Now().Year(), "Sheet year.")
	f.StringVar(&c.user, "u", "", "Only rows of this user id.")
}

func (c *exportRowsCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	env := envFrom(args)
	cfg := env.cfg

	opts, err := cli.SheetsOptions(cfg)
	if err != nil {
		return fail("sheets settings: %v", err)
	}
	client, err := gsheet.New(ctx, opts)
	if err != nil {
		return fail("sheets client: %v", err)
	}
	rows, err := client.Rows(ctx, c.year)
	if err != nil {
		return fail("read rows: %v", err)
	}
	w := table(os.Stdout)
	fmt.Fprintln(w, "DATE\tTYPE\tAMOUNT\tCATEGORY\tMERCHANT\tUSER\tREF")
	for _, r := range rows {
		if c.user != "" && r.User != c.user {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Date, r.Type, core.FormatAmount(r.Amount, cfg.Currency), r.Category, r.Merchant, r.User, r.Ref)
	}
	w.Flush()
	return subcommands.ExitSuccess
}
