package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

var profileCommands = []subcommands.Command{
	&profilesCmd{},
	&registerCmd{},
}

type profilesCmd struct{}

func (*profilesCmd) Name() string     { return "profiles" }
func (*profilesCmd) Synopsis() string { return "list registered profiles" }
func (*profilesCmd) Usage() string {
	return `brokemate-cli profiles

  Prints every profile id and name. PIN hashes are never shown.
`
}
func (*profilesCmd) SetFlags(*flag.FlagSet) {}

func (*profilesCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	env := envFrom(args)
	profiles, err := env.App(ctx).Profiles.List(ctx)
	if err != nil {
		return fail("list profiles: %v", err)
	}
	w := table(os.Stdout)
	fmt.Fprintln(w, "ID\tUSERNAME\tPIN\tCREATED")
	for _, p := range profiles {
		pin := "no"
		if p.HasPIN() {
			pin = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Username, pin, p.CreatedAt.Format("2006-01-02"))
	}
	w.Flush()
	return subcommands.ExitSuccess
}

type registerCmd struct {
	name string
	pin  string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create a profile" }
func (*registerCmd) Usage() string {
	return `brokemate-cli register -name <username> [-pin <pin>]
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Profile name, unique regardless of case.")
	f.StringVar(&c.pin, "pin", "", "Optional PIN.")
}

func (c *registerCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	env := envFrom(args)
	p, err := env.App(ctx).Profiles.Register(ctx, c.name, c.pin, c.pin)
	if err != nil {
		return fail("register: %v", err)
	}
	fmt.Println(p.ID)
	return subcommands.ExitSuccess
}
