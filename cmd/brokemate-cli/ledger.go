package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"brokemate/internal/core"
)

var ledgerCommands = []subcommands.Command{
	&txCmd{},
	&addTxCmd{},
	&overviewCmd{},
	&budgetsCmd{},
	&setBudgetCmd{},
}

type txCmd struct {
	user     string
	from     string
	to       string
	category string
	typ      string
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list ledger entries, newest first" }
func (*txCmd) Usage() string {
	return `brokemate-cli tx -u <user> [-from <date>] [-to <date>] [-c <category>] [-type income|expense]
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "u", "", "User id owning the partition.")
	f.StringVar(&c.from, "from", "", "Inclusive start date (YYYY-MM-DD).")
	f.StringVar(&c.to, "to", "", "Inclusive end date (YYYY-MM-DD).")
	f.StringVar(&c.category, "c", "", "Only this category.")
	f.StringVar(&c.typ, "type", "", "Only income or expense.")
}

func (c *txCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if err := requireUser(c.user); err != nil {
		return fail("%v", err)
	}
	filter := core.Filter{Category: c.category, Type: core.TransactionType(c.typ)}
	var err error
	if c.from != "" {
		if filter.From, err = core.ParseDate(c.from); err != nil {
			return fail("-from: %v", err)
		}
	}
	if c.to != "" {
		if filter.To, err = core.ParseDate(c.to); err != nil {
			return fail("-to: %v", err)
		}
	}

	env := envFrom(args)
	txs, err := env.App(ctx).Finance.Transactions(ctx, c.user, filter)
	if err != nil {
		return fail("list transactions: %v", err)
	}
	w := table(os.Stdout)
	fmt.Fprintln(w, "DATE\tTYPE\tAMOUNT\tCATEGORY\tMERCHANT\tID")
	for _, tx := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.Date, tx.Type, core.FormatAmount(tx.Amount, env.cfg.Currency), tx.Category, tx.Merchant, tx.ID)
	}
	w.Flush()
	return subcommands.ExitSuccess
}

type addTxCmd struct {
	user       string
	merchant   string
	amount     string
	category   string
	typ        string
	date       string
	recurrence string
}

func (*addTxCmd) Name() string     { return "add" }
func (*addTxCmd) Synopsis() string { return "record a transaction" }
func (*addTxCmd) Usage() string {
	return `brokemate-cli add -u <user> -m <merchant> -a <amount> -c <category> [-type expense|income] [-d <date>] [-r weekly|monthly|yearly]

  A recurrence also creates a subscription whose first payment is one
  cadence after the transaction date.
`
}

func (c *addTxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "u", "", "User id owning the partition.")
	f.StringVar(&c.merchant, "m", "", "Merchant or description.")
	f.StringVar(&c.amount, "a", "", "Positive amount.")
	f.StringVar(&c.category, "c", core.DefaultCategory, "Category label.")
	f.StringVar(&c.typ, "type", string(core.Expense), "income or expense.")
	f.StringVar(&c.date, "d", "", "Date (YYYY-MM-DD), defaults to today.")
	f.StringVar(&c.recurrence, "r", "", "Optional recurrence.")
}

func (c *addTxCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if err := requireUser(c.user); err != nil {
		return fail("%v", err)
	}
	amount, err := core.ParseAmount(c.amount)
	if err != nil {
		return fail("-a: %v", err)
	}

	env := envFrom(args)
	app := env.App(ctx)
	date := app.Finance.Today()
	if c.date != "" {
		if date, err = core.ParseDate(c.date); err != nil {
			return fail("-d: %v", err)
		}
	}

	tx, err := app.Finance.AddTransaction(ctx, c.user, core.Transaction{
		Merchant:   c.merchant,
		Amount:     amount,
		Date:       date,
		Category:   c.category,
		Type:       core.TransactionType(c.typ),
		Recurrence: core.Frequency(c.recurrence),
	})
	if err != nil {
		return fail("add transaction: %v", err)
	}
	fmt.Println(tx.ID)
	return subcommands.ExitSuccess
}

type overviewCmd struct {
	user  string
	month string
}

func (*overviewCmd) Name() string     { return "overview" }
func (*overviewCmd) Synopsis() string { return "show monthly totals and spend per category" }
func (*overviewCmd) Usage() string {
	return `brokemate-cli overview -u <user> [-month YYYY-MM]
`
}

func (c *overviewCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "u", "", "User id owning the partition.")
	f.StringVar(&c.month, "month", "", "Month (YYYY-MM), defaults to the current one.")
}

func (c *overviewCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if err := requireUser(c.user); err != nil {
		return fail("%v", err)
	}
	env := envFrom(args)
	ov, err := env.App(ctx).Finance.Overview(ctx, c.user, c.month)
	if err != nil {
		return fail("overview: %v", err)
	}
	cur := env.cfg.Currency
	fmt.Printf("%s  income %s  expense %s  balance %s\n\n", ov.Month,
		core.FormatAmount(ov.Totals.Income, cur),
		core.FormatAmount(ov.Totals.Expense, cur),
		core.FormatAmount(ov.Totals.Balance, cur))
	w := table(os.Stdout)
	fmt.Fprintln(w, "CATEGORY\tSPENT")
	for _, ca := range ov.ByCategory {
		fmt.Fprintf(w, "%s\t%s\n", ca.Name, core.FormatAmount(ca.Amount, cur))
	}
	w.Flush()
	return subcommands.ExitSuccess
}

type budgetsCmd struct {
	user  string
	month string
}

func (*budgetsCmd) Name() string     { return "budgets" }
func (*budgetsCmd) Synopsis() string { return "show budget status for a month" }
func (*budgetsCmd) Usage() string {
	return `brokemate-cli budgets -u <user> [-month YYYY-MM]
`
}

func (c *budgetsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "u", "", "User id owning the partition.")
	f.StringVar(&c.month, "month", "", "Month (YYYY-MM), defaults to the current one.")
}

func (c *budgetsCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if err := requireUser(c.user); err != nil {
		return fail("%v", err)
	}
	env := envFrom(args)
	reports, err := env.App(ctx).Finance.Budgets(ctx, c.user, c.month)
	if err != nil {
		return fail("budgets: %v", err)
	}
	cur := env.cfg.Currency
	w := table(os.Stdout)
	fmt.Fprintln(w, "CATEGORY\tSPENT\tCAP\tSTATUS\tID")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Category,
			core.FormatAmount(r.Spent, cur), core.FormatAmount(r.Amount, cur), r.Status, r.ID)
	}
	w.Flush()
	return subcommands.ExitSuccess
}

type setBudgetCmd struct {
	user     string
	category string
	amount   string
}

func (*setBudgetCmd) Name() string     { return "set-budget" }
func (*setBudgetCmd) Synopsis() string { return "set the monthly cap of a category" }
func (*setBudgetCmd) Usage() string {
	return `brokemate-cli set-budget -u <user> -c <category> -a <amount>

  Replaces any existing budget for the category.
`
}

func (c *setBudgetCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "u", "", "User id owning the partition.")
	f.StringVar(&c.category, "c", "", "Category label.")
	f.StringVar(&c.amount, "a", "", "Monthly cap.")
}

func (c *setBudgetCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if err := requireUser(c.user); err != nil {
		return fail("%v", err)
	}
	amount, err := core.ParseAmount(c.amount)
	if err != nil {
		return fail("-a: %v", err)
	}
	env := envFrom(args)
	b, err := env.App(ctx).Finance.SetBudget(ctx, c.user, c.category, amount)
	if err != nil {
		return fail("set budget: %v", err)
	}
	fmt.Println(b.ID)
	return subcommands.ExitSuccess
}
