// Package cli implements the portfolio command line on top of the application services.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"cryptowallet/internal/app"

	"github.com/Rhymond/go-money"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// Opener builds the application for one command run.
type Opener func(ctx context.Context) (*app.App, error)

type env struct {
	open Opener
	out  io.Writer
}

// Register adds every portfolio command to commander. Output goes to out.
func Register(commander *subcommands.Commander, open Opener, out io.Writer) {
	e := &env{open: open, out: out}

	for _, c := range []subcommands.Command{
		&valueCmd{env: e},
		&holdingsCmd{env: e},
		&historyCmd{env: e},
		&addCmd{env: e},
		&editCmd{env: e},
		&deleteCmd{env: e},
		&opsCmd{env: e},
		&forgetCmd{env: e},
		&resetCmd{env: e},
		&coinsCmd{env: e},
		&pricesCmd{env: e},
		&syncCmd{env: e},
	} {
		commander.Register(c, "")
	}
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")
}

// run opens the application, calls fn and closes it again.
func (e *env) run(ctx context.Context, fn func(a *app.App) error) subcommands.ExitStatus {
	a, err := e.open(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := fn(a); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (e *env) table() *tabwriter.Writer {
	return tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
}

// usd formats d as US dollars, rounded to cents.
func usd(d decimal.Decimal) string {
	cur := *money.New(0, money.USD).Currency()
	dec := d.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

// usageError prints msg with the command usage and returns ExitUsageError.
func usageError(f *flag.FlagSet, msg string) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, msg)
	f.Usage()
	return subcommands.ExitUsageError
}
