package cli

import (
	"context"
	"flag"
	"fmt"

	"cryptowallet/internal/app"
	"cryptowallet/internal/domain/date"
	"cryptowallet/internal/domain/portfolio"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type valueCmd struct {
	*env
	history bool
}

func (*valueCmd) Name() string     { return "value" }
func (*valueCmd) Synopsis() string { return "value the portfolio at today's prices" }
func (*valueCmd) Usage() string {
	return `portfolio value [-history]

  Syncs the price history of every held asset, then prints the current
  holdings, their allocation and any asset that could not be priced.
`
}

func (c *valueCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.history, "history", false, "Also print the daily value series.")
}

func (c *valueCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(a *app.App) error {
		v, err := a.Valuation.Calculate(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(c.out, "Portfolio value on %s: %s\n\n", date.Of(v.CalculatedAt), usd(v.TotalValue()))
		c.printHoldings(v)
		if c.history {
			fmt.Fprintln(c.out)
			c.printSeries(v.Series)
		}
		c.printFailures(v.Failures)
		return nil
	})
}

func (e *env) printHoldings(v *portfolio.Valuation) {
	if len(v.Holdings) == 0 {
		fmt.Fprintln(e.out, "No holdings.")
		return
	}

	total := v.TotalValue()
	hundred := decimal.NewFromInt(100)

	w := e.table()
	fmt.Fprintln(w, "SYMBOL\tQUANTITY\tPRICE\tVALUE\tSHARE")
	for _, h := range v.Holdings {
		share := decimal.Zero
		if !total.IsZero() {
			share = h.Value.Div(total).Mul(hundred)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s%%\n", h.Symbol, h.Quantity, usd(h.SpotPrice), usd(h.Value), share.StringFixed(2))
	}
	fmt.Fprintf(w, "TOTAL\t\t\t%s\t\n", usd(total))
	w.Flush()
}

func (e *env) printSeries(series portfolio.ValueSeries) {
	w := e.table()
	fmt.Fprintln(w, "DATE\tVALUE\t")
	for _, dv := range series {
		mark := ""
		if dv.Partial {
			mark = "partial"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", dv.Date, usd(dv.Value), mark)
	}
	w.Flush()
}

func (e *env) printFailures(failures []portfolio.AssetFailure) {
	if len(failures) == 0 {
		return
	}
	fmt.Fprintln(e.out)
	fmt.Fprintln(e.out, "Not valued:")
	for _, f := range failures {
		fmt.Fprintf(e.out, "  %s (%s) at %s: %v\n", f.Symbol, f.AssetID, f.Stage, f.Err)
	}
}

type holdingsCmd struct{ *env }

func (*holdingsCmd) Name() string             { return "holdings" }
func (*holdingsCmd) Synopsis() string         { return "list current holdings and their allocation" }
func (*holdingsCmd) Usage() string            { return "portfolio holdings\n" }
func (*holdingsCmd) SetFlags(_ *flag.FlagSet) {}

func (c *holdingsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(a *app.App) error {
		v, err := a.Valuation.Calculate(ctx)
		if err != nil {
			return err
		}
		c.printHoldings(v)
		c.printFailures(v.Failures)
		return nil
	})
}

type historyCmd struct {
	*env
	from string
	to   string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "print the daily portfolio value" }
func (*historyCmd) Usage() string {
	return `portfolio history [-from YYYY-MM-DD] [-to YYYY-MM-DD]

  Prints one line per day from the first operation through today.
  Days where a held asset had no price are marked partial.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "First day to print.")
	f.StringVar(&c.to, "to", "", "Last day to print.")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var from, to date.Date
	var err error
	if c.from != "" {
		if from, err = date.Parse(c.from); err != nil {
			return usageError(f, err.Error())
		}
	}
	if c.to != "" {
		if to, err = date.Parse(c.to); err != nil {
			return usageError(f, err.Error())
		}
	}

	return c.run(ctx, func(a *app.App) error {
		v, err := a.Valuation.Calculate(ctx)
		if err != nil {
			return err
		}

		var window portfolio.ValueSeries
		for _, dv := range v.Series {
			if (!from.IsZero() && dv.Date.Before(from)) || (!to.IsZero() && dv.Date.After(to)) {
				continue
			}
			window = append(window, dv)
		}

		c.printSeries(window)
		c.printFailures(v.Failures)
		return nil
	})
}
