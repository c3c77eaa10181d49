package cli

import (
	"context"
	"flag"
	"fmt"

	"cryptowallet/internal/app"

	"github.com/google/subcommands"
)

type coinsCmd struct{ *env }

func (*coinsCmd) Name() string             { return "coins" }
func (*coinsCmd) Synopsis() string         { return "list the assets that can be tracked" }
func (*coinsCmd) Usage() string            { return "portfolio coins\n" }
func (*coinsCmd) SetFlags(_ *flag.FlagSet) {}

func (c *coinsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(a *app.App) error {
		coins, err := a.Assets.Catalog(ctx)
		if err != nil {
			return err
		}

		w := c.table()
		fmt.Fprintln(w, "SYMBOL\tID\tNAME\tPRICE")
		for _, coin := range coins {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", coin.Symbol, coin.ID, coin.Name, usd(coin.PriceUSD))
		}
		return w.Flush()
	})
}

type pricesCmd struct{ *env }

func (*pricesCmd) Name() string             { return "prices" }
func (*pricesCmd) Synopsis() string         { return "show the stored price history of an asset" }
func (*pricesCmd) Usage() string            { return "portfolio prices <asset_id>\n" }
func (*pricesCmd) SetFlags(_ *flag.FlagSet) {}

func (c *pricesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usageError(f, "prices takes an asset id")
	}

	return c.run(ctx, func(a *app.App) error {
		cov, err := a.History.Coverage(ctx, f.Arg(0))
		if err != nil {
			return err
		}
		if cov.Empty {
			fmt.Fprintf(c.out, "No stored prices for %s\n", cov.AssetID)
			return nil
		}
		fmt.Fprintf(c.out, "%s: %d days from %s to %s, last close %s\n",
			cov.AssetID, cov.Points, cov.Oldest, cov.Latest, usd(cov.LatestPrice))
		return nil
	})
}

type syncCmd struct{ *env }

func (*syncCmd) Name() string     { return "sync" }
func (*syncCmd) Synopsis() string { return "backfill and top up the price history of held assets" }
func (*syncCmd) Usage() string {
	return `portfolio sync

  Runs the same job the server schedules: every asset in the ledger gets its
  stored daily history extended through yesterday.
`
}
func (*syncCmd) SetFlags(_ *flag.FlagSet) {}

func (c *syncCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(a *app.App) error {
		report, err := a.PriceSync.Sync(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(c.out, "Synced %d assets, %d points\n", report.Assets, report.Points)
		for _, f := range report.Failures {
			fmt.Fprintf(c.out, "  %s failed at %s: %v\n", f.AssetID, f.Stage, f.Err)
		}
		return nil
	})
}
