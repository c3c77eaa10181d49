package cli

import (
	"context"
	"flag"
	"fmt"

	"cryptowallet/internal/app"

	"github.com/google/subcommands"
)

type addCmd struct{ *env }

func (*addCmd) Name() string             { return "add" }
func (*addCmd) Synopsis() string         { return "record an acquisition dated today" }
func (*addCmd) Usage() string            { return "portfolio add <symbol> <amount>\n" }
func (*addCmd) SetFlags(_ *flag.FlagSet) {}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		return usageError(f, "add takes a symbol and an amount")
	}
	amount, err := parseAmount(f.Arg(1))
	if err != nil {
		return usageError(f, err.Error())
	}

	return c.run(ctx, func(a *app.App) error {
		h, err := a.Assets.AddAsset(ctx, f.Arg(0), amount)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Added %s %s (%s at %s)\n", h.Quantity, h.Symbol, usd(h.Value), usd(h.SpotPrice))
		return nil
	})
}

type editCmd struct{ *env }

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "correct a holding from one amount to another" }
func (*editCmd) Usage() string {
	return `portfolio edit <symbol> <initial_amount> <new_amount>

  Records the difference as an add or a subtract dated today.
`
}
func (*editCmd) SetFlags(_ *flag.FlagSet) {}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 3 {
		return usageError(f, "edit takes a symbol, the initial amount and the new amount")
	}
	initial, err := parseAmount(f.Arg(1))
	if err != nil {
		return usageError(f, err.Error())
	}
	updated, err := parseAmount(f.Arg(2))
	if err != nil {
		return usageError(f, err.Error())
	}

	return c.run(ctx, func(a *app.App) error {
		changed, err := a.Assets.EditAsset(ctx, f.Arg(0), initial, updated)
		if err != nil {
			return err
		}
		if !changed {
			fmt.Fprintln(c.out, "Nothing to change.")
			return nil
		}
		fmt.Fprintf(c.out, "Updated %s from %s to %s\n", f.Arg(0), initial, updated)
		return nil
	})
}

type deleteCmd struct{ *env }

func (*deleteCmd) Name() string             { return "delete" }
func (*deleteCmd) Synopsis() string         { return "record a disposal dated today" }
func (*deleteCmd) Usage() string            { return "portfolio delete <symbol> <amount>\n" }
func (*deleteCmd) SetFlags(_ *flag.FlagSet) {}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		return usageError(f, "delete takes a symbol and an amount")
	}
	amount, err := parseAmount(f.Arg(1))
	if err != nil {
		return usageError(f, err.Error())
	}

	return c.run(ctx, func(a *app.App) error {
		if err := a.Assets.DeleteAsset(ctx, f.Arg(0), amount); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Removed %s %s\n", amount, f.Arg(0))
		return nil
	})
}

type opsCmd struct{ *env }

func (*opsCmd) Name() string             { return "ops" }
func (*opsCmd) Synopsis() string         { return "list the operation ledger" }
func (*opsCmd) Usage() string            { return "portfolio ops\n" }
func (*opsCmd) SetFlags(_ *flag.FlagSet) {}

func (c *opsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(a *app.App) error {
		ops, err := a.Assets.Operations(ctx)
		if err != nil {
			return err
		}
		if len(ops) == 0 {
			fmt.Fprintln(c.out, "No operations.")
			return nil
		}

		w := c.table()
		fmt.Fprintln(w, "DATE\tKIND\tSYMBOL\tAMOUNT\tID")
		for _, op := range ops {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", op.Date, op.Kind, op.Symbol, op.Amount, op.ID)
		}
		return w.Flush()
	})
}

type forgetCmd struct{ *env }

func (*forgetCmd) Name() string             { return "forget" }
func (*forgetCmd) Synopsis() string         { return "drop every operation of one asset" }
func (*forgetCmd) Usage() string            { return "portfolio forget <asset_id>\n" }
func (*forgetCmd) SetFlags(_ *flag.FlagSet) {}

func (c *forgetCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usageError(f, "forget takes an asset id")
	}

	return c.run(ctx, func(a *app.App) error {
		if err := a.Assets.RemoveAssetHistory(ctx, f.Arg(0)); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Removed history of %s\n", f.Arg(0))
		return nil
	})
}

type resetCmd struct {
	*env
	yes bool
}

func (*resetCmd) Name() string     { return "reset" }
func (*resetCmd) Synopsis() string { return "wipe the ledger and the price history" }
func (*resetCmd) Usage() string    { return "portfolio reset -yes\n" }

func (c *resetCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "yes", false, "Confirm the reset.")
}

func (c *resetCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.yes {
		return usageError(f, "reset deletes all data, pass -yes to confirm")
	}

	return c.run(ctx, func(a *app.App) error {
		if err := a.Assets.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Portfolio reset.")
		return nil
	})
}
