package cli

import (
	"bytes"
	"context"
	"flag"
	"testing"
	"time"

	"cryptowallet/config"
	"cryptowallet/internal/app"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()

	cfg := config.Default()
	cfg.Database.Driver = "memory"
	cfg.Price.Provider = "mock"
	cfg.Price.SyncSchedule = ""

	now := func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	a, err := app.New(context.Background(), cfg, nil, now)
	require.NoError(t, err)
	return a
}

// execute runs one command line against a. The app outlives the command, so
// state carries over between calls.
func execute(t *testing.T, a *app.App, args ...string) (subcommands.ExitStatus, string) {
	t.Helper()

	var out bytes.Buffer
	fs := flag.NewFlagSet("portfolio", flag.ContinueOnError)
	commander := subcommands.NewCommander(fs, "portfolio")
	Register(commander, func(context.Context) (*app.App, error) { return a, nil }, &out)

	require.NoError(t, fs.Parse(args))
	status := commander.Execute(context.Background())
	return status, out.String()
}

func TestUSD(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"1234.567", "$1,234.57"},
		{"0.004", "$0.00"},
		{"1000000", "$1,000,000.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, usd(decimal.RequireFromString(tt.in)), tt.in)
	}
}

func TestAddThenValue(t *testing.T) {
	a := newTestApp(t)

	status, out := execute(t, a, "add", "btc", "0.5")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "Added 0.5 BTC")

	status, out = execute(t, a, "value", "-history")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "BTC")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "100.00%")
	assert.Contains(t, out, "Portfolio value on 2025-03-10")

	status, out = execute(t, a, "holdings")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "SYMBOL")
	assert.NotContains(t, out, "Portfolio value")
}

func TestLedgerCommands(t *testing.T) {
	a := newTestApp(t)

	status, out := execute(t, a, "ops")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "No operations.")

	status, _ = execute(t, a, "add", "ETH", "2")
	require.Equal(t, subcommands.ExitSuccess, status)

	status, out = execute(t, a, "edit", "ETH", "2", "2")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "Nothing to change.")

	status, _ = execute(t, a, "edit", "ETH", "2", "1")
	require.Equal(t, subcommands.ExitSuccess, status)

	status, _ = execute(t, a, "delete", "ETH", "5")
	assert.Equal(t, subcommands.ExitFailure, status)

	status, out = execute(t, a, "ops")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "add")
	assert.Contains(t, out, "subtract")

	status, _ = execute(t, a, "forget", "ethereum")
	require.Equal(t, subcommands.ExitSuccess, status)

	status, out = execute(t, a, "ops")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "No operations.")
}

func TestUsageErrors(t *testing.T) {
	a := newTestApp(t)

	for _, args := range [][]string{
		{"add", "BTC"},
		{"add", "BTC", "lots"},
		{"edit", "BTC", "1"},
		{"delete", "BTC", "x"},
		{"forget"},
		{"reset"},
		{"history", "-from", "last week"},
		{"prices"},
	} {
		status, _ := execute(t, a, args...)
		assert.Equal(t, subcommands.ExitUsageError, status, "%v", args)
	}
}

func TestSyncAndPrices(t *testing.T) {
	a := newTestApp(t)

	_, out := execute(t, a, "prices", "bitcoin")
	assert.Contains(t, out, "No stored prices for bitcoin")

	status, _ := execute(t, a, "add", "BTC", "1")
	require.Equal(t, subcommands.ExitSuccess, status)

	status, out = execute(t, a, "sync")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "Synced 1 assets")

	status, out = execute(t, a, "prices", "bitcoin")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "bitcoin: 1 days from 2025-03-10 to 2025-03-10")
}

func TestResetAndCoins(t *testing.T) {
	a := newTestApp(t)

	status, _ := execute(t, a, "add", "SOL", "10")
	require.Equal(t, subcommands.ExitSuccess, status)

	status, out := execute(t, a, "reset", "-yes")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "Portfolio reset.")

	status, out = execute(t, a, "coins")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "DOGE")
	assert.Contains(t, out, "dogecoin")
}
