package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"cryptowallet/config"
	"cryptowallet/internal/adapters/logger"
	"cryptowallet/internal/app"
	"cryptowallet/internal/cli"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "portfolio.toml", "Path to the TOML configuration file.")
	verbose := flag.Bool("v", false, "Log to stderr.")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cli.Register(commander, func(ctx context.Context) (*app.App, error) {
		cfg, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}

		log := logger.NewNopLogger()
		if *verbose {
			if log, err = logger.NewLogger(true, cfg.App.LogLevel); err != nil {
				return nil, fmt.Errorf("failed to initialize logger: %w", err)
			}
		}

		return app.New(ctx, cfg, log, nil)
	}, os.Stdout)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
