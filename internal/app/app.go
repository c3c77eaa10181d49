// Package app wires configuration, storage, the price API and the use-case services together.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"cryptowallet/config"
	"cryptowallet/internal/adapters/cache"
	"cryptowallet/internal/adapters/coincap"
	httpserver "cryptowallet/internal/adapters/http/server"
	"cryptowallet/internal/adapters/logger"
	opadapter "cryptowallet/internal/adapters/operation"
	priceadapter "cryptowallet/internal/adapters/price"
	"cryptowallet/internal/adapters/sqlite"
	"cryptowallet/internal/application/assets"
	pricesvc "cryptowallet/internal/application/price"
	"cryptowallet/internal/application/ratelimiter"
	"cryptowallet/internal/application/scheduler"
	"cryptowallet/internal/application/valuation"
	"cryptowallet/internal/domain/asset"
	"cryptowallet/internal/domain/operation"
	"cryptowallet/internal/domain/price"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	spotCacheSize    = 1000
	catalogCacheSize = 1
	syncJobTimeout   = 10 * time.Minute
)

type App struct {
	Config *config.Config
	Logger *logger.Logger

	Ledger   operation.Ledger
	Prices   price.Store
	Provider price.Provider

	History   *pricesvc.HistoryService
	Valuation *valuation.Service
	Assets    *assets.Service
	PriceSync *scheduler.PriceSyncJob
	Scheduler *scheduler.Scheduler

	db *sql.DB
}

// New builds the application for cfg. now is the clock shared by every service; nil uses time.Now.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, now func() time.Time) (*App, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if now == nil {
		now = time.Now
	}

	a := &App{Config: cfg, Logger: log}

	if err := a.initStorage(ctx); err != nil {
		return nil, err
	}
	a.initProvider(now)

	a.History = pricesvc.NewHistoryService(a.Prices, a.Provider, log.WithFields(zap.String("component", "price_history")), now)
	a.Valuation = valuation.NewService(a.Ledger, a.History, log.WithFields(zap.String("component", "valuation")), now)
	a.Assets = assets.NewService(a.Ledger, a.Prices, a.Provider, log.WithFields(zap.String("component", "assets")), now)
	a.PriceSync = scheduler.NewPriceSyncJob(a.Ledger, a.History, log.WithFields(zap.String("component", "price_sync")))
	a.Scheduler = scheduler.New(log, syncJobTimeout)

	log.Info("Application initialized",
		zap.String("environment", cfg.App.Environment),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("price_provider", cfg.Price.Provider),
	)

	return a, nil
}

func (a *App) initStorage(ctx context.Context) error {
	switch a.Config.Database.Driver {
	case "memory":
		a.Ledger = opadapter.NewMemoryLedger()
		a.Prices = priceadapter.NewMemoryStore()
		a.Logger.Warn("Using in-memory storage, data is lost on exit")
	default:
		db, err := sqlite.Open(ctx, a.Config.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		a.db = db
		a.Ledger = opadapter.NewSQLiteLedger(db)
		a.Prices = priceadapter.NewSQLiteStore(db)
		a.Logger.Info("Database ready", zap.String("path", a.Config.Database.Path))
	}
	return nil
}

func (a *App) initProvider(now func() time.Time) {
	cfg := a.Config.Price

	if cfg.Provider == "mock" {
		a.Provider = coincap.NewMockProvider(now)
		a.Logger.Info("Using mock price provider")
		return
	}

	if cfg.APIKey == "" {
		a.Logger.Warn("CoinCap API key not set, requests are subject to public rate limits")
	}

	limiter := ratelimiter.NewRateLimiter(cfg.RateLimitRPS, time.Second, nil)
	client := coincap.NewClient(&http.Client{Timeout: cfg.RequestTimeout.Std()}, cfg.BaseURL, cfg.APIKey, limiter)

	a.Provider = coincap.NewProvider(
		client,
		cache.NewCache[string, decimal.Decimal](spotCacheSize, cfg.CacheTTL.Std()),
		cache.NewCache[string, []*asset.Asset](catalogCacheSize, cfg.CatalogTTL.Std()),
		a.Logger.WithFields(zap.String("component", "coincap")),
	)
}

// HandlerAdapter exposes the services to the HTTP server.
func (a *App) HandlerAdapter() *httpserver.HandlerAdapter {
	return httpserver.NewHandlerAdapter(a.Valuation, a.Assets, a.History, a.PriceSync, a.Logger.WithFields(zap.String("component", "http")))
}

// ServerConfig maps the server section onto the HTTP server options.
func (a *App) ServerConfig() httpserver.Config {
	s := a.Config.Server
	return httpserver.Config{
		Host:            s.Host,
		Port:            s.Port,
		ReadTimeout:     s.ReadTimeout.Std(),
		WriteTimeout:    s.WriteTimeout.Std(),
		IdleTimeout:     s.IdleTimeout.Std(),
		ShutdownTimeout: s.ShutdownTimeout.Std(),
	}
}

// StartScheduler registers the price sync job and starts the cron loop.
// It is a no-op when no schedule is configured.
func (a *App) StartScheduler() error {
	schedule := a.Config.Price.SyncSchedule
	if schedule == "" {
		a.Logger.Info("Price sync schedule disabled")
		return nil
	}

	if err := a.Scheduler.AddJob(schedule, a.PriceSync); err != nil {
		return err
	}
	a.Scheduler.Start()
	return nil
}

// Close stops the scheduler and releases the database.
func (a *App) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}
