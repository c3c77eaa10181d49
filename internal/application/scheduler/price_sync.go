package scheduler

import (
	"context"
	"fmt"
	"sort"

	"cryptowallet/internal/adapters/logger"
	"cryptowallet/internal/domain/date"
	"cryptowallet/internal/domain/operation"
	"cryptowallet/internal/domain/portfolio"
	"cryptowallet/internal/domain/price"

	"go.uber.org/zap"
)

// HistoryRefresher backfills or tops up the stored history of one asset.
type HistoryRefresher interface {
	Refresh(ctx context.Context, assetID string, firstNeed date.Date, hasFirstNeed bool, today date.Date) (price.Series, portfolio.Stage, error)
	Today() date.Date
}

// SyncReport summarizes one price sync pass.
type SyncReport struct {
	Assets   int
	// Points counts the prices each refresh returned: the synced range after
	// a backfill or top-up, the stored history otherwise.
	Points   int
	Failures []portfolio.AssetFailure
}

// PriceSyncJob brings the stored history of every ledger asset up to yesterday
// so valuation runs rarely need the network for anything but spot prices.
type PriceSyncJob struct {
	ledger  operation.Ledger
	history HistoryRefresher
	log     *logger.Logger
}

func NewPriceSyncJob(ledger operation.Ledger, history HistoryRefresher, log *logger.Logger) *PriceSyncJob {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &PriceSyncJob{ledger: ledger, history: history, log: log}
}

func (j *PriceSyncJob) Name() string { return "price_sync" }

func (j *PriceSyncJob) Run(ctx context.Context) error {
	report, err := j.Sync(ctx)
	if err != nil {
		return err
	}
	if len(report.Failures) > 0 {
		return fmt.Errorf("price sync failed for %d of %d assets: %w", len(report.Failures), report.Assets, report.Failures[0])
	}
	return nil
}

// Sync refreshes each asset in turn. A ledger error aborts; asset errors are collected.
func (j *PriceSyncJob) Sync(ctx context.Context) (*SyncReport, error) {
	ops, err := j.ledger.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load operations: %w", err)
	}

	symbols := make(map[string]string)
	for _, op := range ops {
		symbols[op.AssetID] = op.Symbol
	}
	ids := make([]string, 0, len(symbols))
	for id := range symbols {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	report := &SyncReport{Assets: len(ids)}
	today := j.history.Today()

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		firstNeed, ok, err := j.ledger.OldestDateForAsset(ctx, id)
		if err != nil {
			report.Failures = append(report.Failures, portfolio.AssetFailure{AssetID: id, Symbol: symbols[id], Stage: portfolio.StageFirstNeed, Err: err})
			continue
		}

		series, stage, err := j.history.Refresh(ctx, id, firstNeed, ok, today)
		if err != nil {
			j.log.Warn("Price sync failed", zap.String("asset_id", id), zap.String("stage", string(stage)), zap.Error(err))
			report.Failures = append(report.Failures, portfolio.AssetFailure{AssetID: id, Symbol: symbols[id], Stage: stage, Err: err})
			continue
		}
		report.Points += len(series)
	}

	j.log.Info("Price sync finished",
		zap.Int("assets", report.Assets),
		zap.Int("points", report.Points),
		zap.Int("failures", len(report.Failures)),
	)
	return report, nil
}
