package price

import (
	"context"
	"fmt"
	"time"

	"cryptowallet/internal/adapters/logger"
	"cryptowallet/internal/domain/date"
	"cryptowallet/internal/domain/portfolio"
	"cryptowallet/internal/domain/price"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// HistoryService keeps the local price store in step with the price API.
type HistoryService struct {
	store    price.Store
	provider price.Provider
	logger   *logger.Logger
	now      func() time.Time
}

// NewHistoryService creates a service. A nil clock uses time.Now.
func NewHistoryService(store price.Store, provider price.Provider, log *logger.Logger, now func() time.Time) *HistoryService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if now == nil {
		now = time.Now
	}
	return &HistoryService{store: store, provider: provider, logger: log, now: now}
}

// Sync fetches daily closes from the start of day from until now, upserts them
// and returns only the fetched range. Older stored points are kept in the store
// but are not part of the result. A start after now fetches nothing.
func (s *HistoryService) Sync(ctx context.Context, assetID string, from date.Date) (price.Series, error) {
	end := s.now().UTC()
	start := from.Time()

	if start.After(end) {
		return price.Series{}, nil
	}

	quotes, err := s.provider.HistoricalSeries(ctx, assetID, start, end)
	if err != nil {
		return nil, err
	}

	points := price.PointsFromQuotes(assetID, quotes)
	if err := s.store.Upsert(ctx, points); err != nil {
		return nil, fmt.Errorf("failed to store price history for %s: %w", assetID, err)
	}

	s.logger.Info("synced price history",
		zap.String("asset_id", assetID),
		zap.Stringer("from", from),
		zap.Int("points", len(points)),
	)
	return points, nil
}

// Refresh loads the cached history of an asset, backfilling it from firstNeed
// when the cache is empty and topping it up when it ends before yesterday.
// After a backfill or top-up the result is the synced range only.
// The returned stage names the step that failed.
func (s *HistoryService) Refresh(ctx context.Context, assetID string, firstNeed date.Date, hasFirstNeed bool, today date.Date) (price.Series, portfolio.Stage, error) {
	log := s.logger.WithFields(zap.String("asset_id", assetID))

	latest, hasLatest, err := s.store.LatestDateForAsset(ctx, assetID)
	if err != nil {
		log.Warn("failed to read latest cached price date", zap.Error(err))
		hasLatest = false
	}

	series, err := s.store.PricesForAsset(ctx, assetID)
	if err != nil {
		return nil, portfolio.StageLoad, err
	}

	switch {
	case len(series) == 0 && hasFirstNeed:
		log.Debug("backfilling price history", zap.Stringer("from", firstNeed))
		if series, err = s.Sync(ctx, assetID, firstNeed); err != nil {
			return nil, portfolio.StageBackfill, err
		}
	case len(series) > 0 && hasLatest && latest.Before(today.Add(-1)):
		log.Debug("topping up price history", zap.Stringer("latest", latest))
		if series, err = s.Sync(ctx, assetID, latest.Add(1)); err != nil {
			return nil, portfolio.StageTopUp, err
		}
	}

	return series, "", nil
}

// Reconcile is Refresh plus today's spot price when the history has no point for today.
// The spot point is returned but never stored.
func (s *HistoryService) Reconcile(ctx context.Context, assetID string, firstNeed date.Date, hasFirstNeed bool, today date.Date) (price.Series, portfolio.Stage, error) {
	series, stage, err := s.Refresh(ctx, assetID, firstNeed, hasFirstNeed, today)
	if err != nil {
		return nil, stage, err
	}

	if _, ok := series.On(today); ok {
		return series, "", nil
	}

	spot, err := s.provider.CurrentPrice(ctx, assetID)
	if err != nil {
		return nil, portfolio.StageSpot, err
	}

	out := make(price.Series, len(series), len(series)+1)
	copy(out, series)
	out = append(out, price.Point{AssetID: assetID, Date: today, Price: spot})
	return out, "", nil
}

// Coverage summarizes what the store holds for one asset.
type Coverage struct {
	AssetID     string
	Oldest      date.Date
	Latest      date.Date
	LatestPrice decimal.Decimal
	Points      int
	Empty       bool
}

// Coverage reports the stored date range, latest close and point count of an asset.
func (s *HistoryService) Coverage(ctx context.Context, assetID string) (*Coverage, error) {
	c := &Coverage{AssetID: assetID}

	oldest, ok, err := s.store.OldestDateForAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if !ok {
		c.Empty = true
		return c, nil
	}
	c.Oldest = oldest

	if c.Latest, _, err = s.store.LatestDateForAsset(ctx, assetID); err != nil {
		return nil, err
	}
	if c.LatestPrice, _, err = s.store.LatestPriceForAsset(ctx, assetID); err != nil {
		return nil, err
	}

	series, err := s.store.PricesForAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	c.Points = len(series)

	return c, nil
}

// Today is the current UTC calendar day by the service clock.
func (s *HistoryService) Today() date.Date {
	return date.Today(s.now())
}
