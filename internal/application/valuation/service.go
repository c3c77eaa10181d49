// Package valuation replays the operation ledger against reconciled daily prices.
package valuation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cryptowallet/internal/adapters/logger"
	"cryptowallet/internal/domain/date"
	"cryptowallet/internal/domain/operation"
	"cryptowallet/internal/domain/portfolio"
	"cryptowallet/internal/domain/price"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PriceReconciler prepares the price series used to value one asset up to today.
type PriceReconciler interface {
	Reconcile(ctx context.Context, assetID string, firstNeed date.Date, hasFirstNeed bool, today date.Date) (price.Series, portfolio.Stage, error)
}

// Service replays the ledger against daily prices to value the portfolio.
type Service struct {
	ledger operation.Ledger
	prices PriceReconciler
	logger *logger.Logger
	now    func() time.Time

	// runs are serialized so concurrent callers never interleave price store syncs
	mu sync.Mutex
}

func NewService(ledger operation.Ledger, prices PriceReconciler, log *logger.Logger, now func() time.Time) *Service {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{ledger: ledger, prices: prices, logger: log, now: now}
}

// Calculate values the portfolio for every day from the first operation through today.
// A ledger read error aborts the run. Price failures are reported per asset in
// Valuation.Failures and those assets are left out of the result.
func (s *Service) Calculate(ctx context.Context) (*portfolio.Valuation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	today := date.Today(now)

	ops, err := s.ledger.List(ctx)
	if err != nil {
		s.logger.Error("Failed to load operations", zap.Error(err))
		return nil, fmt.Errorf("failed to load operations: %w", err)
	}

	v := &portfolio.Valuation{
		Series:       portfolio.ValueSeries{},
		Holdings:     []*portfolio.HoldingSnapshot{},
		Allocation:   []portfolio.Slice{},
		CalculatedAt: now,
	}
	if len(ops) == 0 {
		return v, nil
	}

	byDate := operation.GroupByDate(ops)
	symbols := make(map[string]string)
	earliest := ops[0].Date
	for _, op := range ops {
		symbols[op.AssetID] = op.Symbol
		if op.Date.Before(earliest) {
			earliest = op.Date
		}
	}

	assetIDs := make([]string, 0, len(symbols))
	for id := range symbols {
		assetIDs = append(assetIDs, id)
	}
	sort.Strings(assetIDs)

	s.logger.Info("Calculating portfolio value",
		zap.Int("operations", len(ops)),
		zap.Int("assets", len(assetIDs)),
		zap.Stringer("from", earliest),
		zap.Stringer("today", today),
	)

	prices := make(map[string]map[date.Date]decimal.Decimal, len(assetIDs))
	for _, id := range assetIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		series, stage, err := s.reconcile(ctx, id, today)
		if err != nil {
			f := portfolio.AssetFailure{AssetID: id, Symbol: symbols[id], Stage: stage, Err: err}
			s.logger.Warn("Skipping asset", zap.String("asset_id", id), zap.String("stage", string(stage)), zap.Error(err))
			v.Failures = append(v.Failures, f)
			continue
		}
		prices[id] = series.Index()
	}

	quantities := make(map[string]decimal.Decimal, len(prices))
	for _, day := range date.Range(earliest, today) {
		for _, op := range byDate[day] {
			if _, ok := prices[op.AssetID]; !ok {
				continue
			}
			q := quantities[op.AssetID].Add(op.Delta())
			if q.IsNegative() {
				s.logger.Warn("Negative running quantity",
					zap.String("asset_id", op.AssetID),
					zap.Stringer("date", day),
					zap.String("quantity", q.String()),
				)
			}
			quantities[op.AssetID] = q
		}

		dv := portfolio.DailyValue{Date: day, Value: decimal.Zero}
		for id, q := range quantities {
			if q.IsZero() {
				continue
			}
			p, ok := prices[id][day]
			if !ok {
				dv.Partial = true
				continue
			}
			dv.Value = dv.Value.Add(portfolio.CalculateValue(q, p))
		}
		v.Series = append(v.Series, dv)
	}

	for _, id := range assetIDs {
		q, ok := quantities[id]
		if !ok || q.IsZero() {
			continue
		}
		spot := prices[id][today]
		v.Holdings = append(v.Holdings, portfolio.NewHoldingSnapshot(id, symbols[id], q, spot))
	}
	sort.SliceStable(v.Holdings, func(i, j int) bool { return v.Holdings[i].Symbol < v.Holdings[j].Symbol })
	v.Allocation = portfolio.Allocation(v.Holdings)

	s.logger.Info("Calculated portfolio value",
		zap.Int("days", len(v.Series)),
		zap.Int("holdings", len(v.Holdings)),
		zap.Int("failures", len(v.Failures)),
		zap.String("total", v.TotalValue().String()),
	)

	return v, nil
}

func (s *Service) reconcile(ctx context.Context, assetID string, today date.Date) (price.Series, portfolio.Stage, error) {
	firstNeed, ok, err := s.ledger.OldestDateForAsset(ctx, assetID)
	if err != nil {
		return nil, portfolio.StageFirstNeed, err
	}
	return s.prices.Reconcile(ctx, assetID, firstNeed, ok, today)
}
