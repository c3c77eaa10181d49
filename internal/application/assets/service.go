// Package assets records user edits to holdings as dated ledger operations.
package assets

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"cryptowallet/internal/adapters/logger"
	"cryptowallet/internal/domain/asset"
	"cryptowallet/internal/domain/date"
	"cryptowallet/internal/domain/errs"
	"cryptowallet/internal/domain/operation"
	"cryptowallet/internal/domain/portfolio"
	"cryptowallet/internal/domain/price"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CatalogSource lists the assets known to the price API.
type CatalogSource interface {
	ListAssets(ctx context.Context) ([]*asset.Asset, error)
}

// Service appends Add and Subtract operations dated today. It never recomputes
// the valuation; callers run the engine again to see the effect.
type Service struct {
	ledger  operation.Ledger
	store   price.Store
	catalog CatalogSource
	logger  *logger.Logger
	now     func() time.Time

	mu     sync.Mutex
	assets []*asset.Asset
}

func NewService(ledger operation.Ledger, store price.Store, catalog CatalogSource, log *logger.Logger, now func() time.Time) *Service {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{ledger: ledger, store: store, catalog: catalog, logger: log, now: now}
}

// Catalog returns the asset list, fetching it on first use and keeping it for the life of the service.
func (s *Service) Catalog(ctx context.Context) ([]*asset.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.assets) > 0 {
		return s.assets, nil
	}

	assets, err := s.catalog.ListAssets(ctx)
	if err != nil {
		s.logger.Error("Failed to load asset catalog", zap.Error(err))
		return nil, err
	}
	s.assets = assets
	return assets, nil
}

// Resolve maps a display symbol to its catalog entry.
func (s *Service) Resolve(ctx context.Context, symbol string) (*asset.Asset, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", errs.ErrUnknownSymbol)
	}

	assets, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	a, ok := asset.FindBySymbol(assets, symbol)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrUnknownSymbol, symbol)
	}
	return a, nil
}

// AddAsset records an Add of amount and returns the new lot priced from the catalog.
func (s *Service) AddAsset(ctx context.Context, symbol string, amount decimal.Decimal) (*portfolio.HoldingSnapshot, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	a, err := s.Resolve(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if err := s.append(ctx, a, amount, operation.KindAdd); err != nil {
		return nil, err
	}

	return portfolio.NewHoldingSnapshot(a.ID, a.Symbol, amount, a.PriceUSD), nil
}

// EditAsset records the difference between newAmount and initialAmount.
// It reports false and writes nothing when the two are equal.
func (s *Service) EditAsset(ctx context.Context, symbol string, initialAmount, newAmount decimal.Decimal) (bool, error) {
	if initialAmount.IsNegative() || newAmount.IsNegative() {
		return false, fmt.Errorf("%w: amounts must not be negative", errs.ErrInvalidAmount)
	}

	delta := newAmount.Sub(initialAmount)
	if delta.IsZero() {
		return false, nil
	}

	a, err := s.Resolve(ctx, symbol)
	if err != nil {
		return false, err
	}

	kind := operation.KindAdd
	if delta.IsNegative() {
		kind = operation.KindSubtract
		if err := s.ensureHeld(ctx, a, delta.Abs()); err != nil {
			return false, err
		}
	}

	if err := s.append(ctx, a, delta.Abs(), kind); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteAsset records a Subtract of the full amount currently held.
func (s *Service) DeleteAsset(ctx context.Context, symbol string, amount decimal.Decimal) error {
	if err := validateAmount(amount); err != nil {
		return err
	}

	a, err := s.Resolve(ctx, symbol)
	if err != nil {
		return err
	}

	if err := s.ensureHeld(ctx, a, amount); err != nil {
		return err
	}

	return s.append(ctx, a, amount, operation.KindSubtract)
}

// Operations lists the whole ledger in date order.
func (s *Service) Operations(ctx context.Context) ([]*operation.Operation, error) {
	return s.ledger.List(ctx)
}

// RemoveAssetHistory drops every operation of one asset.
func (s *Service) RemoveAssetHistory(ctx context.Context, assetID string) error {
	if err := s.ledger.DeleteForAsset(ctx, assetID); err != nil {
		s.logger.Error("Failed to remove asset history", zap.String("asset_id", assetID), zap.Error(err))
		return err
	}
	s.logger.Info("Removed asset history", zap.String("asset_id", assetID))
	return nil
}

// Reset wipes the ledger and the price store.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.ledger.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear ledger: %w", err)
	}
	if err := s.store.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear price history: %w", err)
	}
	s.logger.Info("Reset ledger and price history")
	return nil
}

func (s *Service) append(ctx context.Context, a *asset.Asset, amount decimal.Decimal, kind operation.Kind) error {
	op := operation.NewOperation(a.ID, a.Symbol, amount, date.Today(s.now()), kind)
	if err := s.ledger.Append(ctx, op); err != nil {
		s.logger.Error("Failed to append operation",
			zap.String("asset_id", a.ID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("Appended operation",
		zap.String("id", op.ID),
		zap.String("asset_id", a.ID),
		zap.String("kind", string(kind)),
		zap.String("amount", amount.String()),
		zap.Stringer("date", op.Date),
	)
	return nil
}

// ensureHeld rejects a subtract that would leave a negative net quantity.
func (s *Service) ensureHeld(ctx context.Context, a *asset.Asset, amount decimal.Decimal) error {
	ops, err := s.ledger.ListForAsset(ctx, a.ID)
	if err != nil {
		return err
	}

	held := operation.NetQuantity(ops)
	if held.LessThan(amount) {
		return fmt.Errorf("%w: %s holds %s, cannot subtract %s", errs.ErrInsufficientQuantity, a.Symbol, held, amount)
	}
	return nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", errs.ErrInvalidAmount, amount)
	}
	return nil
}
