package http

import (
	"context"

	pricesvc "cryptowallet/internal/application/price"
	"cryptowallet/internal/application/scheduler"
	"cryptowallet/internal/domain/asset"
	"cryptowallet/internal/domain/operation"
	"cryptowallet/internal/domain/portfolio"

	"github.com/shopspring/decimal"
)

type ValuationService interface {
	Calculate(ctx context.Context) (*portfolio.Valuation, error)
}

type AssetsService interface {
	Catalog(ctx context.Context) ([]*asset.Asset, error)
	AddAsset(ctx context.Context, symbol string, amount decimal.Decimal) (*portfolio.HoldingSnapshot, error)
	EditAsset(ctx context.Context, symbol string, initialAmount, newAmount decimal.Decimal) (bool, error)
	DeleteAsset(ctx context.Context, symbol string, amount decimal.Decimal) error
	Operations(ctx context.Context) ([]*operation.Operation, error)
	RemoveAssetHistory(ctx context.Context, assetID string) error
	Reset(ctx context.Context) error
}

type PriceService interface {
	Coverage(ctx context.Context, assetID string) (*pricesvc.Coverage, error)
}

type SyncService interface {
	Sync(ctx context.Context) (*scheduler.SyncReport, error)
}
