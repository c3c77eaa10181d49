package coincap

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"cryptowallet/internal/adapters/logger"
	"cryptowallet/internal/domain"
	"cryptowallet/internal/domain/asset"
	"cryptowallet/internal/domain/price"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const catalogKey = "assets"

type assetDTO struct {
	ID       string          `json:"id"`
	Symbol   string          `json:"symbol"`
	Name     string          `json:"name"`
	PriceUSD decimal.Decimal `json:"priceUsd"`
}

type assetResponse struct {
	Data assetDTO `json:"data"`
}

type assetsResponse struct {
	Data []assetDTO `json:"data"`
}

type historyDTO struct {
	PriceUSD decimal.Decimal `json:"priceUsd"`
	Time     int64           `json:"time"`
}

type historyResponse struct {
	Data []historyDTO `json:"data"`
}

// Provider implements price.Provider on top of Client.
// Spot prices and the asset catalog are served from caches when fresh.
type Provider struct {
	client  *Client
	spot    domain.Cache[string, decimal.Decimal]
	catalog domain.Cache[string, []*asset.Asset]
	logger  *logger.Logger
}

// NewProvider wires the client with its caches. Either cache may be nil to disable it.
func NewProvider(
	client *Client,
	spot domain.Cache[string, decimal.Decimal],
	catalog domain.Cache[string, []*asset.Asset],
	log *logger.Logger,
) *Provider {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Provider{client: client, spot: spot, catalog: catalog, logger: log}
}

func (p *Provider) CurrentPrice(ctx context.Context, assetID string) (decimal.Decimal, error) {
	if p.spot != nil {
		if v, ok := p.spot.Get(ctx, assetID); ok {
			return v, nil
		}
	}

	var resp assetResponse
	if err := p.client.Get(ctx, "assets/"+url.PathEscape(assetID), nil, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch spot price for %s: %w", assetID, err)
	}

	if p.spot != nil {
		p.spot.Set(ctx, assetID, resp.Data.PriceUSD)
	}
	return resp.Data.PriceUSD, nil
}

// HistoricalSeries returns daily quotes between start and end.
func (p *Provider) HistoricalSeries(ctx context.Context, assetID string, start, end time.Time) ([]price.Quote, error) {
	params := url.Values{}
	params.Set("interval", "d1")
	params.Set("start", strconv.FormatInt(start.UnixMilli(), 10))
	params.Set("end", strconv.FormatInt(end.UnixMilli(), 10))

	var resp historyResponse
	if err := p.client.Get(ctx, "assets/"+url.PathEscape(assetID)+"/history", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s: %w", assetID, err)
	}

	quotes := make([]price.Quote, 0, len(resp.Data))
	for _, h := range resp.Data {
		quotes = append(quotes, price.Quote{
			Time:  time.UnixMilli(h.Time).UTC(),
			Price: h.PriceUSD,
		})
	}

	p.logger.Debug("fetched price history",
		zap.String("asset_id", assetID),
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Int("quotes", len(quotes)),
	)

	return quotes, nil
}

func (p *Provider) ListAssets(ctx context.Context) ([]*asset.Asset, error) {
	if p.catalog != nil {
		if assets, ok := p.catalog.Get(ctx, catalogKey); ok {
			return assets, nil
		}
	}

	var resp assetsResponse
	if err := p.client.Get(ctx, "assets", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch asset catalog: %w", err)
	}

	assets := make([]*asset.Asset, 0, len(resp.Data))
	for _, a := range resp.Data {
		assets = append(assets, &asset.Asset{
			ID:       a.ID,
			Symbol:   a.Symbol,
			Name:     a.Name,
			PriceUSD: a.PriceUSD,
		})
	}

	if p.catalog != nil {
		p.catalog.Set(ctx, catalogKey, assets)
	}
	// The listing carries current prices too.
	if p.spot != nil {
		spot := make(map[string]decimal.Decimal, len(assets))
		for _, a := range assets {
			spot[a.ID] = a.PriceUSD
		}
		p.spot.SetBatch(ctx, spot)
	}

	p.logger.Info("fetched asset catalog", zap.Int("assets", len(assets)))
	return assets, nil
}
