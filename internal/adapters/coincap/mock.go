package coincap

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"cryptowallet/internal/domain/asset"
	"cryptowallet/internal/domain/date"
	"cryptowallet/internal/domain/errs"
	"cryptowallet/internal/domain/price"

	"github.com/shopspring/decimal"
)

var mockCatalog = []*asset.Asset{
	{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin"},
	{ID: "ethereum", Symbol: "ETH", Name: "Ethereum"},
	{ID: "solana", Symbol: "SOL", Name: "Solana"},
	{ID: "cardano", Symbol: "ADA", Name: "Cardano"},
	{ID: "dogecoin", Symbol: "DOGE", Name: "Dogecoin"},
}

// MockProvider serves a fixed catalog and deterministic daily prices without network access.
type MockProvider struct {
	now func() time.Time
}

func NewMockProvider(now func() time.Time) *MockProvider {
	if now == nil {
		now = time.Now
	}
	return &MockProvider{now: now}
}

func (p *MockProvider) CurrentPrice(_ context.Context, assetID string) (decimal.Decimal, error) {
	if _, ok := p.lookup(assetID); !ok {
		return decimal.Zero, &errs.StatusError{Code: 404, Body: fmt.Sprintf("%s not found", assetID)}
	}
	return mockPrice(assetID, date.Of(p.now())), nil
}

func (p *MockProvider) HistoricalSeries(_ context.Context, assetID string, start, end time.Time) ([]price.Quote, error) {
	if _, ok := p.lookup(assetID); !ok {
		return nil, &errs.StatusError{Code: 404, Body: fmt.Sprintf("%s not found", assetID)}
	}

	var quotes []price.Quote
	for _, d := range date.Range(date.Of(start), date.Of(end)) {
		quotes = append(quotes, price.Quote{Time: d.Time(), Price: mockPrice(assetID, d)})
	}
	return quotes, nil
}

func (p *MockProvider) ListAssets(_ context.Context) ([]*asset.Asset, error) {
	today := date.Of(p.now())
	assets := make([]*asset.Asset, 0, len(mockCatalog))
	for _, a := range mockCatalog {
		cp := *a
		cp.PriceUSD = mockPrice(a.ID, today)
		assets = append(assets, &cp)
	}
	return assets, nil
}

func (p *MockProvider) lookup(assetID string) (*asset.Asset, bool) {
	for _, a := range mockCatalog {
		if a.ID == assetID {
			return a, true
		}
	}
	return nil, false
}

// mockPrice is a per-asset base plus a 30 day sawtooth.
func mockPrice(assetID string, d date.Date) decimal.Decimal {
	h := fnv.New32a()
	h.Write([]byte(assetID))
	base := int64(h.Sum32()%900) + 100
	wave := int64(d.DaysSince(date.New(2000, time.January, 1)) % 30)
	return decimal.NewFromInt(base + wave)
}
