package price

import (
	"context"
	"sync"

	"cryptowallet/internal/domain/date"
	"cryptowallet/internal/domain/price"

	"github.com/shopspring/decimal"
)

// MemoryStore is an in-process price store keyed by asset and day.
type MemoryStore struct {
	mu     sync.RWMutex
	points map[string]map[date.Date]decimal.Decimal
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{points: make(map[string]map[date.Date]decimal.Decimal)}
}

func (s *MemoryStore) PricesForAsset(_ context.Context, assetID string) (price.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series := make(price.Series, 0, len(s.points[assetID]))
	for d, p := range s.points[assetID] {
		series = append(series, price.Point{AssetID: assetID, Date: d, Price: p})
	}
	series.Sort()
	return series, nil
}

func (s *MemoryStore) OldestDateForAsset(ctx context.Context, assetID string) (date.Date, bool, error) {
	series, _ := s.PricesForAsset(ctx, assetID)
	if len(series) == 0 {
		return date.Date{}, false, nil
	}
	return series[0].Date, true, nil
}

func (s *MemoryStore) LatestDateForAsset(ctx context.Context, assetID string) (date.Date, bool, error) {
	series, _ := s.PricesForAsset(ctx, assetID)
	d, ok := series.Latest()
	return d, ok, nil
}

func (s *MemoryStore) LatestPriceForAsset(ctx context.Context, assetID string) (decimal.Decimal, bool, error) {
	series, _ := s.PricesForAsset(ctx, assetID)
	if len(series) == 0 {
		return decimal.Zero, false, nil
	}
	return series[len(series)-1].Price, true, nil
}

func (s *MemoryStore) Upsert(_ context.Context, points price.Series) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		byDay, ok := s.points[p.AssetID]
		if !ok {
			byDay = make(map[date.Date]decimal.Decimal)
			s.points[p.AssetID] = byDay
		}
		byDay[p.Date] = p.Price
	}
	return nil
}

func (s *MemoryStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	s.points = make(map[string]map[date.Date]decimal.Decimal)
	s.mu.Unlock()
	return nil
}
