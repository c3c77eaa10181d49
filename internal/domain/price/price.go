package price

import (
	"context"
	"sort"
	"time"

	"cryptowallet/internal/domain/asset"
	"cryptowallet/internal/domain/date"

	"github.com/shopspring/decimal"
)

const Currency = "USD"

// Point is the closing USD price of one asset on one day.
type Point struct {
	AssetID string
	Date    date.Date
	Price   decimal.Decimal
}

// Quote is a raw timestamped price as returned by the API.
type Quote struct {
	Time  time.Time
	Price decimal.Decimal
}

// Series is a per-asset price history.
type Series []Point

// Sort orders the series by date ascending.
func (s Series) Sort() {
	sort.Slice(s, func(i, j int) bool { return s[i].Date.Before(s[j].Date) })
}

// On returns the price recorded for exactly day d.
func (s Series) On(d date.Date) (decimal.Decimal, bool) {
	for _, p := range s {
		if p.Date == d {
			return p.Price, true
		}
	}
	return decimal.Zero, false
}

// Latest returns the most recent day of the series.
func (s Series) Latest() (date.Date, bool) {
	var latest date.Date
	found := false
	for _, p := range s {
		if !found || p.Date.After(latest) {
			latest = p.Date
			found = true
		}
	}
	return latest, found
}

// Index returns the series keyed by day. Later points win on duplicate days.
func (s Series) Index() map[date.Date]decimal.Decimal {
	idx := make(map[date.Date]decimal.Decimal, len(s))
	for _, p := range s {
		idx[p.Date] = p.Price
	}
	return idx
}

// PointsFromQuotes collapses quotes to one point per UTC day; the last quote of a day wins.
func PointsFromQuotes(assetID string, quotes []Quote) Series {
	byDay := make(map[date.Date]decimal.Decimal, len(quotes))
	for _, q := range quotes {
		byDay[date.Of(q.Time)] = q.Price
	}
	points := make(Series, 0, len(byDay))
	for d, p := range byDay {
		points = append(points, Point{AssetID: assetID, Date: d, Price: p})
	}
	points.Sort()
	return points
}

// Store is the local cache of daily closes.
type Store interface {
	PricesForAsset(ctx context.Context, assetID string) (Series, error)
	OldestDateForAsset(ctx context.Context, assetID string) (date.Date, bool, error)
	LatestDateForAsset(ctx context.Context, assetID string) (date.Date, bool, error)
	LatestPriceForAsset(ctx context.Context, assetID string) (decimal.Decimal, bool, error)
	// Upsert replaces any existing point for the same (asset, day).
	Upsert(ctx context.Context, points Series) error
	DeleteAll(ctx context.Context) error
}

// Provider is the remote price API.
type Provider interface {
	CurrentPrice(ctx context.Context, assetID string) (decimal.Decimal, error)
	HistoricalSeries(ctx context.Context, assetID string, start, end time.Time) ([]Quote, error)
	ListAssets(ctx context.Context) ([]*asset.Asset, error)
}
