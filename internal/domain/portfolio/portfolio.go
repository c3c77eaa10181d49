package portfolio

import (
	"sort"
	"time"

	"cryptowallet/internal/domain/date"

	"github.com/shopspring/decimal"
)

// HoldingSnapshot is the present-day position in one asset. It is derived on every run and never stored.
type HoldingSnapshot struct {
	AssetID   string
	Symbol    string
	Quantity  decimal.Decimal
	SpotPrice decimal.Decimal
	Value     decimal.Decimal
}

// NewHoldingSnapshot prices quantity at spot.
func NewHoldingSnapshot(assetID, symbol string, quantity, spot decimal.Decimal) *HoldingSnapshot {
	return &HoldingSnapshot{
		AssetID:   assetID,
		Symbol:    symbol,
		Quantity:  quantity,
		SpotPrice: spot,
		Value:     CalculateValue(quantity, spot),
	}
}

// CalculateValue returns quantity * price rounded to 8 decimal places.
func CalculateValue(quantity, price decimal.Decimal) decimal.Decimal {
	return quantity.Mul(price).Round(ValueDecimals)
}

// ValueDecimals bounds the precision of computed values.
const ValueDecimals = 8

// DailyValue is the total portfolio value on one day.
// Partial is set when a held asset had no price for exactly that day and contributed 0.
type DailyValue struct {
	Date    date.Date
	Value   decimal.Decimal
	Partial bool
}

// ValueSeries has exactly one entry per day, in ascending order.
type ValueSeries []DailyValue

// On returns the value recorded for d.
func (s ValueSeries) On(d date.Date) (decimal.Decimal, bool) {
	i := sort.Search(len(s), func(i int) bool { return !s[i].Date.Before(d) })
	if i < len(s) && s[i].Date == d {
		return s[i].Value, true
	}
	return decimal.Zero, false
}

// Contiguous reports whether the series has no missing or repeated days.
func (s ValueSeries) Contiguous() bool {
	for i := 1; i < len(s); i++ {
		if s[i].Date != s[i-1].Date.Add(1) {
			return false
		}
	}
	return true
}

// Slice is one allocation entry, keyed by symbol.
type Slice struct {
	Symbol string
	Value  decimal.Decimal
}

// Allocation builds one slice per snapshot.
func Allocation(holdings []*HoldingSnapshot) []Slice {
	slices := make([]Slice, 0, len(holdings))
	for _, h := range holdings {
		slices = append(slices, Slice{Symbol: h.Symbol, Value: h.Value})
	}
	return slices
}

// Stage names the reconciliation step that failed for an asset.
type Stage string

const (
	StageFirstNeed Stage = "first_need_date"
	StageLoad      Stage = "load_cache"
	StageBackfill  Stage = "backfill"
	StageTopUp     Stage = "top_up"
	StageSpot      Stage = "spot_price"
)

// AssetFailure is a per-asset error event. The asset is left out of that run's output.
type AssetFailure struct {
	AssetID string
	Symbol  string
	Stage   Stage
	Err     error
}

func (f AssetFailure) Error() string {
	return string(f.Stage) + " failed for " + f.AssetID + ": " + f.Err.Error()
}

func (f AssetFailure) Unwrap() error { return f.Err }

// Valuation is the output of one engine run.
type Valuation struct {
	Series       ValueSeries
	Holdings     []*HoldingSnapshot
	Allocation   []Slice
	Failures     []AssetFailure
	CalculatedAt time.Time
}

// TotalValue sums today's holdings.
func (v *Valuation) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, h := range v.Holdings {
		total = total.Add(h.Value)
	}
	return total
}
