package http

import (
	pricesvc "cryptowallet/internal/application/price"
	"cryptowallet/internal/application/scheduler"
	"cryptowallet/internal/domain/asset"
	"cryptowallet/internal/domain/date"
	"cryptowallet/internal/domain/operation"
	"cryptowallet/internal/domain/portfolio"
	"cryptowallet/internal/domain/price"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func ToHTTPHolding(h *portfolio.HoldingSnapshot) *Holding {
	if h == nil {
		return nil
	}
	return &Holding{
		AssetID:  h.AssetID,
		Symbol:   h.Symbol,
		Quantity: h.Quantity,
		PriceUSD: h.SpotPrice,
		ValueUSD: h.Value,
	}
}

func ToHTTPHoldings(holdings []*portfolio.HoldingSnapshot) []*Holding {
	result := make([]*Holding, len(holdings))
	for i, h := range holdings {
		result[i] = ToHTTPHolding(h)
	}
	return result
}

// ToHTTPAllocation adds each slice's share of total as a percentage rounded to 2 places.
func ToHTTPAllocation(slices []portfolio.Slice, total decimal.Decimal) []*AllocationSlice {
	result := make([]*AllocationSlice, len(slices))
	for i, s := range slices {
		pct := decimal.Zero
		if !total.IsZero() {
			pct = s.Value.Div(total).Mul(hundred).Round(2)
		}
		result[i] = &AllocationSlice{Symbol: s.Symbol, ValueUSD: s.Value, Percent: pct}
	}
	return result
}

func ToHTTPSeries(series portfolio.ValueSeries) []*DailyValue {
	result := make([]*DailyValue, len(series))
	for i, dv := range series {
		result[i] = &DailyValue{Date: dv.Date.String(), Value: dv.Value, Partial: dv.Partial}
	}
	return result
}

func ToHTTPFailures(failures []portfolio.AssetFailure) []*AssetFailure {
	if len(failures) == 0 {
		return nil
	}
	result := make([]*AssetFailure, len(failures))
	for i, f := range failures {
		result[i] = &AssetFailure{
			AssetID: f.AssetID,
			Symbol:  f.Symbol,
			Stage:   string(f.Stage),
			Error:   f.Err.Error(),
		}
	}
	return result
}

// ToHTTPValuation maps a run. History is included only when withHistory is set.
func ToHTTPValuation(v *portfolio.Valuation, withHistory bool) *Valuation {
	if v == nil {
		return nil
	}
	total := v.TotalValue()
	out := &Valuation{
		Currency:     price.Currency,
		TotalValue:   total,
		Holdings:     ToHTTPHoldings(v.Holdings),
		Allocation:   ToHTTPAllocation(v.Allocation, total),
		Failures:     ToHTTPFailures(v.Failures),
		CalculatedAt: v.CalculatedAt,
	}
	if withHistory {
		out.History = ToHTTPSeries(v.Series)
	}
	return out
}

// ToHTTPHistory maps the part of the series between from and to inclusive. Zero bounds are open.
func ToHTTPHistory(v *portfolio.Valuation, from, to date.Date) *History {
	var window portfolio.ValueSeries
	for _, dv := range v.Series {
		if !from.IsZero() && dv.Date.Before(from) {
			continue
		}
		if !to.IsZero() && dv.Date.After(to) {
			continue
		}
		window = append(window, dv)
	}

	h := &History{
		Currency: price.Currency,
		Points:   ToHTTPSeries(window),
		Failures: ToHTTPFailures(v.Failures),
	}
	if len(window) > 0 {
		h.From = window[0].Date.String()
		h.To = window[len(window)-1].Date.String()
	}
	return h
}

func ToHTTPOperation(op *operation.Operation) *Operation {
	if op == nil {
		return nil
	}
	return &Operation{
		ID:        op.ID,
		AssetID:   op.AssetID,
		Symbol:    op.Symbol,
		Amount:    op.Amount,
		Date:      op.Date.String(),
		Kind:      string(op.Kind),
		CreatedAt: op.CreatedAt,
	}
}

func ToHTTPOperations(ops []*operation.Operation) []*Operation {
	result := make([]*Operation, len(ops))
	for i, op := range ops {
		result[i] = ToHTTPOperation(op)
	}
	return result
}

func ToHTTPCoins(assets []*asset.Asset) []*Coin {
	result := make([]*Coin, len(assets))
	for i, a := range assets {
		result[i] = &Coin{ID: a.ID, Symbol: a.Symbol, Name: a.Name, PriceUSD: a.PriceUSD}
	}
	return result
}

func ToHTTPCoverage(c *pricesvc.Coverage) *PriceCoverage {
	if c == nil {
		return nil
	}
	out := &PriceCoverage{AssetID: c.AssetID, Points: c.Points}
	if c.Empty {
		return out
	}
	out.Oldest = c.Oldest.String()
	out.Latest = c.Latest.String()
	p := c.LatestPrice
	out.LatestPrice = &p
	return out
}

func ToHTTPSyncReport(r *scheduler.SyncReport) *SyncReport {
	if r == nil {
		return nil
	}
	return &SyncReport{Assets: r.Assets, Points: r.Points, Failures: ToHTTPFailures(r.Failures)}
}
