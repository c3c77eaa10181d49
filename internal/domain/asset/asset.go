package asset

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Asset is a tracked crypto currency as listed by the price API.
type Asset struct {
	ID       string
	Symbol   string
	Name     string
	PriceUSD decimal.Decimal
}

// FindBySymbol matches symbols case-insensitively and returns the first hit.
func FindBySymbol(assets []*Asset, symbol string) (*Asset, bool) {
	for _, a := range assets {
		if strings.EqualFold(a.Symbol, symbol) {
			return a, true
		}
	}
	return nil, false
}
