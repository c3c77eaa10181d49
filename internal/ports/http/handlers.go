package http

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request bodies. Amounts accept JSON numbers or decimal strings.

type AddAssetRequest struct {
	Symbol string          `json:"symbol"`
	Amount decimal.Decimal `json:"amount"`
}

type EditAssetRequest struct {
	InitialAmount decimal.Decimal `json:"initial_amount"`
	NewAmount     decimal.Decimal `json:"new_amount"`
}

type DeleteAssetRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Responses. Decimals are rendered as JSON strings.

type DailyValue struct {
	Date    string          `json:"date"`
	Value   decimal.Decimal `json:"value_usd"`
	Partial bool            `json:"partial,omitempty"`
}

type Holding struct {
	AssetID  string          `json:"asset_id"`
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
	PriceUSD decimal.Decimal `json:"price_usd"`
	ValueUSD decimal.Decimal `json:"value_usd"`
}

type AllocationSlice struct {
	Symbol   string          `json:"symbol"`
	ValueUSD decimal.Decimal `json:"value_usd"`
	Percent  decimal.Decimal `json:"percent"`
}

type AssetFailure struct {
	AssetID string `json:"asset_id"`
	Symbol  string `json:"symbol"`
	Stage   string `json:"stage"`
	Error   string `json:"error"`
}

type Valuation struct {
	Currency     string             `json:"currency"`
	TotalValue   decimal.Decimal    `json:"total_value_usd"`
	Holdings     []*Holding         `json:"holdings"`
	Allocation   []*AllocationSlice `json:"allocation"`
	History      []*DailyValue      `json:"history,omitempty"`
	Failures     []*AssetFailure    `json:"failures,omitempty"`
	CalculatedAt time.Time          `json:"calculated_at"`
}

type History struct {
	Currency string          `json:"currency"`
	From     string          `json:"from,omitempty"`
	To       string          `json:"to,omitempty"`
	Points   []*DailyValue   `json:"points"`
	Failures []*AssetFailure `json:"failures,omitempty"`
}

type Operation struct {
	ID        string          `json:"id"`
	AssetID   string          `json:"asset_id"`
	Symbol    string          `json:"symbol"`
	Amount    decimal.Decimal `json:"amount"`
	Date      string          `json:"date"`
	Kind      string          `json:"kind"`
	CreatedAt time.Time       `json:"created_at"`
}

type EditAssetResponse struct {
	Changed bool `json:"changed"`
}

type Coin struct {
	ID       string          `json:"id"`
	Symbol   string          `json:"symbol"`
	Name     string          `json:"name"`
	PriceUSD decimal.Decimal `json:"price_usd"`
}

type PriceCoverage struct {
	AssetID     string           `json:"asset_id"`
	Oldest      string           `json:"oldest,omitempty"`
	Latest      string           `json:"latest,omitempty"`
	LatestPrice *decimal.Decimal `json:"latest_price_usd,omitempty"`
	Points      int              `json:"points"`
}

type SyncReport struct {
	Assets   int             `json:"assets"`
	Points   int             `json:"points"`
	Failures []*AssetFailure `json:"failures,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
