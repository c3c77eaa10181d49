package assets

import (
	"context"
	"errors"
	"testing"
	"time"

	opadapter "cryptowallet/internal/adapters/operation"
	priceadapter "cryptowallet/internal/adapters/price"
	"cryptowallet/internal/domain/asset"
	"cryptowallet/internal/domain/date"
	"cryptowallet/internal/domain/errs"
	"cryptowallet/internal/domain/operation"
	"cryptowallet/internal/domain/price"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCatalog struct {
	assets []*asset.Asset
	err    error
	calls  int
}

func (m *mockCatalog) ListAssets(context.Context) ([]*asset.Asset, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.assets, nil
}

func newTestService(t *testing.T) (*Service, *opadapter.MemoryLedger, *priceadapter.MemoryStore, *mockCatalog) {
	t.Helper()

	ledger := opadapter.NewMemoryLedger()
	store := priceadapter.NewMemoryStore()
	catalog := &mockCatalog{assets: []*asset.Asset{
		{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin", PriceUSD: decimal.NewFromInt(100)},
		{ID: "ethereum", Symbol: "ETH", Name: "Ethereum", PriceUSD: decimal.NewFromInt(10)},
	}}
	now := time.Date(2025, 1, 3, 9, 30, 0, 0, time.UTC)

	svc := NewService(ledger, store, catalog, nil, func() time.Time { return now })
	return svc, ledger, store, catalog
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAddAsset(t *testing.T) {
	svc, ledger, _, catalog := newTestService(t)
	ctx := context.Background()

	item, err := svc.AddAsset(ctx, "btc", dec("1.5"))
	require.NoError(t, err)
	assert.Equal(t, "BTC", item.Symbol)
	assert.True(t, item.Value.Equal(dec("150")), "value %s", item.Value)

	_, err = svc.AddAsset(ctx, "ETH", dec("2"))
	require.NoError(t, err)

	ops, err := ledger.List(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, "bitcoin", ops[0].AssetID)
	assert.Equal(t, operation.KindAdd, ops[0].Kind)
	assert.Equal(t, date.MustParse("2025-01-03"), ops[0].Date)

	assert.Equal(t, 1, catalog.calls, "catalog is fetched once per service")
}

func TestAddAssetErrors(t *testing.T) {
	tests := []struct {
		name    string
		symbol  string
		amount  string
		wantErr error
	}{
		{name: "unknown symbol", symbol: "NOPE", amount: "1", wantErr: errs.ErrUnknownSymbol},
		{name: "blank symbol", symbol: " ", amount: "1", wantErr: errs.ErrUnknownSymbol},
		{name: "zero amount", symbol: "BTC", amount: "0", wantErr: errs.ErrInvalidAmount},
		{name: "negative amount", symbol: "BTC", amount: "-1", wantErr: errs.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, ledger, _, _ := newTestService(t)
			ctx := context.Background()

			_, err := svc.AddAsset(ctx, tt.symbol, dec(tt.amount))
			assert.ErrorIs(t, err, tt.wantErr)

			ops, _ := ledger.List(ctx)
			assert.Empty(t, ops)
		})
	}
}

func TestCatalogFailureIsNotCached(t *testing.T) {
	svc, _, _, catalog := newTestService(t)
	ctx := context.Background()
	catalog.err = errs.ErrNetwork

	_, err := svc.AddAsset(ctx, "BTC", dec("1"))
	assert.ErrorIs(t, err, errs.ErrNetwork)

	catalog.err = nil
	_, err = svc.AddAsset(ctx, "BTC", dec("1"))
	assert.NoError(t, err)
	assert.Equal(t, 2, catalog.calls)
}

func TestEditAsset(t *testing.T) {
	tests := []struct {
		name        string
		initial     string
		updated     string
		wantChanged bool
		wantKind    operation.Kind
		wantAmount  string
		wantErr     error
	}{
		{name: "equal amounts append nothing", initial: "2", updated: "2.0"},
		{name: "increase adds the delta", initial: "2", updated: "3.5", wantChanged: true, wantKind: operation.KindAdd, wantAmount: "1.5"},
		{name: "decrease subtracts the delta", initial: "2", updated: "0.5", wantChanged: true, wantKind: operation.KindSubtract, wantAmount: "1.5"},
		{name: "decrease beyond holdings", initial: "5", updated: "1", wantErr: errs.ErrInsufficientQuantity},
		{name: "negative amount", initial: "2", updated: "-1", wantErr: errs.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, ledger, _, _ := newTestService(t)
			ctx := context.Background()

			_, err := svc.AddAsset(ctx, "BTC", dec("2"))
			require.NoError(t, err)

			changed, err := svc.EditAsset(ctx, "BTC", dec(tt.initial), dec(tt.updated))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantChanged, changed)

			ops, err := ledger.List(ctx)
			require.NoError(t, err)
			if !tt.wantChanged {
				assert.Len(t, ops, 1)
				return
			}
			require.Len(t, ops, 2)
			assert.Equal(t, tt.wantKind, ops[1].Kind)
			assert.True(t, ops[1].Amount.Equal(dec(tt.wantAmount)), "amount %s", ops[1].Amount)
		})
	}
}

func TestDeleteAsset(t *testing.T) {
	svc, ledger, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddAsset(ctx, "ETH", dec("1.0"))
	require.NoError(t, err)
	_, err = svc.EditAsset(ctx, "ETH", dec("1.0"), dec("0.4"))
	require.NoError(t, err)

	err = svc.DeleteAsset(ctx, "ETH", dec("0.5"))
	assert.ErrorIs(t, err, errs.ErrInsufficientQuantity)

	require.NoError(t, svc.DeleteAsset(ctx, "ETH", dec("0.4")))

	ops, err := ledger.ListForAsset(ctx, "ethereum")
	require.NoError(t, err)
	assert.True(t, operation.NetQuantity(ops).IsZero(), "net %s", operation.NetQuantity(ops))
}

func TestRemoveAssetHistoryAndReset(t *testing.T) {
	svc, ledger, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddAsset(ctx, "BTC", dec("1"))
	require.NoError(t, err)
	_, err = svc.AddAsset(ctx, "ETH", dec("1"))
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, price.Series{{AssetID: "bitcoin", Date: date.MustParse("2025-01-01"), Price: dec("100")}}))

	require.NoError(t, svc.RemoveAssetHistory(ctx, "bitcoin"))
	ops, err := svc.Operations(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "ethereum", ops[0].AssetID)

	require.NoError(t, svc.Reset(ctx))
	ops, _ = ledger.List(ctx)
	assert.Empty(t, ops)
	series, _ := store.PricesForAsset(ctx, "bitcoin")
	assert.Empty(t, series)
}

type brokenLedger struct {
	operation.Ledger
}

func (brokenLedger) Append(context.Context, *operation.Operation) error {
	return errs.ErrStorageWrite
}

func TestAddAssetStorageFailure(t *testing.T) {
	catalog := &mockCatalog{assets: []*asset.Asset{{ID: "bitcoin", Symbol: "BTC"}}}
	svc := NewService(brokenLedger{}, priceadapter.NewMemoryStore(), catalog, nil, nil)

	_, err := svc.AddAsset(context.Background(), "BTC", dec("1"))
	assert.True(t, errors.Is(err, errs.ErrStorageWrite))
}
