package price

import (
	"context"
	"testing"

	"cryptowallet/internal/adapters/sqlite"
	"cryptowallet/internal/domain/date"
	"cryptowallet/internal/domain/price"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]price.Store {
	t.Helper()

	db, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return map[string]price.Store{
		"sqlite": NewSQLiteStore(db),
		"memory": NewMemoryStore(),
	}
}

func point(assetID, day, p string) price.Point {
	return price.Point{AssetID: assetID, Date: date.MustParse(day), Price: decimal.RequireFromString(p)}
}

func TestStoreUpsertReplaces(t *testing.T) {
	ctx := context.Background()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Upsert(ctx, price.Series{
				point("bitcoin", "2025-01-02", "110"),
				point("bitcoin", "2025-01-01", "100"),
				point("ethereum", "2025-01-01", "3000"),
			}))
			require.NoError(t, s.Upsert(ctx, price.Series{point("bitcoin", "2025-01-02", "111.5")}))

			series, err := s.PricesForAsset(ctx, "bitcoin")
			require.NoError(t, err)
			require.Len(t, series, 2, "one point per day")
			assert.Equal(t, date.MustParse("2025-01-01"), series[0].Date)
			assert.True(t, series[1].Price.Equal(decimal.RequireFromString("111.5")), "got %s", series[1].Price)
		})
	}
}

func TestStoreBounds(t *testing.T) {
	ctx := context.Background()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.LatestDateForAsset(ctx, "bitcoin")
			require.NoError(t, err)
			assert.False(t, ok)

			_, ok, err = s.LatestPriceForAsset(ctx, "bitcoin")
			require.NoError(t, err)
			assert.False(t, ok)

			empty, err := s.PricesForAsset(ctx, "bitcoin")
			require.NoError(t, err)
			assert.Empty(t, empty)

			require.NoError(t, s.Upsert(ctx, price.Series{
				point("bitcoin", "2025-01-05", "150"),
				point("bitcoin", "2024-12-30", "90"),
				point("bitcoin", "2025-01-01", "100"),
			}))

			oldest, ok, err := s.OldestDateForAsset(ctx, "bitcoin")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, date.MustParse("2024-12-30"), oldest)

			latest, ok, err := s.LatestDateForAsset(ctx, "bitcoin")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, date.MustParse("2025-01-05"), latest)

			p, ok, err := s.LatestPriceForAsset(ctx, "bitcoin")
			require.NoError(t, err)
			require.True(t, ok)
			assert.True(t, p.Equal(decimal.NewFromInt(150)))
		})
	}
}

func TestStoreDeleteAll(t *testing.T) {
	ctx := context.Background()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Upsert(ctx, price.Series{point("bitcoin", "2025-01-01", "100")}))
			require.NoError(t, s.DeleteAll(ctx))

			series, err := s.PricesForAsset(ctx, "bitcoin")
			require.NoError(t, err)
			assert.Empty(t, series)
		})
	}
}
