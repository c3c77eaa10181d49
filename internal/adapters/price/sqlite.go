package price

import (
	"context"
	"database/sql"
	"fmt"

	"cryptowallet/internal/domain/date"
	"cryptowallet/internal/domain/errs"
	"cryptowallet/internal/domain/price"

	"github.com/shopspring/decimal"
)

// SQLiteStore keeps daily closes in the price_points table.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) PricesForAsset(ctx context.Context, assetID string) (price.Series, error) {
	query := `
		SELECT asset_id, date, price
		FROM price_points
		WHERE asset_id = ?
		ORDER BY date ASC
	`

	rows, err := s.db.QueryContext(ctx, query, assetID)
	if err != nil {
		return nil, fmt.Errorf("%w: prices for %s: %v", errs.ErrStorageQuery, assetID, err)
	}
	defer rows.Close()

	series := make(price.Series, 0)
	for rows.Next() {
		var p price.Point
		var dateStr, priceStr string

		if err := rows.Scan(&p.AssetID, &dateStr, &priceStr); err != nil {
			return nil, fmt.Errorf("%w: scan price point: %v", errs.ErrStorageRead, err)
		}
		if p.Date, err = date.Parse(dateStr); err != nil {
			return nil, fmt.Errorf("%w: price point date: %v", errs.ErrStorageRead, err)
		}
		if p.Price, err = decimal.NewFromString(priceStr); err != nil {
			return nil, fmt.Errorf("%w: price point %s/%s value %q: %v", errs.ErrStorageRead, assetID, dateStr, priceStr, err)
		}

		series = append(series, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate price points: %v", errs.ErrStorageRead, err)
	}

	return series, nil
}

func (s *SQLiteStore) OldestDateForAsset(ctx context.Context, assetID string) (date.Date, bool, error) {
	return s.boundary(ctx, `SELECT MIN(date) FROM price_points WHERE asset_id = ?`, assetID)
}

func (s *SQLiteStore) LatestDateForAsset(ctx context.Context, assetID string) (date.Date, bool, error) {
	return s.boundary(ctx, `SELECT MAX(date) FROM price_points WHERE asset_id = ?`, assetID)
}

func (s *SQLiteStore) LatestPriceForAsset(ctx context.Context, assetID string) (decimal.Decimal, bool, error) {
	query := `
		SELECT price
		FROM price_points
		WHERE asset_id = ?
		ORDER BY date DESC
		LIMIT 1
	`

	var priceStr string
	err := s.db.QueryRowContext(ctx, query, assetID).Scan(&priceStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("%w: latest price for %s: %v", errs.ErrStorageQuery, assetID, err)
	}

	p, err := decimal.NewFromString(priceStr)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("%w: latest price for %s %q: %v", errs.ErrStorageRead, assetID, priceStr, err)
	}
	return p, true, nil
}

// Upsert writes points in one transaction. An existing (asset, day) row takes the new price.
func (s *SQLiteStore) Upsert(ctx context.Context, points price.Series) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin upsert: %v", errs.ErrStorageWrite, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO price_points (asset_id, date, price)
		VALUES (?, ?, ?)
		ON CONFLICT(asset_id, date) DO UPDATE SET
			price = excluded.price
	`)
	if err != nil {
		return fmt.Errorf("%w: prepare upsert: %v", errs.ErrStorageWrite, err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, p.AssetID, p.Date.String(), p.Price.String()); err != nil {
			return fmt.Errorf("%w: upsert %s/%s: %v", errs.ErrStorageWrite, p.AssetID, p.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit upsert: %v", errs.ErrStorageWrite, err)
	}
	return nil
}

func (s *SQLiteStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM price_points`); err != nil {
		return fmt.Errorf("%w: delete price points: %v", errs.ErrStorageWrite, err)
	}
	return nil
}

func (s *SQLiteStore) boundary(ctx context.Context, query, assetID string) (date.Date, bool, error) {
	var d sql.NullString
	if err := s.db.QueryRowContext(ctx, query, assetID).Scan(&d); err != nil {
		return date.Date{}, false, fmt.Errorf("%w: date bound for %s: %v", errs.ErrStorageQuery, assetID, err)
	}
	if !d.Valid {
		return date.Date{}, false, nil
	}

	parsed, err := date.Parse(d.String)
	if err != nil {
		return date.Date{}, false, fmt.Errorf("%w: %v", errs.ErrStorageRead, err)
	}
	return parsed, true, nil
}
