package operation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cryptowallet/internal/domain/date"
	"cryptowallet/internal/domain/errs"
	"cryptowallet/internal/domain/operation"

	"github.com/shopspring/decimal"
)

// SQLiteLedger stores operations in the operations table.
type SQLiteLedger struct {
	db *sql.DB
}

func NewSQLiteLedger(db *sql.DB) *SQLiteLedger {
	return &SQLiteLedger{db: db}
}

func (l *SQLiteLedger) Append(ctx context.Context, op *operation.Operation) error {
	if err := op.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO operations (id, asset_id, symbol, amount, date, kind, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := op.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := l.db.ExecContext(ctx, query,
		op.ID,
		op.AssetID,
		op.Symbol,
		op.Amount.String(),
		op.Date.String(),
		string(op.Kind),
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: append operation %s: %v", errs.ErrStorageWrite, op.ID, err)
	}

	return nil
}

func (l *SQLiteLedger) List(ctx context.Context) ([]*operation.Operation, error) {
	query := `
		SELECT id, asset_id, symbol, amount, date, kind, created_at
		FROM operations
		ORDER BY date ASC, rowid ASC
	`
	return l.query(ctx, query)
}

func (l *SQLiteLedger) ListForAsset(ctx context.Context, assetID string) ([]*operation.Operation, error) {
	query := `
		SELECT id, asset_id, symbol, amount, date, kind, created_at
		FROM operations
		WHERE asset_id = ?
		ORDER BY date ASC, rowid ASC
	`
	return l.query(ctx, query, assetID)
}

func (l *SQLiteLedger) OldestDateForAsset(ctx context.Context, assetID string) (date.Date, bool, error) {
	var oldest sql.NullString
	err := l.db.QueryRowContext(ctx, `SELECT MIN(date) FROM operations WHERE asset_id = ?`, assetID).Scan(&oldest)
	if err != nil {
		return date.Date{}, false, fmt.Errorf("%w: oldest operation for %s: %v", errs.ErrStorageQuery, assetID, err)
	}
	if !oldest.Valid {
		return date.Date{}, false, nil
	}

	d, err := date.Parse(oldest.String)
	if err != nil {
		return date.Date{}, false, fmt.Errorf("%w: %v", errs.ErrStorageRead, err)
	}
	return d, true, nil
}

func (l *SQLiteLedger) DeleteAll(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM operations`); err != nil {
		return fmt.Errorf("%w: delete operations: %v", errs.ErrStorageWrite, err)
	}
	return nil
}

func (l *SQLiteLedger) DeleteForAsset(ctx context.Context, assetID string) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM operations WHERE asset_id = ?`, assetID); err != nil {
		return fmt.Errorf("%w: delete operations for %s: %v", errs.ErrStorageWrite, assetID, err)
	}
	return nil
}

func (l *SQLiteLedger) query(ctx context.Context, query string, args ...any) ([]*operation.Operation, error) {
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list operations: %v", errs.ErrStorageQuery, err)
	}
	defer rows.Close()

	var ops []*operation.Operation
	for rows.Next() {
		var op operation.Operation
		var amountStr, dateStr, kindStr, createdAtStr string

		if err := rows.Scan(&op.ID, &op.AssetID, &op.Symbol, &amountStr, &dateStr, &kindStr, &createdAtStr); err != nil {
			return nil, fmt.Errorf("%w: scan operation: %v", errs.ErrStorageRead, err)
		}

		if op.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("%w: operation %s amount %q: %v", errs.ErrStorageRead, op.ID, amountStr, err)
		}
		if op.Date, err = date.Parse(dateStr); err != nil {
			return nil, fmt.Errorf("%w: operation %s: %v", errs.ErrStorageRead, op.ID, err)
		}
		if op.Kind, err = operation.ParseKind(kindStr); err != nil {
			return nil, fmt.Errorf("%w: operation %s: %v", errs.ErrStorageRead, op.ID, err)
		}

		// Parse created_at
		createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
		if err != nil {
			createdAt, err = time.Parse("2006-01-02 15:04:05", createdAtStr)
			if err != nil {
				return nil, fmt.Errorf("%w: operation %s created_at: %v", errs.ErrStorageRead, op.ID, err)
			}
		}
		op.CreatedAt = createdAt

		ops = append(ops, &op)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate operations: %v", errs.ErrStorageRead, err)
	}

	return ops, nil
}
