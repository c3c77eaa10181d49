package operation

import (
	"context"
	"fmt"
	"time"

	"cryptowallet/internal/domain/date"
	"cryptowallet/internal/domain/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindAdd      Kind = "add"
	KindSubtract Kind = "subtract"
)

// ParseKind validates a stored or user supplied kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindAdd, KindSubtract:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", errs.ErrInvalidOperationKind, s)
	}
}

// Operation is a dated quantity change of one asset. It is never mutated once created.
type Operation struct {
	ID        string
	AssetID   string
	Symbol    string
	Amount    decimal.Decimal
	Date      date.Date
	Kind      Kind
	CreatedAt time.Time
}

func NewOperation(assetID, symbol string, amount decimal.Decimal, on date.Date, kind Kind) *Operation {
	return &Operation{
		ID:        uuid.New().String(),
		AssetID:   assetID,
		Symbol:    symbol,
		Amount:    amount,
		Date:      on,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
}

// Delta returns the signed quantity change: positive for add, negative for subtract.
func (o *Operation) Delta() decimal.Decimal {
	if o.Kind == KindSubtract {
		return o.Amount.Neg()
	}
	return o.Amount
}

// Validate checks that the amount is strictly positive and the kind is known.
func (o *Operation) Validate() error {
	if o.AssetID == "" {
		return fmt.Errorf("%w: asset id is required", errs.ErrUnknownSymbol)
	}
	if !o.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", errs.ErrInvalidAmount, o.Amount)
	}
	if _, err := ParseKind(string(o.Kind)); err != nil {
		return err
	}
	return nil
}

// NetQuantity sums the signed deltas of ops.
func NetQuantity(ops []*Operation) decimal.Decimal {
	total := decimal.Zero
	for _, op := range ops {
		total = total.Add(op.Delta())
	}
	return total
}

// GroupByDate partitions ops by their calendar day, preserving ledger order within a day.
func GroupByDate(ops []*Operation) map[date.Date][]*Operation {
	byDate := make(map[date.Date][]*Operation)
	for _, op := range ops {
		byDate[op.Date] = append(byDate[op.Date], op)
	}
	return byDate
}

// Ledger is the append-only store of operations.
type Ledger interface {
	Append(ctx context.Context, op *Operation) error
	List(ctx context.Context) ([]*Operation, error)
	ListForAsset(ctx context.Context, assetID string) ([]*Operation, error)
	// OldestDateForAsset returns ok=false when the asset has no operations.
	OldestDateForAsset(ctx context.Context, assetID string) (date.Date, bool, error)
	DeleteAll(ctx context.Context) error
	DeleteForAsset(ctx context.Context, assetID string) error
}
