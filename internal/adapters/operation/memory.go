package operation

import (
	"context"
	"sort"
	"sync"

	"cryptowallet/internal/domain/date"
	"cryptowallet/internal/domain/operation"
)

// MemoryLedger is an in-process ledger used with the memory database driver and in tests.
type MemoryLedger struct {
	mu  sync.RWMutex
	ops []*operation.Operation
}

func NewMemoryLedger(ops ...*operation.Operation) *MemoryLedger {
	return &MemoryLedger{ops: append([]*operation.Operation(nil), ops...)}
}

func (l *MemoryLedger) Append(_ context.Context, op *operation.Operation) error {
	if err := op.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cp := *op
	l.ops = append(l.ops, &cp)
	return nil
}

func (l *MemoryLedger) List(_ context.Context) ([]*operation.Operation, error) {
	return l.filter(func(*operation.Operation) bool { return true }), nil
}

func (l *MemoryLedger) ListForAsset(_ context.Context, assetID string) ([]*operation.Operation, error) {
	return l.filter(func(op *operation.Operation) bool { return op.AssetID == assetID }), nil
}

func (l *MemoryLedger) OldestDateForAsset(_ context.Context, assetID string) (date.Date, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var oldest date.Date
	found := false
	for _, op := range l.ops {
		if op.AssetID != assetID {
			continue
		}
		if !found || op.Date.Before(oldest) {
			oldest = op.Date
			found = true
		}
	}
	return oldest, found, nil
}

func (l *MemoryLedger) DeleteAll(_ context.Context) error {
	l.mu.Lock()
	l.ops = nil
	l.mu.Unlock()
	return nil
}

func (l *MemoryLedger) DeleteForAsset(_ context.Context, assetID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.ops[:0]
	for _, op := range l.ops {
		if op.AssetID != assetID {
			kept = append(kept, op)
		}
	}
	l.ops = kept
	return nil
}

// filter returns copies ordered by date, then insertion order.
func (l *MemoryLedger) filter(keep func(*operation.Operation) bool) []*operation.Operation {
	l.mu.RLock()
	defer l.mu.RUnlock()

	res := make([]*operation.Operation, 0, len(l.ops))
	for _, op := range l.ops {
		if keep(op) {
			cp := *op
			res = append(res, &cp)
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].Date.Before(res[j].Date) })
	return res
}
