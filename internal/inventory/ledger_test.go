package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"storeledger/backend/internal/logging"
	"storeledger/backend/internal/metrics"
	"storeledger/backend/internal/store"
)

type fakeStock struct {
	stock map[int64]int
}

func (f *fakeStock) DecrementStock(_ context.Context, productID int64, qty int) (int, error) {
	current, ok := f.stock[productID]
	if !ok {
		return 0, store.NotFound("product", productID)
	}
	if current < qty {
		return current, &store.InsufficientStockError{ProductID: productID, Requested: qty, Available: current}
	}
	f.stock[productID] = current - qty
	return current - qty, nil
}

func (f *fakeStock) ZeroStock(_ context.Context, productID int64) error {
	f.stock[productID] = 0
	return nil
}

func (f *fakeStock) IncrementStock(_ context.Context, productID int64, qty int) (int, error) {
	f.stock[productID] += qty
	return f.stock[productID], nil
}

func TestReserveDecrements(t *testing.T) {
	stock := &fakeStock{stock: map[int64]int{1: 5}}
	ledger := NewLedger(PolicyReject, logging.Discard(), nil)

	left, err := ledger.Reserve(context.Background(), stock, 1, 2)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if left != 3 || stock.stock[1] != 3 {
		t.Fatalf("expected stock 3, got %d", left)
	}
}

func TestReserveRejectsOversellByDefault(t *testing.T) {
	stock := &fakeStock{stock: map[int64]int{1: 2}}
	ledger := NewLedger("", logging.Discard(), nil)

	_, err := ledger.Reserve(context.Background(), stock, 1, 3)
	var stockErr *store.InsufficientStockError
	if !errors.As(err, &stockErr) || stockErr.Available != 2 {
		t.Fatalf("expected insufficient stock with available 2, got %v", err)
	}
	if stock.stock[1] != 2 {
		t.Fatalf("expected stock untouched, got %d", stock.stock[1])
	}
}

func TestReserveClampFloorsAtZeroAndCounts(t *testing.T) {
	stock := &fakeStock{stock: map[int64]int{1: 2}}
	m := metrics.New()
	ledger := NewLedger(PolicyClamp, logging.Discard(), m)

	left, err := ledger.Reserve(context.Background(), stock, 1, 3)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if left != 0 || stock.stock[1] != 0 {
		t.Fatalf("expected stock floored at 0, got %d", stock.stock[1])
	}
	if got := testutil.ToFloat64(m.StockFloorHits); got != 1 {
		t.Fatalf("expected one floor hit, got %v", got)
	}
}

func TestReserveClampStillReportsMissingProduct(t *testing.T) {
	ledger := NewLedger(PolicyClamp, logging.Discard(), nil)
	_, err := ledger.Reserve(context.Background(), &fakeStock{stock: map[int64]int{}}, 9, 1)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReleaseHasNoUpperBound(t *testing.T) {
	stock := &fakeStock{stock: map[int64]int{1: 0}}
	ledger := NewLedger(PolicyReject, logging.Discard(), nil)

	left, err := ledger.Release(context.Background(), stock, 1, 1000)
	if err != nil || left != 1000 {
		t.Fatalf("expected stock 1000, got %d (%v)", left, err)
	}
}
