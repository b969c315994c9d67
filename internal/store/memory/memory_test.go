package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"storeledger/backend/internal/domain"
	"storeledger/backend/internal/store"
)

var _ store.Repository = (*Store)(nil)

func newShop(t *testing.T, s *Store) (*domain.Store, *domain.Product) {
	t.Helper()
	ctx := context.Background()
	shop, err := s.CreateStore(ctx, domain.Store{Name: "Shop", OwnerID: "owner-1"})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	product, err := s.CreateProduct(ctx, domain.Product{StoreID: shop.ID, Name: "Tea", Price: decimal.RequireFromString("10.00"), Stock: 5})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return shop, product
}

func expenseTx(storeID int64) domain.Transaction {
	return domain.Transaction{
		StoreID:       storeID,
		Type:          domain.TypeExpense,
		Category:      domain.CategoryRent,
		Status:        domain.StatusCompleted,
		Expense:       &domain.ExpenseDetail{Recipient: "Landlord"},
		TotalAmount:   decimal.NewFromInt(500),
		PaymentMethod: domain.PaymentTransfer,
		SaleDate:      time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestDecrementStockIsConditional(t *testing.T) {
	s := New()
	_, product := newShop(t, s)
	ctx := context.Background()

	left, err := s.DecrementStock(ctx, product.ID, 3)
	if err != nil || left != 2 {
		t.Fatalf("expected stock 2, got %d (%v)", left, err)
	}

	_, err = s.DecrementStock(ctx, product.ID, 3)
	var stockErr *store.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	if stockErr.Available != 2 {
		t.Fatalf("expected available 2, got %d", stockErr.Available)
	}

	got, _ := s.GetProduct(ctx, product.ID)
	if got.Stock != 2 {
		t.Fatalf("expected stock untouched at 2, got %d", got.Stock)
	}
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	s := New()
	shop, product := newShop(t, s)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context, l store.Ledger) error {
		if _, err := l.CreateTransaction(ctx, expenseTx(shop.ID)); err != nil {
			return err
		}
		if _, err := l.DecrementStock(ctx, product.ID, 4); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	txs, _ := s.ListTransactionsByStore(ctx, shop.ID)
	if len(txs) != 0 {
		t.Fatalf("expected no transactions after rollback, got %d", len(txs))
	}
	got, _ := s.GetProduct(ctx, product.ID)
	if got.Stock != 5 {
		t.Fatalf("expected stock 5 after rollback, got %d", got.Stock)
	}
}

func TestReplaceSoldLinesSnapshotsPriceAndReplaces(t *testing.T) {
	s := New()
	shop, product := newShop(t, s)
	ctx := context.Background()

	tx := expenseTx(shop.ID)
	tx.Type, tx.Category, tx.Expense = domain.TypeIncome, domain.CategorySales, nil
	tx.Income = &domain.IncomeParty{CustomerID: 1, EmployeeID: 1}
	created, err := s.CreateTransaction(ctx, tx)
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	if _, err := s.ReplaceSoldLines(ctx, created.ID, []domain.LineRequest{{ProductID: product.ID, Quantity: 1}, {ProductID: product.ID, Quantity: 2}}); err != nil {
		t.Fatalf("replace lines: %v", err)
	}
	lines, _ := s.ListSoldLines(ctx, created.ID)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Quantity != 2 || lines[0].ID < lines[1].ID {
		t.Fatalf("expected newest line first, got %+v", lines)
	}
	if !lines[0].UnitPrice.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expected unit price snapshot 10.00, got %s", lines[0].UnitPrice)
	}

	if _, err := s.ReplaceSoldLines(ctx, created.ID, []domain.LineRequest{{ProductID: product.ID, Quantity: 4}}); err != nil {
		t.Fatalf("replace lines again: %v", err)
	}
	lines, _ = s.ListSoldLines(ctx, created.ID)
	if len(lines) != 1 || lines[0].Quantity != 4 {
		t.Fatalf("expected single replaced line, got %+v", lines)
	}
}

func TestListTransactionsByStoreDescendingID(t *testing.T) {
	s := New()
	shop, _ := newShop(t, s)
	ctx := context.Background()

	first, _ := s.CreateTransaction(ctx, expenseTx(shop.ID))
	later := expenseTx(shop.ID)
	later.SaleDate = first.SaleDate.AddDate(0, 0, -10)
	second, _ := s.CreateTransaction(ctx, later)

	txs, err := s.ListTransactionsByStore(ctx, shop.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 2 || txs[0].ID != second.ID || txs[1].ID != first.ID {
		t.Fatalf("expected descending id order, got %+v", txs)
	}
}

func TestCreateTransactionRejectsMissingRecipient(t *testing.T) {
	s := New()
	shop, _ := newShop(t, s)

	tx := expenseTx(shop.ID)
	tx.Expense = &domain.ExpenseDetail{}
	_, err := s.CreateTransaction(context.Background(), tx)
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteStoreWithTransactionsRejected(t *testing.T) {
	s := New()
	shop, _ := newShop(t, s)
	ctx := context.Background()

	created, _ := s.CreateTransaction(ctx, expenseTx(shop.ID))
	if err := s.DeleteStore(ctx, shop.ID); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_ = s.DeleteTransaction(ctx, created.ID)
	if err := s.DeleteStore(ctx, shop.ID); err != nil {
		t.Fatalf("delete empty store: %v", err)
	}
	if products, _ := s.ListProducts(ctx, shop.ID); len(products) != 0 {
		t.Fatalf("expected products removed with store")
	}
}

func TestDeleteTransactionLeavesSoldLines(t *testing.T) {
	s := New()
	shop, product := newShop(t, s)
	ctx := context.Background()

	tx := expenseTx(shop.ID)
	tx.Type, tx.Category, tx.Expense = domain.TypeIncome, domain.CategorySales, nil
	tx.Income = &domain.IncomeParty{CustomerID: 1, EmployeeID: 1}
	created, _ := s.CreateTransaction(ctx, tx)
	if _, err := s.ReplaceSoldLines(ctx, created.ID, []domain.LineRequest{{ProductID: product.ID, Quantity: 1}}); err != nil {
		t.Fatalf("replace lines: %v", err)
	}

	if err := s.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatalf("delete transaction: %v", err)
	}
	if lines, _ := s.ListSoldLines(ctx, created.ID); len(lines) != 1 {
		t.Fatalf("expected lines untouched by transaction delete, got %d", len(lines))
	}
}
