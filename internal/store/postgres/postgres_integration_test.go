package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"storeledger/backend/internal/domain"
	"storeledger/backend/internal/store"
)

var _ store.Repository = (*Store)(nil)

// newIntegrationStore connects to STORELEDGER_TEST_DATABASE_URL and applies
// the schema inside a scratch search_path so the test leaves nothing behind.
func newIntegrationStore(t *testing.T) *Store {
	t.Helper()
	databaseURL := os.Getenv("STORELEDGER_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set STORELEDGER_TEST_DATABASE_URL to run postgres integration tests")
	}

	ctx := context.Background()
	schema := fmt.Sprintf("storeledger_it_%d", time.Now().UnixNano())
	s, err := New(ctx, databaseURL+searchPathParam(databaseURL, schema))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := s.db.ExecContext(ctx, `CREATE SCHEMA `+schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DROP SCHEMA `+schema+` CASCADE`)
		_ = s.Close()
	})
	return s
}

func searchPathParam(databaseURL string, schema string) string {
	sep := "?"
	for _, r := range databaseURL {
		if r == '?' {
			sep = "&"
			break
		}
	}
	return sep + "search_path=" + schema
}

func TestConditionalDecrementUnderConcurrency(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	shop, err := s.CreateStore(ctx, domain.Store{Name: "IT Shop", OwnerID: "owner-it"})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	product, err := s.CreateProduct(ctx, domain.Product{StoreID: shop.ID, Name: "Widget", Price: decimal.RequireFromString("10.00"), Stock: 5})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.DecrementStock(ctx, product.ID, 3)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, rejected := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, store.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || rejected != 1 {
		t.Fatalf("expected one success and one stockout, got %d/%d", succeeded, rejected)
	}

	got, err := s.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.Stock != 2 {
		t.Fatalf("expected stock 2, got %d", got.Stock)
	}
}

func TestWithinTxRollsBackSaleOnFailure(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	shop, _ := s.CreateStore(ctx, domain.Store{Name: "IT Shop", OwnerID: "owner-it"})
	product, _ := s.CreateProduct(ctx, domain.Product{StoreID: shop.ID, Name: "Widget", Price: decimal.RequireFromString("10.00"), Stock: 5})
	customer, _ := s.CreateCustomer(ctx, domain.Customer{StoreID: shop.ID, Name: "Ana"})
	employee, _ := s.CreateEmployee(ctx, domain.Employee{StoreID: shop.ID, Name: "Luis"})

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context, l store.Ledger) error {
		created, err := l.CreateTransaction(ctx, domain.Transaction{
			StoreID:       shop.ID,
			Type:          domain.TypeIncome,
			Category:      domain.CategorySales,
			Status:        domain.StatusCompleted,
			Income:        &domain.IncomeParty{CustomerID: customer.ID, EmployeeID: employee.ID},
			TotalAmount:   decimal.RequireFromString("20.00"),
			PaymentMethod: domain.PaymentCash,
			SaleDate:      time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		lines, err := l.ReplaceSoldLines(ctx, created.ID, []domain.LineRequest{{ProductID: product.ID, Quantity: 2}})
		if err != nil {
			return err
		}
		if !lines[0].UnitPrice.Equal(decimal.RequireFromString("10.00")) {
			return fmt.Errorf("unexpected unit price %s", lines[0].UnitPrice)
		}
		if _, err := l.DecrementStock(ctx, product.ID, 2); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	txs, err := s.ListTransactionsByStore(ctx, shop.ID)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("expected rollback to leave no transactions, got %d", len(txs))
	}
	got, _ := s.GetProduct(ctx, product.ID)
	if got.Stock != 5 {
		t.Fatalf("expected stock 5 after rollback, got %d", got.Stock)
	}
}

func TestDeleteTransactionKeepsSoldLinesReferenced(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	shop, _ := s.CreateStore(ctx, domain.Store{Name: "IT Shop", OwnerID: "owner-it"})
	product, _ := s.CreateProduct(ctx, domain.Product{StoreID: shop.ID, Name: "Widget", Price: decimal.RequireFromString("10.00"), Stock: 5})
	customer, _ := s.CreateCustomer(ctx, domain.Customer{StoreID: shop.ID, Name: "Ana"})
	employee, _ := s.CreateEmployee(ctx, domain.Employee{StoreID: shop.ID, Name: "Luis"})

	created, err := s.CreateTransaction(ctx, domain.Transaction{
		StoreID:       shop.ID,
		Type:          domain.TypeIncome,
		Category:      domain.CategorySales,
		Status:        domain.StatusCompleted,
		Income:        &domain.IncomeParty{CustomerID: customer.ID, EmployeeID: employee.ID},
		TotalAmount:   decimal.RequireFromString("10.00"),
		PaymentMethod: domain.PaymentCash,
		SaleDate:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if _, err := s.ReplaceSoldLines(ctx, created.ID, []domain.LineRequest{{ProductID: product.ID, Quantity: 1}}); err != nil {
		t.Fatalf("replace lines: %v", err)
	}

	if err := s.DeleteTransaction(ctx, created.ID); err == nil {
		t.Fatalf("expected delete with lines still present to fail")
	}
	if err := s.DeleteSoldLines(ctx, created.ID); err != nil {
		t.Fatalf("delete lines: %v", err)
	}
	if err := s.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatalf("delete transaction: %v", err)
	}
}
