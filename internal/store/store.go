package store

import (
	"context"

	"storeledger/backend/internal/domain"
)

// StockStore holds the product stock primitives the inventory ledger needs.
type StockStore interface {
	// DecrementStock subtracts qty only when the product has at least qty on
	// hand and returns the new stock. Otherwise it returns an
	// *InsufficientStockError and leaves the row untouched.
	DecrementStock(ctx context.Context, productID int64, qty int) (int, error)
	// ZeroStock forces the product stock to zero.
	ZeroStock(ctx context.Context, productID int64) error
	IncrementStock(ctx context.Context, productID int64, qty int) (int, error)
}

// Ledger is the set of row operations usable inside a unit of work.
type Ledger interface {
	StockStore

	GetStore(ctx context.Context, id int64) (*domain.Store, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetCustomer(ctx context.Context, id int64) (*domain.Customer, error)
	GetEmployee(ctx context.Context, id int64) (*domain.Employee, error)

	// ListSoldLines returns the lines of a transaction, newest line first.
	ListSoldLines(ctx context.Context, transactionID int64) ([]domain.SoldLine, error)
	// ReplaceSoldLines deletes every line of the transaction and inserts the
	// new set, snapshotting each product's current price as unit price.
	ReplaceSoldLines(ctx context.Context, transactionID int64, lines []domain.LineRequest) ([]domain.SoldLine, error)
	DeleteSoldLines(ctx context.Context, transactionID int64) error

	CreateTransaction(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error)
	FindTransactionByID(ctx context.Context, id int64) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	// ListTransactionsByStore returns the store's transactions by descending id.
	ListTransactionsByStore(ctx context.Context, storeID int64) ([]domain.Transaction, error)
}

type Repository interface {
	Ledger

	// WithinTx runs fn in a single unit of work. Any error returned by fn
	// discards every write fn made.
	WithinTx(ctx context.Context, fn func(ctx context.Context, l Ledger) error) error

	CreateStore(ctx context.Context, s domain.Store) (*domain.Store, error)
	RenameStore(ctx context.Context, id int64, name string) (*domain.Store, error)
	DeleteStore(ctx context.Context, id int64) error
	ListStoresByOwner(ctx context.Context, ownerID string) ([]domain.Store, error)

	CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error)
	ListProducts(ctx context.Context, storeID int64) ([]domain.Product, error)
	CreateCustomer(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	ListCustomers(ctx context.Context, storeID int64) ([]domain.Customer, error)
	CreateEmployee(ctx context.Context, e domain.Employee) (*domain.Employee, error)
	ListEmployees(ctx context.Context, storeID int64) ([]domain.Employee, error)

	Close() error
}
