package memory

import (
	"context"
	"slices"
	"time"

	"storeledger/backend/internal/domain"
	"storeledger/backend/internal/store"
)

// ledger operates on a state without locking; callers hold Store.mu.
type ledger struct {
	st  *state
	now func() time.Time
}

func (l *ledger) DecrementStock(_ context.Context, productID int64, qty int) (int, error) {
	p, ok := l.st.products[productID]
	if !ok {
		return 0, store.NotFound("product", productID)
	}
	if p.Stock < qty {
		return p.Stock, &store.InsufficientStockError{ProductID: productID, Requested: qty, Available: p.Stock}
	}
	p.Stock -= qty
	l.st.products[productID] = p
	return p.Stock, nil
}

func (l *ledger) ZeroStock(_ context.Context, productID int64) error {
	p, ok := l.st.products[productID]
	if !ok {
		return store.NotFound("product", productID)
	}
	p.Stock = 0
	l.st.products[productID] = p
	return nil
}

func (l *ledger) IncrementStock(_ context.Context, productID int64, qty int) (int, error) {
	p, ok := l.st.products[productID]
	if !ok {
		return 0, store.NotFound("product", productID)
	}
	p.Stock += qty
	l.st.products[productID] = p
	return p.Stock, nil
}

func (l *ledger) GetStore(_ context.Context, id int64) (*domain.Store, error) {
	shop, ok := l.st.stores[id]
	if !ok {
		return nil, store.NotFound("store", id)
	}
	return &shop, nil
}

func (l *ledger) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := l.st.products[id]
	if !ok {
		return nil, store.NotFound("product", id)
	}
	return &p, nil
}

func (l *ledger) GetCustomer(_ context.Context, id int64) (*domain.Customer, error) {
	c, ok := l.st.customers[id]
	if !ok {
		return nil, store.NotFound("customer", id)
	}
	return &c, nil
}

func (l *ledger) GetEmployee(_ context.Context, id int64) (*domain.Employee, error) {
	e, ok := l.st.employees[id]
	if !ok {
		return nil, store.NotFound("employee", id)
	}
	return &e, nil
}

func (l *ledger) ListSoldLines(_ context.Context, transactionID int64) ([]domain.SoldLine, error) {
	lines := slices.Clone(l.st.soldLines[transactionID])
	slices.Reverse(lines)
	if lines == nil {
		lines = []domain.SoldLine{}
	}
	return lines, nil
}

func (l *ledger) ReplaceSoldLines(_ context.Context, transactionID int64, lines []domain.LineRequest) ([]domain.SoldLine, error) {
	if _, ok := l.st.transactions[transactionID]; !ok {
		return nil, store.NotFound("transaction", transactionID)
	}

	fresh := make([]domain.SoldLine, 0, len(lines))
	for _, line := range lines {
		p, ok := l.st.products[line.ProductID]
		if !ok {
			return nil, store.NotFound("product", line.ProductID)
		}
		fresh = append(fresh, domain.SoldLine{
			ID:            l.st.nextID(),
			TransactionID: transactionID,
			ProductID:     line.ProductID,
			Quantity:      line.Quantity,
			UnitPrice:     p.Price,
		})
	}

	delete(l.st.soldLines, transactionID)
	if len(fresh) > 0 {
		l.st.soldLines[transactionID] = fresh
	}
	return slices.Clone(fresh), nil
}

func (l *ledger) DeleteSoldLines(_ context.Context, transactionID int64) error {
	delete(l.st.soldLines, transactionID)
	return nil
}

func (l *ledger) CreateTransaction(_ context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	if err := store.CheckTransaction(tx); err != nil {
		return nil, err
	}
	if _, ok := l.st.stores[tx.StoreID]; !ok {
		return nil, store.NotFound("store", tx.StoreID)
	}

	now := l.now()
	tx.ID = l.st.nextID()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	l.st.transactions[tx.ID] = copyTransaction(tx)
	return &tx, nil
}

func (l *ledger) FindTransactionByID(_ context.Context, id int64) (*domain.Transaction, error) {
	tx, ok := l.st.transactions[id]
	if !ok {
		return nil, store.NotFound("transaction", id)
	}
	out := copyTransaction(tx)
	return &out, nil
}

func (l *ledger) UpdateTransaction(_ context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	if err := store.CheckTransaction(tx); err != nil {
		return nil, err
	}
	existing, ok := l.st.transactions[tx.ID]
	if !ok {
		return nil, store.NotFound("transaction", tx.ID)
	}

	tx.CreatedAt = existing.CreatedAt
	tx.UpdatedAt = l.now()
	l.st.transactions[tx.ID] = copyTransaction(tx)
	return &tx, nil
}

func (l *ledger) DeleteTransaction(_ context.Context, id int64) error {
	if _, ok := l.st.transactions[id]; !ok {
		return store.NotFound("transaction", id)
	}
	delete(l.st.transactions, id)
	return nil
}

func (l *ledger) ListTransactionsByStore(_ context.Context, storeID int64) ([]domain.Transaction, error) {
	out := make([]domain.Transaction, 0, 32)
	for _, tx := range l.st.transactions {
		if tx.StoreID == storeID {
			out = append(out, copyTransaction(tx))
		}
	}
	slices.SortFunc(out, func(a, b domain.Transaction) int { return cmpInt64(b.ID, a.ID) })
	return out, nil
}
