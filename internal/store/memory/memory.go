package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"storeledger/backend/internal/domain"
	"storeledger/backend/internal/store"
)

// state is everything the store holds. WithinTx works on a clone and swaps
// it in on success.
type state struct {
	seq          int64
	stores       map[int64]domain.Store
	products     map[int64]domain.Product
	customers    map[int64]domain.Customer
	employees    map[int64]domain.Employee
	transactions map[int64]domain.Transaction
	soldLines    map[int64][]domain.SoldLine
}

func newState() *state {
	return &state{
		stores:       make(map[int64]domain.Store),
		products:     make(map[int64]domain.Product),
		customers:    make(map[int64]domain.Customer),
		employees:    make(map[int64]domain.Employee),
		transactions: make(map[int64]domain.Transaction),
		soldLines:    make(map[int64][]domain.SoldLine),
	}
}

func (s *state) clone() *state {
	c := &state{
		seq:          s.seq,
		stores:       make(map[int64]domain.Store, len(s.stores)),
		products:     make(map[int64]domain.Product, len(s.products)),
		customers:    make(map[int64]domain.Customer, len(s.customers)),
		employees:    make(map[int64]domain.Employee, len(s.employees)),
		transactions: make(map[int64]domain.Transaction, len(s.transactions)),
		soldLines:    make(map[int64][]domain.SoldLine, len(s.soldLines)),
	}
	for k, v := range s.stores {
		c.stores[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.employees {
		c.employees[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = copyTransaction(v)
	}
	for k, v := range s.soldLines {
		c.soldLines[k] = slices.Clone(v)
	}
	return c
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

type Store struct {
	mu sync.RWMutex
	st *state
	// now is swappable in tests.
	now func() time.Time
}

func New() *Store {
	return &Store{st: newState(), now: func() time.Time { return time.Now().UTC() }}
}

// NewSeeded returns a store holding one demo tenant owned by "demo-owner".
func NewSeeded() *Store {
	s := New()
	st := s.st
	shop := domain.Store{ID: st.nextID(), Name: "Demo Store", OwnerID: "demo-owner", CreatedAt: s.now()}
	st.stores[shop.ID] = shop

	for _, p := range []struct {
		name  string
		price string
		stock int
	}{
		{"Coffee Beans 1kg", "18.50", 40},
		{"Espresso Cup", "4.25", 120},
		{"Paper Filters", "3.10", 200},
		{"Grinder", "89.00", 6},
	} {
		id := st.nextID()
		st.products[id] = domain.Product{ID: id, StoreID: shop.ID, Name: p.name, Price: decimal.RequireFromString(p.price), Stock: p.stock}
	}

	customerID := st.nextID()
	st.customers[customerID] = domain.Customer{ID: customerID, StoreID: shop.ID, Name: "Walk-in Customer"}
	employeeID := st.nextID()
	st.employees[employeeID] = domain.Employee{ID: employeeID, StoreID: shop.ID, Name: "Front Desk"}

	return s
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, l store.Ledger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(ctx, &ledger{st: work, now: s.now}); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) read() *ledger {
	return &ledger{st: s.st, now: s.now}
}

func (s *Store) DecrementStock(ctx context.Context, productID int64, qty int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().DecrementStock(ctx, productID, qty)
}

func (s *Store) ZeroStock(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().ZeroStock(ctx, productID)
}

func (s *Store) IncrementStock(ctx context.Context, productID int64, qty int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().IncrementStock(ctx, productID, qty)
}

func (s *Store) GetStore(ctx context.Context, id int64) (*domain.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().GetStore(ctx, id)
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().GetProduct(ctx, id)
}

func (s *Store) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().GetCustomer(ctx, id)
}

func (s *Store) GetEmployee(ctx context.Context, id int64) (*domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().GetEmployee(ctx, id)
}

func (s *Store) ListSoldLines(ctx context.Context, transactionID int64) ([]domain.SoldLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().ListSoldLines(ctx, transactionID)
}

func (s *Store) ReplaceSoldLines(ctx context.Context, transactionID int64, lines []domain.LineRequest) ([]domain.SoldLine, error) {
	var saved []domain.SoldLine
	err := s.WithinTx(ctx, func(ctx context.Context, l store.Ledger) error {
		var err error
		saved, err = l.ReplaceSoldLines(ctx, transactionID, lines)
		return err
	})
	return saved, err
}

func (s *Store) DeleteSoldLines(ctx context.Context, transactionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().DeleteSoldLines(ctx, transactionID)
}

func (s *Store) CreateTransaction(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().CreateTransaction(ctx, tx)
}

func (s *Store) FindTransactionByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().FindTransactionByID(ctx, id)
}

func (s *Store) UpdateTransaction(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().UpdateTransaction(ctx, tx)
}

func (s *Store) DeleteTransaction(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().DeleteTransaction(ctx, id)
}

func (s *Store) ListTransactionsByStore(ctx context.Context, storeID int64) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().ListTransactionsByStore(ctx, storeID)
}

func (s *Store) CreateStore(_ context.Context, shop domain.Store) (*domain.Store, error) {
	shop.Name = strings.TrimSpace(shop.Name)
	if shop.Name == "" || shop.OwnerID == "" {
		return nil, store.Invalid("name", "required", "store name and owner are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	shop.ID = s.st.nextID()
	if shop.CreatedAt.IsZero() {
		shop.CreatedAt = s.now()
	}
	s.st.stores[shop.ID] = shop
	return &shop, nil
}

func (s *Store) RenameStore(_ context.Context, id int64, name string) (*domain.Store, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, store.Invalid("name", "required", "store name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	shop, ok := s.st.stores[id]
	if !ok {
		return nil, store.NotFound("store", id)
	}
	shop.Name = name
	s.st.stores[id] = shop
	return &shop, nil
}

func (s *Store) DeleteStore(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.stores[id]; !ok {
		return store.NotFound("store", id)
	}
	for _, tx := range s.st.transactions {
		if tx.StoreID == id {
			return store.Invalid("store_id", "no_transactions", "store still has transactions")
		}
	}
	for pid, p := range s.st.products {
		if p.StoreID == id {
			delete(s.st.products, pid)
		}
	}
	for cid, c := range s.st.customers {
		if c.StoreID == id {
			delete(s.st.customers, cid)
		}
	}
	for eid, e := range s.st.employees {
		if e.StoreID == id {
			delete(s.st.employees, eid)
		}
	}
	delete(s.st.stores, id)
	return nil
}

func (s *Store) ListStoresByOwner(_ context.Context, ownerID string) ([]domain.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Store, 0, 4)
	for _, shop := range s.st.stores {
		if shop.OwnerID == ownerID {
			out = append(out, shop)
		}
	}
	slices.SortFunc(out, func(a, b domain.Store) int { return cmpInt64(a.ID, b.ID) })
	return out, nil
}

func (s *Store) CreateProduct(_ context.Context, p domain.Product) (*domain.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, store.Invalid("name", "required", "product name is required")
	}
	if p.Price.IsNegative() {
		return nil, store.Invalid("price", "gte", "price must not be negative")
	}
	if p.Stock < 0 {
		return nil, store.Invalid("stock", "gte", "stock must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.stores[p.StoreID]; !ok {
		return nil, store.NotFound("store", p.StoreID)
	}
	p.ID = s.st.nextID()
	s.st.products[p.ID] = p
	return &p, nil
}

func (s *Store) ListProducts(_ context.Context, storeID int64) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, 0, 16)
	for _, p := range s.st.products {
		if p.StoreID == storeID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b domain.Product) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *Store) CreateCustomer(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, store.Invalid("name", "required", "customer name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.stores[c.StoreID]; !ok {
		return nil, store.NotFound("store", c.StoreID)
	}
	c.ID = s.st.nextID()
	s.st.customers[c.ID] = c
	return &c, nil
}

func (s *Store) ListCustomers(_ context.Context, storeID int64) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Customer, 0, 16)
	for _, c := range s.st.customers {
		if c.StoreID == storeID {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b domain.Customer) int { return cmpInt64(a.ID, b.ID) })
	return out, nil
}

func (s *Store) CreateEmployee(_ context.Context, e domain.Employee) (*domain.Employee, error) {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return nil, store.Invalid("name", "required", "employee name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.stores[e.StoreID]; !ok {
		return nil, store.NotFound("store", e.StoreID)
	}
	e.ID = s.st.nextID()
	s.st.employees[e.ID] = e
	return &e, nil
}

func (s *Store) ListEmployees(_ context.Context, storeID int64) ([]domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Employee, 0, 16)
	for _, e := range s.st.employees {
		if e.StoreID == storeID {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b domain.Employee) int { return cmpInt64(a.ID, b.ID) })
	return out, nil
}

func copyTransaction(tx domain.Transaction) domain.Transaction {
	if tx.Income != nil {
		income := *tx.Income
		tx.Income = &income
	}
	if tx.Expense != nil {
		expense := *tx.Expense
		tx.Expense = &expense
	}
	return tx
}

func cmpInt64(a int64, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
