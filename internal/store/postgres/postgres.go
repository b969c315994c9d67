package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"storeledger/backend/internal/domain"
	"storeledger/backend/internal/store"
)

// Schema is the reference DDL the store expects. Applying it is left to the
// deployment; integration tests use it to prepare a scratch schema.
//
//go:embed schema.sql
var Schema string

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	*ledger
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{ledger: &ledger{q: db}, db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, l store.Ledger) error) error {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return store.Wrap("begin transaction", err)
	}
	defer func() { _ = pgTx.Rollback() }()

	if err := fn(ctx, &ledger{q: pgTx, inTx: true}); err != nil {
		return err
	}
	return store.Wrap("commit transaction", pgTx.Commit())
}

// ReplaceSoldLines runs the delete and the inserts in one database
// transaction when called outside WithinTx.
func (s *Store) ReplaceSoldLines(ctx context.Context, transactionID int64, lines []domain.LineRequest) ([]domain.SoldLine, error) {
	var saved []domain.SoldLine
	err := s.WithinTx(ctx, func(ctx context.Context, l store.Ledger) error {
		var err error
		saved, err = l.ReplaceSoldLines(ctx, transactionID, lines)
		return err
	})
	return saved, err
}

func (s *Store) CreateStore(ctx context.Context, shop domain.Store) (*domain.Store, error) {
	shop.Name = strings.TrimSpace(shop.Name)
	if shop.Name == "" || shop.OwnerID == "" {
		return nil, store.Invalid("name", "required", "store name and owner are required")
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO stores (name, owner_id, created_at)
		VALUES ($1, $2, now())
		RETURNING id, created_at
	`, shop.Name, shop.OwnerID).Scan(&shop.ID, &shop.CreatedAt)
	if err != nil {
		return nil, store.Wrap("create store", err)
	}
	return &shop, nil
}

func (s *Store) RenameStore(ctx context.Context, id int64, name string) (*domain.Store, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, store.Invalid("name", "required", "store name is required")
	}

	var shop domain.Store
	err := s.db.QueryRowContext(ctx, `
		UPDATE stores SET name = $2
		WHERE id = $1
		RETURNING id, name, owner_id, created_at
	`, id, name).Scan(&shop.ID, &shop.Name, &shop.OwnerID, &shop.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound("store", id)
		}
		return nil, store.Wrap("rename store", err)
	}
	return &shop, nil
}

func (s *Store) DeleteStore(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM stores WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.Invalid("store_id", "no_transactions", "store still has transactions")
		}
		return store.Wrap("delete store", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return store.Wrap("delete store", err)
	}
	if affected == 0 {
		return store.NotFound("store", id)
	}
	return nil
}

func (s *Store) ListStoresByOwner(ctx context.Context, ownerID string) ([]domain.Store, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, owner_id, created_at
		FROM stores
		WHERE owner_id = $1
		ORDER BY id
	`, ownerID)
	if err != nil {
		return nil, store.Wrap("list stores", err)
	}
	defer rows.Close()

	stores := make([]domain.Store, 0, 4)
	for rows.Next() {
		var shop domain.Store
		if err := rows.Scan(&shop.ID, &shop.Name, &shop.OwnerID, &shop.CreatedAt); err != nil {
			return nil, store.Wrap("list stores", err)
		}
		stores = append(stores, shop)
	}
	return stores, store.Wrap("list stores", rows.Err())
}

func (s *Store) CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
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

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO products (store_id, name, price, stock)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, p.StoreID, p.Name, p.Price, p.Stock).Scan(&p.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, store.NotFound("store", p.StoreID)
		}
		return nil, store.Wrap("create product", err)
	}
	return &p, nil
}

func (s *Store) ListProducts(ctx context.Context, storeID int64) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, store_id, name, price, stock
		FROM products
		WHERE store_id = $1
		ORDER BY name
	`, storeID)
	if err != nil {
		return nil, store.Wrap("list products", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 32)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.StoreID, &p.Name, &p.Price, &p.Stock); err != nil {
			return nil, store.Wrap("list products", err)
		}
		products = append(products, p)
	}
	return products, store.Wrap("list products", rows.Err())
}

func (s *Store) CreateCustomer(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	id, err := s.createParty(ctx, "customers", c.StoreID, c.Name)
	if err != nil {
		return nil, err
	}
	c.ID, c.Name = id, strings.TrimSpace(c.Name)
	return &c, nil
}

func (s *Store) ListCustomers(ctx context.Context, storeID int64) ([]domain.Customer, error) {
	parties, err := s.listParties(ctx, "customers", storeID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Customer, 0, len(parties))
	for _, p := range parties {
		out = append(out, domain.Customer{ID: p.id, StoreID: storeID, Name: p.name})
	}
	return out, nil
}

func (s *Store) CreateEmployee(ctx context.Context, e domain.Employee) (*domain.Employee, error) {
	id, err := s.createParty(ctx, "employees", e.StoreID, e.Name)
	if err != nil {
		return nil, err
	}
	e.ID, e.Name = id, strings.TrimSpace(e.Name)
	return &e, nil
}

func (s *Store) ListEmployees(ctx context.Context, storeID int64) ([]domain.Employee, error) {
	parties, err := s.listParties(ctx, "employees", storeID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Employee, 0, len(parties))
	for _, p := range parties {
		out = append(out, domain.Employee{ID: p.id, StoreID: storeID, Name: p.name})
	}
	return out, nil
}

type party struct {
	id   int64
	name string
}

// table is always one of the two literal party tables.
func (s *Store) createParty(ctx context.Context, table string, storeID int64, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, store.Invalid("name", "required", "name is required")
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `INSERT INTO `+table+` (store_id, name) VALUES ($1, $2) RETURNING id`, storeID, name).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, store.NotFound("store", storeID)
		}
		return 0, store.Wrap("create "+table, err)
	}
	return id, nil
}

func (s *Store) listParties(ctx context.Context, table string, storeID int64) ([]party, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM `+table+` WHERE store_id = $1 ORDER BY id`, storeID)
	if err != nil {
		return nil, store.Wrap("list "+table, err)
	}
	defer rows.Close()

	out := make([]party, 0, 16)
	for rows.Next() {
		var p party
		if err := rows.Scan(&p.id, &p.name); err != nil {
			return nil, store.Wrap("list "+table, err)
		}
		out = append(out, p)
	}
	return out, store.Wrap("list "+table, rows.Err())
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23514"
	}
	return false
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullIfZero(val int64) any {
	if val == 0 {
		return nil
	}
	return val
}
