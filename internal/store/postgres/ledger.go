package postgres

import (
	"context"
	"database/sql"
	"errors"

	"storeledger/backend/internal/domain"
	"storeledger/backend/internal/store"
)

type ledger struct {
	q queryer
	// inTx adds FOR UPDATE to row reads so the unit of work holds the rows
	// it is about to change.
	inTx bool
}

func (l *ledger) forUpdate() string {
	if l.inTx {
		return " FOR UPDATE"
	}
	return ""
}

func (l *ledger) DecrementStock(ctx context.Context, productID int64, qty int) (int, error) {
	var stock int
	err := l.q.QueryRowContext(ctx, `
		UPDATE products
		SET stock = stock - $1
		WHERE id = $2 AND stock >= $1
		RETURNING stock
	`, qty, productID).Scan(&stock)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, store.Wrap("decrement stock", err)
	}

	// Zero rows: either the product is gone or it has less than qty.
	err = l.q.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, store.NotFound("product", productID)
		}
		return 0, store.Wrap("decrement stock", err)
	}
	return stock, &store.InsufficientStockError{ProductID: productID, Requested: qty, Available: stock}
}

func (l *ledger) ZeroStock(ctx context.Context, productID int64) error {
	res, err := l.q.ExecContext(ctx, `UPDATE products SET stock = 0 WHERE id = $1`, productID)
	if err != nil {
		return store.Wrap("zero stock", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return store.Wrap("zero stock", err)
	}
	if affected == 0 {
		return store.NotFound("product", productID)
	}
	return nil
}

func (l *ledger) IncrementStock(ctx context.Context, productID int64, qty int) (int, error) {
	var stock int
	err := l.q.QueryRowContext(ctx, `
		UPDATE products
		SET stock = stock + $1
		WHERE id = $2
		RETURNING stock
	`, qty, productID).Scan(&stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, store.NotFound("product", productID)
		}
		return 0, store.Wrap("increment stock", err)
	}
	return stock, nil
}

func (l *ledger) GetStore(ctx context.Context, id int64) (*domain.Store, error) {
	var shop domain.Store
	err := l.q.QueryRowContext(ctx, `
		SELECT id, name, owner_id, created_at
		FROM stores
		WHERE id = $1
	`, id).Scan(&shop.ID, &shop.Name, &shop.OwnerID, &shop.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound("store", id)
		}
		return nil, store.Wrap("get store", err)
	}
	return &shop, nil
}

func (l *ledger) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := l.q.QueryRowContext(ctx, `
		SELECT id, store_id, name, price, stock
		FROM products
		WHERE id = $1`+l.forUpdate(), id).Scan(&p.ID, &p.StoreID, &p.Name, &p.Price, &p.Stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound("product", id)
		}
		return nil, store.Wrap("get product", err)
	}
	return &p, nil
}

func (l *ledger) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	var c domain.Customer
	err := l.q.QueryRowContext(ctx, `SELECT id, store_id, name FROM customers WHERE id = $1`, id).Scan(&c.ID, &c.StoreID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound("customer", id)
		}
		return nil, store.Wrap("get customer", err)
	}
	return &c, nil
}

func (l *ledger) GetEmployee(ctx context.Context, id int64) (*domain.Employee, error) {
	var e domain.Employee
	err := l.q.QueryRowContext(ctx, `SELECT id, store_id, name FROM employees WHERE id = $1`, id).Scan(&e.ID, &e.StoreID, &e.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound("employee", id)
		}
		return nil, store.Wrap("get employee", err)
	}
	return &e, nil
}

func (l *ledger) ListSoldLines(ctx context.Context, transactionID int64) ([]domain.SoldLine, error) {
	rows, err := l.q.QueryContext(ctx, `
		SELECT id, transaction_id, product_id, quantity, unit_price
		FROM sold_lines
		WHERE transaction_id = $1
		ORDER BY id DESC
	`, transactionID)
	if err != nil {
		return nil, store.Wrap("list sold lines", err)
	}
	defer rows.Close()

	lines := make([]domain.SoldLine, 0, 8)
	for rows.Next() {
		var line domain.SoldLine
		if err := rows.Scan(&line.ID, &line.TransactionID, &line.ProductID, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, store.Wrap("list sold lines", err)
		}
		lines = append(lines, line)
	}
	return lines, store.Wrap("list sold lines", rows.Err())
}

func (l *ledger) ReplaceSoldLines(ctx context.Context, transactionID int64, lines []domain.LineRequest) ([]domain.SoldLine, error) {
	if _, err := l.q.ExecContext(ctx, `DELETE FROM sold_lines WHERE transaction_id = $1`, transactionID); err != nil {
		return nil, store.Wrap("delete sold lines", err)
	}

	saved := make([]domain.SoldLine, 0, len(lines))
	for _, line := range lines {
		sold := domain.SoldLine{TransactionID: transactionID, ProductID: line.ProductID, Quantity: line.Quantity}
		err := l.q.QueryRowContext(ctx, `
			INSERT INTO sold_lines (transaction_id, product_id, quantity, unit_price)
			SELECT $1, id, $3, price
			FROM products
			WHERE id = $2
			RETURNING id, unit_price
		`, transactionID, line.ProductID, line.Quantity).Scan(&sold.ID, &sold.UnitPrice)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, store.NotFound("product", line.ProductID)
			}
			if isForeignKeyViolation(err) {
				return nil, store.NotFound("transaction", transactionID)
			}
			return nil, store.Wrap("insert sold line", err)
		}
		saved = append(saved, sold)
	}
	return saved, nil
}

func (l *ledger) DeleteSoldLines(ctx context.Context, transactionID int64) error {
	_, err := l.q.ExecContext(ctx, `DELETE FROM sold_lines WHERE transaction_id = $1`, transactionID)
	return store.Wrap("delete sold lines", err)
}

func (l *ledger) CreateTransaction(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	if err := store.CheckTransaction(tx); err != nil {
		return nil, err
	}

	customerID, employeeID, recipient, deductible := partyColumns(tx)
	err := l.q.QueryRowContext(ctx, `
		INSERT INTO transactions (
			store_id, type, category, status, customer_id, employee_id, recipient,
			deductible, total_amount, payment_method, sale_date, description,
			created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now(),now())
		RETURNING id, created_at, updated_at
	`, tx.StoreID, tx.Type, tx.Category, tx.Status, customerID, employeeID, recipient,
		deductible, tx.TotalAmount, tx.PaymentMethod, tx.SaleDate, nullIfEmpty(tx.Description),
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, store.Invalid("store_id", "exists", "transaction references an unknown store, customer or employee")
		}
		if isCheckViolation(err) {
			return nil, store.Invalid("type", "party", "transaction violates the party constraint")
		}
		return nil, store.Wrap("create transaction", err)
	}
	return &tx, nil
}

const transactionColumns = `
	id, store_id, type, category, status, customer_id, employee_id, recipient,
	deductible, total_amount, payment_method, sale_date, description, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var (
		tx          domain.Transaction
		customerID  sql.NullInt64
		employeeID  sql.NullInt64
		recipient   sql.NullString
		description sql.NullString
		deductible  bool
	)
	err := row.Scan(&tx.ID, &tx.StoreID, &tx.Type, &tx.Category, &tx.Status, &customerID, &employeeID,
		&recipient, &deductible, &tx.TotalAmount, &tx.PaymentMethod, &tx.SaleDate, &description,
		&tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return domain.Transaction{}, err
	}

	switch tx.Type {
	case domain.TypeIncome:
		tx.Income = &domain.IncomeParty{CustomerID: customerID.Int64, EmployeeID: employeeID.Int64}
	case domain.TypeExpense:
		tx.Expense = &domain.ExpenseDetail{Recipient: recipient.String, Deductible: deductible}
	}
	tx.Description = description.String
	return tx, nil
}

func (l *ledger) FindTransactionByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	row := l.q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`+l.forUpdate(), id)
	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound("transaction", id)
		}
		return nil, store.Wrap("find transaction", err)
	}
	return &tx, nil
}

func (l *ledger) UpdateTransaction(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	if err := store.CheckTransaction(tx); err != nil {
		return nil, err
	}

	customerID, employeeID, recipient, deductible := partyColumns(tx)
	err := l.q.QueryRowContext(ctx, `
		UPDATE transactions
		SET type = $2, category = $3, status = $4, customer_id = $5, employee_id = $6,
			recipient = $7, deductible = $8, total_amount = $9, payment_method = $10,
			sale_date = $11, description = $12, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`, tx.ID, tx.Type, tx.Category, tx.Status, customerID, employeeID, recipient, deductible,
		tx.TotalAmount, tx.PaymentMethod, tx.SaleDate, nullIfEmpty(tx.Description),
	).Scan(&tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound("transaction", tx.ID)
		}
		if isForeignKeyViolation(err) {
			return nil, store.Invalid("customer_id", "exists", "transaction references an unknown customer or employee")
		}
		return nil, store.Wrap("update transaction", err)
	}
	return &tx, nil
}

func (l *ledger) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := l.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return store.Wrap("delete transaction", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return store.Wrap("delete transaction", err)
	}
	if affected == 0 {
		return store.NotFound("transaction", id)
	}
	return nil
}

func (l *ledger) ListTransactionsByStore(ctx context.Context, storeID int64) ([]domain.Transaction, error) {
	rows, err := l.q.QueryContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE store_id = $1 ORDER BY id DESC`, storeID)
	if err != nil {
		return nil, store.Wrap("list transactions", err)
	}
	defer rows.Close()

	txs := make([]domain.Transaction, 0, 64)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, store.Wrap("list transactions", err)
		}
		txs = append(txs, tx)
	}
	return txs, store.Wrap("list transactions", rows.Err())
}

func partyColumns(tx domain.Transaction) (customerID any, employeeID any, recipient any, deductible bool) {
	if tx.Income != nil {
		customerID = nullIfZero(tx.Income.CustomerID)
		employeeID = nullIfZero(tx.Income.EmployeeID)
	}
	if tx.Expense != nil {
		recipient = tx.Expense.Recipient
		deductible = tx.Expense.Deductible
	}
	return customerID, employeeID, recipient, deductible
}
