package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Store struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID      int64           `json:"id"`
	StoreID int64           `json:"store_id"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	Stock   int             `json:"stock"`
}

type Customer struct {
	ID      int64  `json:"id"`
	StoreID int64  `json:"store_id"`
	Name    string `json:"name"`
}

type Employee struct {
	ID      int64  `json:"id"`
	StoreID int64  `json:"store_id"`
	Name    string `json:"name"`
}

// IncomeParty is populated only on income transactions.
type IncomeParty struct {
	CustomerID int64 `json:"customer_id"`
	EmployeeID int64 `json:"employee_id"`
}

// ExpenseDetail is populated only on expense transactions.
type ExpenseDetail struct {
	Recipient  string `json:"recipient"`
	Deductible bool   `json:"deductible"`
}

// Transaction is a ledger entry. Exactly one of Income and Expense is set,
// selected by Type.
type Transaction struct {
	ID            int64             `json:"id"`
	StoreID       int64             `json:"store_id"`
	Type          TransactionType   `json:"type"`
	Category      Category          `json:"category"`
	Status        TransactionStatus `json:"status"`
	Income        *IncomeParty      `json:"income,omitempty"`
	Expense       *ExpenseDetail    `json:"expense,omitempty"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	SaleDate      time.Time         `json:"sale_date"`
	Description   string            `json:"description,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (t Transaction) IsSale() bool {
	return t.Type == TypeIncome && t.Category == CategorySales
}

// Deductible reports whether the transaction reduces the income-tax base.
func (t Transaction) Deductible() bool {
	return t.Type == TypeExpense && t.Expense != nil && t.Expense.Deductible
}

type SoldLine struct {
	ID            int64           `json:"id"`
	TransactionID int64           `json:"transaction_id"`
	ProductID     int64           `json:"product_id"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
}

func (l SoldLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type TransactionWithLines struct {
	Transaction
	Lines []SoldLine `json:"lines"`
}

type LineRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"gt=0"`
}

// TransactionRequest is the caller-supplied shape for Post and Repost. The
// party fields are flat here and folded into the tagged Transaction once the
// request validates.
type TransactionRequest struct {
	StoreID       int64             `json:"store_id" validate:"required,gt=0"`
	Type          TransactionType   `json:"type" validate:"required,oneof=income expense"`
	Category      Category          `json:"category" validate:"required"`
	Status        TransactionStatus `json:"status,omitempty" validate:"omitempty,oneof=pending completed canceled refunded"`
	CustomerID    int64             `json:"customer_id,omitempty" validate:"required_if=Type income,excluded_if=Type expense"`
	EmployeeID    int64             `json:"employee_id,omitempty" validate:"required_if=Type income,excluded_if=Type expense"`
	Recipient     string            `json:"recipient,omitempty" validate:"required_if=Type expense,excluded_if=Type income"`
	Deductible    bool              `json:"deductible,omitempty"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	PaymentMethod PaymentMethod     `json:"payment_method,omitempty" validate:"omitempty,oneof=cash credit_card debit_card transfer other"`
	SaleDate      time.Time         `json:"sale_date" validate:"required"`
	Description   string            `json:"description,omitempty" validate:"max=2000"`
	Lines         []LineRequest     `json:"lines,omitempty" validate:"dive"`
}

// Principal is the authenticated caller as reported by the identity provider.
type Principal struct {
	UserID     string     `json:"user_id"`
	PersonType PersonType `json:"person_type"`
}

type StoreCreateRequest struct {
	Name string `json:"name"`
}

type ProductCreateRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

type PartyCreateRequest struct {
	Name string `json:"name"`
}
