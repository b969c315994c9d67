package store

import (
	"strings"

	"storeledger/backend/internal/domain"
)

// CheckTransaction enforces the row-level invariants every backend applies
// before writing a transaction.
func CheckTransaction(tx domain.Transaction) error {
	if tx.StoreID < 1 {
		return Invalid("store_id", "required", "store is required")
	}
	if !tx.Category.AllowedFor(tx.Type) {
		return Invalid("category", "category_for_type", "category "+string(tx.Category)+" is not valid for type "+string(tx.Type))
	}
	if tx.TotalAmount.IsNegative() {
		return Invalid("total_amount", "gte", "total amount must not be negative")
	}
	switch tx.Type {
	case domain.TypeIncome:
		if tx.Expense != nil {
			return Invalid("recipient", "excluded_if", "income transactions must not carry expense details")
		}
		if tx.Income == nil || tx.Income.CustomerID < 1 {
			return Invalid("customer_id", "required_if", "customer is required for income")
		}
		if tx.Income.EmployeeID < 1 {
			return Invalid("employee_id", "required_if", "employee is required for income")
		}
	case domain.TypeExpense:
		if tx.Income != nil {
			return Invalid("customer_id", "excluded_if", "expense transactions must not reference a customer or employee")
		}
		if tx.Expense == nil || strings.TrimSpace(tx.Expense.Recipient) == "" {
			return Invalid("recipient", "required_if", "recipient is required for expense")
		}
	default:
		return Invalid("type", "oneof", "type must be income or expense")
	}
	return nil
}
