package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Window is the half-open interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

type PeriodFigures struct {
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

type Comparison struct {
	Current       PeriodFigures `json:"current"`
	Previous      PeriodFigures `json:"previous"`
	PercentChange float64       `json:"percent_change"`
}

type IncomeTax struct {
	Year             int             `json:"year"`
	AnnualIncome     decimal.Decimal `json:"annual_income"`
	AnnualDeductible decimal.Decimal `json:"annual_deductible"`
	TaxBase          decimal.Decimal `json:"tax_base"`
	Tax              decimal.Decimal `json:"tax"`
	PaidTaxes        decimal.Decimal `json:"paid_taxes"`
	Owed             decimal.Decimal `json:"owed"`
}

type ComputationWarning struct {
	TransactionID int64  `json:"transaction_id"`
	Field         string `json:"field"`
	Message       string `json:"message"`
}

type Statistics struct {
	StoreID            int64                `json:"store_id"`
	Period             Period               `json:"period"`
	PersonType         PersonType           `json:"person_type"`
	Current            Window               `json:"current_window"`
	Previous           Window               `json:"previous_window"`
	Income             Comparison           `json:"income"`
	Expense            Comparison           `json:"expense"`
	Balance            Comparison           `json:"balance"`
	DeductibleExpenses decimal.Decimal      `json:"deductible_expenses"`
	ConsumptionTax     decimal.Decimal      `json:"consumption_tax"`
	IncomeTax          IncomeTax            `json:"income_tax"`
	Warnings           []ComputationWarning `json:"warnings,omitempty"`
}
