package domain

import "strings"

type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

type Category string

const (
	CategorySales             Category = "sales"
	CategoryServices          Category = "services"
	CategoryInvestmentReturns Category = "investment_returns"
	CategoryInterestIncome    Category = "interest_income"
	CategoryRentalIncome      Category = "rental_income"
	CategoryRefundsReceived   Category = "refunds_received"
	CategoryOtherIncome       Category = "other_income"

	CategoryCostOfGoodsSold      Category = "cost_of_goods_sold"
	CategorySalariesWages        Category = "salaries_wages"
	CategoryRent                 Category = "rent"
	CategoryUtilities            Category = "utilities"
	CategoryOfficeSupplies       Category = "office_supplies"
	CategoryMarketing            Category = "marketing"
	CategoryTravel               Category = "travel"
	CategoryInsurance            Category = "insurance"
	CategoryProfessionalServices Category = "professional_services"
	CategoryEquipment            Category = "equipment"
	CategoryMaintenance          Category = "maintenance"
	CategoryTaxes                Category = "taxes"
	CategoryRefundsIssued        Category = "refunds_issued"
	CategoryOtherExpenses        Category = "other_expenses"
)

var incomeCategories = map[Category]struct{}{
	CategorySales:             {},
	CategoryServices:          {},
	CategoryInvestmentReturns: {},
	CategoryInterestIncome:    {},
	CategoryRentalIncome:      {},
	CategoryRefundsReceived:   {},
	CategoryOtherIncome:       {},
}

var expenseCategories = map[Category]struct{}{
	CategoryCostOfGoodsSold:      {},
	CategorySalariesWages:        {},
	CategoryRent:                 {},
	CategoryUtilities:            {},
	CategoryOfficeSupplies:       {},
	CategoryMarketing:            {},
	CategoryTravel:               {},
	CategoryInsurance:            {},
	CategoryProfessionalServices: {},
	CategoryEquipment:            {},
	CategoryMaintenance:          {},
	CategoryTaxes:                {},
	CategoryRefundsIssued:        {},
	CategoryOtherExpenses:        {},
}

// AllowedFor reports whether c belongs to the category set of t.
func (c Category) AllowedFor(t TransactionType) bool {
	switch t {
	case TypeIncome:
		_, ok := incomeCategories[c]
		return ok
	case TypeExpense:
		_, ok := expenseCategories[c]
		return ok
	default:
		return false
	}
}

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusCanceled  TransactionStatus = "canceled"
	StatusRefunded  TransactionStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "cash"
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentDebitCard  PaymentMethod = "debit_card"
	PaymentTransfer   PaymentMethod = "transfer"
	PaymentOther      PaymentMethod = "other"
)

type PersonType string

const (
	PersonIndividual PersonType = "individual"
	PersonCorporate  PersonType = "corporate"
)

// ParsePersonType falls back to individual for empty or unknown values.
func ParsePersonType(raw string) PersonType {
	switch PersonType(strings.ToLower(strings.TrimSpace(raw))) {
	case PersonCorporate:
		return PersonCorporate
	default:
		return PersonIndividual
	}
}

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAnnual  Period = "annual"
)

// ParsePeriod returns false for anything outside the four supported periods.
func ParsePeriod(raw string) (Period, bool) {
	switch p := Period(strings.ToLower(strings.TrimSpace(raw))); p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAnnual:
		return p, true
	case "":
		return PeriodMonthly, true
	default:
		return "", false
	}
}
