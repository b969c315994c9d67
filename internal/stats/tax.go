package stats

import (
	"github.com/shopspring/decimal"

	"storeledger/backend/internal/domain"
)

var (
	hundred = decimal.NewFromInt(100)

	// ConsumptionTaxRate applies to the current calendar month's income.
	ConsumptionTaxRate = decimal.RequireFromString("0.07")

	incomeTaxExempt  = decimal.NewFromInt(11000)
	incomeTaxUpper   = decimal.NewFromInt(50000)
	incomeTaxLowRate = decimal.RequireFromString("0.15")
	incomeTaxTopRate = decimal.RequireFromString("0.25")
	corporateTaxRate = decimal.RequireFromString("0.25")
)

// PercentChange is the period-over-period change rounded to one decimal.
// A zero previous value yields 0 when current is also zero and +/-100
// otherwise.
func PercentChange(current decimal.Decimal, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		switch {
		case current.IsZero():
			return 0
		case current.IsPositive():
			return 100
		default:
			return -100
		}
	}
	pct, _ := current.Sub(previous).Div(previous).Mul(hundred).Round(1).Float64()
	return pct
}

func ConsumptionTax(monthlyIncome decimal.Decimal) decimal.Decimal {
	return monthlyIncome.Mul(ConsumptionTaxRate).Round(2)
}

// ProgressiveIncomeTax is the annual liability for a tax base, before
// crediting taxes already paid.
func ProgressiveIncomeTax(base decimal.Decimal, person domain.PersonType) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}
	if person == domain.PersonCorporate {
		return base.Mul(corporateTaxRate).Round(2)
	}

	switch {
	case base.LessThanOrEqual(incomeTaxExempt):
		return decimal.Zero
	case base.LessThanOrEqual(incomeTaxUpper):
		return base.Sub(incomeTaxExempt).Mul(incomeTaxLowRate).Round(2)
	default:
		lowBand := incomeTaxUpper.Sub(incomeTaxExempt).Mul(incomeTaxLowRate)
		return lowBand.Add(base.Sub(incomeTaxUpper).Mul(incomeTaxTopRate)).Round(2)
	}
}
