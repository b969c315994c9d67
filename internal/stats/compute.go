package stats

import (
	"time"

	"github.com/shopspring/decimal"

	"storeledger/backend/internal/domain"
)

type Input struct {
	StoreID      int64
	Period       domain.Period
	PersonType   domain.PersonType
	Now          time.Time
	Transactions []domain.Transaction
}

type bucket struct {
	income       decimal.Decimal
	incomeCount  int
	expense      decimal.Decimal
	expenseCount int
}

func (b *bucket) add(tx domain.Transaction, amount decimal.Decimal) {
	if tx.Type == domain.TypeIncome {
		b.income = b.income.Add(amount)
		b.incomeCount++
		return
	}
	b.expense = b.expense.Add(amount)
	b.expenseCount++
}

// Compute derives the dashboard figures from one snapshot of a store's
// transactions. It never fails: unusable rows are skipped or coerced and
// reported in Warnings.
func Compute(in Input) domain.Statistics {
	period := in.Period
	if period == "" {
		period = domain.PeriodMonthly
	}
	person := in.PersonType
	if person != domain.PersonCorporate {
		person = domain.PersonIndividual
	}

	current, previous := Windows(period, in.Now)
	month, _ := Windows(domain.PeriodMonthly, in.Now)
	year, _ := Windows(domain.PeriodAnnual, in.Now)

	var (
		cur, prev        bucket
		deductible       decimal.Decimal
		monthIncome      decimal.Decimal
		annualIncome     decimal.Decimal
		annualDeductible decimal.Decimal
		paidTaxes        decimal.Decimal
		warnings         []domain.ComputationWarning
	)

	for _, tx := range in.Transactions {
		amount, warning, ok := sanitize(tx)
		if warning != nil {
			warnings = append(warnings, *warning)
		}
		if !ok {
			continue
		}

		if inWindow(period, current, tx.SaleDate) {
			cur.add(tx, amount)
			if tx.Deductible() {
				deductible = deductible.Add(amount)
			}
		} else if inWindow(period, previous, tx.SaleDate) {
			prev.add(tx, amount)
		}

		if tx.Type == domain.TypeIncome && month.Contains(tx.SaleDate) {
			monthIncome = monthIncome.Add(amount)
		}

		if !year.Contains(tx.SaleDate) {
			continue
		}
		switch {
		case tx.Type == domain.TypeIncome:
			annualIncome = annualIncome.Add(amount)
		case tx.Deductible():
			annualDeductible = annualDeductible.Add(amount)
		}
		if tx.Type == domain.TypeExpense && tx.Category == domain.CategoryTaxes {
			paidTaxes = paidTaxes.Add(amount)
		}
	}

	taxBase := decimal.Max(decimal.Zero, annualIncome.Sub(annualDeductible))
	tax := ProgressiveIncomeTax(taxBase, person)

	return domain.Statistics{
		StoreID:            in.StoreID,
		Period:             period,
		PersonType:         person,
		Current:            current,
		Previous:           previous,
		Income:             compare(cur.income, cur.incomeCount, prev.income, prev.incomeCount),
		Expense:            compare(cur.expense, cur.expenseCount, prev.expense, prev.expenseCount),
		Balance:            compare(cur.income.Sub(cur.expense), cur.incomeCount+cur.expenseCount, prev.income.Sub(prev.expense), prev.incomeCount+prev.expenseCount),
		DeductibleExpenses: deductible.Round(2),
		ConsumptionTax:     ConsumptionTax(monthIncome),
		IncomeTax: domain.IncomeTax{
			Year:             year.Start.Year(),
			AnnualIncome:     annualIncome.Round(2),
			AnnualDeductible: annualDeductible.Round(2),
			TaxBase:          taxBase.Round(2),
			Tax:              tax,
			PaidTaxes:        paidTaxes.Round(2),
			Owed:             decimal.Max(decimal.Zero, tax.Sub(paidTaxes)).Round(2),
		},
		Warnings: warnings,
	}
}

func compare(current decimal.Decimal, currentCount int, previous decimal.Decimal, previousCount int) domain.Comparison {
	return domain.Comparison{
		Current:       domain.PeriodFigures{Amount: current.Round(2), Count: currentCount},
		Previous:      domain.PeriodFigures{Amount: previous.Round(2), Count: previousCount},
		PercentChange: PercentChange(current, previous),
	}
}

// sanitize returns the amount to aggregate for tx, an optional warning and
// whether tx takes part in the computation at all.
func sanitize(tx domain.Transaction) (decimal.Decimal, *domain.ComputationWarning, bool) {
	if tx.Type != domain.TypeIncome && tx.Type != domain.TypeExpense {
		return decimal.Zero, &domain.ComputationWarning{TransactionID: tx.ID, Field: "type", Message: "unknown transaction type; excluded"}, false
	}
	if tx.SaleDate.IsZero() {
		return decimal.Zero, &domain.ComputationWarning{TransactionID: tx.ID, Field: "sale_date", Message: "missing sale date; excluded"}, false
	}
	if tx.TotalAmount.IsNegative() {
		return decimal.Zero, &domain.ComputationWarning{TransactionID: tx.ID, Field: "total_amount", Message: "negative amount coerced to 0"}, true
	}
	return tx.TotalAmount, nil, true
}
