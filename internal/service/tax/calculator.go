package tax

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/hrmstack/payroll-engine-go/internal/domain/tax"
)

var ErrNegativeTaxableIncome = errors.New("taxable income must not be negative")

// Calculate walks the progressive slabs marginally: each slab taxes only
// the portion of income falling inside its bounds. The total is rounded
// half-up to two decimal places once at the end.
func Calculate(taxableIncome decimal.Decimal, table *tax.SlabTable) (decimal.Decimal, error) {
	if taxableIncome.IsNegative() {
		return decimal.Zero, ErrNegativeTaxableIncome
	}
	if err := table.Validate(); err != nil {
		return decimal.Zero, err
	}
	if taxableIncome.IsZero() {
		return decimal.Zero, nil
	}

	hundred := decimal.NewFromInt(100)
	total := decimal.Zero
	for _, slab := range table.Slabs {
		if taxableIncome.LessThanOrEqual(slab.LowerBound) {
			break
		}
		upper := taxableIncome
		if slab.UpperBound != nil && slab.UpperBound.LessThan(upper) {
			upper = *slab.UpperBound
		}
		portion := upper.Sub(slab.LowerBound)
		total = total.Add(portion.Mul(slab.Rate).Div(hundred))
	}
	return total.Round(2), nil
}
