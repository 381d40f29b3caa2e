// Package tax aggregates quarterly figures into the cumulative liability
// estimate shown alongside the quarter list.
package tax

import (
	"sort"

	"github.com/shopspring/decimal"

	"taxfiling/internal/domain"
)

// Summary is the aggregate view over one business's quarters.
type Summary struct {
	Quarters                        []domain.QuarterlyUpdate
	TotalNetProfitSubmitted         decimal.Decimal
	CumulativeEstimatedTaxLiability decimal.Decimal
}

// Summarize recomputes net profit for every quarter, totals the net profit
// of SUBMITTED quarters only, and estimates the tax owed on the portion of
// that total above the personal allowance at the basic rate. Quarters are
// returned sorted by tax year, then quarter name. A business with zero
// quarters violates the onboarding invariant and yields ErrNotFound.
func Summarize(quarters []domain.QuarterlyUpdate, personalAllowance, basicRate decimal.Decimal) (*Summary, error) {
	if len(quarters) == 0 {
		return nil, domain.ErrNotFound
	}

	total := decimal.New(0, -2)
	for i := range quarters {
		// Stored net profit may be stale; the income/expenses pair is
		// authoritative.
		quarters[i].NetProfit = quarters[i].TaxableIncome.Sub(quarters[i].AllowableExpenses)
		if quarters[i].Status == domain.StatusSubmitted {
			total = total.Add(quarters[i].NetProfit)
		}
	}

	liability := decimal.New(0, -2)
	if total.GreaterThan(personalAllowance) {
		liability = total.Sub(personalAllowance).Mul(basicRate).Round(2)
	}

	sort.Slice(quarters, func(i, j int) bool {
		if quarters[i].TaxYear != quarters[j].TaxYear {
			return quarters[i].TaxYear < quarters[j].TaxYear
		}
		return quarters[i].QuarterName < quarters[j].QuarterName
	})

	return &Summary{
		Quarters:                        quarters,
		TotalNetProfitSubmitted:         total,
		CumulativeEstimatedTaxLiability: liability,
	}, nil
}
