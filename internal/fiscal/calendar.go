// Package fiscal maps business start dates onto the April 6 tax year and
// materializes the four quarterly filing periods.
package fiscal

import (
	"fmt"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/shopspring/decimal"

	"taxfiling/internal/domain"
)

// Tax years run April 6 to April 5 of the following calendar year.
const (
	fiscalStartMonth = time.April
	fiscalStartDay   = 6
)

// Period is one quarter's date range within a tax year.
type Period struct {
	Start time.Time
	End   time.Time
}

// YearStart returns April 6 of the tax year containing the given date:
// April 6 of the same calendar year when the date is on or after April 6,
// otherwise April 6 of the previous year.
func YearStart(date time.Time) time.Time {
	year := date.Year()
	if date.Month() < fiscalStartMonth ||
		(date.Month() == fiscalStartMonth && date.Day() < fiscalStartDay) {
		year--
	}
	return time.Date(year, fiscalStartMonth, fiscalStartDay, 0, 0, 0, 0, time.UTC)
}

// YearLabel renders the tax year beginning at fiscalStart in the canonical
// short form, e.g. a fiscal start of 2025-04-06 becomes "2025/26".
func YearLabel(fiscalStart time.Time) string {
	y := fiscalStart.Year()
	return fmt.Sprintf("%d/%d", y, y+1-2000)
}

// Periods returns the Q1-Q4 date ranges of the tax year beginning at
// fiscalStart: each quarter starts 0/3/6/9 months in and ends the day
// before the next one starts.
func Periods(fiscalStart time.Time) [4]Period {
	var periods [4]Period
	for i := 0; i < 4; i++ {
		start := fiscalStart.AddDate(0, 3*i, 0)
		end := fiscalStart.AddDate(0, 3*(i+1), -1)
		periods[i] = Period{Start: start, End: end}
	}
	return periods
}

// GenerateQuarters produces the four DRAFT quarterly updates for a business
// starting on startDate, labeled Q1 through Q4 in order, with zeroed
// financials and no submission details.
func GenerateQuarters(businessID int, startDate time.Time) []domain.QuarterlyUpdate {
	taxYear := YearLabel(YearStart(startDate))
	zero := decimal.New(0, -2)

	quarters := make([]domain.QuarterlyUpdate, 0, 4)
	for i := 1; i <= 4; i++ {
		quarters = append(quarters, domain.QuarterlyUpdate{
			ID:                ksuid.New().String(),
			BusinessID:        businessID,
			TaxYear:           taxYear,
			QuarterName:       fmt.Sprintf("Q%d", i),
			TaxableIncome:     zero,
			AllowableExpenses: zero,
			NetProfit:         zero,
			Status:            domain.StatusDraft,
			Version:           1,
		})
	}
	return quarters
}
