package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// QuarterStatus enumerates quarterly update lifecycle states.
type QuarterStatus string

const (
	StatusDraft     QuarterStatus = "DRAFT"
	StatusSubmitted QuarterStatus = "SUBMITTED"
)

// SubmissionDetails is populated exactly once, when a quarter is submitted.
type SubmissionDetails struct {
	RefNumber   string    `json:"ref_number"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// QuarterlyUpdate is one of the four filing periods of a business's tax
// year. It is persisted as a document; the JSON tags define the stored
// shape. Version guards read-modify-write cycles: a replace only succeeds
// against the version it was read at.
type QuarterlyUpdate struct {
	ID                string             `json:"id"`
	BusinessID        int                `json:"business_id"`
	TaxYear           string             `json:"tax_year"`
	QuarterName       string             `json:"quarter_name"`
	TaxableIncome     decimal.Decimal    `json:"taxable_income"`
	AllowableExpenses decimal.Decimal    `json:"allowable_expenses"`
	NetProfit         decimal.Decimal    `json:"net_profit"`
	Status            QuarterStatus      `json:"status"`
	SubmissionDetails *SubmissionDetails `json:"submission_details,omitempty"`
	Version           int                `json:"-"`
}

// UpdateDraft sets taxable income and allowable expenses and recomputes net
// profit. Only DRAFT quarters may be edited; amounts must be non-negative.
func (q *QuarterlyUpdate) UpdateDraft(income, expenses decimal.Decimal) error {
	if q.Status != StatusDraft {
		return fmt.Errorf("only DRAFT quarters can be updated: %w", ErrInvalidState)
	}
	if income.IsNegative() || expenses.IsNegative() {
		return fmt.Errorf("taxable income and allowable expenses must be non-negative: %w", ErrValidation)
	}
	q.TaxableIncome = income.Round(2)
	q.AllowableExpenses = expenses.Round(2)
	q.NetProfit = q.TaxableIncome.Sub(q.AllowableExpenses)
	return nil
}

// Submit transitions the quarter to SUBMITTED and records the submission
// details. The transition is terminal; submitting twice is rejected rather
// than treated as a no-op.
func (q *QuarterlyUpdate) Submit(refNumber string, submittedAt time.Time) error {
	if q.Status != StatusDraft {
		return fmt.Errorf("only DRAFT quarters can be submitted: %w", ErrInvalidState)
	}
	q.Status = StatusSubmitted
	q.SubmissionDetails = &SubmissionDetails{
		RefNumber:   refNumber,
		SubmittedAt: submittedAt.UTC(),
	}
	return nil
}
