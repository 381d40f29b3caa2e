package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
	"github.com/shopspring/decimal"

	"taxfiling/internal/domain"
	"taxfiling/internal/tax"
)

// QuarterService runs the per-quarter operations: listing with the tax
// summary, draft edits, and submission. Every mutation is a load-check-
// replace cycle; the version match inside Replace rejects the loser of a
// concurrent edit.
type QuarterService struct {
	businesses domain.BusinessRepository
	quarters   domain.QuarterRepository
	allowance  decimal.Decimal
	basicRate  decimal.Decimal
	logger     zerolog.Logger
	now        func() time.Time
}

func NewQuarterService(businesses domain.BusinessRepository, quarters domain.QuarterRepository, allowance, basicRate decimal.Decimal, logger zerolog.Logger) *QuarterService {
	return &QuarterService{
		businesses: businesses,
		quarters:   quarters,
		allowance:  allowance,
		basicRate:  basicRate,
		logger:     logger,
		now:        time.Now,
	}
}

// Summary returns the user's quarters ordered for presentation together
// with the cumulative figures.
func (s *QuarterService) Summary(ctx context.Context, userID string) (*tax.Summary, error) {
	business, err := s.businessOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	quarters, err := s.quarters.FindByBusiness(ctx, business.ID)
	if err != nil {
		return nil, fmt.Errorf("load quarters: %w", err)
	}
	summary, err := tax.Summarize(quarters, s.allowance, s.basicRate)
	if err != nil {
		return nil, fmt.Errorf("no quarterly updates found for business %d: %w", business.ID, err)
	}
	return summary, nil
}

// SaveDraft applies new income/expenses figures to a DRAFT quarter owned by
// the user's business.
func (s *QuarterService) SaveDraft(ctx context.Context, userID, quarterID string, income, expenses decimal.Decimal) (*domain.QuarterlyUpdate, error) {
	quarter, err := s.ownedQuarter(ctx, userID, quarterID)
	if err != nil {
		return nil, err
	}
	if err := quarter.UpdateDraft(income, expenses); err != nil {
		return nil, err
	}
	if err := s.replace(ctx, quarter); err != nil {
		return nil, err
	}
	return quarter, nil
}

// Submit transitions a DRAFT quarter to SUBMITTED, generating the
// submission reference and timestamp.
func (s *QuarterService) Submit(ctx context.Context, userID, quarterID string) (*domain.QuarterlyUpdate, error) {
	quarter, err := s.ownedQuarter(ctx, userID, quarterID)
	if err != nil {
		return nil, err
	}
	ref := fmt.Sprintf("MTD-ACK-%s", ksuid.New().String())
	if err := quarter.Submit(ref, s.now()); err != nil {
		return nil, err
	}
	if err := s.replace(ctx, quarter); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("quarter_id", quarter.ID).
		Int("business_id", quarter.BusinessID).
		Str("ref_number", ref).
		Msg("quarter submitted")
	return quarter, nil
}

func (s *QuarterService) businessOf(ctx context.Context, userID string) (*domain.Business, error) {
	business, err := s.businesses.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("no business found for the current user: %w", err)
	}
	return business, nil
}

func (s *QuarterService) ownedQuarter(ctx context.Context, userID, quarterID string) (*domain.QuarterlyUpdate, error) {
	business, err := s.businessOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	quarter, err := s.quarters.FindOne(ctx, quarterID, business.ID)
	if err != nil {
		return nil, fmt.Errorf("quarterly update %q not found for business %d: %w", quarterID, business.ID, err)
	}
	return quarter, nil
}

func (s *QuarterService) replace(ctx context.Context, quarter *domain.QuarterlyUpdate) error {
	if err := s.quarters.Replace(ctx, quarter); err != nil {
		return fmt.Errorf("replace quarter %q: %w", quarter.ID, err)
	}
	return nil
}
