package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"taxfiling/internal/domain"
	"taxfiling/internal/fiscal"
)

// BusinessService onboards a business and materializes its four fiscal
// quarters. One business per user.
type BusinessService struct {
	businesses domain.BusinessRepository
	quarters   domain.QuarterRepository
	logger     zerolog.Logger
}

func NewBusinessService(businesses domain.BusinessRepository, quarters domain.QuarterRepository, logger zerolog.Logger) *BusinessService {
	return &BusinessService{businesses: businesses, quarters: quarters, logger: logger}
}

// Onboard creates the business record and its four DRAFT quarters. The two
// writes hit separate stores; if the quarter insert fails the business row
// is deleted again so readers never observe a business without quarters.
// A failed compensation leaves the invariant broken and is surfaced as
// ErrInconsistent for operator attention rather than silently absorbed.
func (s *BusinessService) Onboard(ctx context.Context, userID, name string, startDate time.Time) (*domain.Business, error) {
	if _, err := s.businesses.FindByUser(ctx, userID); err == nil {
		return nil, fmt.Errorf("user already has a registered business: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup business: %w", err)
	}

	business, err := s.businesses.Create(ctx, &domain.Business{
		UserID:    userID,
		Name:      name,
		StartDate: startDate,
	})
	if err != nil {
		return nil, fmt.Errorf("create business: %w", err)
	}

	quarters := fiscal.GenerateQuarters(business.ID, business.StartDate)
	if err := s.quarters.InsertMany(ctx, quarters); err != nil {
		if delErr := s.businesses.Delete(ctx, business.ID); delErr != nil {
			s.logger.Error().Err(delErr).
				Int("business_id", business.ID).
				Str("user_id", userID).
				Msg("compensating delete failed, business has no quarters")
			return nil, fmt.Errorf("business %d committed without quarters: %w", business.ID, domain.ErrInconsistent)
		}
		return nil, fmt.Errorf("insert quarters: %w", err)
	}

	s.logger.Info().
		Int("business_id", business.ID).
		Str("user_id", userID).
		Str("tax_year", quarters[0].TaxYear).
		Msg("business onboarded")
	return business, nil
}
