package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taxfiling/internal/domain"
)

// BusinessRepositoryPG implements domain.BusinessRepository backed by
// PostgreSQL.
type BusinessRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewBusinessRepository creates a new BusinessRepositoryPG.
func NewBusinessRepository(pool *pgxpool.Pool) *BusinessRepositoryPG {
	return &BusinessRepositoryPG{pool: pool}
}

// Create inserts the business and returns it with the store-assigned id.
func (r *BusinessRepositoryPG) Create(ctx context.Context, business *domain.Business) (*domain.Business, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO businesses (user_id, name, start_date)
VALUES ($1, $2, $3)
RETURNING id, user_id, name, start_date, created_at;
`, business.UserID, business.Name, business.StartDate)
	return scanBusiness(row)
}

// FindByUser returns the user's business, or ErrNotFound.
func (r *BusinessRepositoryPG) FindByUser(ctx context.Context, userID string) (*domain.Business, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, user_id, name, start_date, created_at FROM businesses WHERE user_id = $1`, userID)
	return scanBusiness(row)
}

// Delete removes a business row. Used only to compensate a failed
// quarter insert during onboarding.
func (r *BusinessRepositoryPG) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM businesses WHERE id = $1`, id)
	return err
}

func scanBusiness(row pgx.Row) (*domain.Business, error) {
	var b domain.Business
	if err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.StartDate, &b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}
