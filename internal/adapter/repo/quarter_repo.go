package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taxfiling/internal/domain"
)

// QuarterRepositoryPG implements domain.QuarterRepository as a JSONB
// document collection in PostgreSQL. Only the id, owning business and
// version live in columns; everything else is the document itself, so the
// stored shape stays free to evolve without schema changes.
type QuarterRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewQuarterRepository creates a new QuarterRepositoryPG.
func NewQuarterRepository(pool *pgxpool.Pool) *QuarterRepositoryPG {
	return &QuarterRepositoryPG{pool: pool}
}

// InsertMany writes the quarter documents in one transaction so a business
// never ends up with a partial quarter set.
func (r *QuarterRepositoryPG) InsertMany(ctx context.Context, quarters []domain.QuarterlyUpdate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := range quarters {
		doc, err := json.Marshal(&quarters[i])
		if err != nil {
			return fmt.Errorf("marshal quarter %q: %w", quarters[i].ID, err)
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO quarterly_updates (id, business_id, version, doc)
VALUES ($1, $2, $3, $4);
`, quarters[i].ID, quarters[i].BusinessID, quarters[i].Version, doc); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// FindByBusiness returns all quarter documents of a business.
func (r *QuarterRepositoryPG) FindByBusiness(ctx context.Context, businessID int) ([]domain.QuarterlyUpdate, error) {
	rows, err := r.pool.Query(ctx, `
SELECT doc, version
FROM quarterly_updates
WHERE business_id = $1;
`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.QuarterlyUpdate
	for rows.Next() {
		quarter, err := scanQuarter(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *quarter)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// FindOne returns the quarter matched by id and owning business, or
// ErrNotFound. The business match keeps one user from addressing another
// user's quarter by id.
func (r *QuarterRepositoryPG) FindOne(ctx context.Context, id string, businessID int) (*domain.QuarterlyUpdate, error) {
	row := r.pool.QueryRow(ctx, `
SELECT doc, version
FROM quarterly_updates
WHERE id = $1 AND business_id = $2;
`, id, businessID)
	quarter, err := scanQuarter(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return quarter, nil
}

// Replace stores the quarter document, matching on the version it was read
// at and bumping it. A stale write matches zero rows and returns
// ErrConflict, so the loser of a concurrent read-modify-write cycle never
// clobbers the winner.
func (r *QuarterRepositoryPG) Replace(ctx context.Context, quarter *domain.QuarterlyUpdate) error {
	readVersion := quarter.Version
	quarter.Version = readVersion + 1

	doc, err := json.Marshal(quarter)
	if err != nil {
		quarter.Version = readVersion
		return fmt.Errorf("marshal quarter %q: %w", quarter.ID, err)
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE quarterly_updates
SET doc = $1, version = $2
WHERE id = $3 AND business_id = $4 AND version = $5;
`, doc, quarter.Version, quarter.ID, quarter.BusinessID, readVersion)
	if err != nil {
		quarter.Version = readVersion
		return err
	}
	if tag.RowsAffected() == 0 {
		quarter.Version = readVersion
		return domain.ErrConflict
	}
	return nil
}

func scanQuarter(row pgx.Row) (*domain.QuarterlyUpdate, error) {
	var doc []byte
	var version int
	if err := row.Scan(&doc, &version); err != nil {
		return nil, err
	}
	var quarter domain.QuarterlyUpdate
	if err := json.Unmarshal(doc, &quarter); err != nil {
		return nil, fmt.Errorf("unmarshal quarter document: %w", err)
	}
	quarter.Version = version
	return &quarter, nil
}
