package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jaektomo/SweepstakeManager/internal/domain"
)

// CompetitorRepository stores the roster new pools draw their competitors from.
type CompetitorRepository struct {
	db *sqlx.DB
}

// NewCompetitorRepository creates a new CompetitorRepository.
func NewCompetitorRepository(db *sqlx.DB) *CompetitorRepository {
	return &CompetitorRepository{db: db}
}

// Create inserts a competitor.
func (r *CompetitorRepository) Create(ctx context.Context, c *domain.Competitor) error {
	query := `INSERT INTO competitors (id, name, created_at) VALUES (:id, :name, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		return fmt.Errorf("competitor_repo.Create: %w", err)
	}
	return nil
}

// List returns the roster in the order competitors were added.
func (r *CompetitorRepository) List(ctx context.Context) ([]*domain.Competitor, error) {
	var roster []*domain.Competitor
	if err := r.db.SelectContext(ctx, &roster,
		`SELECT * FROM competitors ORDER BY created_at ASC, name ASC`); err != nil {
		return nil, fmt.Errorf("competitor_repo.List: %w", err)
	}
	return roster, nil
}

// Delete removes a competitor from the roster. Pools that already copied the
// name keep it.
func (r *CompetitorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM competitors WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("competitor_repo.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrCompetitorNotFound
	}
	return nil
}
