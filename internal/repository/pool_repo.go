package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jaektomo/SweepstakeManager/internal/domain"
)

// PoolRepository handles all database operations for Pools.
type PoolRepository struct {
	db *sqlx.DB
}

// NewPoolRepository creates a new PoolRepository.
func NewPoolRepository(db *sqlx.DB) *PoolRepository {
	return &PoolRepository{db: db}
}

// Create inserts a new pool row. The stored version starts at 1.
func (r *PoolRepository) Create(ctx context.Context, p *domain.Pool) error {
	p.Version = 1
	query := `
		INSERT INTO pools
			(id, name, entry_fee, prize_shares, status, participants, pairings, outcomes, competitors, version, created_at, updated_at)
		VALUES
			(:id, :name, :entry_fee, :prize_shares, :status, :participants, :pairings, :outcomes, :competitors, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("pool_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches a pool by its primary key.
func (r *PoolRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Pool, error) {
	var p domain.Pool
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT * FROM pools WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPoolNotFound
		}
		return nil, fmt.Errorf("pool_repo.GetByID: %w", err)
	}
	return &p, nil
}

// List returns every pool, most recently created first.
// status="" returns all statuses.
func (r *PoolRepository) List(ctx context.Context, status domain.PoolStatus) ([]*domain.Pool, error) {
	var pools []*domain.Pool
	var err error
	if status != "" {
		err = r.db.SelectContext(ctx, &pools,
			r.db.Rebind(`SELECT * FROM pools WHERE status = ? ORDER BY created_at DESC`), status)
	} else {
		err = r.db.SelectContext(ctx, &pools, `SELECT * FROM pools ORDER BY created_at DESC`)
	}
	if err != nil {
		return nil, fmt.Errorf("pool_repo.List: %w", err)
	}
	return pools, nil
}

// Update writes p back if the stored version still equals p.Version, then
// bumps p.Version and p.UpdatedAt. A concurrent writer that got there first
// yields ErrStaleWrite; a missing row yields ErrPoolNotFound.
func (r *PoolRepository) Update(ctx context.Context, p *domain.Pool) error {
	now := time.Now().UTC()
	query := `
		UPDATE pools
		SET name         = ?,
		    entry_fee    = ?,
		    prize_shares = ?,
		    status       = ?,
		    participants = ?,
		    pairings     = ?,
		    outcomes     = ?,
		    competitors  = ?,
		    version      = version + 1,
		    updated_at   = ?
		WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		p.Name, p.EntryFee, p.PrizeShares, p.Status,
		p.Participants, p.Pairings, p.Outcomes, p.Competitors,
		now, p.ID, p.Version)
	if err != nil {
		return fmt.Errorf("pool_repo.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		err := r.db.GetContext(ctx, &exists, r.db.Rebind(`SELECT COUNT(*) FROM pools WHERE id = ?`), p.ID)
		if err != nil {
			return fmt.Errorf("pool_repo.Update exists: %w", err)
		}
		if exists == 0 {
			return domain.ErrPoolNotFound
		}
		return fmt.Errorf("%w: pool %s at version %d", domain.ErrStaleWrite, p.ID, p.Version)
	}

	p.Version++
	p.UpdatedAt = now
	return nil
}

// Delete removes a pool.
func (r *PoolRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM pools WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("pool_repo.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrPoolNotFound
	}
	return nil
}
