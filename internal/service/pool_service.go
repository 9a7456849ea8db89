package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jaektomo/SweepstakeManager/internal/config"
	"github.com/jaektomo/SweepstakeManager/internal/domain"
	"github.com/jaektomo/SweepstakeManager/internal/engine"
	"github.com/jaektomo/SweepstakeManager/internal/repository"
)

// Broadcaster is the minimal interface the services need from the WS hub.
// Implemented by ws.Hub.
type Broadcaster interface {
	BroadcastPoolEvent(event domain.PoolEvent, p *domain.Pool)
}

// ──────────────────────────────────────────────────────────────────────────────
// PoolService
// ──────────────────────────────────────────────────────────────────────────────

// PoolService runs the pool lifecycle: it loads a pool, hands it to the
// engine, and writes the engine's result back with an optimistic version
// check. Two requests racing on the same pool cannot both win; the loser
// gets domain.ErrStaleWrite.
type PoolService struct {
	pools       *repository.PoolRepository
	competitors *repository.CompetitorRepository
	engine      *engine.Engine
	cfg         *config.Config
	log         *slog.Logger
	broadcaster Broadcaster // injected after WS Hub is built
	now         func() time.Time
}

// NewPoolService creates a PoolService.
func NewPoolService(
	pools *repository.PoolRepository,
	competitors *repository.CompetitorRepository,
	eng *engine.Engine,
	cfg *config.Config,
	logger *slog.Logger,
) *PoolService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PoolService{
		pools:       pools,
		competitors: competitors,
		engine:      eng,
		cfg:         cfg,
		log:         logger.With("component", "pool_service"),
		now:         time.Now,
	}
}

// SetBroadcaster injects the WS Hub dependency post-construction.
func (s *PoolService) SetBroadcaster(b Broadcaster) { s.broadcaster = b }

// ──────────────────────────────────────────────────────────────────────────────
// Create / read
// ──────────────────────────────────────────────────────────────────────────────

// CreatePoolInput is the request to open a new pool. When Competitors is
// empty the current roster is copied into the pool.
type CreatePoolInput struct {
	Name        string
	EntryFee    decimal.Decimal
	PrizeShares domain.PrizeShares
	Competitors []string
}

// CreatePool validates the input and persists a pool in setup.
func (s *PoolService) CreatePool(ctx context.Context, in CreatePoolInput) (*domain.Pool, error) {
	names := in.Competitors
	if len(names) == 0 {
		roster, err := s.competitors.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("pool_service.CreatePool: roster: %w", err)
		}
		names = domain.CompetitorNames(roster)
	}

	p, err := domain.NewPool(domain.NewPoolParams{
		Name:        in.Name,
		EntryFee:    in.EntryFee,
		PrizeShares: in.PrizeShares,
		Competitors: names,
	}, s.now())
	if err != nil {
		return nil, fmt.Errorf("pool_service.CreatePool: %w", err)
	}

	if err := s.pools.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("pool_service.CreatePool: db: %w", err)
	}

	s.log.Info("pool created", "pool_id", p.ID, "name", p.Name, "competitors", len(p.Competitors))
	s.notify(domain.EventPoolCreated, p)
	return p, nil
}

// GetPool returns a single pool.
func (s *PoolService) GetPool(ctx context.Context, id uuid.UUID) (*domain.Pool, error) {
	p, err := s.pools.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("pool_service.GetPool: %w", err)
	}
	return p, nil
}

// ListPools returns the pools whose name or status contains query, newest
// first. An empty query returns every pool.
func (s *PoolService) ListPools(ctx context.Context, query string) ([]*domain.Pool, error) {
	pools, err := s.pools.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("pool_service.ListPools: %w", err)
	}
	return domain.FilterAndSort(pools, query), nil
}

// DeletePool removes a pool in any state.
func (s *PoolService) DeletePool(ctx context.Context, id uuid.UUID) error {
	p, err := s.pools.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("pool_service.DeletePool: %w", err)
	}
	if err := s.pools.Delete(ctx, id); err != nil {
		return fmt.Errorf("pool_service.DeletePool: %w", err)
	}
	s.log.Info("pool deleted", "pool_id", id)
	s.notify(domain.EventPoolDeleted, p)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Roster edits
// ──────────────────────────────────────────────────────────────────────────────

// AddParticipant appends an unpaid participant to a pool in setup.
func (s *PoolService) AddParticipant(ctx context.Context, id uuid.UUID, name string) (*domain.Pool, error) {
	return s.apply(ctx, id, "AddParticipant", domain.EventParticipantAdded, func(p *domain.Pool) (*domain.Pool, error) {
		if limit := s.cfg.Sweep.MaxParticipants; limit > 0 && len(p.Participants) >= limit {
			return nil, fmt.Errorf("%w: pool is full (%d participants)", domain.ErrInvalidParticipant, limit)
		}
		return engine.AddParticipant(p, name)
	})
}

// SetParticipantPaid records whether the participant at index has paid.
func (s *PoolService) SetParticipantPaid(ctx context.Context, id uuid.UUID, index int, paid bool) (*domain.Pool, error) {
	return s.apply(ctx, id, "SetParticipantPaid", domain.EventParticipantPaid, func(p *domain.Pool) (*domain.Pool, error) {
		return engine.SetParticipantPaid(p, index, paid)
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Assign / Settle
// ──────────────────────────────────────────────────────────────────────────────

// Assign draws a competitor for every participant from the pool's own
// competitor list.
func (s *PoolService) Assign(ctx context.Context, id uuid.UUID) (*domain.Pool, error) {
	p, err := s.apply(ctx, id, "Assign", domain.EventPoolAssigned, func(p *domain.Pool) (*domain.Pool, error) {
		return s.engine.Assign(p, p.Competitors)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("competitors assigned", "pool_id", p.ID, "pairings", len(p.Pairings))
	return p, nil
}

// Settle draws the finishing order and computes winnings.
func (s *PoolService) Settle(ctx context.Context, id uuid.UUID) (*domain.Pool, error) {
	p, err := s.apply(ctx, id, "Settle", domain.EventPoolSettled, func(p *domain.Pool) (*domain.Pool, error) {
		if p.Overcommitted() {
			s.log.Warn("settling overcommitted pool",
				"pool_id", p.ID, "prize_percentage", p.PrizePercentageTotal().String())
		}
		return s.engine.Settle(p)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("pool settled", "pool_id", p.ID, "total_pool", p.TotalPool().String(), "places", len(p.Outcomes))
	return p, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Summary
// ──────────────────────────────────────────────────────────────────────────────

// PoolSummary is the dashboard view of a pool.
type PoolSummary struct {
	Pool                *domain.Pool         `json:"pool"`
	TotalPool           decimal.Decimal      `json:"total_pool"`
	PrizePercentage     decimal.Decimal      `json:"prize_percentage"`
	RemainingPercentage decimal.Decimal      `json:"remaining_percentage"`
	Overcommitted       bool                 `json:"overcommitted"`
	ParticipantCount    int                  `json:"participant_count"`
	PaidCount           int                  `json:"paid_count"`
	Payouts             []engine.PlacePayout `json:"payouts"`
}

// Summary returns totals, payment progress and the projected payout per place.
func (s *PoolService) Summary(ctx context.Context, id uuid.UUID) (*PoolSummary, error) {
	p, err := s.pools.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("pool_service.Summary: %w", err)
	}
	return Summarize(p), nil
}

// Summarize builds the summary view of p.
func Summarize(p *domain.Pool) *PoolSummary {
	return &PoolSummary{
		Pool:                p,
		TotalPool:           p.TotalPool(),
		PrizePercentage:     p.PrizePercentageTotal(),
		RemainingPercentage: p.RemainingPrizePercentage(),
		Overcommitted:       p.Overcommitted(),
		ParticipantCount:    len(p.Participants),
		PaidCount:           p.PaidCount(),
		Payouts:             engine.Preview(p),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// helpers
// ──────────────────────────────────────────────────────────────────────────────

// apply loads pool id, runs op on it and stores the result. The store
// rejects the write if another request updated the pool in between.
func (s *PoolService) apply(
	ctx context.Context,
	id uuid.UUID,
	name string,
	event domain.PoolEvent,
	op func(*domain.Pool) (*domain.Pool, error),
) (*domain.Pool, error) {
	current, err := s.pools.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("pool_service.%s: %w", name, err)
	}

	next, err := op(current)
	if err != nil {
		return nil, fmt.Errorf("pool_service.%s: %w", name, err)
	}

	if err := s.pools.Update(ctx, next); err != nil {
		if domain.IsConflict(err) {
			s.log.Warn("concurrent pool write rejected", "pool_id", id, "op", name)
		}
		return nil, fmt.Errorf("pool_service.%s: db: %w", name, err)
	}

	s.notify(event, next)
	return next, nil
}

func (s *PoolService) notify(event domain.PoolEvent, p *domain.Pool) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastPoolEvent(event, p)
	}
}
