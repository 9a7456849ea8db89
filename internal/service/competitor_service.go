package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/jaektomo/SweepstakeManager/internal/domain"
	"github.com/jaektomo/SweepstakeManager/internal/repository"
)

// CompetitorService manages the shared competitor roster.
type CompetitorService struct {
	repo *repository.CompetitorRepository
	log  *slog.Logger
}

// NewCompetitorService creates a CompetitorService.
func NewCompetitorService(repo *repository.CompetitorRepository, logger *slog.Logger) *CompetitorService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompetitorService{repo: repo, log: logger.With("component", "competitor_service")}
}

// List returns the roster in insertion order.
func (s *CompetitorService) List(ctx context.Context) ([]*domain.Competitor, error) {
	roster, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("competitor_service.List: %w", err)
	}
	return roster, nil
}

// Add appends a competitor. Names are unique within the roster.
func (s *CompetitorService) Add(ctx context.Context, name string) (*domain.Competitor, error) {
	c, err := domain.NewCompetitor(name, time.Now())
	if err != nil {
		return nil, fmt.Errorf("competitor_service.Add: %w", err)
	}
	roster, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("competitor_service.Add: db: %w", err)
	}
	if slices.Contains(domain.CompetitorNames(roster), c.Name) {
		return nil, fmt.Errorf("competitor_service.Add: %w: %q is already on the roster", domain.ErrInvalidCompetitor, c.Name)
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("competitor_service.Add: db: %w", err)
	}
	s.log.Info("competitor added", "competitor_id", c.ID, "name", c.Name)
	return c, nil
}

// Remove deletes a competitor from the roster.
func (s *CompetitorService) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("competitor_service.Remove: %w", err)
	}
	s.log.Info("competitor removed", "competitor_id", id)
	return nil
}
