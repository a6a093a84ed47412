package branch

import (
	"context"

	"granel/internal/core/id"
	"granel/internal/domain"
	"granel/pkg/logger"
)

// Service provides business logic for the Branch catalog.
type Service struct {
	repo Repository
}

// NewService creates a new Branch service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a branch.
func (s *Service) Create(ctx context.Context, b *Branch) error {
	if err := b.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return err
	}
	logger.Info(ctx, "branch created", "id", b.ID, "name", b.Name)
	return nil
}

// Update validates and persists branch changes.
func (s *Service) Update(ctx context.Context, b *Branch) error {
	if err := b.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, b)
}

// GetByID retrieves a branch.
func (s *Service) GetByID(ctx context.Context, branchID id.ID) (*Branch, error) {
	return s.repo.GetByID(ctx, branchID)
}

// List retrieves branches with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Branch], error) {
	return s.repo.List(ctx, filter)
}

// ActiveBranchIDs returns ids of all active branches.
func (s *Service) ActiveBranchIDs(ctx context.Context) ([]id.ID, error) {
	return s.repo.ActiveIDs(ctx)
}

// Deactivate soft-deletes a branch.
func (s *Service) Deactivate(ctx context.Context, branchID id.ID) error {
	return s.repo.SetActive(ctx, branchID, false)
}
