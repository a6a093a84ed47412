package product

import (
	"context"
	"fmt"

	"granel/internal/core/apperror"
	"granel/internal/core/id"
	"granel/internal/core/tx"
	"granel/internal/domain"
	"granel/pkg/logger"
)

// BranchLister supplies branch ids for inventory initialization.
type BranchLister interface {
	ActiveBranchIDs(ctx context.Context) ([]id.ID, error)
}

// InventoryInitializer creates zero-quantity inventory rows for a new product.
type InventoryInitializer interface {
	InitProduct(ctx context.Context, productID id.ID, branchIDs []id.ID) error
}

// Service provides business logic for the Product catalog.
type Service struct {
	repo      Repository
	branches  BranchLister
	inventory InventoryInitializer
	txManager tx.Manager
}

// NewService creates a new Product service.
func NewService(repo Repository, branches BranchLister, inventory InventoryInitializer, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		branches:  branches,
		inventory: inventory,
		txManager: txManager,
	}
}

// Create validates and persists a product, initializing a zero-quantity
// inventory row at every active branch in the same transaction.
func (s *Service) Create(ctx context.Context, p *Product) error {
	p.ApplyCategoryDefaults()

	if err := p.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create product: %w", err)
		}

		branchIDs, err := s.branches.ActiveBranchIDs(ctx)
		if err != nil {
			return fmt.Errorf("list branches: %w", err)
		}

		if err := s.inventory.InitProduct(ctx, p.ID, branchIDs); err != nil {
			return fmt.Errorf("init inventory: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "product created", "id", p.ID, "name", p.Name, "category", p.Category)
	return nil
}

// Update validates and persists product changes.
func (s *Service) Update(ctx context.Context, p *Product) error {
	p.ApplyCategoryDefaults()

	if err := p.Validate(ctx); err != nil {
		return err
	}

	return s.repo.Update(ctx, p)
}

// GetByID retrieves a product.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// List retrieves products with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	return s.repo.List(ctx, filter)
}

// FindByCategory retrieves products of a category.
func (s *Service) FindByCategory(ctx context.Context, category string, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	return s.repo.FindByCategory(ctx, category, filter)
}

// Delete removes a product. Products with sale history are deactivated
// instead of physically removed so past sales keep their references.
func (s *Service) Delete(ctx context.Context, productID id.ID) error {
	exists, err := s.repo.Exists(ctx, productID)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NewNotFound("product", productID)
	}

	hasHistory, err := s.repo.HasSaleHistory(ctx, productID)
	if err != nil {
		return fmt.Errorf("check sale history: %w", err)
	}

	if hasHistory {
		if err := s.repo.SetActive(ctx, productID, false); err != nil {
			return err
		}
		logger.Info(ctx, "product deactivated", "id", productID)
		return nil
	}

	if err := s.repo.HardDelete(ctx, productID); err != nil {
		return err
	}
	logger.Info(ctx, "product deleted", "id", productID)
	return nil
}

// Restore reactivates a deactivated product.
func (s *Service) Restore(ctx context.Context, productID id.ID) error {
	return s.repo.SetActive(ctx, productID, true)
}
