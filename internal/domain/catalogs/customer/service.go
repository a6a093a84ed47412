package customer

import (
	"context"

	"granel/internal/core/apperror"
	"granel/internal/core/id"
	"granel/internal/domain"
	"granel/pkg/logger"
)

// Service provides business logic for the Customer catalog.
type Service struct {
	repo Repository
}

// NewService creates a new Customer service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a customer.
func (s *Service) Create(ctx context.Context, c *Customer) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return err
	}
	logger.Info(ctx, "customer created", "id", c.ID, "name", c.Name)
	return nil
}

// Update validates and persists customer changes.
// The debt balance is not updatable here; it belongs to the credit register.
func (s *Service) Update(ctx context.Context, c *Customer) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, c)
}

// GetByID retrieves a customer.
func (s *Service) GetByID(ctx context.Context, customerID id.ID) (*Customer, error) {
	return s.repo.GetByID(ctx, customerID)
}

// List retrieves customers with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Customer], error) {
	return s.repo.List(ctx, filter)
}

// FindByBranch retrieves customers affiliated with a branch.
func (s *Service) FindByBranch(ctx context.Context, branchID id.ID, filter domain.ListFilter) (domain.ListResult[*Customer], error) {
	return s.repo.FindByBranch(ctx, branchID, filter)
}

// FindDebtors retrieves customers with outstanding debt.
func (s *Service) FindDebtors(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Customer], error) {
	return s.repo.FindDebtors(ctx, filter)
}

// Deactivate soft-deletes a customer. Customers with outstanding debt
// cannot be deactivated until the debt is settled.
func (s *Service) Deactivate(ctx context.Context, customerID id.ID) error {
	c, err := s.repo.GetByID(ctx, customerID)
	if err != nil {
		return err
	}

	if c.HasDebt() {
		return apperror.NewBusinessRule("CUSTOMER_HAS_DEBT", "customer with outstanding debt cannot be deactivated").
			WithDetail("customer_id", customerID).
			WithDetail("balance", c.DebtBalance.String())
	}

	return s.repo.SetActive(ctx, customerID, false)
}
