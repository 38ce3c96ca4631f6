package customers

import (
	"context"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (Customer, error) {
	return s.repo.Create(ctx, Customer{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
}

// UpdateCustomer applies a partial update. The running balance stays owned by
// the party ledger.
func (s *Service) UpdateCustomer(ctx context.Context, id int64, req UpdateCustomerRequest) (Customer, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Customer{}, err
	}
	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Email != nil {
		current.Email = *req.Email
	}
	if req.Phone != nil {
		current.Phone = *req.Phone
	}
	if req.Address != nil {
		current.Address = *req.Address
	}
	if req.IsActive != nil {
		current.IsActive = *req.IsActive
	}
	return s.repo.Update(ctx, current)
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (Customer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListCustomers(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	return s.repo.List(ctx, req)
}
