package vendors

import "context"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateVendor(ctx context.Context, req CreateVendorRequest) (Vendor, error) {
	return s.repo.Create(ctx, Vendor{
		Name:        req.Name,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
	})
}

func (s *Service) UpdateVendor(ctx context.Context, id int64, req UpdateVendorRequest) (Vendor, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Vendor{}, err
	}
	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.ContactName != nil {
		current.ContactName = *req.ContactName
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

func (s *Service) GetVendor(ctx context.Context, id int64) (Vendor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListVendors(ctx context.Context, req ListVendorsRequest) ([]Vendor, int, error) {
	return s.repo.List(ctx, req)
}
