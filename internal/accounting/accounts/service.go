package accounts

import (
	"context"
	"fmt"
	"strings"

	"github.com/parcelops/backoffice/internal/accounting/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateAccount registers a new chart of accounts node.
func (s *Service) CreateAccount(ctx context.Context, req CreateAccountRequest) (Account, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return Account{}, fmt.Errorf("%w: code required", shared.ErrValidation)
	}
	category := AccountCategory(req.Category)
	if !ValidCategory(category) {
		return Account{}, fmt.Errorf("%w: unknown category %q", shared.ErrValidation, req.Category)
	}
	return s.repo.Create(ctx, Account{
		Code:        code,
		Name:        strings.TrimSpace(req.Name),
		Category:    category,
		Type:        req.Type,
		DebitRule:   BalanceRule(req.DebitRule),
		CreditRule:  BalanceRule(req.CreditRule),
		Description: req.Description,
		IsActive:    true,
	})
}

// UpdateAccount applies partial field updates to an existing account.
func (s *Service) UpdateAccount(ctx context.Context, id int64, req UpdateAccountRequest) (Account, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if req.Name != nil {
		account.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		category := AccountCategory(*req.Category)
		if !ValidCategory(category) {
			return Account{}, fmt.Errorf("%w: unknown category %q", shared.ErrValidation, *req.Category)
		}
		account.Category = category
	}
	if req.Type != nil {
		account.Type = *req.Type
	}
	if req.DebitRule != nil {
		account.DebitRule = BalanceRule(*req.DebitRule)
	}
	if req.CreditRule != nil {
		account.CreditRule = BalanceRule(*req.CreditRule)
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}
	return s.repo.Update(ctx, account)
}

// DeleteAccount removes an account unless journal lines reference it.
func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	refs, err := s.repo.ReferenceCount(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return shared.ErrReferenced
	}
	return s.repo.Delete(ctx, id)
}

// InitializeDefaults seeds the standard chart of accounts into an empty registry.
func (s *Service) InitializeDefaults(ctx context.Context) ([]Account, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, shared.ErrAlreadyInitialized
	}
	chart := DefaultChart()
	if err := s.repo.InsertBatch(ctx, chart); err != nil {
		return nil, err
	}
	return chart, nil
}

// GetAccount loads one account by id.
func (s *Service) GetAccount(ctx context.Context, id int64) (Account, error) {
	return s.repo.GetByID(ctx, id)
}

// ListAccounts returns a filtered page ordered by category then code.
func (s *Service) ListAccounts(ctx context.Context, req ListAccountsRequest) ([]Account, int, error) {
	return s.repo.List(ctx, req)
}
