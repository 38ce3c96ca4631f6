package partyledger

import (
	"context"
	"fmt"

	"github.com/parcelops/backoffice/internal/accounting/shared"
	"github.com/parcelops/backoffice/internal/observability"
)

type Service struct {
	repo    Repository
	metrics *observability.Metrics
}

func NewService(repo Repository, metrics *observability.Metrics) *Service {
	return &Service{repo: repo, metrics: metrics}
}

// PostTransaction applies one posting: balance read, polarity apply, balance
// update and history append, committed as a single unit.
func (s *Service) PostTransaction(ctx context.Context, in PostInput) (Posting, error) {
	if !ValidOwnerType(in.OwnerType) {
		return Posting{}, fmt.Errorf("%w: unknown ledger %q", shared.ErrValidation, in.OwnerType)
	}
	if in.OwnerID == 0 {
		return Posting{}, fmt.Errorf("%w: owner id required", shared.ErrValidation)
	}
	if in.Direction != DirectionDebit && in.Direction != DirectionCredit {
		return Posting{}, fmt.Errorf("%w: direction must be DEBIT or CREDIT", shared.ErrValidation)
	}
	if in.Amount <= 0 {
		return Posting{}, fmt.Errorf("%w: amount must be positive", shared.ErrValidation)
	}
	var posting Posting
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxLedger) error {
		var err error
		posting, err = tx.Post(ctx, in)
		return err
	})
	if err != nil {
		return Posting{}, err
	}
	s.metrics.ObserveLedgerPosting(string(in.OwnerType))
	return posting, nil
}

// ListTransactions returns the statement for one ledger owner, newest first.
func (s *Service) ListTransactions(ctx context.Context, owner OwnerType, ownerID int64, limit, offset int) ([]Transaction, int, error) {
	if !ValidOwnerType(owner) {
		return nil, 0, fmt.Errorf("%w: unknown ledger %q", shared.ErrValidation, owner)
	}
	return s.repo.ListTransactions(ctx, owner, ownerID, limit, offset)
}
