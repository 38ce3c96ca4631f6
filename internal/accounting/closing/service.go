package closing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/parcelops/backoffice/internal/accounting/accounts"
	"github.com/parcelops/backoffice/internal/accounting/journals"
	"github.com/parcelops/backoffice/internal/accounting/shared"
	"github.com/parcelops/backoffice/internal/observability"
	internalShared "github.com/parcelops/backoffice/internal/shared"
)

type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// Service sweeps revenue and expense activity into current year earnings at
// the end of a period.
type Service struct {
	repo    Repository
	audit   AuditPort
	metrics *observability.Metrics
	now     func() time.Time
}

func NewService(repo Repository, audit AuditPort, metrics *observability.Metrics) *Service {
	return &Service{repo: repo, audit: audit, metrics: metrics, now: time.Now}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// ClosePeriod builds and posts the closing entry for [start, end]. Each
// revenue account with a positive net credit balance is debited by that net;
// each expense account with a positive net debit balance is credited. The
// difference lands on current year earnings. A period whose net result is
// within the rounding tolerance writes no entry at all. Closing the same
// period twice returns the original entry instead of writing a second one.
func (s *Service) ClosePeriod(ctx context.Context, start, end time.Time) (Result, error) {
	if start.IsZero() || end.IsZero() {
		return Result{}, fmt.Errorf("%w: start and end dates required", shared.ErrValidation)
	}
	if end.Before(start) {
		return Result{}, fmt.Errorf("%w: end date before start date", shared.ErrValidation)
	}
	reference := Reference(start, end)

	var result Result
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		existing, err := tx.EntryByReference(ctx, reference)
		if err == nil {
			result = Result{
				Reference:     reference,
				Entry:         existing,
				AlreadyClosed: true,
			}
			return nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		balances, err := tx.PeriodBalances(ctx, start, end)
		if err != nil {
			return err
		}

		var (
			lines        []journals.LineInput
			totalRevenue float64
			totalExpense float64
		)
		for _, b := range balances {
			switch b.Category {
			case string(accounts.CategoryRevenue):
				net := b.TotalCredit - b.TotalDebit
				if net <= journals.BalanceTolerance {
					continue
				}
				totalRevenue += net
				lines = append(lines, journals.LineInput{
					AccountID:   b.AccountID,
					Debit:       net,
					Description: "close " + b.Name,
					Reference:   reference,
				})
			case string(accounts.CategoryExpense):
				net := b.TotalDebit - b.TotalCredit
				if net <= journals.BalanceTolerance {
					continue
				}
				totalExpense += net
				lines = append(lines, journals.LineInput{
					AccountID:   b.AccountID,
					Credit:      net,
					Description: "close " + b.Name,
					Reference:   reference,
				})
			}
		}
		netResult := totalRevenue - totalExpense
		if len(lines) == 0 || math.Abs(netResult) <= journals.BalanceTolerance {
			// A break-even period writes nothing; the accounts carry
			// their offsetting balances into the next period.
			return ErrNothingToClose
		}

		earningsID, err := tx.AccountIDByCode(ctx, accounts.CodeCurrentYearEarnings)
		if err != nil {
			return fmt.Errorf("closing: current year earnings account missing: %w", err)
		}
		line := journals.LineInput{
			AccountID:   earningsID,
			Description: "period net result",
			Reference:   reference,
		}
		if netResult > 0 {
			line.Credit = netResult
		} else {
			line.Debit = -netResult
		}
		lines = append(lines, line)

		number, err := tx.Journal().NextEntryNumber(ctx)
		if err != nil {
			return err
		}
		entry, err := journals.BuildEntry(journals.EntryInput{
			Date:        end,
			Description: fmt.Sprintf("period close %s to %s", start.Format("2006-01-02"), end.Format("2006-01-02")),
			Reference:   reference,
			Source:      Source,
			AutoPost:    true,
			Lines:       lines,
		}, number, s.now())
		if err != nil {
			return err
		}
		inserted, err := tx.Journal().InsertEntry(ctx, entry)
		if err != nil {
			return err
		}
		if err := tx.Journal().InsertLines(ctx, inserted.ID, entry.Lines); err != nil {
			return err
		}
		inserted.Lines = entry.Lines

		result = Result{
			Reference:    reference,
			Entry:        inserted,
			TotalRevenue: totalRevenue,
			TotalExpense: totalExpense,
			NetResult:    netResult,
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	if !result.AlreadyClosed {
		s.metrics.ObserveJournalEntry(Source)
		if s.audit != nil {
			_ = s.audit.Record(ctx, internalShared.AuditLog{
				Action:   "closing.close",
				Entity:   "journal_entry",
				EntityID: fmt.Sprintf("%d", result.Entry.ID),
				Meta: map[string]any{
					"reference":  reference,
					"net_result": result.NetResult,
				},
				At: s.now(),
			})
		}
	}
	return result, nil
}

// ListClosings returns past closing entries, newest first.
func (s *Service) ListClosings(ctx context.Context, limit, offset int) ([]journals.JournalEntry, int, error) {
	return s.repo.ListClosings(ctx, limit, offset)
}
