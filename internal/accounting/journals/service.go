package journals

import (
	"context"
	"fmt"
	"time"

	internalShared "github.com/parcelops/backoffice/internal/shared"

	"github.com/parcelops/backoffice/internal/accounting/shared"
	"github.com/parcelops/backoffice/internal/observability"
)

type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

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

// CreateEntry validates and persists a journal entry with its lines and a
// freshly allocated entry number, all inside one transaction.
func (s *Service) CreateEntry(ctx context.Context, input EntryInput) (JournalEntry, error) {
	if err := input.Validate(); err != nil {
		return JournalEntry{}, err
	}
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		number, err := tx.NextEntryNumber(ctx)
		if err != nil {
			return err
		}
		built, err := BuildEntry(input, number, s.now())
		if err != nil {
			return err
		}
		inserted, err := tx.InsertEntry(ctx, built)
		if err != nil {
			return err
		}
		if err := tx.InsertLines(ctx, inserted.ID, built.Lines); err != nil {
			return err
		}
		entry = inserted
		entry.Lines = built.Lines
		return nil
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.metrics.ObserveJournalEntry(entry.Source)
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			Action:   "journal.create",
			Entity:   "journal_entry",
			EntityID: fmt.Sprintf("%d", entry.ID),
			Meta: map[string]any{
				"number": entry.Number,
				"source": entry.Source,
				"total":  entry.TotalDebit,
			},
			At: s.now(),
		})
	}
	return entry, nil
}

// PostEntry transitions an entry to posted. The transition is one-way.
func (s *Service) PostEntry(ctx context.Context, id int64) (JournalEntry, error) {
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetEntryForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current.IsPosted {
			return shared.ErrAlreadyPosted
		}
		postedAt := s.now()
		if err := tx.MarkPosted(ctx, current.ID, postedAt); err != nil {
			return err
		}
		current.IsPosted = true
		current.PostedAt = &postedAt
		entry = current
		return nil
	})
	if err != nil {
		return JournalEntry{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			Action:   "journal.post",
			Entity:   "journal_entry",
			EntityID: fmt.Sprintf("%d", entry.ID),
			Meta:     map[string]any{"number": entry.Number},
			At:       s.now(),
		})
	}
	return entry, nil
}

// GetEntry loads one entry with its lines.
func (s *Service) GetEntry(ctx context.Context, id int64) (JournalEntry, error) {
	return s.repo.GetEntry(ctx, id)
}

// ListEntries returns a filtered page ordered by date descending.
func (s *Service) ListEntries(ctx context.Context, req ListEntriesRequest) ([]JournalEntry, int, error) {
	return s.repo.ListEntries(ctx, req)
}
