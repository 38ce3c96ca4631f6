package journals

import (
	"fmt"
	"math"
	"time"

	"github.com/parcelops/backoffice/internal/accounting/shared"
)

// LineInput describes a journal line for a posting request.
type LineInput struct {
	AccountID   int64   `json:"account_id"`
	Debit       float64 `json:"debit"`
	Credit      float64 `json:"credit"`
	Description string  `json:"description,omitempty"`
	Reference   string  `json:"reference,omitempty"`
}

// EntryInput groups fields required to create a journal entry. Every entry in
// the system, whether keyed in manually or derived by the billing and closing
// services, is constructed from an EntryInput so the same balance rules apply.
type EntryInput struct {
	Date        time.Time   `json:"date"`
	Description string      `json:"description"`
	Reference   string      `json:"reference,omitempty"`
	Source      string      `json:"source,omitempty"`
	AutoPost    bool        `json:"auto_post,omitempty"`
	Lines       []LineInput `json:"lines"`
}

// Validate ensures the entry is balanced and every line is a proper single leg.
func (in EntryInput) Validate() error {
	if in.Date.IsZero() {
		return fmt.Errorf("%w: date required", shared.ErrValidation)
	}
	if len(in.Lines) < 2 {
		return shared.ErrTooFewLines
	}
	var debit, credit float64
	for idx, line := range in.Lines {
		if line.AccountID == 0 {
			return fmt.Errorf("%w: line %d missing account", shared.ErrInvalidLine, idx)
		}
		if line.Debit < 0 || line.Credit < 0 {
			return fmt.Errorf("%w: line %d negative amount", shared.ErrInvalidLine, idx)
		}
		if line.Debit > 0 && line.Credit > 0 {
			return fmt.Errorf("%w: line %d cannot be both debit and credit", shared.ErrInvalidLine, idx)
		}
		if line.Debit == 0 && line.Credit == 0 {
			return fmt.Errorf("%w: line %d must carry a debit or credit", shared.ErrInvalidLine, idx)
		}
		debit += line.Debit
		credit += line.Credit
	}
	if math.Abs(debit-credit) > BalanceTolerance {
		return shared.ErrUnbalanced
	}
	return nil
}

// BuildEntry validates the input and constructs the entry with its lines.
// This is the single constructor for journal entries.
func BuildEntry(in EntryInput, number string, now time.Time) (JournalEntry, error) {
	if err := in.Validate(); err != nil {
		return JournalEntry{}, err
	}
	entry := JournalEntry{
		Number:      number,
		Date:        in.Date,
		Description: in.Description,
		Reference:   in.Reference,
		Source:      in.Source,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if entry.Source == "" {
		entry.Source = "manual"
	}
	for _, line := range in.Lines {
		entry.TotalDebit += line.Debit
		entry.TotalCredit += line.Credit
		entry.Lines = append(entry.Lines, JournalLine{
			AccountID:   line.AccountID,
			Debit:       line.Debit,
			Credit:      line.Credit,
			Description: line.Description,
			Reference:   line.Reference,
		})
	}
	entry.TotalDebit = round2(entry.TotalDebit)
	entry.TotalCredit = round2(entry.TotalCredit)
	if in.AutoPost {
		entry.IsPosted = true
		postedAt := now
		entry.PostedAt = &postedAt
	}
	return entry, nil
}

// ListEntriesRequest filters the journal listing.
type ListEntriesRequest struct {
	Search   string     `json:"search,omitempty"`
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`
	IsPosted *bool      `json:"is_posted,omitempty"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
