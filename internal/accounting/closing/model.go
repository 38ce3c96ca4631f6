package closing

import (
	"errors"
	"fmt"
	"time"

	"github.com/parcelops/backoffice/internal/accounting/journals"
)

// Source tags every closing entry in the journal.
const Source = "closing"

// AccountBalance is the summed posted activity of one account over a period.
type AccountBalance struct {
	AccountID   int64   `json:"account_id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	TotalDebit  float64 `json:"total_debit"`
	TotalCredit float64 `json:"total_credit"`
}

// Result reports what a period close produced. AlreadyClosed means the period
// was closed before and the existing entry is returned untouched.
type Result struct {
	Reference     string                `json:"reference"`
	Entry         journals.JournalEntry `json:"entry"`
	TotalRevenue  float64               `json:"total_revenue"`
	TotalExpense  float64               `json:"total_expense"`
	NetResult     float64               `json:"net_result"`
	AlreadyClosed bool                  `json:"already_closed"`
}

// ErrNothingToClose indicates the period has no positive revenue or expense
// activity to sweep.
var ErrNothingToClose = errors.New("closing: no activity to close in period")

// Reference derives the deterministic closing reference for a period. Reusing
// it makes the close idempotent.
func Reference(start, end time.Time) string {
	return fmt.Sprintf("CLOSE-%s-%s", start.Format("2006-01-02"), end.Format("2006-01-02"))
}
