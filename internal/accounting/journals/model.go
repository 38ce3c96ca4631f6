package journals

import "time"

// BalanceTolerance is the absolute tolerance used when comparing debit and
// credit totals expressed as floats.
const BalanceTolerance = 0.01

// JournalEntry captures one balanced accounting transaction.
type JournalEntry struct {
	ID          int64         `json:"id"`
	Number      string        `json:"number"`
	Date        time.Time     `json:"date"`
	Description string        `json:"description"`
	Reference   string        `json:"reference,omitempty"`
	Source      string        `json:"source"`
	TotalDebit  float64       `json:"total_debit"`
	TotalCredit float64       `json:"total_credit"`
	IsPosted    bool          `json:"is_posted"`
	PostedAt    *time.Time    `json:"posted_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Lines       []JournalLine `json:"lines,omitempty"`
}

// JournalLine stores one debit or credit leg of an entry.
type JournalLine struct {
	ID          int64   `json:"id"`
	EntryID     int64   `json:"entry_id"`
	AccountID   int64   `json:"account_id"`
	AccountCode string  `json:"account_code,omitempty"`
	AccountName string  `json:"account_name,omitempty"`
	Debit       float64 `json:"debit"`
	Credit      float64 `json:"credit"`
	Description string  `json:"description,omitempty"`
	Reference   string  `json:"reference,omitempty"`
}
