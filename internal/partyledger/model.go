package partyledger

import (
	"errors"
	"time"
)

// OwnerType identifies which running-balance ledger a posting targets.
type OwnerType string

const (
	OwnerCompany  OwnerType = "COMPANY"
	OwnerCustomer OwnerType = "CUSTOMER"
	OwnerVendor   OwnerType = "VENDOR"
)

// Direction of a posting.
type Direction string

const (
	DirectionDebit  Direction = "DEBIT"
	DirectionCredit Direction = "CREDIT"
)

// Transaction is one immutable posting against a running balance. Previous and
// new balances are snapshotted at post time.
type Transaction struct {
	ID              int64     `json:"id"`
	OwnerType       OwnerType `json:"owner_type"`
	OwnerID         int64     `json:"owner_id"`
	Direction       Direction `json:"direction"`
	Amount          float64   `json:"amount"`
	Description     string    `json:"description,omitempty"`
	Reference       string    `json:"reference,omitempty"`
	InvoiceID       *int64    `json:"invoice_id,omitempty"`
	PreviousBalance float64   `json:"previous_balance"`
	NewBalance      float64   `json:"new_balance"`
	CreatedAt       time.Time `json:"created_at"`
}

// PostInput describes a posting request.
type PostInput struct {
	OwnerType   OwnerType
	OwnerID     int64
	Direction   Direction
	Amount      float64
	Description string
	Reference   string
	InvoiceID   *int64
}

// Posting reports the balance movement produced by a post.
type Posting struct {
	PreviousBalance float64 `json:"previous_balance"`
	NewBalance      float64 `json:"new_balance"`
}

// ErrOwnerNotFound indicates the owning entity does not exist. Customer and
// vendor ledgers require the party row; the company ledger self-initialises.
var ErrOwnerNotFound = errors.New("partyledger: owner not found")

// ValidOwnerType reports whether the value names a known ledger.
func ValidOwnerType(t OwnerType) bool {
	switch t {
	case OwnerCompany, OwnerCustomer, OwnerVendor:
		return true
	}
	return false
}

// ApplyDirection computes the new balance for a ledger's polarity convention.
// Customer balances track receivables and vendor balances track payables, so a
// credit reduces both; the company ledger tracks cash, where a credit is money
// in. Negative results are allowed (prepaid customer credit, overdrafts).
func ApplyDirection(owner OwnerType, dir Direction, balance, amount float64) float64 {
	delta := amount
	switch owner {
	case OwnerCompany:
		if dir == DirectionDebit {
			delta = -amount
		}
	default:
		if dir == DirectionCredit {
			delta = -amount
		}
	}
	return balance + delta
}
