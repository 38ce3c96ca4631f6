package billing

import (
	"errors"
	"time"

	"github.com/parcelops/backoffice/internal/accounting/journals"
)

// InvoiceProfile says which party side a commercial document belongs to.
type InvoiceProfile string

const (
	ProfileCustomer InvoiceProfile = "CUSTOMER"
	ProfileVendor   InvoiceProfile = "VENDOR"
)

// InvoiceStatus is derived from the payment sum versus the invoice total.
type InvoiceStatus string

const (
	StatusUnpaid  InvoiceStatus = "UNPAID"
	StatusPartial InvoiceStatus = "PARTIAL"
	StatusPaid    InvoiceStatus = "PAID"
)

// TransactionType classifies the cash movement of a payment.
type TransactionType string

const (
	TypeIncome   TransactionType = "INCOME"
	TypeExpense  TransactionType = "EXPENSE"
	TypeTransfer TransactionType = "TRANSFER"
	TypeReturn   TransactionType = "RETURN"
)

// PartyType identifies a counterparty on a payment.
type PartyType string

const (
	PartyCustomer PartyType = "CUSTOMER"
	PartyVendor   PartyType = "VENDOR"
	PartyUs       PartyType = "US"
	PartySystem   PartyType = "SYSTEM"
)

// PaymentMode is the settlement instrument.
type PaymentMode string

const (
	ModeCash         PaymentMode = "CASH"
	ModeBankTransfer PaymentMode = "BANK_TRANSFER"
	ModeCard         PaymentMode = "CARD"
	ModeCheque       PaymentMode = "CHEQUE"
)

// Invoice model. Payments reference invoices by id; the human-readable number
// is only used for lookups at the API boundary.
type Invoice struct {
	ID        int64          `json:"id"`
	Number    string         `json:"number"`
	Profile   InvoiceProfile `json:"profile"`
	PartyID   int64          `json:"party_id"`
	Currency  string         `json:"currency"`
	Total     float64        `json:"total"`
	Status    InvoiceStatus  `json:"status"`
	IssuedAt  time.Time      `json:"issued_at"`
	DueAt     time.Time      `json:"due_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Payment model.
type Payment struct {
	ID              int64           `json:"id"`
	Number          string          `json:"number"`
	InvoiceID       *int64          `json:"invoice_id,omitempty"`
	TransactionType TransactionType `json:"transaction_type"`
	Amount          float64         `json:"amount"`
	FromPartyType   PartyType       `json:"from_party_type"`
	ToPartyType     PartyType       `json:"to_party_type"`
	Mode            PaymentMode     `json:"mode"`
	Reference       string          `json:"reference,omitempty"`
	Description     string          `json:"description,omitempty"`
	PaidAt          time.Time       `json:"paid_at"`
	CreatedAt       time.Time       `json:"created_at"`
}

// InvoiceWithPayments includes payment context for an invoice.
type InvoiceWithPayments struct {
	Invoice
	Payments   []Payment `json:"payments"`
	PaidAmount float64   `json:"paid_amount"`
	Balance    float64   `json:"balance"`
}

// PaymentResult reports everything a processed payment produced.
type PaymentResult struct {
	Payment         Payment               `json:"payment"`
	Entry           journals.JournalEntry `json:"journal_entry"`
	AmountApplied   float64               `json:"amount_applied"`
	Overpayment     float64               `json:"overpayment"`
	RemainingAmount float64               `json:"remaining_amount"`
	Status          InvoiceStatus         `json:"status"`
}

// Allocation is one slice of an excess payment applied to an invoice.
type Allocation struct {
	InvoiceID     int64         `json:"invoice_id"`
	InvoiceNumber string        `json:"invoice_number"`
	Amount        float64       `json:"amount"`
	Status        InvoiceStatus `json:"status"`
}

// AllocationResult reports how an excess amount was distributed.
type AllocationResult struct {
	Allocations []Allocation `json:"allocations"`
	Leftover    float64      `json:"leftover"`
}

var (
	ErrInvoiceNotFound = errors.New("billing: invoice not found")
	ErrPaymentNotFound = errors.New("billing: payment not found")
	ErrDuplicateNumber = errors.New("billing: invoice number already exists")
)

// StatusFor derives the invoice status from accumulated payments. It is a pure
// function, so recomputation is idempotent.
func StatusFor(totalPaid, total float64) InvoiceStatus {
	switch {
	case totalPaid <= 0:
		return StatusUnpaid
	case totalPaid < total-journals.BalanceTolerance:
		return StatusPartial
	default:
		return StatusPaid
	}
}
