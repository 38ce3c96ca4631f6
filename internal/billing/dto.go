package billing

import "time"

// CreateInvoiceRequest opens a receivable or payable document.
type CreateInvoiceRequest struct {
	Number   string  `json:"number" validate:"required,max=50"`
	Profile  string  `json:"profile" validate:"required,oneof=CUSTOMER VENDOR"`
	PartyID  int64   `json:"party_id" validate:"required,gt=0"`
	Currency string  `json:"currency" validate:"omitempty,len=3"`
	Total    float64 `json:"total" validate:"required,gt=0"`
	IssuedAt string  `json:"issued_at" validate:"required,datetime=2006-01-02"`
	DueAt    string  `json:"due_at" validate:"omitempty,datetime=2006-01-02"`
}

// ProcessPaymentInput carries a settlement request into the orchestrator.
type ProcessPaymentInput struct {
	InvoiceNumber   string
	Amount          float64
	TransactionType TransactionType
	Mode            PaymentMode
	Reference       string
	Description     string
	DebitAccountID  int64
	CreditAccountID int64
	PaidAt          time.Time
}

// AllocateExcessInput distributes an unapplied amount across a party's open
// invoices, oldest first.
type AllocateExcessInput struct {
	Profile         InvoiceProfile
	PartyID         int64
	Amount          float64
	TransactionType TransactionType
	Reference       string
}

// ListInvoicesRequest filters the invoice listing.
type ListInvoicesRequest struct {
	Profile string `json:"profile,omitempty"`
	Status  string `json:"status,omitempty"`
	PartyID int64  `json:"party_id,omitempty"`
	Search  string `json:"search,omitempty"`
	Limit   int    `json:"limit"`
	Offset  int    `json:"offset"`
}

// ListPaymentsRequest filters the payment listing.
type ListPaymentsRequest struct {
	TransactionType string `json:"transaction_type,omitempty"`
	InvoiceID       int64  `json:"invoice_id,omitempty"`
	Limit           int    `json:"limit"`
	Offset          int    `json:"offset"`
}
