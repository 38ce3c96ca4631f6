package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parcelops/backoffice/internal/accounting/journals"
	"github.com/parcelops/backoffice/internal/accounting/shared"
	"github.com/parcelops/backoffice/internal/observability"
	"github.com/parcelops/backoffice/internal/partyledger"
	internalShared "github.com/parcelops/backoffice/internal/shared"
)

type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// Service orchestrates payment settlement across the invoice store, the party
// ledgers and the journal. Every write of one settlement shares a transaction.
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

// CreateInvoice opens a document and raises the party's running balance by the
// invoice total in the same transaction.
func (s *Service) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (Invoice, error) {
	issuedAt, err := time.Parse("2006-01-02", req.IssuedAt)
	if err != nil {
		return Invoice{}, fmt.Errorf("%w: invalid issued_at", shared.ErrValidation)
	}
	dueAt := issuedAt
	if req.DueAt != "" {
		if dueAt, err = time.Parse("2006-01-02", req.DueAt); err != nil {
			return Invoice{}, fmt.Errorf("%w: invalid due_at", shared.ErrValidation)
		}
	}
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}
	var created Invoice
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.InsertInvoice(ctx, Invoice{
			Number:   req.Number,
			Profile:  InvoiceProfile(req.Profile),
			PartyID:  req.PartyID,
			Currency: currency,
			Total:    req.Total,
			Status:   StatusUnpaid,
			IssuedAt: issuedAt,
			DueAt:    dueAt,
		})
		if err != nil {
			return err
		}
		_, err = tx.Ledger().Post(ctx, partyledger.PostInput{
			OwnerType:   ownerFor(inv.Profile),
			OwnerID:     inv.PartyID,
			Direction:   partyledger.DirectionDebit,
			Amount:      inv.Total,
			Description: "invoice " + inv.Number,
			Reference:   inv.Number,
			InvoiceID:   &inv.ID,
		})
		if err != nil {
			return err
		}
		created = inv
		return nil
	})
	if err != nil {
		return Invoice{}, err
	}
	s.metrics.ObserveLedgerPosting(string(ownerFor(created.Profile)))
	return created, nil
}

// ProcessPayment settles a payment against an invoice. The payment row, the
// party ledger credits, the company cash movement, the journal entry and the
// invoice status change all commit together or not at all. When the payment
// exceeds the open amount, the applied slice is capped and the overpayment is
// credited to the party as prepaid balance.
func (s *Service) ProcessPayment(ctx context.Context, in ProcessPaymentInput) (PaymentResult, error) {
	if in.InvoiceNumber == "" {
		return PaymentResult{}, fmt.Errorf("%w: invoice number required", shared.ErrValidation)
	}
	if in.Amount <= 0 {
		return PaymentResult{}, fmt.Errorf("%w: amount must be positive", shared.ErrValidation)
	}
	if in.TransactionType != TypeIncome && in.TransactionType != TypeExpense {
		return PaymentResult{}, fmt.Errorf("%w: transaction type must be INCOME or EXPENSE", shared.ErrValidation)
	}
	if in.DebitAccountID == 0 || in.CreditAccountID == 0 {
		return PaymentResult{}, fmt.Errorf("%w: debit and credit accounts required", shared.ErrValidation)
	}
	if in.Mode == "" {
		in.Mode = ModeCash
	}
	paidAt := in.PaidAt
	if paidAt.IsZero() {
		paidAt = s.now()
	}

	var result PaymentResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetInvoiceByNumberForUpdate(ctx, in.InvoiceNumber)
		if err != nil {
			return err
		}
		if in.TransactionType == TypeIncome && inv.Profile != ProfileCustomer {
			return fmt.Errorf("%w: income payments settle customer invoices", shared.ErrValidation)
		}
		if in.TransactionType == TypeExpense && inv.Profile != ProfileVendor {
			return fmt.Errorf("%w: expense payments settle vendor invoices", shared.ErrValidation)
		}

		alreadyPaid, err := tx.SumPayments(ctx, inv.ID, in.TransactionType)
		if err != nil {
			return err
		}
		remaining := inv.Total - alreadyPaid
		if remaining < 0 {
			remaining = 0
		}
		applied := in.Amount
		if applied > remaining {
			applied = remaining
		}
		overpayment := in.Amount - applied

		payment, err := tx.InsertPayment(ctx, Payment{
			Number:          paymentNumber(),
			InvoiceID:       &inv.ID,
			TransactionType: in.TransactionType,
			Amount:          in.Amount,
			FromPartyType:   fromParty(in.TransactionType),
			ToPartyType:     toParty(in.TransactionType),
			Mode:            in.Mode,
			Reference:       in.Reference,
			Description:     in.Description,
			PaidAt:          paidAt,
		})
		if err != nil {
			return err
		}

		owner := ownerFor(inv.Profile)
		if applied > 0 {
			if _, err := tx.Ledger().Post(ctx, partyledger.PostInput{
				OwnerType:   owner,
				OwnerID:     inv.PartyID,
				Direction:   partyledger.DirectionCredit,
				Amount:      applied,
				Description: "payment " + payment.Number + " on invoice " + inv.Number,
				Reference:   payment.Number,
				InvoiceID:   &inv.ID,
			}); err != nil {
				return err
			}
		}
		if overpayment > 0 {
			if _, err := tx.Ledger().Post(ctx, partyledger.PostInput{
				OwnerType:   owner,
				OwnerID:     inv.PartyID,
				Direction:   partyledger.DirectionCredit,
				Amount:      overpayment,
				Description: "overpayment on invoice " + inv.Number,
				Reference:   payment.Number,
				InvoiceID:   &inv.ID,
			}); err != nil {
				return err
			}
		}

		companyDir := partyledger.DirectionCredit
		if in.TransactionType == TypeExpense {
			companyDir = partyledger.DirectionDebit
		}
		if _, err := tx.Ledger().Post(ctx, partyledger.PostInput{
			OwnerType:   partyledger.OwnerCompany,
			OwnerID:     1,
			Direction:   companyDir,
			Amount:      in.Amount,
			Description: "payment " + payment.Number,
			Reference:   payment.Number,
			InvoiceID:   &inv.ID,
		}); err != nil {
			return err
		}

		number, err := tx.Journal().NextEntryNumber(ctx)
		if err != nil {
			return err
		}
		entry, err := journals.BuildEntry(journals.EntryInput{
			Date:        paidAt,
			Description: "payment " + payment.Number + " for invoice " + inv.Number,
			Reference:   payment.Number,
			Source:      "billing:payment",
			AutoPost:    true,
			Lines: []journals.LineInput{
				{AccountID: in.DebitAccountID, Debit: in.Amount, Reference: payment.Number},
				{AccountID: in.CreditAccountID, Credit: in.Amount, Reference: payment.Number},
			},
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

		status := StatusFor(alreadyPaid+applied, inv.Total)
		if err := tx.UpdateInvoiceStatus(ctx, inv.ID, status); err != nil {
			return err
		}

		result = PaymentResult{
			Payment:         payment,
			Entry:           inserted,
			AmountApplied:   applied,
			Overpayment:     overpayment,
			RemainingAmount: remaining - applied,
			Status:          status,
		}
		return nil
	})
	if err != nil {
		return PaymentResult{}, err
	}
	s.metrics.ObserveJournalEntry(result.Entry.Source)
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			Action:   "billing.payment",
			Entity:   "payment",
			EntityID: fmt.Sprintf("%d", result.Payment.ID),
			Meta: map[string]any{
				"invoice":     in.InvoiceNumber,
				"amount":      in.Amount,
				"applied":     result.AmountApplied,
				"overpayment": result.Overpayment,
				"status":      result.Status,
			},
			At: s.now(),
		})
	}
	return result, nil
}

// AllocateExcessPayment spreads an unapplied amount over a party's open
// invoices, oldest first, until the amount or the invoices run out. Each
// allocation debits nothing; it only consumes the party's prepaid credit, so
// the running balance is untouched while invoice statuses advance.
func (s *Service) AllocateExcessPayment(ctx context.Context, in AllocateExcessInput) (AllocationResult, error) {
	if in.Profile != ProfileCustomer && in.Profile != ProfileVendor {
		return AllocationResult{}, fmt.Errorf("%w: profile must be CUSTOMER or VENDOR", shared.ErrValidation)
	}
	if in.PartyID == 0 {
		return AllocationResult{}, fmt.Errorf("%w: party id required", shared.ErrValidation)
	}
	if in.Amount <= 0 {
		return AllocationResult{}, fmt.Errorf("%w: amount must be positive", shared.ErrValidation)
	}
	txType := in.TransactionType
	if txType == "" {
		txType = TypeIncome
		if in.Profile == ProfileVendor {
			txType = TypeExpense
		}
	}

	var result AllocationResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		open, err := tx.ListOutstandingForUpdate(ctx, in.Profile, in.PartyID)
		if err != nil {
			return err
		}
		left := in.Amount
		for _, inv := range open {
			if left <= 0 {
				break
			}
			paid, err := tx.SumPayments(ctx, inv.ID, txType)
			if err != nil {
				return err
			}
			due := inv.Total - paid
			if due <= 0 {
				continue
			}
			slice := left
			if slice > due {
				slice = due
			}
			payment, err := tx.InsertPayment(ctx, Payment{
				Number:          paymentNumber(),
				InvoiceID:       &inv.ID,
				TransactionType: txType,
				Amount:          slice,
				FromPartyType:   fromParty(txType),
				ToPartyType:     toParty(txType),
				Mode:            ModeBankTransfer,
				Reference:       in.Reference,
				Description:     "allocation from excess payment",
				PaidAt:          s.now(),
			})
			if err != nil {
				return err
			}
			status := StatusFor(paid+slice, inv.Total)
			if err := tx.UpdateInvoiceStatus(ctx, inv.ID, status); err != nil {
				return err
			}
			result.Allocations = append(result.Allocations, Allocation{
				InvoiceID:     inv.ID,
				InvoiceNumber: inv.Number,
				Amount:        payment.Amount,
				Status:        status,
			})
			left -= slice
		}
		result.Leftover = left
		return nil
	})
	if err != nil {
		return AllocationResult{}, err
	}
	return result, nil
}

// GetInvoice loads one invoice with its payment history.
func (s *Service) GetInvoice(ctx context.Context, id int64) (InvoiceWithPayments, error) {
	return s.repo.GetInvoiceWithPayments(ctx, id)
}

// ListInvoices returns a filtered page of invoices.
func (s *Service) ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	return s.repo.ListInvoices(ctx, req)
}

// ListPayments returns a filtered page of payments.
func (s *Service) ListPayments(ctx context.Context, req ListPaymentsRequest) ([]Payment, int, error) {
	return s.repo.ListPayments(ctx, req)
}

func ownerFor(profile InvoiceProfile) partyledger.OwnerType {
	if profile == ProfileVendor {
		return partyledger.OwnerVendor
	}
	return partyledger.OwnerCustomer
}

func fromParty(t TransactionType) PartyType {
	if t == TypeExpense {
		return PartyUs
	}
	return PartyCustomer
}

func toParty(t TransactionType) PartyType {
	if t == TypeExpense {
		return PartyVendor
	}
	return PartyUs
}

func paymentNumber() string {
	return "PAY-" + strings.ToUpper(uuid.NewString()[:8])
}
