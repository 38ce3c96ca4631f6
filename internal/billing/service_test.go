package billing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/parcelops/backoffice/internal/accounting/journals"
	"github.com/parcelops/backoffice/internal/accounting/shared"
	"github.com/parcelops/backoffice/internal/partyledger"
)

type ledgerPost struct {
	input    partyledger.PostInput
	previous float64
	balance  float64
}

type fakeStore struct {
	invoices      map[int64]Invoice
	nextInvoiceID int64
	payments      []Payment
	nextPaymentID int64
	balances      map[string]float64
	postings      []ledgerPost
	entries       []journals.JournalEntry
	nextEntryID   int64
	counter       int64

	failJournalInsert bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		invoices: make(map[int64]Invoice),
		balances: make(map[string]float64),
	}
}

func ownerKey(owner partyledger.OwnerType, id int64) string {
	return fmt.Sprintf("%s:%d", owner, id)
}

func (s *fakeStore) addInvoice(number string, profile InvoiceProfile, partyID int64, total float64, issuedAt time.Time) Invoice {
	s.nextInvoiceID++
	inv := Invoice{
		ID:       s.nextInvoiceID,
		Number:   number,
		Profile:  profile,
		PartyID:  partyID,
		Currency: "USD",
		Total:    total,
		Status:   StatusUnpaid,
		IssuedAt: issuedAt,
		DueAt:    issuedAt.AddDate(0, 1, 0),
	}
	s.invoices[inv.ID] = inv
	return inv
}

func (s *fakeStore) snapshot() *fakeStore {
	clone := &fakeStore{
		invoices:      make(map[int64]Invoice, len(s.invoices)),
		nextInvoiceID: s.nextInvoiceID,
		payments:      append([]Payment(nil), s.payments...),
		nextPaymentID: s.nextPaymentID,
		balances:      make(map[string]float64, len(s.balances)),
		postings:      append([]ledgerPost(nil), s.postings...),
		entries:       append([]journals.JournalEntry(nil), s.entries...),
		nextEntryID:   s.nextEntryID,
		counter:       s.counter,
	}
	for k, v := range s.invoices {
		clone.invoices[k] = v
	}
	for k, v := range s.balances {
		clone.balances[k] = v
	}
	return clone
}

func (s *fakeStore) restore(from *fakeStore) {
	s.invoices = from.invoices
	s.nextInvoiceID = from.nextInvoiceID
	s.payments = from.payments
	s.nextPaymentID = from.nextPaymentID
	s.balances = from.balances
	s.postings = from.postings
	s.entries = from.entries
	s.nextEntryID = from.nextEntryID
	s.counter = from.counter
}

func (s *fakeStore) GetInvoice(ctx context.Context, id int64) (Invoice, error) {
	inv, ok := s.invoices[id]
	if !ok {
		return Invoice{}, ErrInvoiceNotFound
	}
	return inv, nil
}

func (s *fakeStore) GetInvoiceWithPayments(ctx context.Context, id int64) (InvoiceWithPayments, error) {
	inv, err := s.GetInvoice(ctx, id)
	if err != nil {
		return InvoiceWithPayments{}, err
	}
	out := InvoiceWithPayments{Invoice: inv}
	for _, p := range s.payments {
		if p.InvoiceID != nil && *p.InvoiceID == id {
			out.Payments = append(out.Payments, p)
			out.PaidAmount += p.Amount
		}
	}
	out.Balance = inv.Total - out.PaidAmount
	return out, nil
}

func (s *fakeStore) ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	var out []Invoice
	for _, inv := range s.invoices {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (s *fakeStore) ListPayments(ctx context.Context, req ListPaymentsRequest) ([]Payment, int, error) {
	return s.payments, len(s.payments), nil
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	before := s.snapshot()
	if err := fn(ctx, &fakeTx{store: s}); err != nil {
		s.restore(before)
		return err
	}
	return nil
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) InsertInvoice(ctx context.Context, inv Invoice) (Invoice, error) {
	for _, existing := range t.store.invoices {
		if existing.Number == inv.Number {
			return Invoice{}, ErrDuplicateNumber
		}
	}
	t.store.nextInvoiceID++
	inv.ID = t.store.nextInvoiceID
	inv.CreatedAt = time.Now()
	inv.UpdatedAt = inv.CreatedAt
	t.store.invoices[inv.ID] = inv
	return inv, nil
}

func (t *fakeTx) GetInvoiceByNumberForUpdate(ctx context.Context, number string) (Invoice, error) {
	for _, inv := range t.store.invoices {
		if inv.Number == number {
			return inv, nil
		}
	}
	return Invoice{}, ErrInvoiceNotFound
}

func (t *fakeTx) ListOutstandingForUpdate(ctx context.Context, profile InvoiceProfile, partyID int64) ([]Invoice, error) {
	var open []Invoice
	for _, inv := range t.store.invoices {
		if inv.Profile == profile && inv.PartyID == partyID && (inv.Status == StatusUnpaid || inv.Status == StatusPartial) {
			open = append(open, inv)
		}
	}
	sort.Slice(open, func(i, j int) bool {
		if open[i].IssuedAt.Equal(open[j].IssuedAt) {
			return open[i].ID < open[j].ID
		}
		return open[i].IssuedAt.Before(open[j].IssuedAt)
	})
	return open, nil
}

func (t *fakeTx) SumPayments(ctx context.Context, invoiceID int64, txType TransactionType) (float64, error) {
	var sum float64
	for _, p := range t.store.payments {
		if p.InvoiceID != nil && *p.InvoiceID == invoiceID && p.TransactionType == txType {
			sum += p.Amount
		}
	}
	return sum, nil
}

func (t *fakeTx) InsertPayment(ctx context.Context, p Payment) (Payment, error) {
	t.store.nextPaymentID++
	p.ID = t.store.nextPaymentID
	p.CreatedAt = time.Now()
	t.store.payments = append(t.store.payments, p)
	return p, nil
}

func (t *fakeTx) UpdateInvoiceStatus(ctx context.Context, id int64, status InvoiceStatus) error {
	inv, ok := t.store.invoices[id]
	if !ok {
		return ErrInvoiceNotFound
	}
	inv.Status = status
	t.store.invoices[id] = inv
	return nil
}

func (t *fakeTx) Ledger() partyledger.TxLedger   { return &fakeLedger{store: t.store} }
func (t *fakeTx) Journal() journals.TxRepository { return &fakeJournal{store: t.store} }

type fakeLedger struct {
	store *fakeStore
}

func (l *fakeLedger) Post(ctx context.Context, in partyledger.PostInput) (partyledger.Posting, error) {
	key := ownerKey(in.OwnerType, in.OwnerID)
	previous := l.store.balances[key]
	balance := partyledger.ApplyDirection(in.OwnerType, in.Direction, previous, in.Amount)
	l.store.balances[key] = balance
	l.store.postings = append(l.store.postings, ledgerPost{input: in, previous: previous, balance: balance})
	return partyledger.Posting{PreviousBalance: previous, NewBalance: balance}, nil
}

type fakeJournal struct {
	store *fakeStore
}

func (j *fakeJournal) NextEntryNumber(ctx context.Context) (string, error) {
	j.store.counter++
	return fmt.Sprintf("JE-%04d", j.store.counter), nil
}

func (j *fakeJournal) InsertEntry(ctx context.Context, entry journals.JournalEntry) (journals.JournalEntry, error) {
	if j.store.failJournalInsert {
		return journals.JournalEntry{}, errors.New("journal insert failed")
	}
	j.store.nextEntryID++
	entry.ID = j.store.nextEntryID
	j.store.entries = append(j.store.entries, entry)
	return entry, nil
}

func (j *fakeJournal) InsertLines(ctx context.Context, entryID int64, lines []journals.JournalLine) error {
	for i := range j.store.entries {
		if j.store.entries[i].ID == entryID {
			j.store.entries[i].Lines = lines
		}
	}
	return nil
}

func (j *fakeJournal) GetEntryForUpdate(ctx context.Context, id int64) (journals.JournalEntry, error) {
	for _, e := range j.store.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return journals.JournalEntry{}, shared.ErrNotFound
}

func (j *fakeJournal) MarkPosted(ctx context.Context, id int64, at time.Time) error {
	for i := range j.store.entries {
		if j.store.entries[i].ID == id {
			j.store.entries[i].IsPosted = true
			j.store.entries[i].PostedAt = &at
			return nil
		}
	}
	return shared.ErrNotFound
}

func TestProcessPaymentPartialThenOverpayment(t *testing.T) {
	store := newFakeStore()
	inv := store.addInvoice("INV-1001", ProfileCustomer, 7, 1000, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
	store.balances[ownerKey(partyledger.OwnerCustomer, 7)] = 1000
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	first, err := svc.ProcessPayment(ctx, ProcessPaymentInput{
		InvoiceNumber:   "INV-1001",
		Amount:          600,
		TransactionType: TypeIncome,
		Mode:            ModeBankTransfer,
		DebitAccountID:  2,
		CreditAccountID: 3,
	})
	require.NoError(t, err)
	require.Equal(t, 600.0, first.AmountApplied)
	require.Equal(t, 0.0, first.Overpayment)
	require.Equal(t, 400.0, first.RemainingAmount)
	require.Equal(t, StatusPartial, first.Status)
	require.Equal(t, StatusPartial, store.invoices[inv.ID].Status)
	require.True(t, first.Entry.IsPosted)
	require.Equal(t, first.Entry.TotalDebit, first.Entry.TotalCredit)
	require.Equal(t, "billing:payment", first.Entry.Source)

	second, err := svc.ProcessPayment(ctx, ProcessPaymentInput{
		InvoiceNumber:   "INV-1001",
		Amount:          500,
		TransactionType: TypeIncome,
		DebitAccountID:  2,
		CreditAccountID: 3,
	})
	require.NoError(t, err)
	require.Equal(t, 400.0, second.AmountApplied)
	require.Equal(t, 100.0, second.Overpayment)
	require.Equal(t, 0.0, second.RemainingAmount)
	require.Equal(t, StatusPaid, second.Status)
	require.Equal(t, StatusPaid, store.invoices[inv.ID].Status)

	// 1000 owed, 1100 received: the party carries 100 of prepaid credit.
	require.Equal(t, -100.0, store.balances[ownerKey(partyledger.OwnerCustomer, 7)])
	// The company cash ledger saw both payments in full.
	require.Equal(t, 1100.0, store.balances[ownerKey(partyledger.OwnerCompany, 1)])
	// Entry numbers come from the shared counter.
	require.Equal(t, "JE-0001", first.Entry.Number)
	require.Equal(t, "JE-0002", second.Entry.Number)
}

func TestProcessPaymentExpenseMovesCashOut(t *testing.T) {
	store := newFakeStore()
	store.addInvoice("BILL-1", ProfileVendor, 4, 250, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	store.balances[ownerKey(partyledger.OwnerVendor, 4)] = 250
	store.balances[ownerKey(partyledger.OwnerCompany, 1)] = 1000
	svc := NewService(store, nil, nil)

	result, err := svc.ProcessPayment(context.Background(), ProcessPaymentInput{
		InvoiceNumber:   "BILL-1",
		Amount:          250,
		TransactionType: TypeExpense,
		DebitAccountID:  5,
		CreditAccountID: 1,
	})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, result.Status)
	require.Equal(t, 0.0, store.balances[ownerKey(partyledger.OwnerVendor, 4)])
	require.Equal(t, 750.0, store.balances[ownerKey(partyledger.OwnerCompany, 1)])
}

func TestProcessPaymentTypeMustMatchProfile(t *testing.T) {
	store := newFakeStore()
	store.addInvoice("BILL-2", ProfileVendor, 4, 100, time.Now())
	svc := NewService(store, nil, nil)

	_, err := svc.ProcessPayment(context.Background(), ProcessPaymentInput{
		InvoiceNumber:   "BILL-2",
		Amount:          100,
		TransactionType: TypeIncome,
		DebitAccountID:  1,
		CreditAccountID: 2,
	})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.ProcessPayment(context.Background(), ProcessPaymentInput{
		InvoiceNumber:   "NOPE",
		Amount:          100,
		TransactionType: TypeIncome,
		DebitAccountID:  1,
		CreditAccountID: 2,
	})
	require.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestProcessPaymentRollsBackOnFailure(t *testing.T) {
	store := newFakeStore()
	inv := store.addInvoice("INV-2001", ProfileCustomer, 9, 500, time.Now())
	store.balances[ownerKey(partyledger.OwnerCustomer, 9)] = 500
	store.failJournalInsert = true
	svc := NewService(store, nil, nil)

	_, err := svc.ProcessPayment(context.Background(), ProcessPaymentInput{
		InvoiceNumber:   "INV-2001",
		Amount:          200,
		TransactionType: TypeIncome,
		DebitAccountID:  2,
		CreditAccountID: 3,
	})
	require.Error(t, err)

	// Nothing of the failed settlement remains visible.
	require.Empty(t, store.payments)
	require.Equal(t, StatusUnpaid, store.invoices[inv.ID].Status)
	require.Equal(t, 500.0, store.balances[ownerKey(partyledger.OwnerCustomer, 9)])
	require.Empty(t, store.entries)
}

func TestAllocateExcessOldestFirst(t *testing.T) {
	store := newFakeStore()
	oldest := store.addInvoice("INV-A", ProfileCustomer, 3, 300, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := store.addInvoice("INV-B", ProfileCustomer, 3, 500, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	svc := NewService(store, nil, nil)

	result, err := svc.AllocateExcessPayment(context.Background(), AllocateExcessInput{
		Profile: ProfileCustomer,
		PartyID: 3,
		Amount:  600,
	})
	require.NoError(t, err)
	require.Len(t, result.Allocations, 2)
	require.Equal(t, oldest.ID, result.Allocations[0].InvoiceID)
	require.Equal(t, 300.0, result.Allocations[0].Amount)
	require.Equal(t, StatusPaid, result.Allocations[0].Status)
	require.Equal(t, newer.ID, result.Allocations[1].InvoiceID)
	require.Equal(t, 300.0, result.Allocations[1].Amount)
	require.Equal(t, StatusPartial, result.Allocations[1].Status)
	require.Equal(t, 0.0, result.Leftover)

	// Conservation: allocated slices plus leftover equal the input amount.
	var allocated float64
	for _, a := range result.Allocations {
		allocated += a.Amount
	}
	require.Equal(t, 600.0, allocated+result.Leftover)
}

func TestAllocateExcessLeftoverWhenInvoicesRunOut(t *testing.T) {
	store := newFakeStore()
	store.addInvoice("INV-C", ProfileCustomer, 3, 150, time.Now())
	svc := NewService(store, nil, nil)

	result, err := svc.AllocateExcessPayment(context.Background(), AllocateExcessInput{
		Profile: ProfileCustomer,
		PartyID: 3,
		Amount:  400,
	})
	require.NoError(t, err)
	require.Len(t, result.Allocations, 1)
	require.Equal(t, 150.0, result.Allocations[0].Amount)
	require.Equal(t, 250.0, result.Leftover)
}

func TestCreateInvoiceRaisesPartyBalance(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, nil)

	inv, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		Number:   "INV-3001",
		Profile:  "CUSTOMER",
		PartyID:  11,
		Total:    820.5,
		IssuedAt: "2026-03-10",
	})
	require.NoError(t, err)
	require.Equal(t, StatusUnpaid, inv.Status)
	require.Equal(t, 820.5, store.balances[ownerKey(partyledger.OwnerCustomer, 11)])

	_, err = svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		Number:   "INV-3001",
		Profile:  "CUSTOMER",
		PartyID:  11,
		Total:    100,
		IssuedAt: "2026-03-11",
	})
	require.ErrorIs(t, err, ErrDuplicateNumber)
}
