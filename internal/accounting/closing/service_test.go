package closing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/parcelops/backoffice/internal/accounting/accounts"
	"github.com/parcelops/backoffice/internal/accounting/journals"
	"github.com/parcelops/backoffice/internal/accounting/shared"
)

type fakeClosingStore struct {
	balances    []AccountBalance
	accountIDs  map[string]int64
	entries     []journals.JournalEntry
	nextEntryID int64
	counter     int64
}

func newFakeClosingStore() *fakeClosingStore {
	return &fakeClosingStore{accountIDs: map[string]int64{accounts.CodeCurrentYearEarnings: 99}}
}

func (s *fakeClosingStore) ListClosings(ctx context.Context, limit, offset int) ([]journals.JournalEntry, int, error) {
	var out []journals.JournalEntry
	for _, e := range s.entries {
		if e.Source == Source {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

func (s *fakeClosingStore) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	entriesBefore := append([]journals.JournalEntry(nil), s.entries...)
	counterBefore := s.counter
	idBefore := s.nextEntryID
	if err := fn(ctx, &fakeClosingTx{store: s}); err != nil {
		s.entries = entriesBefore
		s.counter = counterBefore
		s.nextEntryID = idBefore
		return err
	}
	return nil
}

type fakeClosingTx struct {
	store *fakeClosingStore
}

func (t *fakeClosingTx) EntryByReference(ctx context.Context, reference string) (journals.JournalEntry, error) {
	for _, e := range t.store.entries {
		if e.Reference == reference && e.Source == Source {
			return e, nil
		}
	}
	return journals.JournalEntry{}, shared.ErrNotFound
}

func (t *fakeClosingTx) PeriodBalances(ctx context.Context, start, end time.Time) ([]AccountBalance, error) {
	return t.store.balances, nil
}

func (t *fakeClosingTx) AccountIDByCode(ctx context.Context, code string) (int64, error) {
	id, ok := t.store.accountIDs[code]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return id, nil
}

func (t *fakeClosingTx) Journal() journals.TxRepository {
	return &fakeClosingJournal{store: t.store}
}

type fakeClosingJournal struct {
	store *fakeClosingStore
}

func (j *fakeClosingJournal) NextEntryNumber(ctx context.Context) (string, error) {
	j.store.counter++
	return fmt.Sprintf("JE-%04d", j.store.counter), nil
}

func (j *fakeClosingJournal) InsertEntry(ctx context.Context, entry journals.JournalEntry) (journals.JournalEntry, error) {
	j.store.nextEntryID++
	entry.ID = j.store.nextEntryID
	j.store.entries = append(j.store.entries, entry)
	return entry, nil
}

func (j *fakeClosingJournal) InsertLines(ctx context.Context, entryID int64, lines []journals.JournalLine) error {
	for i := range j.store.entries {
		if j.store.entries[i].ID == entryID {
			j.store.entries[i].Lines = lines
		}
	}
	return nil
}

func (j *fakeClosingJournal) GetEntryForUpdate(ctx context.Context, id int64) (journals.JournalEntry, error) {
	for _, e := range j.store.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return journals.JournalEntry{}, shared.ErrNotFound
}

func (j *fakeClosingJournal) MarkPosted(ctx context.Context, id int64, at time.Time) error {
	return nil
}

func period() (time.Time, time.Time) {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
}

func TestClosePeriodSweepsProfitToEarnings(t *testing.T) {
	store := newFakeClosingStore()
	store.balances = []AccountBalance{
		{AccountID: 1, Code: "4101", Name: "Delivery Revenue", Category: "REVENUE", TotalCredit: 5000},
		{AccountID: 2, Code: "4102", Name: "Express Surcharge", Category: "REVENUE", TotalCredit: 800, TotalDebit: 50},
		{AccountID: 3, Code: "5101", Name: "Fuel Expense", Category: "EXPENSE", TotalDebit: 2000},
	}
	svc := NewService(store, nil, nil)
	start, end := period()

	result, err := svc.ClosePeriod(context.Background(), start, end)
	require.NoError(t, err)
	require.False(t, result.AlreadyClosed)
	require.Equal(t, "CLOSE-2026-01-01-2026-01-31", result.Reference)
	require.Equal(t, 5750.0, result.TotalRevenue)
	require.Equal(t, 2000.0, result.TotalExpense)
	require.Equal(t, 3750.0, result.NetResult)
	require.True(t, result.Entry.IsPosted)
	require.Equal(t, end, result.Entry.Date)

	// Revenue accounts are debited, expenses credited, profit lands on CYE.
	require.Len(t, result.Entry.Lines, 4)
	last := result.Entry.Lines[3]
	require.Equal(t, int64(99), last.AccountID)
	require.Equal(t, 3750.0, last.Credit)
	require.Equal(t, result.Entry.TotalDebit, result.Entry.TotalCredit)
}

func TestClosePeriodLossDebitsEarnings(t *testing.T) {
	store := newFakeClosingStore()
	store.balances = []AccountBalance{
		{AccountID: 1, Code: "4101", Name: "Delivery Revenue", Category: "REVENUE", TotalCredit: 1000},
		{AccountID: 3, Code: "5101", Name: "Fuel Expense", Category: "EXPENSE", TotalDebit: 1600},
	}
	svc := NewService(store, nil, nil)
	start, end := period()

	result, err := svc.ClosePeriod(context.Background(), start, end)
	require.NoError(t, err)
	require.Equal(t, -600.0, result.NetResult)
	last := result.Entry.Lines[len(result.Entry.Lines)-1]
	require.Equal(t, int64(99), last.AccountID)
	require.Equal(t, 600.0, last.Debit)
}

func TestClosePeriodIsIdempotent(t *testing.T) {
	store := newFakeClosingStore()
	store.balances = []AccountBalance{
		{AccountID: 1, Code: "4101", Name: "Delivery Revenue", Category: "REVENUE", TotalCredit: 300},
		{AccountID: 3, Code: "5101", Name: "Fuel Expense", Category: "EXPENSE", TotalDebit: 100},
	}
	svc := NewService(store, nil, nil)
	start, end := period()
	ctx := context.Background()

	first, err := svc.ClosePeriod(ctx, start, end)
	require.NoError(t, err)
	require.False(t, first.AlreadyClosed)

	second, err := svc.ClosePeriod(ctx, start, end)
	require.NoError(t, err)
	require.True(t, second.AlreadyClosed)
	require.Equal(t, first.Entry.ID, second.Entry.ID)
	require.Len(t, store.entries, 1)
}

func TestClosePeriodSkipsNegativeAndNearZeroNets(t *testing.T) {
	store := newFakeClosingStore()
	store.balances = []AccountBalance{
		{AccountID: 1, Code: "4101", Name: "Delivery Revenue", Category: "REVENUE", TotalCredit: 900},
		// Refunds exceeded revenue; a negative net is left alone.
		{AccountID: 2, Code: "4103", Name: "COD Fees", Category: "REVENUE", TotalCredit: 40, TotalDebit: 120},
		// Net below the rounding tolerance is skipped too.
		{AccountID: 3, Code: "5102", Name: "Packaging", Category: "EXPENSE", TotalDebit: 100.004, TotalCredit: 100},
	}
	svc := NewService(store, nil, nil)
	start, end := period()

	result, err := svc.ClosePeriod(context.Background(), start, end)
	require.NoError(t, err)
	require.Equal(t, 900.0, result.TotalRevenue)
	require.Equal(t, 0.0, result.TotalExpense)
	require.Len(t, result.Entry.Lines, 2)
}

func TestClosePeriodBreakEvenWritesNothing(t *testing.T) {
	store := newFakeClosingStore()
	store.balances = []AccountBalance{
		{AccountID: 1, Code: "4101", Name: "Delivery Revenue", Category: "REVENUE", TotalCredit: 500},
		{AccountID: 3, Code: "5101", Name: "Fuel Expense", Category: "EXPENSE", TotalDebit: 500},
	}
	svc := NewService(store, nil, nil)
	start, end := period()

	_, err := svc.ClosePeriod(context.Background(), start, end)
	require.ErrorIs(t, err, ErrNothingToClose)
	require.Empty(t, store.entries)
	require.Zero(t, store.counter)
}

func TestClosePeriodWithNoActivity(t *testing.T) {
	svc := NewService(newFakeClosingStore(), nil, nil)
	start, end := period()

	_, err := svc.ClosePeriod(context.Background(), start, end)
	require.ErrorIs(t, err, ErrNothingToClose)
}

func TestClosePeriodValidatesRange(t *testing.T) {
	svc := NewService(newFakeClosingStore(), nil, nil)
	start, end := period()

	_, err := svc.ClosePeriod(context.Background(), end, start)
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.ClosePeriod(context.Background(), time.Time{}, end)
	require.ErrorIs(t, err, shared.ErrValidation)
}
