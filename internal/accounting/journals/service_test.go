package journals

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/parcelops/backoffice/internal/accounting/shared"
)

type memoryJournalRepo struct {
	entries    map[int64]JournalEntry
	lines      map[int64][]JournalLine
	counter    int64
	nextID     int64
	nextLineID int64
}

func newMemoryJournalRepo() *memoryJournalRepo {
	return &memoryJournalRepo{entries: make(map[int64]JournalEntry), lines: make(map[int64][]JournalLine)}
}

func (r *memoryJournalRepo) snapshot() *memoryJournalRepo {
	clone := newMemoryJournalRepo()
	clone.counter = r.counter
	clone.nextID = r.nextID
	clone.nextLineID = r.nextLineID
	for id, e := range r.entries {
		clone.entries[id] = e
	}
	for id, ls := range r.lines {
		clone.lines[id] = append([]JournalLine(nil), ls...)
	}
	return clone
}

func (r *memoryJournalRepo) restore(from *memoryJournalRepo) {
	r.entries = from.entries
	r.lines = from.lines
	r.counter = from.counter
	r.nextID = from.nextID
	r.nextLineID = from.nextLineID
}

// WithTx emulates transactional semantics by discarding writes on error.
func (r *memoryJournalRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	saved := r.snapshot()
	if err := fn(ctx, &memoryJournalTx{repo: r}); err != nil {
		r.restore(saved)
		return err
	}
	return nil
}

func (r *memoryJournalRepo) GetEntry(ctx context.Context, id int64) (JournalEntry, error) {
	entry, ok := r.entries[id]
	if !ok {
		return JournalEntry{}, shared.ErrNotFound
	}
	entry.Lines = r.lines[id]
	return entry, nil
}

func (r *memoryJournalRepo) ListEntries(ctx context.Context, req ListEntriesRequest) ([]JournalEntry, int, error) {
	var out []JournalEntry
	for id, entry := range r.entries {
		if req.IsPosted != nil && entry.IsPosted != *req.IsPosted {
			continue
		}
		entry.Lines = r.lines[id]
		out = append(out, entry)
	}
	return out, len(out), nil
}

type memoryJournalTx struct {
	repo *memoryJournalRepo
}

func (tx *memoryJournalTx) NextEntryNumber(ctx context.Context) (string, error) {
	tx.repo.counter++
	return fmt.Sprintf("JE-%04d", tx.repo.counter), nil
}

func (tx *memoryJournalTx) InsertEntry(ctx context.Context, entry JournalEntry) (JournalEntry, error) {
	tx.repo.nextID++
	entry.ID = tx.repo.nextID
	stored := entry
	stored.Lines = nil
	tx.repo.entries[entry.ID] = stored
	return entry, nil
}

func (tx *memoryJournalTx) InsertLines(ctx context.Context, entryID int64, lines []JournalLine) error {
	for _, line := range lines {
		tx.repo.nextLineID++
		line.ID = tx.repo.nextLineID
		line.EntryID = entryID
		tx.repo.lines[entryID] = append(tx.repo.lines[entryID], line)
	}
	return nil
}

func (tx *memoryJournalTx) GetEntryForUpdate(ctx context.Context, id int64) (JournalEntry, error) {
	entry, ok := tx.repo.entries[id]
	if !ok {
		return JournalEntry{}, shared.ErrNotFound
	}
	return entry, nil
}

func (tx *memoryJournalTx) MarkPosted(ctx context.Context, id int64, at time.Time) error {
	entry, ok := tx.repo.entries[id]
	if !ok {
		return shared.ErrNotFound
	}
	entry.IsPosted = true
	entry.PostedAt = &at
	tx.repo.entries[id] = entry
	return nil
}

func testInput(lines ...LineInput) EntryInput {
	return EntryInput{
		Date:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Description: "freight invoice settlement",
		Lines:       lines,
	}
}

func TestCreateEntryAssignsSequentialNumbers(t *testing.T) {
	repo := newMemoryJournalRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		entry, err := svc.CreateEntry(ctx, testInput(
			LineInput{AccountID: 1, Debit: 150},
			LineInput{AccountID: 2, Credit: 150},
		))
		require.NoError(t, err)
		require.Equal(t, fmt.Sprintf("JE-%04d", i), entry.Number)
		require.InDelta(t, entry.TotalDebit, entry.TotalCredit, BalanceTolerance)
		require.False(t, entry.IsPosted)
	}
}

func TestCreateEntryRejectsUnbalanced(t *testing.T) {
	repo := newMemoryJournalRepo()
	svc := NewService(repo, nil, nil)

	_, err := svc.CreateEntry(context.Background(), testInput(
		LineInput{AccountID: 1, Debit: 100},
		LineInput{AccountID: 2, Credit: 90},
	))
	require.ErrorIs(t, err, shared.ErrUnbalanced)
	require.Empty(t, repo.entries)
}

func TestCreateEntryToleratesRoundingDrift(t *testing.T) {
	svc := NewService(newMemoryJournalRepo(), nil, nil)

	_, err := svc.CreateEntry(context.Background(), testInput(
		LineInput{AccountID: 1, Debit: 33.335},
		LineInput{AccountID: 2, Credit: 33.33},
	))
	require.NoError(t, err)
}

func TestCreateEntryRejectsInvalidLines(t *testing.T) {
	svc := NewService(newMemoryJournalRepo(), nil, nil)
	ctx := context.Background()

	cases := []struct {
		name  string
		lines []LineInput
		want  error
	}{
		{"single line", []LineInput{{AccountID: 1, Debit: 10}}, shared.ErrTooFewLines},
		{"missing account", []LineInput{{Debit: 10}, {AccountID: 2, Credit: 10}}, shared.ErrInvalidLine},
		{"both legs set", []LineInput{{AccountID: 1, Debit: 10, Credit: 10}, {AccountID: 2, Credit: 10}}, shared.ErrInvalidLine},
		{"neither leg set", []LineInput{{AccountID: 1}, {AccountID: 2, Credit: 0}}, shared.ErrInvalidLine},
		{"negative amount", []LineInput{{AccountID: 1, Debit: -5}, {AccountID: 2, Credit: -5}}, shared.ErrInvalidLine},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateEntry(ctx, testInput(tc.lines...))
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestPostEntryIsOneWay(t *testing.T) {
	repo := newMemoryJournalRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	entry, err := svc.CreateEntry(ctx, testInput(
		LineInput{AccountID: 1, Debit: 75},
		LineInput{AccountID: 2, Credit: 75},
	))
	require.NoError(t, err)

	posted, err := svc.PostEntry(ctx, entry.ID)
	require.NoError(t, err)
	require.True(t, posted.IsPosted)
	require.NotNil(t, posted.PostedAt)

	_, err = svc.PostEntry(ctx, entry.ID)
	require.ErrorIs(t, err, shared.ErrAlreadyPosted)

	_, err = svc.PostEntry(ctx, 404)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestBuildEntryIsTheOnlyConstructorPath(t *testing.T) {
	_, err := BuildEntry(EntryInput{
		Date:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Description: "system derived",
		Source:      "billing:payment",
		AutoPost:    true,
		Lines: []LineInput{
			{AccountID: 1, Debit: 600},
			{AccountID: 2, Credit: 600},
		},
	}, "JE-0042", time.Now())
	require.NoError(t, err)

	_, err = BuildEntry(EntryInput{
		Date:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Description: "system derived unbalanced",
		Source:      "billing:payment",
		Lines: []LineInput{
			{AccountID: 1, Debit: 600},
			{AccountID: 2, Credit: 500},
		},
	}, "JE-0043", time.Now())
	require.Error(t, err)
	require.True(t, errors.Is(err, shared.ErrUnbalanced))
}
