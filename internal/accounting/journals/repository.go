package journals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parcelops/backoffice/internal/accounting/shared"
	"github.com/parcelops/backoffice/internal/platform/db"
	internalShared "github.com/parcelops/backoffice/internal/shared"
)

// Repository encapsulates DB operations for journals.
type Repository interface {
	GetEntry(ctx context.Context, id int64) (JournalEntry, error)
	ListEntries(ctx context.Context, req ListEntriesRequest) ([]JournalEntry, int, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes journal writes available within a transaction. Billing
// and closing compose it into their own transactions via NewTxRepository.
type TxRepository interface {
	NextEntryNumber(ctx context.Context) (string, error)
	InsertEntry(ctx context.Context, entry JournalEntry) (JournalEntry, error)
	InsertLines(ctx context.Context, entryID int64, lines []JournalLine) error
	GetEntryForUpdate(ctx context.Context, id int64) (JournalEntry, error)
	MarkPosted(ctx context.Context, id int64, at time.Time) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const entryColumns = `id, number, date, description, reference, source, total_debit, total_credit, is_posted, posted_at, created_at, updated_at`

func scanEntry(row pgx.Row) (JournalEntry, error) {
	var e JournalEntry
	err := row.Scan(&e.ID, &e.Number, &e.Date, &e.Description, &e.Reference, &e.Source, &e.TotalDebit, &e.TotalCredit, &e.IsPosted, &e.PostedAt, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *repository) GetEntry(ctx context.Context, id int64) (JournalEntry, error) {
	entry, err := scanEntry(r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, shared.ErrNotFound
		}
		return JournalEntry{}, err
	}
	lines, err := r.linesFor(ctx, []int64{id})
	if err != nil {
		return JournalEntry{}, err
	}
	entry.Lines = lines[id]
	return entry, nil
}

func (r *repository) ListEntries(ctx context.Context, req ListEntriesRequest) ([]JournalEntry, int, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if req.Search != "" {
		p := arg("%" + req.Search + "%")
		where = append(where, fmt.Sprintf("(number ILIKE %s OR description ILIKE %s OR reference ILIKE %s)", p, p, p))
	}
	if req.DateFrom != nil {
		where = append(where, "date >= "+arg(*req.DateFrom))
	}
	if req.DateTo != nil {
		where = append(where, "date <= "+arg(*req.DateTo))
	}
	if req.IsPosted != nil {
		where = append(where, "is_posted = "+arg(*req.IsPosted))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM journal_entries`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := internalShared.LimitOffset(req.Limit, req.Offset)
	rows, err := r.db.Query(ctx, `SELECT `+entryColumns+` FROM journal_entries`+clause+
		` ORDER BY date DESC, id DESC LIMIT `+arg(limit)+` OFFSET `+arg(offset), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var entries []JournalEntry
	var ids []int64
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, entry)
		ids = append(ids, entry.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(ids) > 0 {
		lines, err := r.linesFor(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		for i := range entries {
			entries[i].Lines = lines[entries[i].ID]
		}
	}
	return entries, total, nil
}

func (r *repository) linesFor(ctx context.Context, entryIDs []int64) (map[int64][]JournalLine, error) {
	rows, err := r.db.Query(ctx, `SELECT l.id, l.entry_id, l.account_id, a.code, a.name, l.debit, l.credit, l.description, l.reference
FROM journal_lines l JOIN accounts a ON a.id = l.account_id
WHERE l.entry_id = ANY($1) ORDER BY l.id ASC`, entryIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64][]JournalLine)
	for rows.Next() {
		var line JournalLine
		if err := rows.Scan(&line.ID, &line.EntryID, &line.AccountID, &line.AccountCode, &line.AccountName, &line.Debit, &line.Credit, &line.Description, &line.Reference); err != nil {
			return nil, err
		}
		out[line.EntryID] = append(out[line.EntryID], line)
	}
	return out, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, NewTxRepository(tx))
	})
}

type txRepository struct {
	tx pgx.Tx
}

// NewTxRepository wraps an open transaction with journal write operations.
func NewTxRepository(tx pgx.Tx) TxRepository {
	return &txRepository{tx: tx}
}

// NextEntryNumber allocates the next JE number from a dedicated counter row.
// The upsert increments atomically, so concurrent posters never share a value.
func (r *txRepository) NextEntryNumber(ctx context.Context) (string, error) {
	var value int64
	err := r.tx.QueryRow(ctx, `INSERT INTO journal_counters (name, last_value) VALUES ('journal_entry', 1)
ON CONFLICT (name) DO UPDATE SET last_value = journal_counters.last_value + 1
RETURNING last_value`).Scan(&value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("JE-%04d", value), nil
}

func (r *txRepository) InsertEntry(ctx context.Context, entry JournalEntry) (JournalEntry, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO journal_entries (number, date, description, reference, source, total_debit, total_credit, is_posted, posted_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id, created_at, updated_at`,
		entry.Number, entry.Date, entry.Description, entry.Reference, entry.Source,
		toNumeric(entry.TotalDebit), toNumeric(entry.TotalCredit), entry.IsPosted, entry.PostedAt)
	if err := row.Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		return JournalEntry{}, err
	}
	return entry, nil
}

func (r *txRepository) InsertLines(ctx context.Context, entryID int64, lines []JournalLine) error {
	for _, line := range lines {
		if _, err := r.tx.Exec(ctx, `INSERT INTO journal_lines (entry_id, account_id, debit, credit, description, reference)
VALUES ($1,$2,$3,$4,$5,$6)`, entryID, line.AccountID, toNumeric(line.Debit), toNumeric(line.Credit), line.Description, line.Reference); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) GetEntryForUpdate(ctx context.Context, id int64) (JournalEntry, error) {
	entry, err := scanEntry(r.tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, shared.ErrNotFound
		}
		return JournalEntry{}, err
	}
	return entry, nil
}

func (r *txRepository) MarkPosted(ctx context.Context, id int64, at time.Time) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET is_posted=TRUE, posted_at=$2, updated_at=NOW() WHERE id=$1`, id, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toNumeric(v float64) any {
	return fmt.Sprintf("%.2f", v)
}
