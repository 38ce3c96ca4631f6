package closing

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parcelops/backoffice/internal/accounting/journals"
	"github.com/parcelops/backoffice/internal/accounting/shared"
	"github.com/parcelops/backoffice/internal/platform/db"
	internalShared "github.com/parcelops/backoffice/internal/shared"
)

// Repository encapsulates DB operations for period closes.
type Repository interface {
	ListClosings(ctx context.Context, limit, offset int) ([]journals.JournalEntry, int, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the reads and journal writes a close performs inside
// its transaction.
type TxRepository interface {
	EntryByReference(ctx context.Context, reference string) (journals.JournalEntry, error)
	PeriodBalances(ctx context.Context, start, end time.Time) ([]AccountBalance, error)
	AccountIDByCode(ctx context.Context, code string) (int64, error)
	Journal() journals.TxRepository
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) ListClosings(ctx context.Context, limit, offset int) ([]journals.JournalEntry, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM journal_entries WHERE source=$1`, Source).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, offset = internalShared.LimitOffset(limit, offset)
	rows, err := r.db.Query(ctx, `SELECT id, number, date, description, reference, source, total_debit, total_credit, is_posted, posted_at, created_at, updated_at
FROM journal_entries WHERE source=$1 ORDER BY date DESC, id DESC LIMIT $2 OFFSET $3`, Source, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var entries []journals.JournalEntry
	for rows.Next() {
		var e journals.JournalEntry
		if err := rows.Scan(&e.ID, &e.Number, &e.Date, &e.Description, &e.Reference, &e.Source, &e.TotalDebit, &e.TotalCredit, &e.IsPosted, &e.PostedAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, newTxRepository(tx))
	})
}

type txRepository struct {
	tx      pgx.Tx
	journal journals.TxRepository
}

func newTxRepository(tx pgx.Tx) TxRepository {
	return &txRepository{tx: tx, journal: journals.NewTxRepository(tx)}
}

func (r *txRepository) Journal() journals.TxRepository { return r.journal }

func (r *txRepository) EntryByReference(ctx context.Context, reference string) (journals.JournalEntry, error) {
	var e journals.JournalEntry
	err := r.tx.QueryRow(ctx, `SELECT id, number, date, description, reference, source, total_debit, total_credit, is_posted, posted_at, created_at, updated_at
FROM journal_entries WHERE reference=$1 AND source=$2 LIMIT 1`, reference, Source).
		Scan(&e.ID, &e.Number, &e.Date, &e.Description, &e.Reference, &e.Source, &e.TotalDebit, &e.TotalCredit, &e.IsPosted, &e.PostedAt, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return journals.JournalEntry{}, shared.ErrNotFound
	}
	return e, err
}

// PeriodBalances sums posted revenue and expense lines within the period,
// grouped per account.
func (r *txRepository) PeriodBalances(ctx context.Context, start, end time.Time) ([]AccountBalance, error) {
	rows, err := r.tx.Query(ctx, `SELECT a.id, a.code, a.name, a.category, COALESCE(SUM(l.debit),0), COALESCE(SUM(l.credit),0)
FROM journal_lines l
JOIN journal_entries e ON e.id = l.entry_id
JOIN accounts a ON a.id = l.account_id
WHERE e.is_posted AND e.date >= $1 AND e.date <= $2 AND a.category IN ('REVENUE','EXPENSE')
GROUP BY a.id, a.code, a.name, a.category
ORDER BY a.code`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var balances []AccountBalance
	for rows.Next() {
		var b AccountBalance
		if err := rows.Scan(&b.AccountID, &b.Code, &b.Name, &b.Category, &b.TotalDebit, &b.TotalCredit); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

func (r *txRepository) AccountIDByCode(ctx context.Context, code string) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `SELECT id FROM accounts WHERE code=$1`, code).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, shared.ErrNotFound
	}
	return id, err
}
