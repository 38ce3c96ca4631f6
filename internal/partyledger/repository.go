package partyledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parcelops/backoffice/internal/platform/db"
	"github.com/parcelops/backoffice/internal/shared"
)

// Repository encapsulates DB operations for party ledgers.
type Repository interface {
	ListTransactions(ctx context.Context, owner OwnerType, ownerID int64, limit, offset int) ([]Transaction, int, error)
	WithTx(ctx context.Context, fn func(context.Context, TxLedger) error) error
}

// TxLedger posts balance movements within an open transaction. The balance
// update and the history append always commit or roll back together.
type TxLedger interface {
	Post(ctx context.Context, in PostInput) (Posting, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) ListTransactions(ctx context.Context, owner OwnerType, ownerID int64, limit, offset int) ([]Transaction, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM ledger_transactions WHERE owner_type=$1 AND owner_id=$2`, owner, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, offset = shared.LimitOffset(limit, offset)
	rows, err := r.db.Query(ctx, `SELECT id, owner_type, owner_id, direction, amount, description, reference, invoice_id, previous_balance, new_balance, created_at
FROM ledger_transactions WHERE owner_type=$1 AND owner_id=$2 ORDER BY id DESC LIMIT $3 OFFSET $4`, owner, ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var txns []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.OwnerType, &t.OwnerID, &t.Direction, &t.Amount, &t.Description, &t.Reference, &t.InvoiceID, &t.PreviousBalance, &t.NewBalance, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		txns = append(txns, t)
	}
	return txns, total, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxLedger) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, NewTxLedger(tx))
	})
}

type txLedger struct {
	tx pgx.Tx
}

// NewTxLedger wraps an open transaction with ledger posting operations so
// other modules can compose postings into their own transactions.
func NewTxLedger(tx pgx.Tx) TxLedger {
	return &txLedger{tx: tx}
}

func (l *txLedger) Post(ctx context.Context, in PostInput) (Posting, error) {
	previous, err := l.balanceForUpdate(ctx, in.OwnerType, in.OwnerID)
	if err != nil {
		return Posting{}, err
	}
	newBalance := ApplyDirection(in.OwnerType, in.Direction, previous, in.Amount)
	if err := l.updateBalance(ctx, in.OwnerType, in.OwnerID, newBalance); err != nil {
		return Posting{}, err
	}
	if _, err := l.tx.Exec(ctx, `INSERT INTO ledger_transactions (owner_type, owner_id, direction, amount, description, reference, invoice_id, previous_balance, new_balance)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		in.OwnerType, in.OwnerID, in.Direction, toNumeric(in.Amount), in.Description, in.Reference, in.InvoiceID, toNumeric(previous), toNumeric(newBalance)); err != nil {
		return Posting{}, err
	}
	return Posting{PreviousBalance: previous, NewBalance: newBalance}, nil
}

func (l *txLedger) balanceForUpdate(ctx context.Context, owner OwnerType, ownerID int64) (float64, error) {
	var balance float64
	var err error
	switch owner {
	case OwnerCustomer:
		err = l.tx.QueryRow(ctx, `SELECT current_balance FROM customers WHERE id=$1 FOR UPDATE`, ownerID).Scan(&balance)
	case OwnerVendor:
		err = l.tx.QueryRow(ctx, `SELECT current_balance FROM vendors WHERE id=$1 FOR UPDATE`, ownerID).Scan(&balance)
	case OwnerCompany:
		err = l.tx.QueryRow(ctx, `SELECT current_balance FROM company_accounts WHERE id=$1 FOR UPDATE`, ownerID).Scan(&balance)
		if errors.Is(err, pgx.ErrNoRows) {
			// The company ledger record is created lazily at zero.
			_, err = l.tx.Exec(ctx, `INSERT INTO company_accounts (id, current_balance) VALUES ($1, 0)`, ownerID)
			return 0, err
		}
	default:
		return 0, fmt.Errorf("partyledger: unknown owner type %q", owner)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrOwnerNotFound
	}
	return balance, err
}

func (l *txLedger) updateBalance(ctx context.Context, owner OwnerType, ownerID int64, balance float64) error {
	var table string
	switch owner {
	case OwnerCustomer:
		table = "customers"
	case OwnerVendor:
		table = "vendors"
	case OwnerCompany:
		table = "company_accounts"
	default:
		return fmt.Errorf("partyledger: unknown owner type %q", owner)
	}
	_, err := l.tx.Exec(ctx, `UPDATE `+table+` SET current_balance=$2, updated_at=NOW() WHERE id=$1`, ownerID, toNumeric(balance))
	return err
}

func toNumeric(v float64) any {
	return fmt.Sprintf("%.2f", v)
}
