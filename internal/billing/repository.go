package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parcelops/backoffice/internal/accounting/journals"
	"github.com/parcelops/backoffice/internal/partyledger"
	"github.com/parcelops/backoffice/internal/platform/db"
	"github.com/parcelops/backoffice/internal/shared"
)

// Repository encapsulates DB operations for invoices and payments.
type Repository interface {
	GetInvoice(ctx context.Context, id int64) (Invoice, error)
	GetInvoiceWithPayments(ctx context.Context, id int64) (InvoiceWithPayments, error)
	ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error)
	ListPayments(ctx context.Context, req ListPaymentsRequest) ([]Payment, int, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository groups the billing writes with the ledger and journal writes of
// the same transaction, so a payment settles in one atomic unit.
type TxRepository interface {
	InsertInvoice(ctx context.Context, inv Invoice) (Invoice, error)
	GetInvoiceByNumberForUpdate(ctx context.Context, number string) (Invoice, error)
	ListOutstandingForUpdate(ctx context.Context, profile InvoiceProfile, partyID int64) ([]Invoice, error)
	SumPayments(ctx context.Context, invoiceID int64, txType TransactionType) (float64, error)
	InsertPayment(ctx context.Context, p Payment) (Payment, error)
	UpdateInvoiceStatus(ctx context.Context, id int64, status InvoiceStatus) error
	Ledger() partyledger.TxLedger
	Journal() journals.TxRepository
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const invoiceColumns = `id, number, profile, party_id, currency, total, status, issued_at, due_at, created_at, updated_at`

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.Number, &inv.Profile, &inv.PartyID, &inv.Currency, &inv.Total, &inv.Status, &inv.IssuedAt, &inv.DueAt, &inv.CreatedAt, &inv.UpdatedAt)
	return inv, err
}

func (r *repository) GetInvoice(ctx context.Context, id int64) (Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, ErrInvoiceNotFound
	}
	return inv, err
}

func (r *repository) GetInvoiceWithPayments(ctx context.Context, id int64) (InvoiceWithPayments, error) {
	inv, err := r.GetInvoice(ctx, id)
	if err != nil {
		return InvoiceWithPayments{}, err
	}
	rows, err := r.db.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE invoice_id=$1 ORDER BY id ASC`, id)
	if err != nil {
		return InvoiceWithPayments{}, err
	}
	defer rows.Close()
	out := InvoiceWithPayments{Invoice: inv}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return InvoiceWithPayments{}, err
		}
		out.Payments = append(out.Payments, p)
		out.PaidAmount += p.Amount
	}
	if err := rows.Err(); err != nil {
		return InvoiceWithPayments{}, err
	}
	out.Balance = inv.Total - out.PaidAmount
	return out, nil
}

func (r *repository) ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if req.Profile != "" {
		where = append(where, "profile = "+arg(req.Profile))
	}
	if req.Status != "" {
		where = append(where, "status = "+arg(req.Status))
	}
	if req.PartyID > 0 {
		where = append(where, "party_id = "+arg(req.PartyID))
	}
	if req.Search != "" {
		where = append(where, "number ILIKE "+arg("%"+req.Search+"%"))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM invoices`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := shared.LimitOffset(req.Limit, req.Offset)
	rows, err := r.db.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices`+clause+
		` ORDER BY issued_at DESC, id DESC LIMIT `+arg(limit)+` OFFSET `+arg(offset), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, total, rows.Err()
}

const paymentColumns = `id, number, invoice_id, transaction_type, amount, from_party_type, to_party_type, mode, reference, description, paid_at, created_at`

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.Number, &p.InvoiceID, &p.TransactionType, &p.Amount, &p.FromPartyType, &p.ToPartyType, &p.Mode, &p.Reference, &p.Description, &p.PaidAt, &p.CreatedAt)
	return p, err
}

func (r *repository) ListPayments(ctx context.Context, req ListPaymentsRequest) ([]Payment, int, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if req.TransactionType != "" {
		where = append(where, "transaction_type = "+arg(req.TransactionType))
	}
	if req.InvoiceID > 0 {
		where = append(where, "invoice_id = "+arg(req.InvoiceID))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := shared.LimitOffset(req.Limit, req.Offset)
	rows, err := r.db.Query(ctx, `SELECT `+paymentColumns+` FROM payments`+clause+
		` ORDER BY id DESC LIMIT `+arg(limit)+` OFFSET `+arg(offset), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var payments []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, p)
	}
	return payments, total, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, newTxRepository(tx))
	})
}

type txRepository struct {
	tx      pgx.Tx
	ledger  partyledger.TxLedger
	journal journals.TxRepository
}

func newTxRepository(tx pgx.Tx) TxRepository {
	return &txRepository{
		tx:      tx,
		ledger:  partyledger.NewTxLedger(tx),
		journal: journals.NewTxRepository(tx),
	}
}

func (r *txRepository) Ledger() partyledger.TxLedger   { return r.ledger }
func (r *txRepository) Journal() journals.TxRepository { return r.journal }

func (r *txRepository) InsertInvoice(ctx context.Context, inv Invoice) (Invoice, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO invoices (number, profile, party_id, currency, total, status, issued_at, due_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id, created_at, updated_at`,
		inv.Number, inv.Profile, inv.PartyID, inv.Currency, toNumeric(inv.Total), inv.Status, inv.IssuedAt, inv.DueAt)
	if err := row.Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Invoice{}, ErrDuplicateNumber
		}
		return Invoice{}, err
	}
	return inv, nil
}

func (r *txRepository) GetInvoiceByNumberForUpdate(ctx context.Context, number string) (Invoice, error) {
	inv, err := scanInvoice(r.tx.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE number=$1 FOR UPDATE`, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, ErrInvoiceNotFound
	}
	return inv, err
}

// ListOutstandingForUpdate locks a party's unpaid and partial invoices, oldest
// first, so excess allocation sees a stable view.
func (r *txRepository) ListOutstandingForUpdate(ctx context.Context, profile InvoiceProfile, partyID int64) ([]Invoice, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices
WHERE profile=$1 AND party_id=$2 AND status IN ('UNPAID','PARTIAL')
ORDER BY issued_at ASC, id ASC FOR UPDATE`, profile, partyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (r *txRepository) SumPayments(ctx context.Context, invoiceID int64, txType TransactionType) (float64, error) {
	var sum float64
	err := r.tx.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id=$1 AND transaction_type=$2`,
		invoiceID, txType).Scan(&sum)
	return sum, err
}

func (r *txRepository) InsertPayment(ctx context.Context, p Payment) (Payment, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO payments (number, invoice_id, transaction_type, amount, from_party_type, to_party_type, mode, reference, description, paid_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING id, created_at`,
		p.Number, p.InvoiceID, p.TransactionType, toNumeric(p.Amount), p.FromPartyType, p.ToPartyType, p.Mode, p.Reference, p.Description, p.PaidAt)
	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		return Payment{}, err
	}
	return p, nil
}

func (r *txRepository) UpdateInvoiceStatus(ctx context.Context, id int64, status InvoiceStatus) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE invoices SET status=$2, updated_at=NOW() WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func toNumeric(v float64) any {
	return fmt.Sprintf("%.2f", v)
}
