package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parcelops/backoffice/internal/accounting/shared"
	internalShared "github.com/parcelops/backoffice/internal/shared"
)

// Repository encapsulates DB operations for the chart of accounts.
type Repository interface {
	Create(ctx context.Context, account Account) (Account, error)
	Update(ctx context.Context, account Account) (Account, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (Account, error)
	GetByCode(ctx context.Context, code string) (Account, error)
	List(ctx context.Context, req ListAccountsRequest) ([]Account, int, error)
	Count(ctx context.Context) (int, error)
	ReferenceCount(ctx context.Context, id int64) (int, error)
	InsertBatch(ctx context.Context, accounts []Account) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const accountColumns = `id, code, name, category, type, debit_rule, credit_rule, description, is_active, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Code, &a.Name, &a.Category, &a.Type, &a.DebitRule, &a.CreditRule, &a.Description, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *repository) Create(ctx context.Context, account Account) (Account, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO accounts (code, name, category, type, debit_rule, credit_rule, description, is_active)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING `+accountColumns,
		account.Code, account.Name, account.Category, account.Type, account.DebitRule, account.CreditRule, account.Description, account.IsActive)
	created, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Account{}, shared.ErrDuplicateCode
		}
		return Account{}, err
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, account Account) (Account, error) {
	row := r.db.QueryRow(ctx, `UPDATE accounts SET name=$2, category=$3, type=$4, debit_rule=$5, credit_rule=$6, description=$7, is_active=$8, updated_at=NOW()
WHERE id=$1 RETURNING `+accountColumns,
		account.ID, account.Name, account.Category, account.Type, account.DebitRule, account.CreditRule, account.Description, account.IsActive)
	updated, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrNotFound
		}
		return Account{}, err
	}
	return updated, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (Account, error) {
	account, err := scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrNotFound
		}
		return Account{}, err
	}
	return account, nil
}

func (r *repository) GetByCode(ctx context.Context, code string) (Account, error) {
	account, err := scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE code=$1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrNotFound
		}
		return Account{}, err
	}
	return account, nil
}

func (r *repository) List(ctx context.Context, req ListAccountsRequest) ([]Account, int, error) {
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
		where = append(where, fmt.Sprintf("(code ILIKE %s OR name ILIKE %s)", p, p))
	}
	if req.Category != "" {
		where = append(where, "category = "+arg(req.Category))
	}
	if req.Type != "" {
		where = append(where, "type = "+arg(req.Type))
	}
	if req.IsActive != nil {
		where = append(where, "is_active = "+arg(*req.IsActive))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := internalShared.LimitOffset(req.Limit, req.Offset)
	query := `SELECT ` + accountColumns + ` FROM accounts` + clause +
		` ORDER BY category, code LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, account)
	}
	return accounts, total, rows.Err()
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count)
	return count, err
}

func (r *repository) ReferenceCount(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM journal_lines WHERE account_id=$1`, id).Scan(&count)
	return count, err
}

func (r *repository) InsertBatch(ctx context.Context, accounts []Account) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	for _, account := range accounts {
		if _, err := tx.Exec(ctx, `INSERT INTO accounts (code, name, category, type, debit_rule, credit_rule, description, is_active)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			account.Code, account.Name, account.Category, account.Type, account.DebitRule, account.CreditRule, account.Description, account.IsActive); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
