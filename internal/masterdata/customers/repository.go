package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parcelops/backoffice/internal/shared"
)

// Repository encapsulates DB operations for customers.
type Repository interface {
	Create(ctx context.Context, c Customer) (Customer, error)
	Update(ctx context.Context, c Customer) (Customer, error)
	GetByID(ctx context.Context, id int64) (Customer, error)
	List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const columns = `id, name, email, phone, address, is_active, current_balance, created_at, updated_at`

func scan(row pgx.Row) (Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.IsActive, &c.CurrentBalance, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *repository) Create(ctx context.Context, c Customer) (Customer, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO customers (name, email, phone, address, is_active, current_balance)
VALUES ($1,$2,$3,$4,TRUE,0) RETURNING `+columns, c.Name, c.Email, c.Phone, c.Address)
	return scan(row)
}

func (r *repository) Update(ctx context.Context, c Customer) (Customer, error) {
	row := r.db.QueryRow(ctx, `UPDATE customers SET name=$2, email=$3, phone=$4, address=$5, is_active=$6, updated_at=NOW()
WHERE id=$1 RETURNING `+columns, c.ID, c.Name, c.Email, c.Phone, c.Address, c.IsActive)
	out, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, ErrNotFound
	}
	return out, err
}

func (r *repository) GetByID(ctx context.Context, id int64) (Customer, error) {
	out, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM customers WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, ErrNotFound
	}
	return out, err
}

func (r *repository) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
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
		where = append(where, fmt.Sprintf("(name ILIKE %s OR email ILIKE %s OR phone ILIKE %s)", p, p, p))
	}
	if req.IsActive != nil {
		where = append(where, "is_active = "+arg(*req.IsActive))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := shared.LimitOffset(req.Limit, req.Offset)
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM customers`+clause+
		` ORDER BY name ASC LIMIT `+arg(limit)+` OFFSET `+arg(offset), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []Customer
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}
