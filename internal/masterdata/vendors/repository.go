package vendors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parcelops/backoffice/internal/shared"
)

type Repository interface {
	Create(ctx context.Context, v Vendor) (Vendor, error)
	Update(ctx context.Context, v Vendor) (Vendor, error)
	GetByID(ctx context.Context, id int64) (Vendor, error)
	List(ctx context.Context, req ListVendorsRequest) ([]Vendor, int, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const columns = `id, name, contact_name, email, phone, address, is_active, current_balance, created_at, updated_at`

func scan(row pgx.Row) (Vendor, error) {
	var v Vendor
	err := row.Scan(&v.ID, &v.Name, &v.ContactName, &v.Email, &v.Phone, &v.Address, &v.IsActive, &v.CurrentBalance, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func (r *repository) Create(ctx context.Context, v Vendor) (Vendor, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO vendors (name, contact_name, email, phone, address, is_active, current_balance)
VALUES ($1,$2,$3,$4,$5,TRUE,0) RETURNING `+columns, v.Name, v.ContactName, v.Email, v.Phone, v.Address)
	return scan(row)
}

func (r *repository) Update(ctx context.Context, v Vendor) (Vendor, error) {
	row := r.db.QueryRow(ctx, `UPDATE vendors SET name=$2, contact_name=$3, email=$4, phone=$5, address=$6, is_active=$7, updated_at=NOW()
WHERE id=$1 RETURNING `+columns, v.ID, v.Name, v.ContactName, v.Email, v.Phone, v.Address, v.IsActive)
	out, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Vendor{}, ErrNotFound
	}
	return out, err
}

func (r *repository) GetByID(ctx context.Context, id int64) (Vendor, error) {
	out, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM vendors WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Vendor{}, ErrNotFound
	}
	return out, err
}

func (r *repository) List(ctx context.Context, req ListVendorsRequest) ([]Vendor, int, error) {
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
		where = append(where, fmt.Sprintf("(name ILIKE %s OR contact_name ILIKE %s OR email ILIKE %s)", p, p, p))
	}
	if req.IsActive != nil {
		where = append(where, "is_active = "+arg(*req.IsActive))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM vendors`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := shared.LimitOffset(req.Limit, req.Offset)
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM vendors`+clause+
		` ORDER BY name ASC LIMIT `+arg(limit)+` OFFSET `+arg(offset), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []Vendor
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, rows.Err()
}
