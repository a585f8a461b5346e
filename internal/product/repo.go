// Package product provides the catalog store: the repository interface and its
// PostgreSQL implementation.
package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/shop-service/internal/apperr"
)

var (
	ErrNotFound     = apperr.Wrap("product", apperr.ErrNotFound)
	ErrDuplicateSKU = apperr.Wrap("product sku", apperr.ErrConflict)
)

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, q Query) ([]Product, error)
	Update(ctx context.Context, id string, patch Patch) (*Product, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const productColumns = `id, sku, name, price::text, category, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO products (id, sku, name, price, category, created_at, updated_at)
		VALUES ($1,$2,$3,$4::numeric,$5,NOW(),NOW())
		RETURNING created_at, updated_at
	`, p.ID, p.SKU, p.Name, p.Price.String(), p.Category).Scan(&p.CreatedAt, &p.UpdatedAt)
	return mapWriteErr("product.create", err)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperr.Store("product.get", err)
	}
	return p, nil
}

// List returns matching products, most expensive first.
func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// values are used verbatim: whitespace is part of the substring
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR category = $2)
		ORDER BY price DESC, created_at ASC, id ASC
	`, escapeLike(q.Search), q.Category)
	if err != nil {
		return nil, apperr.Store("product.list", err)
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, apperr.Store("product.list", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("product.list", err)
	}
	return out, nil
}

func (r *PGRepo) Update(ctx context.Context, id string, patch Patch) (*Product, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var price *string
	if patch.Price != nil {
		s := patch.Price.String()
		price = &s
	}

	p, err := scanProduct(r.db.QueryRow(ctx, `
		UPDATE products
		SET sku = COALESCE($2, sku),
		    name = COALESCE($3, name),
		    price = COALESCE($4::numeric, price),
		    category = COALESCE($5, category),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+productColumns,
		id, patch.SKU, patch.Name, price, patch.Category))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, mapWriteErr("product.update", err)
	}
	return p, nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return false, apperr.Store("product.delete", err)
	}
	return cmd.RowsAffected() > 0, nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var (
		p     Product
		price string
	)
	if err := row.Scan(&p.ID, &p.SKU, &p.Name, &price, &p.Category, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	p.Price = d
	return &p, nil
}

func mapWriteErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateSKU
	}
	return apperr.Store(op, err)
}

// validID rejects ids the uuid column would refuse; they cannot name a product.
func validID(id string) bool { return uuid.Validate(id) == nil }

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
