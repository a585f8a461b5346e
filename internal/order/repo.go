package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/shop-service/internal/apperr"
)

var (
	ErrNotFound = apperr.Wrap("order", apperr.ErrNotFound)
)

type Repository interface {
	// Create persists the order and all of its items atomically.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return apperr.Store("order.create", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.QueryRow(ctx, `
		INSERT INTO orders (id, user_id, status, total, created_at)
		VALUES ($1,$2,$3,$4::numeric,NOW())
		RETURNING created_at
	`, o.ID, o.UserID, o.Status, o.Total.String()).Scan(&o.CreatedAt); err != nil {
		return apperr.Store("order.create", err)
	}

	if len(o.Items) > 0 {
		batch := &pgx.Batch{}
		for i, it := range o.Items {
			batch.Queue(`
				INSERT INTO order_items (id, order_id, line_no, product_id, quantity, price)
				VALUES ($1,$2,$3,$4,$5,$6::numeric)
			`, it.ID, o.ID, i+1, it.ProductID, it.Quantity, it.Price.String())
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return apperr.Store("order.create items", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Store("order.commit", err)
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, `
		SELECT id, user_id, status, total::text, created_at
		FROM orders WHERE id=$1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperr.Store("order.get", err)
	}

	byOrder, err := r.items(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	o.Items = itemsOf(byOrder, id)
	return o, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit, offset = ClampPage(limit, offset)
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, status, total::text, created_at
		FROM orders WHERE user_id=$1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, apperr.Store("order.list", err)
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, apperr.Store("order.list", err)
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("order.list", err)
	}

	if len(out) == 0 {
		return out, nil
	}

	ids := make([]string, len(out))
	for i := range out {
		ids[i] = out[i].ID
	}
	byOrder, err := r.items(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = itemsOf(byOrder, out[i].ID)
	}
	return out, nil
}

// items loads the lines of every given order in one query, keyed by order id.
func (r *PGRepo) items(ctx context.Context, orderIDs []string) (map[string][]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, quantity, price::text
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, line_no
	`, orderIDs)
	if err != nil {
		return nil, apperr.Store("order.items", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			it    Item
			price string
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &price); err != nil {
			return nil, apperr.Store("order.items", err)
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return nil, apperr.Store("order.items", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("order.items", err)
	}
	return groupItems(items), nil
}

func groupItems(items []Item) map[string][]Item {
	out := make(map[string][]Item)
	for _, it := range items {
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out
}

func itemsOf(byOrder map[string][]Item, orderID string) []Item {
	if items := byOrder[orderID]; items != nil {
		return items
	}
	return []Item{}
}

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o     Order
		total string
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.Status, &total, &o.CreatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(total)
	if err != nil {
		return nil, err
	}
	o.Total = d
	return &o, nil
}
