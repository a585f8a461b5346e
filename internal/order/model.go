package order

import (
	"time"

	"github.com/shopspring/decimal"
)

const StatusPlaced = "placed"

type Order struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total" swaggertype:"string"`
	Items     []Item          `json:"items"`
	CreatedAt time.Time       `json:"created_at"`
}

// Item is one order line. Price is the unit price captured at checkout and is
// never re-derived from the catalog.
type Item struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price" swaggertype:"string"`
}

func (it Item) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// SumItems is the order total implied by its lines.
func SumItems(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ClampPage fixes out-of-range paging input: a bad limit becomes the default,
// a negative offset becomes zero.
func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > MaxPageSize {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ListResponse wraps a user's order history.
// swagger:model OrderListResponse
type ListResponse struct {
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Items  []Order `json:"items"`
}
