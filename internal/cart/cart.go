// Package cart keeps each user's pending purchase intent.
//
// All mutations for one user are serialized; different users never contend.
// Drain gives checkout a read-then-clear section under the same per-user lock,
// so no add or remove can interleave between reading the cart and clearing it.
package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/MikeMC777/shop-service/internal/apperr"
)

type Entry struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type Registry interface {
	// Get returns the user's entries, or an empty slice.
	Get(ctx context.Context, userID string) ([]Entry, error)
	// Add increments the entry for productID, creating it if needed.
	Add(ctx context.Context, userID, productID string, quantity int) ([]Entry, error)
	// Remove deletes the whole entry for productID if present.
	Remove(ctx context.Context, userID, productID string) ([]Entry, error)
	Clear(ctx context.Context, userID string) error
	// Drain calls fn with a snapshot of the cart while holding the user's lock
	// and clears the cart only when fn returns nil.
	Drain(ctx context.Context, userID string, fn func(entries []Entry) error) error
}

// AddRequest payload for POST /cart.
// swagger:model AddRequest
type AddRequest struct {
	ProductID string `json:"product_id" binding:"required" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity  int    `json:"quantity"   binding:"required,gt=0,lte=10000" example:"2"` // lte mirrors MaxQuantity
}

// View is the JSON shape of a cart.
// swagger:model CartView
type View struct {
	Items []Entry `json:"items"`
}

// MaxQuantity caps a single cart entry, so line totals stay inside the
// order_items.quantity column.
const MaxQuantity = 10_000

var errQuantityTooLarge = apperr.Invalid(fmt.Sprintf("quantity cannot exceed %d per product", MaxQuantity))

func validateAdd(productID string, quantity int) error {
	if strings.TrimSpace(productID) == "" {
		return apperr.Invalid("product_id is required")
	}
	if quantity <= 0 {
		return apperr.Invalid("quantity must be positive")
	}
	if quantity > MaxQuantity {
		return errQuantityTooLarge
	}
	return nil
}

// addEntry and removeEntry are the pure list edits shared by every backend.
// addEntry leaves entries untouched when the merged quantity would pass MaxQuantity.
func addEntry(entries []Entry, productID string, quantity int) ([]Entry, error) {
	for i := range entries {
		if entries[i].ProductID == productID {
			if quantity > MaxQuantity-entries[i].Quantity {
				return entries, errQuantityTooLarge
			}
			entries[i].Quantity += quantity
			return entries, nil
		}
	}
	return append(entries, Entry{ProductID: productID, Quantity: quantity}), nil
}

func removeEntry(entries []Entry, productID string) []Entry {
	for i := range entries {
		if entries[i].ProductID == productID {
			return append(entries[:i], entries[i+1:]...)
		}
	}
	return entries
}

func snapshot(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
