package product

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/shop-service/internal/apperr"
)

type Product struct {
	ID        string          `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Category  string          `json:"category"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Query filters the catalog. Empty fields put no constraint on the result.
type Query struct {
	Search   string // case-insensitive substring of name
	Category string // exact match
}

// Patch is a partial update; nil fields keep the stored value.
type Patch struct {
	SKU      *string
	Name     *string
	Price    *decimal.Decimal
	Category *string
}

func (p Patch) Empty() bool {
	return p.SKU == nil && p.Name == nil && p.Price == nil && p.Category == nil
}

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: not found
	Error string `json:"error"`
}

// ListResponse represents the filtered product list.
// swagger:model
type ListResponse struct {
	Search   string    `json:"search,omitempty"`
	Category string    `json:"category,omitempty"`
	Items    []Product `json:"items"`
}

// CreateProductRequest payload of creation.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	SKU      string          `json:"sku"      binding:"required" example:"KB-60-RGB"`
	Name     string          `json:"name"     binding:"required" example:"Mechanical Keyboard"`
	Price    decimal.Decimal `json:"price"    example:"199.90" swaggertype:"string"`
	Category string          `json:"category" binding:"required" example:"peripherals"`
}

func (r CreateProductRequest) Validate() error {
	if strings.TrimSpace(r.SKU) == "" || strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Category) == "" {
		return apperr.Invalid("sku, name and category are required")
	}
	return validatePrice(r.Price)
}

// UpdateProductRequest payload of partial update. Omitted fields are left unchanged.
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	SKU      *string          `json:"sku,omitempty"      binding:"omitempty,min=1"`
	Name     *string          `json:"name,omitempty"     binding:"omitempty,min=1"`
	Price    *decimal.Decimal `json:"price,omitempty"    swaggertype:"string"`
	Category *string          `json:"category,omitempty" binding:"omitempty,min=1"`
}

func (r UpdateProductRequest) Patch() (Patch, error) {
	p := Patch{SKU: r.SKU, Name: r.Name, Price: r.Price, Category: r.Category}
	if p.Empty() {
		return p, apperr.Invalid("no fields to update")
	}
	for _, s := range []*string{r.SKU, r.Name, r.Category} {
		if s != nil && strings.TrimSpace(*s) == "" {
			return p, apperr.Invalid("sku, name and category cannot be blank")
		}
	}
	if r.Price != nil {
		if err := validatePrice(*r.Price); err != nil {
			return p, err
		}
	}
	return p, nil
}

func validatePrice(d decimal.Decimal) error {
	if d.IsNegative() {
		return apperr.Invalid("price must be non-negative")
	}
	if !d.Equal(d.Round(2)) {
		return apperr.Invalid("price must have at most 2 decimal places")
	}
	return nil
}
