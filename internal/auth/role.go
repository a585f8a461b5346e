package auth

import (
	"fmt"

	"github.com/MikeMC777/shop-service/internal/apperr"
)

// Role is the closed set of roles a user may hold.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Capability names one thing a caller is allowed to do. Handlers check
// capabilities, never role names.
type Capability string

const (
	CapShop          Capability = "shop"           // own cart, checkout, own orders
	CapManageCatalog Capability = "manage_catalog" // create/update/delete products
	CapViewAllOrders Capability = "view_all_orders"
)

var grants = map[Role]map[Capability]bool{
	RoleCustomer: {
		CapShop: true,
	},
	RoleAdmin: {
		CapShop:          true,
		CapManageCatalog: true,
		CapViewAllOrders: true,
	},
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := grants[r]; !ok {
		return "", fmt.Errorf("%w: unknown role %q", apperr.ErrAuthentication, s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	_, ok := grants[r]
	return ok
}

// Can reports whether the role grants c. Unknown roles grant nothing.
func (r Role) Can(c Capability) bool {
	return grants[r][c]
}
