package repository

import "github.com/GTDGit/gtd_shop/internal/store"

// Store paths used by the storefront and admin console.
const (
	ProductsPath = "products"
	OrdersPath   = "orders"
	PoliciesPath = "policies"
)

// ProductPath returns the path of one product record.
func ProductPath(id string) string { return store.Join(ProductsPath, id) }

// OrderPath returns the path of one order record.
func OrderPath(id string) string { return store.Join(OrdersPath, id) }
