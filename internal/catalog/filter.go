// Package catalog implements the storefront catalog: client-side filtering
// of the product collection, pure render functions for the grid, category
// pills and product detail, and a live view bound to one subscription per
// active query.
package catalog

import (
	"strings"

	"github.com/GTDGit/gtd_shop/internal/models"
)

// AllCategories is the category pill value that disables category filtering.
const AllCategories = "all"

// Query selects a subset of the catalog.
type Query struct {
	Category string `json:"category" form:"category"`
	Search   string `json:"q" form:"q"`
}

// Normalize lowercases and trims the search text and maps "" to AllCategories.
func (q Query) Normalize() Query {
	q.Search = strings.ToLower(strings.TrimSpace(q.Search))
	q.Category = strings.TrimSpace(q.Category)
	if q.Category == "" {
		q.Category = AllCategories
	}
	return q
}

// Filter returns the products matching q. The input map is not modified.
func Filter(products map[string]models.Product, q Query) map[string]models.Product {
	q = q.Normalize()
	out := make(map[string]models.Product, len(products))
	for id, p := range products {
		if q.Category != AllCategories && p.Category != q.Category {
			continue
		}
		if q.Search != "" && !Matches(p, q.Search) {
			continue
		}
		out[id] = p
	}
	return out
}

// Matches reports whether the lowercase needle occurs in the product's
// title, short description or category, ignoring case.
func Matches(p models.Product, needle string) bool {
	return strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Desc), needle) ||
		strings.Contains(strings.ToLower(p.Category), needle)
}
