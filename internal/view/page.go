// Package view holds the presentation-surface primitives shared by the
// storefront and admin components: page groups with exactly one visible
// page, and user-facing notices.
package view

import (
	"fmt"
	"sync"
)

// Storefront pages.
const (
	PageProducts      = "productsPage"
	PageProductDetail = "productDetailPage"
	PageOrder         = "orderPage"
	PageUser          = "userPage"
	PagePayment       = "paymentPage"
	PageSuccess       = "successPage"
	PagePolicy        = "policyPage"
)

// Admin console pages.
const (
	PageLogin     = "loginPage"
	PageDashboard = "dashboardPage"
)

// PageGroup is a set of sibling pages of which exactly one is active.
type PageGroup struct {
	mu     sync.RWMutex
	pages  map[string]struct{}
	active string
}

// NewPageGroup creates a group whose first page starts active.
func NewPageGroup(pages ...string) *PageGroup {
	g := &PageGroup{pages: make(map[string]struct{}, len(pages))}
	for _, p := range pages {
		g.pages[p] = struct{}{}
	}
	if len(pages) > 0 {
		g.active = pages[0]
	}
	return g
}

// NewStorefrontPages returns the storefront page group, starting on the product grid.
func NewStorefrontPages() *PageGroup {
	return NewPageGroup(PageProducts, PageProductDetail, PageOrder, PageUser, PagePayment, PageSuccess, PagePolicy)
}

// NewAdminPages returns the admin page group, starting on the login form.
func NewAdminPages() *PageGroup {
	return NewPageGroup(PageLogin, PageDashboard)
}

// Show hides every sibling and activates name.
func (g *PageGroup) Show(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.pages[name]; !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	g.active = name
	return nil
}

// Active returns the visible page.
func (g *PageGroup) Active() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.active
}
