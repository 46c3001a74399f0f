package admin

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/repository"
	"github.com/GTDGit/gtd_shop/internal/store"
)

// OrderStore is the order access the order manager needs.
type OrderStore interface {
	Get(ctx context.Context, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error
	List(ctx context.Context) (map[string]models.Order, error)
	Subscribe(ctx context.Context, fn func(map[string]models.Order)) (*store.Subscription, error)
}

// ProductLister supplies product prices for order totals.
type ProductLister interface {
	List(ctx context.Context) (map[string]models.Product, error)
	Subscribe(ctx context.Context, fn func(map[string]models.Product)) (*store.Subscription, error)
}

// OrderManager reviews orders and applies operator status changes.
type OrderManager struct {
	orders   OrderStore
	products ProductLister
	loc      *time.Location
}

// NewOrderManager creates an OrderManager. Dates render in loc.
func NewOrderManager(orders OrderStore, products ProductLister, loc *time.Location) *OrderManager {
	return &OrderManager{orders: orders, products: products, loc: loc}
}

// Table renders the orders table from a single read.
func (m *OrderManager) Table(ctx context.Context) (OrdersTable, error) {
	orders, err := m.orders.List(ctx)
	if err != nil {
		return OrdersTable{}, err
	}
	products, err := m.products.List(ctx)
	if err != nil {
		return OrdersTable{}, err
	}
	return RenderOrdersTable(orders, products, m.loc), nil
}

// UpdateStatus persists a new status as a partial update; every other
// order field is left as stored.
func (m *OrderManager) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	if !status.Valid() {
		return &ValidationError{Message: fmt.Sprintf("Unknown order status %q", status)}
	}
	if _, err := m.orders.Get(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	if err := m.orders.UpdateStatus(ctx, id, status); err != nil {
		log.Error().Err(err).Str("order_id", id).Str("status", string(status)).Msg("Failed to update order status")
		return fmt.Errorf("update order status: %w", err)
	}
	log.Info().Str("order_id", id).Str("status", string(status)).Msg("Order status updated")
	return nil
}

// Watch pushes the rendered orders table whenever orders or products change.
// Both subscriptions stop when ctx is done or the returned stop is called.
func (m *OrderManager) Watch(ctx context.Context, fn func(OrdersTable)) (stop func(), err error) {
	var (
		mu       sync.Mutex
		orders   map[string]models.Order
		products map[string]models.Product
		haveO    bool
		haveP    bool
	)
	emit := func() {
		if haveO && haveP {
			fn(RenderOrdersTable(orders, products, m.loc))
		}
	}

	oSub, err := m.orders.Subscribe(ctx, func(o map[string]models.Order) {
		mu.Lock()
		defer mu.Unlock()
		orders, haveO = o, true
		emit()
	})
	if err != nil {
		return nil, err
	}
	pSub, err := m.products.Subscribe(ctx, func(p map[string]models.Product) {
		mu.Lock()
		defer mu.Unlock()
		products, haveP = p, true
		emit()
	})
	if err != nil {
		oSub.Cancel()
		return nil, err
	}
	return func() {
		oSub.Cancel()
		pSub.Cancel()
	}, nil
}
