package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/store"
)

// OrderRepository reads and writes orders in the realtime store.
type OrderRepository struct {
	store store.Store
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(s store.Store) *OrderRepository {
	return &OrderRepository{store: s}
}

// NewID allocates an order id without writing anything.
func (r *OrderRepository) NewID(ctx context.Context) (string, error) {
	return r.store.Push(ctx, OrdersPath)
}

// Put writes o at id, replacing any order already stored there.
func (r *OrderRepository) Put(ctx context.Context, id string, o *models.Order) error {
	rec := *o
	rec.ID = ""
	return r.store.Set(ctx, OrderPath(id), rec)
}

// Create stores o under a newly allocated id and returns the id.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) (string, error) {
	id, err := r.NewID(ctx)
	if err != nil {
		return "", err
	}
	if err := r.Put(ctx, id, o); err != nil {
		return "", err
	}
	o.ID = id
	return id, nil
}

// Get returns one order or ErrNotFound.
func (r *OrderRepository) Get(ctx context.Context, id string) (*models.Order, error) {
	snap, err := r.store.Read(ctx, OrderPath(id))
	if err != nil {
		return nil, err
	}
	if !snap.Exists {
		return nil, ErrNotFound
	}
	var o models.Order
	if err := snap.Decode(&o); err != nil {
		return nil, fmt.Errorf("decode order %s: %w", id, err)
	}
	o.ID = id
	return &o, nil
}

// UpdateStatus writes only the status field of the order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	return r.store.Update(ctx, OrderPath(id), map[string]any{"status": status})
}

// List returns the full order collection keyed by id.
func (r *OrderRepository) List(ctx context.Context) (map[string]models.Order, error) {
	snap, err := r.store.Read(ctx, OrdersPath)
	if err != nil {
		return nil, err
	}
	return decodeOrders(snap)
}

// Subscribe delivers the full collection on every change.
func (r *OrderRepository) Subscribe(ctx context.Context, fn func(map[string]models.Order)) (*store.Subscription, error) {
	return r.store.Subscribe(ctx, OrdersPath, func(snap store.Snapshot) {
		orders, err := decodeOrders(snap)
		if err != nil {
			log.Error().Err(err).Msg("Failed to decode orders snapshot")
			return
		}
		fn(orders)
	})
}

func decodeOrders(snap store.Snapshot) (map[string]models.Order, error) {
	children, err := snap.Children()
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.Order, len(children))
	for id, raw := range children {
		var o models.Order
		if err := json.Unmarshal(raw, &o); err != nil {
			log.Warn().Err(err).Str("order_id", id).Msg("Skipping malformed order record")
			continue
		}
		o.ID = id
		out[id] = o
	}
	return out, nil
}
