package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/store"
)

// ErrNotFound is returned when a record does not exist at its path.
var ErrNotFound = errors.New("record not found")

// ProductRepository reads and writes products in the realtime store.
type ProductRepository struct {
	store store.Store
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(s store.Store) *ProductRepository {
	return &ProductRepository{store: s}
}

// List returns the full product collection keyed by id.
func (r *ProductRepository) List(ctx context.Context) (map[string]models.Product, error) {
	snap, err := r.store.Read(ctx, ProductsPath)
	if err != nil {
		return nil, err
	}
	return decodeProducts(snap)
}

// Get returns one product or ErrNotFound.
func (r *ProductRepository) Get(ctx context.Context, id string) (*models.Product, error) {
	snap, err := r.store.Read(ctx, ProductPath(id))
	if err != nil {
		return nil, err
	}
	if !snap.Exists {
		return nil, ErrNotFound
	}
	var p models.Product
	if err := snap.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode product %s: %w", id, err)
	}
	p.ID = id
	return &p, nil
}

// Create stores p under a newly allocated id and returns the id.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) (string, error) {
	id, err := r.store.Push(ctx, ProductsPath)
	if err != nil {
		return "", err
	}
	if err := r.Put(ctx, id, p); err != nil {
		return "", err
	}
	p.ID = id
	return id, nil
}

// Put overwrites the product at id.
func (r *ProductRepository) Put(ctx context.Context, id string, p *models.Product) error {
	rec := *p
	rec.ID = ""
	return r.store.Set(ctx, ProductPath(id), rec)
}

// Delete removes the product at id.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return r.store.Remove(ctx, ProductPath(id))
}

// Subscribe delivers the full collection on every change.
func (r *ProductRepository) Subscribe(ctx context.Context, fn func(map[string]models.Product)) (*store.Subscription, error) {
	return r.store.Subscribe(ctx, ProductsPath, func(snap store.Snapshot) {
		products, err := decodeProducts(snap)
		if err != nil {
			log.Error().Err(err).Msg("Failed to decode products snapshot")
			return
		}
		fn(products)
	})
}

func decodeProducts(snap store.Snapshot) (map[string]models.Product, error) {
	children, err := snap.Children()
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.Product, len(children))
	for id, raw := range children {
		var p models.Product
		if err := json.Unmarshal(raw, &p); err != nil {
			log.Warn().Err(err).Str("product_id", id).Msg("Skipping malformed product record")
			continue
		}
		p.ID = id
		out[id] = p
	}
	return out, nil
}

// SortedIDs returns the keys of m in ascending order. Push ids are
// time-ordered, so this is creation order.
func SortedIDs[T any](m map[string]T) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
