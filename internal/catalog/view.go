package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/repository"
	"github.com/GTDGit/gtd_shop/internal/store"
)

// ErrProductNotFound is returned when a product id has no record.
var ErrProductNotFound = errors.New("product not found")

// ProductSource is the product access the catalog needs.
type ProductSource interface {
	List(ctx context.Context) (map[string]models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	Subscribe(ctx context.Context, fn func(map[string]models.Product)) (*store.Subscription, error)
}

// Frame is one full render of the catalog region.
type Frame struct {
	Query      Query          `json:"query"`
	Grid       GridView       `json:"grid"`
	Categories []CategoryPill `json:"categories"`
}

// Build renders a frame for q from the full product collection.
func Build(products map[string]models.Product, q Query) Frame {
	q = q.Normalize()
	return Frame{
		Query:      q,
		Grid:       RenderGrid(Filter(products, q)),
		Categories: RenderCategories(products, q.Category),
	}
}

// Catalog serves one-shot catalog reads.
type Catalog struct {
	products ProductSource
}

// New creates a Catalog.
func New(products ProductSource) *Catalog {
	return &Catalog{products: products}
}

// Browse renders the grid for q from a single read.
func (c *Catalog) Browse(ctx context.Context, q Query) (Frame, error) {
	products, err := c.products.List(ctx)
	if err != nil {
		return Frame{}, err
	}
	return Build(products, q), nil
}

// Detail renders the detail page of one product.
func (c *Catalog) Detail(ctx context.Context, id string) (*DetailView, error) {
	p, err := c.products.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	d := RenderDetail(p)
	return &d, nil
}

// View is a live catalog bound to the current query. Each query owns one
// subscription; changing the query cancels the old one, and anything it
// still delivers is discarded.
type View struct {
	ctx      context.Context
	products ProductSource
	sink     func(Frame)

	mu    sync.Mutex
	gen   uint64
	query Query
	sub   *store.Subscription
}

// NewView creates a view that pushes frames to sink until ctx is done.
func (c *Catalog) NewView(ctx context.Context, sink func(Frame)) *View {
	return &View{ctx: ctx, products: c.products, sink: sink}
}

// SetQuery replaces the active subscription with one for q.
func (v *View) SetQuery(q Query) error {
	q = q.Normalize()

	v.mu.Lock()
	v.gen++
	gen := v.gen
	v.query = q
	old := v.sub
	v.sub = nil
	v.mu.Unlock()

	if old != nil {
		old.Stop()
	}

	sub, err := v.products.Subscribe(v.ctx, func(products map[string]models.Product) {
		v.mu.Lock()
		defer v.mu.Unlock()
		if gen != v.gen {
			return
		}
		v.sink(Build(products, q))
	})
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		// A newer query won while subscribing.
		sub.Stop()
		return nil
	}
	v.sub = sub
	return nil
}

// Query returns the active query.
func (v *View) Query() Query {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query
}

// Close cancels the active subscription.
func (v *View) Close() {
	v.mu.Lock()
	v.gen++
	sub := v.sub
	v.sub = nil
	v.mu.Unlock()
	if sub != nil {
		sub.Cancel()
	}
}
