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

// ProductStore is the product access the catalog manager needs.
type ProductStore interface {
	Get(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) (string, error)
	Put(ctx context.Context, id string, p *models.Product) error
	Delete(ctx context.Context, id string) error
	Subscribe(ctx context.Context, fn func(map[string]models.Product)) (*store.Subscription, error)
}

// Confirmer asks the operator to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Confirmed is a Confirmer with a fixed answer, for callers that collected
// the confirmation up front.
type Confirmed bool

func (c Confirmed) Confirm(context.Context, string) bool { return bool(c) }

// DeletePrompt is the confirmation question shown before deleting a product.
const DeletePrompt = "Are you sure you want to delete this product?"

// CatalogManager is the product editor of the admin console. An editing id
// selects between creating a product and overwriting an existing one.
type CatalogManager struct {
	products ProductStore
	now      func() time.Time

	mu        sync.Mutex
	open      bool
	editingID string
	form      ProductForm
}

// NewCatalogManager creates a CatalogManager.
func NewCatalogManager(products ProductStore) *CatalogManager {
	return &CatalogManager{products: products, now: time.Now}
}

// EditorState describes the product modal.
type EditorState struct {
	Open      bool        `json:"open"`
	Title     string      `json:"title"`
	EditingID string      `json:"editingId,omitempty"`
	Form      ProductForm `json:"form"`
}

// Editor returns the current modal state.
func (m *CatalogManager) Editor() EditorState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.editorLocked()
}

func (m *CatalogManager) editorLocked() EditorState {
	title := "Add Product"
	if m.editingID != "" {
		title = "Edit Product"
	}
	return EditorState{Open: m.open, Title: title, EditingID: m.editingID, Form: m.form}
}

// OpenNew opens an empty form for a new product.
func (m *CatalogManager) OpenNew() EditorState {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = true
	m.editingID = ""
	m.form = ProductForm{}
	return m.editorLocked()
}

// OpenEdit loads product id into the form. A missing product leaves the
// editor unchanged.
func (m *CatalogManager) OpenEdit(ctx context.Context, id string) (EditorState, error) {
	p, err := m.products.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return m.Editor(), ErrProductNotFound
		}
		return m.Editor(), err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = true
	m.editingID = id
	m.form = FormFromProduct(p)
	return m.editorLocked(), nil
}

// Save validates form and writes it: a new record when no product is being
// edited, a full overwrite otherwise. The editor closes only on success.
func (m *CatalogManager) Save(ctx context.Context, form ProductForm) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.form = form
	p, err := form.toProduct()
	if err != nil {
		return "", err
	}
	p.Timestamp = m.now().UnixMilli()

	id := m.editingID
	if id == "" {
		if id, err = m.products.Create(ctx, p); err != nil {
			log.Error().Err(err).Msg("Failed to create product")
			return "", fmt.Errorf("create product: %w", err)
		}
		log.Info().Str("product_id", id).Str("title", p.Title).Msg("Product created")
	} else {
		if err := m.products.Put(ctx, id, p); err != nil {
			log.Error().Err(err).Str("product_id", id).Msg("Failed to update product")
			return "", fmt.Errorf("update product: %w", err)
		}
		log.Info().Str("product_id", id).Str("title", p.Title).Msg("Product updated")
	}

	m.closeLocked()
	return id, nil
}

// Close discards the form.
func (m *CatalogManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

func (m *CatalogManager) closeLocked() {
	m.open = false
	m.editingID = ""
	m.form = ProductForm{}
}

// Delete removes product id once the operator confirms.
func (m *CatalogManager) Delete(ctx context.Context, id string, confirm Confirmer) error {
	if !confirm.Confirm(ctx, DeletePrompt) {
		return ErrDeleteDeclined
	}
	if err := m.products.Delete(ctx, id); err != nil {
		log.Error().Err(err).Str("product_id", id).Msg("Failed to delete product")
		return fmt.Errorf("delete product: %w", err)
	}
	log.Info().Str("product_id", id).Msg("Product deleted")
	return nil
}

// Watch pushes the rendered products table on every catalog change.
func (m *CatalogManager) Watch(ctx context.Context, fn func(ProductsTable)) (*store.Subscription, error) {
	return m.products.Subscribe(ctx, func(products map[string]models.Product) {
		fn(RenderProductsTable(products))
	})
}
