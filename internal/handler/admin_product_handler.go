package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_shop/internal/admin"
	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/utils"
)

// ProductCatalog is the product access the admin handlers need.
type ProductCatalog interface {
	admin.ProductStore
	List(ctx context.Context) (map[string]models.Product, error)
}

// AdminProductHandler handles product management endpoints. Each request
// drives its own editor, so concurrent operators never share form state.
type AdminProductHandler struct {
	products ProductCatalog
}

// NewAdminProductHandler constructs an AdminProductHandler.
func NewAdminProductHandler(products ProductCatalog) *AdminProductHandler {
	return &AdminProductHandler{products: products}
}

// ListProducts handles GET /v1/admin/products
func (h *AdminProductHandler) ListProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve products")
		return
	}
	utils.Success(c, 200, "Products retrieved", admin.RenderProductsTable(products))
}

// GetForm handles GET /v1/admin/products/:id/form
func (h *AdminProductHandler) GetForm(c *gin.Context) {
	m := admin.NewCatalogManager(h.products)
	ed, err := m.OpenEdit(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load product")
		return
	}
	utils.Success(c, 200, "Product form loaded", ed)
}

// CreateProduct handles POST /v1/admin/products
func (h *AdminProductHandler) CreateProduct(c *gin.Context) {
	var form admin.ProductForm
	if err := c.ShouldBindJSON(&form); err != nil {
		utils.Error(c, 400, utils.CodeValidation, "Invalid request body")
		return
	}

	m := admin.NewCatalogManager(h.products)
	m.OpenNew()
	id, err := m.Save(c.Request.Context(), form)
	if err != nil {
		respondError(c, err, "Error saving product")
		return
	}
	utils.Success(c, 201, "Product saved successfully!", gin.H{"id": id})
}

// UpdateProduct handles PUT /v1/admin/products/:id
func (h *AdminProductHandler) UpdateProduct(c *gin.Context) {
	var form admin.ProductForm
	if err := c.ShouldBindJSON(&form); err != nil {
		utils.Error(c, 400, utils.CodeValidation, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	m := admin.NewCatalogManager(h.products)
	if _, err := m.OpenEdit(ctx, c.Param("id")); err != nil {
		respondError(c, err, "Error saving product")
		return
	}
	id, err := m.Save(ctx, form)
	if err != nil {
		respondError(c, err, "Error saving product")
		return
	}
	utils.Success(c, 200, "Product saved successfully!", gin.H{"id": id})
}

// DeleteProduct handles DELETE /v1/admin/products/:id?confirm=true
func (h *AdminProductHandler) DeleteProduct(c *gin.Context) {
	m := admin.NewCatalogManager(h.products)
	confirmed := admin.Confirmed(c.Query("confirm") == "true")
	if err := m.Delete(c.Request.Context(), c.Param("id"), confirmed); err != nil {
		respondError(c, err, "Error deleting product")
		return
	}
	utils.Success(c, 200, "Product deleted successfully!", nil)
}
