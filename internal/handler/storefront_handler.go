package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_shop/internal/admin"
	"github.com/GTDGit/gtd_shop/internal/catalog"
	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/utils"
)

// PolicyReader loads the policy texts.
type PolicyReader interface {
	Get(ctx context.Context) (*models.PolicySet, error)
}

// StorefrontHandler serves the public catalog and policy pages.
type StorefrontHandler struct {
	catalog  *catalog.Catalog
	policies PolicyReader
}

// NewStorefrontHandler constructs a StorefrontHandler.
func NewStorefrontHandler(c *catalog.Catalog, policies PolicyReader) *StorefrontHandler {
	return &StorefrontHandler{catalog: c, policies: policies}
}

// ListProducts handles GET /v1/store/products?category=&q=
func (h *StorefrontHandler) ListProducts(c *gin.Context) {
	var q catalog.Query
	_ = c.ShouldBindQuery(&q)

	frame, err := h.catalog.Browse(c.Request.Context(), q)
	if err != nil {
		respondError(c, err, "Failed to load products")
		return
	}
	utils.Success(c, 200, "Products retrieved", frame)
}

// GetProduct handles GET /v1/store/products/:id
func (h *StorefrontHandler) GetProduct(c *gin.Context) {
	detail, err := h.catalog.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load product")
		return
	}
	utils.Success(c, 200, "Product retrieved", detail)
}

// ListCategories handles GET /v1/store/categories
func (h *StorefrontHandler) ListCategories(c *gin.Context) {
	frame, err := h.catalog.Browse(c.Request.Context(), catalog.Query{Category: c.Query("category")})
	if err != nil {
		respondError(c, err, "Failed to load categories")
		return
	}
	utils.Success(c, 200, "Categories retrieved", frame.Categories)
}

// GetPolicy handles GET /v1/store/policies/:kind
func (h *StorefrontHandler) GetPolicy(c *gin.Context) {
	set, err := h.policies.Get(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load policy")
		return
	}
	utils.Success(c, 200, "Policy retrieved", admin.RenderPolicyPage(set, models.PolicyKind(c.Param("kind"))))
}
