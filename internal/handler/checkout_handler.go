package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_shop/internal/checkout"
	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/utils"
)

// CheckoutHandler drives checkout flows addressed by checkout id.
type CheckoutHandler struct {
	sessions *checkout.Sessions
}

// NewCheckoutHandler constructs a CheckoutHandler.
func NewCheckoutHandler(sessions *checkout.Sessions) *CheckoutHandler {
	return &CheckoutHandler{sessions: sessions}
}

// Start handles POST /v1/store/checkout
func (h *CheckoutHandler) Start(c *gin.Context) {
	v, err := h.sessions.Start(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to start checkout")
		return
	}
	utils.Success(c, 201, "Checkout started", v)
}

// Get handles GET /v1/store/checkout/:id
func (h *CheckoutHandler) Get(c *gin.Context) {
	v, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load checkout")
		return
	}
	utils.Success(c, 200, "Checkout retrieved", v)
}

// SelectProduct handles POST /v1/store/checkout/:id/product
func (h *CheckoutHandler) SelectProduct(c *gin.Context) {
	var req struct {
		ProductID string `json:"productId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, utils.CodeValidation, "productId is required")
		return
	}
	h.do(c, "Product selected", func(ctx context.Context, f *checkout.Flow) error {
		return f.SelectProduct(ctx, req.ProductID)
	})
}

// Increment handles POST /v1/store/checkout/:id/increment
func (h *CheckoutHandler) Increment(c *gin.Context) {
	h.do(c, "Quantity updated", func(_ context.Context, f *checkout.Flow) error {
		_, err := f.Increment()
		return err
	})
}

// Decrement handles POST /v1/store/checkout/:id/decrement
func (h *CheckoutHandler) Decrement(c *gin.Context) {
	h.do(c, "Quantity updated", func(_ context.Context, f *checkout.Flow) error {
		_, err := f.Decrement()
		return err
	})
}

// ChooseSize handles POST /v1/store/checkout/:id/size
func (h *CheckoutHandler) ChooseSize(c *gin.Context) {
	var req struct {
		Size string `json:"size"`
	}
	_ = c.ShouldBindJSON(&req)
	h.do(c, "Size selected", func(_ context.Context, f *checkout.Flow) error {
		return f.ToAddress(req.Size)
	})
}

// SubmitAddress handles POST /v1/store/checkout/:id/address
func (h *CheckoutHandler) SubmitAddress(c *gin.Context) {
	var addr checkout.ShippingAddress
	if err := c.ShouldBindJSON(&addr); err != nil {
		utils.Error(c, 400, utils.CodeValidation, "Invalid request body")
		return
	}
	h.do(c, "Address saved", func(ctx context.Context, f *checkout.Flow) error {
		_, err := f.ToSummary(ctx, addr)
		return err
	})
}

// Confirm handles POST /v1/store/checkout/:id/confirm
func (h *CheckoutHandler) Confirm(c *gin.Context) {
	var req struct {
		Payment models.PaymentMethod `json:"payment"`
	}
	_ = c.ShouldBindJSON(&req)
	h.do(c, "Order placed successfully", func(ctx context.Context, f *checkout.Flow) error {
		_, err := f.Confirm(ctx, req.Payment)
		return err
	})
}

// Back handles POST /v1/store/checkout/:id/back
func (h *CheckoutHandler) Back(c *gin.Context) {
	h.do(c, "Returned to previous step", func(_ context.Context, f *checkout.Flow) error {
		return f.Back()
	})
}

// Reset handles POST /v1/store/checkout/:id/reset
func (h *CheckoutHandler) Reset(c *gin.Context) {
	h.do(c, "Checkout reset", func(_ context.Context, f *checkout.Flow) error {
		f.Reset()
		return nil
	})
}

func (h *CheckoutHandler) do(c *gin.Context, message string, fn func(context.Context, *checkout.Flow) error) {
	ctx := c.Request.Context()
	v, err := h.sessions.Do(ctx, c.Param("id"), func(f *checkout.Flow) error {
		return fn(ctx, f)
	})
	if err != nil {
		respondError(c, err, "Checkout step failed")
		return
	}
	utils.Success(c, 200, message, v)
}
