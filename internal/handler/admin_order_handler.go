package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_shop/internal/admin"
	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/utils"
)

// AdminOrderHandler handles order review endpoints.
type AdminOrderHandler struct {
	orders *admin.OrderManager
}

// NewAdminOrderHandler constructs an AdminOrderHandler.
func NewAdminOrderHandler(orders *admin.OrderManager) *AdminOrderHandler {
	return &AdminOrderHandler{orders: orders}
}

// ListOrders handles GET /v1/admin/orders?page=&limit=
func (h *AdminOrderHandler) ListOrders(c *gin.Context) {
	var page, limit int
	if v := c.Query("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			page = p
		}
	}
	if v := c.Query("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			limit = l
		}
	}

	table, err := h.orders.Table(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve orders")
		return
	}

	p := utils.NewPagination(page, limit, len(table.Rows))
	start, end := p.Bounds()
	table.Rows = table.Rows[start:end]
	utils.SuccessWithPagination(c, 200, "Orders retrieved", table, p)
}

// UpdateStatus handles PATCH /v1/admin/orders/:id/status
func (h *AdminOrderHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, utils.CodeValidation, "status is required")
		return
	}
	if err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		respondError(c, err, "Error updating status")
		return
	}
	utils.Success(c, 200, "Order status updated!", gin.H{"id": c.Param("id"), "status": req.Status})
}
