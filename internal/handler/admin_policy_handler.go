package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_shop/internal/admin"
	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/utils"
)

// AdminPolicyHandler handles the policy editor endpoints.
type AdminPolicyHandler struct {
	editor *admin.PolicyEditor
}

// NewAdminPolicyHandler constructs an AdminPolicyHandler.
func NewAdminPolicyHandler(editor *admin.PolicyEditor) *AdminPolicyHandler {
	return &AdminPolicyHandler{editor: editor}
}

// GetPolicies handles GET /v1/admin/policies
func (h *AdminPolicyHandler) GetPolicies(c *gin.Context) {
	set, err := h.editor.Load(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load policies")
		return
	}
	utils.Success(c, 200, "Policies retrieved", set)
}

// SavePolicies handles PUT /v1/admin/policies
func (h *AdminPolicyHandler) SavePolicies(c *gin.Context) {
	var set models.PolicySet
	if err := c.ShouldBindJSON(&set); err != nil {
		utils.Error(c, 400, utils.CodeValidation, "Invalid request body")
		return
	}
	if err := h.editor.Save(c.Request.Context(), &set); err != nil {
		respondError(c, err, "Error saving policies")
		return
	}
	utils.Success(c, 200, "Policies saved successfully!", set)
}
