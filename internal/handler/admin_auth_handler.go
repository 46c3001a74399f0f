package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_shop/internal/auth"
	"github.com/GTDGit/gtd_shop/internal/middleware"
	"github.com/GTDGit/gtd_shop/internal/session"
	"github.com/GTDGit/gtd_shop/internal/utils"
)

// LoginLimiter tracks failed sign-ins per client.
type LoginLimiter interface {
	Fail(ip string)
	Reset(ip string)
}

// AuthHandler signs admin operators in and out.
type AuthHandler struct {
	provider auth.Provider
	limiter  LoginLimiter
}

func NewAuthHandler(provider auth.Provider, limiter LoginLimiter) *AuthHandler {
	return &AuthHandler{provider: provider, limiter: limiter}
}

// Login handles POST /v1/admin/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, utils.CodeValidation, "Invalid request body")
		return
	}
	if err := session.CheckCredentials(req.Email, req.Password); err != nil {
		utils.Error(c, 400, utils.CodeValidation, "Please enter email and password")
		return
	}

	sess, err := h.provider.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.limiter.Fail(c.ClientIP())
		}
		respondError(c, err, "Login failed")
		return
	}
	h.limiter.Reset(c.ClientIP())

	utils.Success(c, 200, "Login successful", sess)
}

// Logout handles POST /v1/admin/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.provider.SignOut(c.Request.Context(), c.GetString(middleware.ContextToken)); err != nil {
		respondError(c, err, "Logout failed")
		return
	}
	utils.Success(c, 200, "Logged out", nil)
}

// Me handles GET /v1/admin/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	utils.Success(c, 200, "Session active", auth.Identity{
		UserID: c.GetInt(middleware.ContextAdminID),
		Email:  c.GetString(middleware.ContextAdminEmail),
	})
}

