package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_shop/internal/auth"
	"github.com/GTDGit/gtd_shop/internal/utils"
)

// Context keys set for authenticated admin requests.
const (
	ContextAdminID    = "admin_id"
	ContextAdminEmail = "admin_email"
	ContextToken      = "admin_token"
)

// Authenticator resolves a session token to its operator.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Identity, error)
}

// JWTMiddleware admits requests carrying a live admin session token.
type JWTMiddleware struct {
	auth Authenticator
}

func NewJWTMiddleware(a Authenticator) *JWTMiddleware {
	return &JWTMiddleware{auth: a}
}

func (m *JWTMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(c, 401, utils.CodeUnauthorized, "Missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.Error(c, 401, utils.CodeUnauthorized, "Invalid authorization header")
			c.Abort()
			return
		}

		id, err := m.auth.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidToken) {
				log.Error().Err(err).Msg("Session check failed")
				utils.Error(c, 500, utils.CodeInternal, "Could not verify session")
				c.Abort()
				return
			}
			utils.Error(c, 401, utils.CodeInvalidToken, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextAdminID, id.UserID)
		c.Set(ContextAdminEmail, id.Email)
		c.Set(ContextToken, parts[1])
		c.Next()
	}
}
