package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_shop/internal/admin"
	"github.com/GTDGit/gtd_shop/internal/auth"
	"github.com/GTDGit/gtd_shop/internal/catalog"
	"github.com/GTDGit/gtd_shop/internal/checkout"
	"github.com/GTDGit/gtd_shop/internal/utils"
)

// respondError maps domain errors to the response envelope. Anything
// unrecognised is logged and reported as fallback.
func respondError(c *gin.Context, err error, fallback string) {
	var (
		checkoutInvalid *checkout.ValidationError
		adminInvalid    *admin.ValidationError
	)
	switch {
	case errors.As(err, &checkoutInvalid):
		utils.Error(c, 400, utils.CodeValidation, checkoutInvalid.Message)
	case errors.As(err, &adminInvalid):
		utils.Error(c, 400, utils.CodeValidation, adminInvalid.Message)
	case errors.Is(err, checkout.ErrInvalidTransition):
		utils.Error(c, 409, utils.CodeInvalidTransition, err.Error())
	case errors.Is(err, admin.ErrDeleteDeclined):
		utils.Error(c, 409, utils.CodeConflict, admin.DeletePrompt)
	case errors.Is(err, checkout.ErrSessionNotFound):
		utils.Error(c, 404, utils.CodeNotFound, "Checkout not found or expired")
	case errors.Is(err, checkout.ErrProductNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, admin.ErrProductNotFound):
		utils.Error(c, 404, utils.CodeNotFound, "Product not found")
	case errors.Is(err, admin.ErrOrderNotFound):
		utils.Error(c, 404, utils.CodeNotFound, "Order not found")
	case errors.Is(err, auth.ErrInvalidCredentials):
		utils.Error(c, 401, utils.CodeInvalidCredential, "Invalid email or password")
	case errors.Is(err, auth.ErrAccountInactive):
		utils.Error(c, 403, utils.CodeAccountInactive, "Account is inactive")
	case errors.Is(err, auth.ErrInvalidToken):
		utils.Error(c, 401, utils.CodeInvalidToken, "Invalid or expired token")
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
		utils.Error(c, 500, utils.CodeInternal, fallback)
	}
}
