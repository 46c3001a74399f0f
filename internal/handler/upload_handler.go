package handler

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_shop/internal/service"
	"github.com/GTDGit/gtd_shop/internal/utils"
)

// maxUploadSize caps product image uploads.
const maxUploadSize = 10 << 20

// ImageUploader stores an uploaded product image.
type ImageUploader interface {
	Upload(ctx context.Context, file io.Reader, filename string) (*service.UploadedImage, error)
}

// UploadHandler accepts product images from the admin console.
type UploadHandler struct {
	images ImageUploader
}

// NewUploadHandler constructs an UploadHandler.
func NewUploadHandler(images ImageUploader) *UploadHandler {
	return &UploadHandler{images: images}
}

// UploadImage handles POST /v1/admin/uploads (multipart field "image").
func (h *UploadHandler) UploadImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		utils.Error(c, 400, utils.CodeValidation, "image file is required")
		return
	}
	if header.Size > maxUploadSize {
		utils.Error(c, 400, utils.CodeValidation, "image must be 10MB or smaller")
		return
	}

	file, err := header.Open()
	if err != nil {
		utils.Error(c, 400, utils.CodeValidation, "could not read image")
		return
	}
	defer file.Close()

	img, err := h.images.Upload(c.Request.Context(), file, header.Filename)
	if err != nil {
		if errors.Is(err, service.ErrUploadsDisabled) {
			utils.Error(c, 503, utils.CodeUploadFailed, "Image uploads are not configured")
			return
		}
		log.Error().Err(err).Str("filename", header.Filename).Msg("Image upload failed")
		utils.Error(c, 502, utils.CodeUploadFailed, "Image upload failed")
		return
	}
	utils.Success(c, 201, "Image uploaded", img)
}
