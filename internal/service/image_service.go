package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_shop/internal/config"
)

// ErrUploadsDisabled is returned when no upload target is configured.
var ErrUploadsDisabled = errors.New("image uploads are not configured")

// UploadedImage is a stored product image.
type UploadedImage struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// ImageService stores product images on Cloudinary. The returned URL is
// what the admin pastes into a product's image list.
type ImageService struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewImageService creates an ImageService. An empty CLOUDINARY_URL yields a
// service whose uploads fail with ErrUploadsDisabled.
func NewImageService(cfg *config.CloudinaryConfig) (*ImageService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cloudinary config is nil")
	}
	s := &ImageService{folder: cfg.Folder}
	if cfg.URL == "" {
		return s, nil
	}
	cld, err := cloudinary.NewFromURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	s.cld = cld
	return s, nil
}

// Enabled reports whether uploads are configured.
func (s *ImageService) Enabled() bool { return s.cld != nil }

// Upload stores file under the configured folder.
func (s *ImageService) Upload(ctx context.Context, file io.Reader, filename string) (*UploadedImage, error) {
	if s.cld == nil {
		return nil, ErrUploadsDisabled
	}

	res, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:   s.folder,
		PublicID: publicIDFor(filename),
	})
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("upload image: %s", res.Error.Message)
	}

	log.Info().Str("public_id", res.PublicID).Str("url", res.SecureURL).Msg("Product image uploaded")
	return &UploadedImage{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

// Destroy removes a previously uploaded image.
func (s *ImageService) Destroy(ctx context.Context, publicID string) error {
	if s.cld == nil {
		return ErrUploadsDisabled
	}
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("destroy image %s: %w", publicID, err)
	}
	log.Info().Str("public_id", publicID).Msg("Product image deleted")
	return nil
}

// publicIDFor derives a Cloudinary public id from an upload filename.
// Cloudinary assigns a random one when the result is empty.
func publicIDFor(filename string) string {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('-')
		}
	}
	id := strings.Trim(b.String(), "-")
	if id == "" || id == "." || id == "/" {
		return ""
	}
	return id
}
