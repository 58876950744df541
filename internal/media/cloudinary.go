// Package media forwards uploaded images to a hosted image service.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/isdelr/circuitgen-be/internal/config"
)

// ErrNotConfigured is returned when no image host credentials are set.
var ErrNotConfigured = errors.New("image upload is not configured")

// ImageHost stores an image and returns its public URL.
type ImageHost interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Disabled rejects every upload.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, io.Reader) (string, error) {
	return "", ErrNotConfigured
}

// Cloudinary uploads into a fixed folder of a Cloudinary account.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewImageHost returns a Cloudinary host when cfg is complete and Disabled
// otherwise.
func NewImageHost(cfg config.UploadConfig) (ImageHost, error) {
	if !cfg.Enabled() {
		return Disabled{}, nil
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	return &Cloudinary{cld: cld, folder: cfg.Folder}, nil
}

// Upload sends the image and returns its HTTPS URL.
func (c *Cloudinary) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	res, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{Folder: c.folder})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload %s: %w", filename, err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload %s: %s", filename, res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload %s: empty url in response", filename)
	}
	return res.SecureURL, nil
}
