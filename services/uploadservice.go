package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"

	"kalavedi/config"
)

var ErrUploadsDisabled = errors.New("photo uploads are not configured")

const thumbnailTransform = "c_fill,h_150,w_150"

type UploadResult struct {
	URL          string
	ThumbnailURL string
	PublicID     string
}

// Uploader stores activity photos with an image host.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, name, folder string) (UploadResult, error)
	Destroy(ctx context.Context, publicID string) error
}

// ThumbnailURL derives the 150x150 crop of an uploaded image by inserting a
// transformation segment after "/upload/".
func ThumbnailURL(url string) string {
	return strings.Replace(url, "/upload/", "/upload/"+thumbnailTransform+"/", 1)
}

var (
	nonWord    = regexp.MustCompile(`[^\w\s]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// ActivityFolder is the upload folder for an activity title, e.g.
// "Onam Celebration 2024!" becomes "activities/onam-celebration-2024".
func ActivityFolder(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = nonWord.ReplaceAllString(slug, "")
	slug = whitespace.ReplaceAllString(slug, "-")
	return "activities/" + slug
}

type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	preset string
	logger *zap.Logger
}

func NewCloudinaryUploader(cfg config.CloudinaryConfig, logger *zap.Logger) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &CloudinaryUploader{cld: cld, preset: cfg.UploadPreset, logger: logger}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, r io.Reader, name, folder string) (UploadResult, error) {
	resp, err := u.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:       folder,
		UploadPreset: u.preset,
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload %s: %w", name, err)
	}
	if resp.Error.Message != "" {
		return UploadResult{}, fmt.Errorf("upload %s: %s", name, resp.Error.Message)
	}
	u.logger.Debug("photo uploaded", zap.String("name", name), zap.String("publicId", resp.PublicID))
	return UploadResult{
		URL:          resp.SecureURL,
		ThumbnailURL: ThumbnailURL(resp.SecureURL),
		PublicID:     resp.PublicID,
	}, nil
}

func (u *CloudinaryUploader) Destroy(ctx context.Context, publicID string) error {
	resp, err := u.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("destroy %s: %w", publicID, err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("destroy %s: %s", publicID, resp.Error.Message)
	}
	return nil
}
