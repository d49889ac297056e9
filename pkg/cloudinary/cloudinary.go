package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Service stores resume photos and exported resumes on Cloudinary.
type Service struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a Cloudinary service instance.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Service{
		client: cld,
		folder: cfg.Folder,
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// Upload sends the asset to Cloudinary and returns its secure URL. Images land in
// "<folder>/photos", documents in "<folder>/documents" as raw resources.
func (s *Service) Upload(ctx context.Context, name, kind string, reader io.Reader) (string, error) {
	resourceType, subfolder := resourceFor(kind)

	params := uploader.UploadParams{
		Folder:       joinFolder(s.folder, subfolder),
		PublicID:     buildPublicID(name, resourceType == "raw", time.Now()),
		ResourceType: resourceType,
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload asset: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected asset: %s", result.Error.Message)
	}

	s.logger.Info().Str("public_id", result.PublicID).Str("resource_type", resourceType).Msg("file uploaded to cloudinary")

	return result.SecureURL, nil
}

func resourceFor(kind string) (string, string) {
	if kind == "pdf" {
		return "raw", "documents"
	}
	return "image", "photos"
}

func joinFolder(base, sub string) string {
	base = strings.Trim(base, "/")
	if base == "" {
		return sub
	}
	return base + "/" + sub
}

// buildPublicID slugs the file name and stamps it. Raw resources keep their
// extension because Cloudinary serves them under the public id verbatim.
func buildPublicID(name string, keepExt bool, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(name))
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, base)

	base = strings.Trim(base, "-")
	if base == "" {
		base = "upload"
	}

	id := fmt.Sprintf("%s-%d", base, now.Unix())
	if keepExt && ext != "" {
		id += ext
	}
	return id
}
