package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/venuebook/venuebook/internal/domain"
	"github.com/venuebook/venuebook/internal/dto"
	"github.com/venuebook/venuebook/pkg/config"
	"github.com/venuebook/venuebook/pkg/telemetry"
)

// UploadService issues parameters for direct client uploads to Cloudinary.
// Signed mode is preferred; unsigned preset mode is the fallback.
type UploadService interface {
	SignUpload(ctx context.Context, req *dto.SignUploadRequest) (*dto.SignUploadResponse, error)
}

type uploadService struct {
	cfg config.CloudinaryConfig
	now func() time.Time
}

var _ UploadService = (*uploadService)(nil)

// NewUploadService creates a new upload service
func NewUploadService(cfg config.CloudinaryConfig) UploadService {
	return &uploadService{cfg: cfg, now: time.Now}
}

// SignUpload returns the upload URL and form parameters for the client. In
// signed mode the signature covers the sorted parameters joined with '&'
// and the API secret appended, hashed with SHA-1.
func (s *uploadService) SignUpload(ctx context.Context, req *dto.SignUploadRequest) (*dto.SignUploadResponse, error) {
	_, span := telemetry.StartSpan(ctx, "service.upload.sign")
	defer span.End()

	if s.cfg.CloudName == "" {
		return nil, fmt.Errorf("%w: media uploads are not configured", domain.ErrServiceUnavailable)
	}

	folder := strings.TrimSpace(req.Folder)
	if folder == "" {
		folder = "venues"
	}
	publicID := strings.TrimSpace(req.PublicID)
	resourceType := strings.TrimSpace(req.ResourceType)
	switch resourceType {
	case "":
		resourceType = "auto"
	case "image", "video", "auto":
	default:
		return nil, domain.NewValidationError("'resource_type' must be one of: image, video, auto.")
	}
	overwrite := true
	if req.Overwrite != nil {
		overwrite = *req.Overwrite
	}

	uploadURL := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/%s/upload", s.cfg.CloudName, resourceType)

	if s.cfg.SignedConfigured() {
		timestamp := s.now().Unix()
		toSign := map[string]string{
			"timestamp":  fmt.Sprintf("%d", timestamp),
			"folder":     folder,
			"overwrite":  boolParam(overwrite),
			"invalidate": boolParam(req.Invalidate),
		}
		if publicID != "" {
			toSign["public_id"] = publicID
		}

		params := map[string]interface{}{
			"api_key":    s.cfg.APIKey,
			"timestamp":  timestamp,
			"folder":     folder,
			"overwrite":  overwrite,
			"invalidate": req.Invalidate,
			"signature":  signParams(toSign, s.cfg.APISecret),
		}
		if publicID != "" {
			params["public_id"] = publicID
		}

		return &dto.SignUploadResponse{
			Mode:      "signed",
			UploadURL: uploadURL,
			Params:    params,
		}, nil
	}

	if !s.cfg.UnsignedConfigured() {
		return nil, fmt.Errorf("%w: media uploads are not configured", domain.ErrServiceUnavailable)
	}

	params := map[string]interface{}{
		"upload_preset": s.cfg.UploadPreset,
		"folder":        folder,
	}
	if publicID != "" {
		params["public_id"] = publicID
	}
	return &dto.SignUploadResponse{
		Mode:      "unsigned",
		UploadURL: uploadURL,
		Params:    params,
	}, nil
}

// signParams builds key=value pairs sorted by key, joins them with '&',
// appends the secret and hashes with SHA-1, per the Cloudinary signing
// recipe.
func signParams(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	digest := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(digest[:])
}

func boolParam(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
