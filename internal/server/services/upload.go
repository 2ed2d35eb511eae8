package services

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/geotrack/internal/common"
	"github.com/dmitrijs2005/geotrack/internal/logging"
	"github.com/dmitrijs2005/geotrack/internal/server/auth"
	"github.com/dmitrijs2005/geotrack/internal/server/metrics"
	"github.com/dmitrijs2005/geotrack/internal/server/objectstore"
)

// AllowedUploadType is the only accepted upload content type.
const AllowedUploadType = "image/jpeg"

// UploadResult locates a stored upload.
type UploadResult struct {
	Key string
	URL string
}

// UploadService stores user images in the object store.
type UploadService struct {
	objects ObjectStore
	metrics *metrics.Metrics
	log     logging.Logger
	keyFor  func(filename string) string
}

func NewUploadService(d Deps) *UploadService {
	return &UploadService{
		objects: d.Objects,
		metrics: d.Metrics,
		log:     d.logger("upload"),
		keyFor:  objectstore.ImageKey,
	}
}

// Upload stores body and returns its key with a presigned download URL.
// Only the declared content type is checked; the bytes are not inspected.
func (s *UploadService) Upload(ctx context.Context, claims *auth.Claims, filename, contentType string, size int64, body io.Reader) (*UploadResult, error) {
	if body == nil {
		s.metrics.Upload(metrics.ResultInvalidInput)
		return nil, common.ErrNoFile
	}
	if contentType != AllowedUploadType {
		s.metrics.Upload(metrics.ResultInvalidInput)
		return nil, common.ErrContentType
	}

	key := s.keyFor(filename)
	if err := s.objects.Put(ctx, key, body, size, contentType); err != nil {
		s.metrics.Upload(metrics.ResultError)
		s.log.Error(ctx, "upload failed", "key", key, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	url, err := s.objects.PresignGet(ctx, key)
	if err != nil {
		s.metrics.Upload(metrics.ResultError)
		s.log.Error(ctx, "presign failed", "key", key, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	s.metrics.Upload(metrics.ResultSuccess)
	uploader := ""
	if claims != nil {
		uploader = claims.UUID
	}
	s.log.Info(ctx, "file uploaded", "key", key, "uuid", uploader, "size", size)
	return &UploadResult{Key: key, URL: url}, nil
}
