package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/connectedplaces/directory/modules/core/domain/entities/upload"
	"github.com/connectedplaces/directory/pkg/serrors"
)

// allowedUploadTypes lists the image types proposals may attach.
var allowedUploadTypes = map[string]struct{}{
	"image/jpeg":    {},
	"image/png":     {},
	"image/webp":    {},
	"image/svg+xml": {},
}

const maxUploadSize = 10 << 20

var ErrUnsupportedUpload = serrors.NewError("UPLOAD_UNSUPPORTED", "unsupported file type or size", "Uploads.Errors.Unsupported")

type UploadService struct {
	repo upload.Repository
}

func NewUploadService(repo upload.Repository) *UploadService {
	return &UploadService{repo: repo}
}

func (s *UploadService) GetByID(ctx context.Context, id uuid.UUID) (*upload.Upload, error) {
	return s.repo.GetByID(ctx, id)
}

// Register records an uploaded file as awaiting assignment. The file stays
// unattached until an approved proposal claims it.
func (s *UploadService) Register(ctx context.Context, filename, mimeType string, size int64) (*upload.Upload, error) {
	if _, ok := allowedUploadTypes[strings.ToLower(mimeType)]; !ok {
		return nil, ErrUnsupportedUpload
	}
	if size <= 0 || size > maxUploadSize {
		return nil, ErrUnsupportedUpload
	}
	return s.repo.Create(ctx, &upload.Upload{
		Filename: filename,
		MimeType: mimeType,
		Size:     size,
		Status:   upload.StatusPendingAssignment,
	})
}
