package validation

import (
	"mime/multipart"
	"strings"

	apperrors "go-deepfake-detector/internal/errors"
)

// UploadValidator checks uploaded files before they reach the classifier
type UploadValidator struct {
	maxSize int64
}

// NewUploadValidator creates an upload validator with the given size limit
func NewUploadValidator(maxSize int64) *UploadValidator {
	return &UploadValidator{maxSize: maxSize}
}

// ValidateUpload validates the multipart file header of an uploaded image.
// The actual decode check happens later in preprocessing; this rejects the
// obviously wrong payloads cheaply.
func (v *UploadValidator) ValidateUpload(header *multipart.FileHeader) error {
	if header == nil {
		return apperrors.NewValidationError("no file provided", nil)
	}

	if header.Size == 0 {
		return apperrors.NewInvalidImageError("uploaded file is empty", nil)
	}

	if v.maxSize > 0 && header.Size > v.maxSize {
		return apperrors.NewValidationError("uploaded file exceeds the size limit", nil)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		return apperrors.NewInvalidImageError("file must be an image (JPEG, PNG, etc.)", nil)
	}

	return nil
}
