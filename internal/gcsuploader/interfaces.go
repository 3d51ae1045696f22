package gcsuploader

import (
	"context"

	"github.com/dvloznov/finance-coach/internal/gcs"
)

// StorageService is re-exported so callers need a single import.
type StorageService = gcs.StorageService

// GCSStorageService implements StorageService on Google Cloud Storage using
// Application Default Credentials.
type GCSStorageService struct{}

// NewGCSStorageService creates a GCSStorageService.
func NewGCSStorageService() *GCSStorageService {
	return &GCSStorageService{}
}

// UploadBytes delegates to UploadBytes.
func (s *GCSStorageService) UploadBytes(ctx context.Context, bucketName, objectName, contentType string, data []byte) error {
	return UploadBytes(ctx, bucketName, objectName, contentType, data)
}

// FetchFromGCS delegates to FetchFromGCS.
func (s *GCSStorageService) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	return FetchFromGCS(ctx, gcsURI)
}

var _ StorageService = (*GCSStorageService)(nil)
