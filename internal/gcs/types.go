package gcs

import (
	"context"
)

// StorageService archives and retrieves report objects in a bucket.
// Implementations must be safe for concurrent use.
type StorageService interface {
	// UploadBytes writes data to bucketName/objectName with the given content type.
	UploadBytes(ctx context.Context, bucketName, objectName, contentType string, data []byte) error

	// FetchFromGCS downloads the object behind a gs:// URI.
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)
}
