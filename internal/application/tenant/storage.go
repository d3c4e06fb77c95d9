package tenant

import (
	"context"
	"time"
)

// ObjectStorageService abstracts the S3-compatible object storage used
// for tenant assets (invoice logos).
type ObjectStorageService interface {
	// GenerateUploadURL returns a presigned PUT URL for the key
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL returns a presigned GET URL for the key
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject removes the object stored under the key
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists reports whether an object is stored under the key
	ObjectExists(ctx context.Context, storageKey string) (bool, error)

	// Upload writes data directly to the key
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
}
