package storage

import (
	"context"
	"io"
	"time"
)

// Service stores uploaded station cover art in remote object storage.
type Service interface {
	// UploadImage stores body under key and returns the object's location.
	UploadImage(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	// GetObjectURL returns a presigned, time-limited GET URL for key.
	GetObjectURL(ctx context.Context, key string, expires time.Duration) (string, error)
	DeleteObject(ctx context.Context, key string) error
}
