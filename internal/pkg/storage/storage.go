// Package storage reads objects from S3, MinIO or Google Cloud Storage.
//
// The service only needs read access: templates are published to a bucket by
// an operator and fetched on first use.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound is returned when the bucket has no object under the key.
var ErrObjectNotFound = errors.New("storage: object not found")

// Storage defines the read operations on object storage.
type Storage interface {
	io.Closer

	// GetObject opens the object for reading. The caller closes the reader.
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error)
	// ListObjects lists objects whose keys start with prefix.
	ListObjects(ctx context.Context, bucket, prefix string, limit int) ([]ObjectInfo, error)
}

// ObjectInfo describes object metadata.
type ObjectInfo struct {
	// Bucket is the bucket name.
	Bucket string
	// Key is the object key.
	Key string
	// Size is the object size in bytes.
	Size int64
	// ETag is the object ETag when provided.
	ETag string
	// ContentType is the object MIME type.
	ContentType string
	// UpdatedAt is the last modified time.
	UpdatedAt time.Time
}

// ReadAll fetches the whole object. It caps the read at maxBytes when positive.
func ReadAll(ctx context.Context, s Storage, bucket, key string, maxBytes int64) ([]byte, error) {
	rc, _, err := s.GetObject(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var r io.Reader = rc
	if maxBytes > 0 {
		r = io.LimitReader(rc, maxBytes)
	}
	return io.ReadAll(r)
}
