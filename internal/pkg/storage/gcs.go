package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSAdapter implements Storage using Google Cloud Storage.
type GCSAdapter struct {
	client *gcs.Client
}

// GCSOptions configures GCS client initialization.
type GCSOptions struct {
	// Client provides an existing GCS client.
	Client *gcs.Client
	// CredentialsJSON is a service account key. Empty uses application
	// default credentials.
	CredentialsJSON []byte
	// Endpoint targets an emulator. Authentication is skipped when set.
	Endpoint string
}

// NewGCS constructs a read-only GCS adapter.
func NewGCS(ctx context.Context, opts GCSOptions) (*GCSAdapter, error) {
	if opts.Client != nil {
		return &GCSAdapter{client: opts.Client}, nil
	}

	clientOpts, err := gcsClientOptions(ctx, opts)
	if err != nil {
		return nil, err
	}

	client, err := gcs.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: gcs client: %w", err)
	}
	return &GCSAdapter{client: client}, nil
}

func gcsClientOptions(ctx context.Context, opts GCSOptions) ([]option.ClientOption, error) {
	switch {
	case opts.Endpoint != "":
		return []option.ClientOption{option.WithEndpoint(opts.Endpoint), option.WithoutAuthentication()}, nil
	case len(opts.CredentialsJSON) > 0:
		creds, err := google.CredentialsFromJSON(ctx, opts.CredentialsJSON, gcs.ScopeReadOnly)
		if err != nil {
			return nil, fmt.Errorf("storage: gcs credentials: %w", err)
		}
		return []option.ClientOption{option.WithCredentials(creds)}, nil
	default:
		return []option.ClientOption{option.WithScopes(gcs.ScopeReadOnly)}, nil
	}
}

// GetObject opens a GCS object.
func (g *GCSAdapter) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error) {
	reader, err := g.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) || errors.Is(err, gcs.ErrBucketNotExist) {
			return nil, ObjectInfo{}, fmt.Errorf("%w: gcs %s/%s", ErrObjectNotFound, bucket, key)
		}
		return nil, ObjectInfo{}, fmt.Errorf("storage: gcs get %s/%s: %w", bucket, key, err)
	}

	return reader, ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		Size:        reader.Attrs.Size,
		ContentType: reader.Attrs.ContentType,
		UpdatedAt:   reader.Attrs.LastModified,
	}, nil
}

// ListObjects lists objects under prefix.
func (g *GCSAdapter) ListObjects(ctx context.Context, bucket, prefix string, limit int) ([]ObjectInfo, error) {
	it := g.client.Bucket(bucket).Objects(ctx, &gcs.Query{Prefix: prefix})

	var objects []ObjectInfo
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("storage: gcs list %s/%s: %w", bucket, prefix, err)
		}
		objects = append(objects, ObjectInfo{
			Bucket:      attrs.Bucket,
			Key:         attrs.Name,
			Size:        attrs.Size,
			ETag:        attrs.Etag,
			ContentType: attrs.ContentType,
			UpdatedAt:   attrs.Updated,
		})
		if limit > 0 && len(objects) >= limit {
			break
		}
	}
	return objects, nil
}

// Close closes the GCS client.
func (g *GCSAdapter) Close() error {
	return g.client.Close()
}
