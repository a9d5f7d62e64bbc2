package template

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/shandysiswandi/mailbite/internal/pkg/storage"
)

// ErrTemplateNotFound is returned by a Store that has no source for a name.
var ErrTemplateNotFound = errors.New("template: not found")

// maxTemplateBytes caps what a store will read for one template.
const maxTemplateBytes = 1 << 20

//go:embed templates/*
var embedded embed.FS

// Store loads raw template sources by file name (for example
// "verification-code.html").
type Store interface {
	Open(ctx context.Context, name string) ([]byte, error)
}

// FSStore reads templates from a file system.
type FSStore struct {
	fsys fs.FS
}

// NewFSStore reads templates from fsys.
func NewFSStore(fsys fs.FS) *FSStore {
	return &FSStore{fsys: fsys}
}

// NewEmbedStore serves the templates compiled into the binary.
func NewEmbedStore() *FSStore {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		// templates/ is part of the embed pattern
		panic(err)
	}
	return NewFSStore(sub)
}

// NewDirStore reads templates from dir on disk.
func NewDirStore(dir string) *FSStore {
	return NewFSStore(os.DirFS(dir))
}

func (s *FSStore) Open(_ context.Context, name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}

	b, err := fs.ReadFile(s.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("template: read %q: %w", name, err)
	}
	return b, nil
}

// ObjectStore reads templates from a bucket, under an optional key prefix.
type ObjectStore struct {
	storage storage.Storage
	bucket  string
	prefix  string
}

// NewObjectStore reads templates from bucket through st.
func NewObjectStore(st storage.Storage, bucket, prefix string) *ObjectStore {
	return &ObjectStore{storage: st, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *ObjectStore) Open(ctx context.Context, name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}

	key := name
	if s.prefix != "" {
		key = path.Join(s.prefix, name)
	}

	b, err := storage.ReadAll(ctx, s.storage, s.bucket, key, maxTemplateBytes)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, fmt.Errorf("%w: %s/%s", ErrTemplateNotFound, s.bucket, key)
	}
	if err != nil {
		return nil, fmt.Errorf("template: fetch %s/%s: %w", s.bucket, key, err)
	}
	return b, nil
}

// ChainStore tries each store in order and returns the first hit.
type ChainStore []Store

func (c ChainStore) Open(ctx context.Context, name string) ([]byte, error) {
	for _, s := range c {
		b, err := s.Open(ctx, name)
		if errors.Is(err, ErrTemplateNotFound) {
			continue
		}
		return b, err
	}
	return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
}
