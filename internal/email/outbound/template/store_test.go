package template

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/mailbite/internal/pkg/storage"
)

type memStorage struct {
	objects map[string][]byte
	fail    error
}

func (m *memStorage) GetObject(_ context.Context, bucket, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	if m.fail != nil {
		return nil, storage.ObjectInfo{}, m.fail
	}
	b, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, storage.ObjectInfo{}, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), storage.ObjectInfo{Bucket: bucket, Key: key, Size: int64(len(b))}, nil
}

func (*memStorage) ListObjects(context.Context, string, string, int) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (*memStorage) Close() error { return nil }

func TestObjectStore(t *testing.T) {
	t.Parallel()

	st := &memStorage{objects: map[string][]byte{
		"mail/templates/welcome.html": []byte("hi {{ .username }}"),
	}}
	ctx := context.Background()

	s := NewObjectStore(st, "mail", "/templates/")
	b, err := s.Open(ctx, "welcome.html")
	require.NoError(t, err)
	assert.Equal(t, "hi {{ .username }}", string(b))

	_, err = s.Open(ctx, "welcome.md")
	require.ErrorIs(t, err, ErrTemplateNotFound)

	st.objects["mail/secrets/api.html"] = []byte("SECRET-TOKEN-abc")
	for _, name := range []string{"../secrets/api.html", "/secrets/api.html", "templates/../../secrets/api.html"} {
		_, err = s.Open(ctx, name)
		require.ErrorIs(t, err, ErrTemplateNotFound, name)
	}

	_, err = New(Options{Store: s}).Render(ctx, "../secrets/api.html", nil)
	require.ErrorIs(t, err, ErrTemplateNotFound)

	boom := errors.New("connection reset")
	_, err = NewObjectStore(&memStorage{fail: boom}, "mail", "").Open(ctx, "welcome.html")
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrTemplateNotFound)
}

func TestFSStore(t *testing.T) {
	t.Parallel()

	s := NewFSStore(fstest.MapFS{"a.html": {Data: []byte("A")}})
	ctx := context.Background()

	b, err := s.Open(ctx, "a.html")
	require.NoError(t, err)
	assert.Equal(t, "A", string(b))

	_, err = s.Open(ctx, "../a.html")
	require.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = s.Open(ctx, "b.html")
	require.ErrorIs(t, err, ErrTemplateNotFound)

	dir := t.TempDir()
	_, err = NewDirStore(dir).Open(ctx, "x.html")
	require.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestChainStore(t *testing.T) {
	t.Parallel()

	override := NewFSStore(fstest.MapFS{"verification-code.html": {Data: []byte("custom")}})
	chain := ChainStore{override, NewEmbedStore()}
	ctx := context.Background()

	b, err := chain.Open(ctx, "verification-code.html")
	require.NoError(t, err)
	assert.Equal(t, "custom", string(b))

	b, err = chain.Open(ctx, "verification-notice.md")
	require.NoError(t, err)
	assert.Contains(t, string(b), "heading: Verify your email")

	_, err = chain.Open(ctx, "missing.html")
	require.ErrorIs(t, err, ErrTemplateNotFound)
}
