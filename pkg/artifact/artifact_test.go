package artifact

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/adforge/pkg/errors"
)

func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string { n++; return fmt.Sprintf("a%d", n) })
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	ref, err := s.Put(ctx, "poster.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "poster.pdf", ref.Name)
	assert.Equal(t, 4, ref.Size)
	assert.NotEmpty(t, ref.ID)

	data, got, err := s.Get(ctx, ref.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), data)
	assert.Equal(t, ref.ContentType, got.ContentType)
	assert.Equal(t, ref.Size, got.Size)

	require.NoError(t, s.Delete(ctx, ref.ID))
	_, _, err = s.Get(ctx, ref.ID)
	assert.True(t, errors.Is(err, errors.ErrCodeArtifactNotFound), "got %v", err)
	assert.NoError(t, s.Delete(ctx, ref.ID), "deleting twice is fine")

	_, _, err = s.Get(ctx, "../etc/passwd")
	assert.Error(t, err)
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryURLAndCopy(t *testing.T) {
	m := NewMemory(sequentialIDs(), WithURLPrefix("https://cdn.example.com/art/"))
	src := []byte("abc")
	ref, err := m.Put(context.Background(), "x.png", "image/png", src)
	require.NoError(t, err)
	assert.Equal(t, "a1", ref.ID)
	assert.Equal(t, "https://cdn.example.com/art/a1", ref.URL)

	src[0] = 'z'
	data, _, err := m.Get(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data), "store keeps its own copy")
	assert.Equal(t, 1, m.Len())

	noURL := NewMemory(WithURLPrefix(""))
	ref, err = noURL.Put(context.Background(), "x", "text/plain", nil)
	require.NoError(t, err)
	assert.Empty(t, ref.URL)
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestFileStorePersists(t *testing.T) {
	dir := t.TempDir()
	s1, err := NewFileStore(dir, sequentialIDs())
	require.NoError(t, err)
	ref, err := s1.Put(context.Background(), "a.svg", "image/svg+xml", []byte("<svg/>"))
	require.NoError(t, err)

	s2, err := NewFileStore(dir)
	require.NoError(t, err)
	data, got, err := s2.Get(context.Background(), ref.ID)
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))
	assert.Equal(t, ref, got)
}

// TestGridFS runs against a real MongoDB when ADFORGE_TEST_MONGO_URI is set.
func TestGridFS(t *testing.T) {
	uri := os.Getenv("ADFORGE_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("ADFORGE_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := ConnectGridFS(ctx, uri, "adforge_test", fmt.Sprintf("artifacts_%d", time.Now().UnixNano()))
	require.NoError(t, err)
	defer s.Close(context.Background())

	exerciseStore(t, s)
}
