package bccache

import (
	"context"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSystemBytecodeCache_RoundTrip(t *testing.T) {
	fs := memfs.New()
	cache := NewFileSystem(fs, "bytecode")
	ctx := context.Background()
	source := []byte("{{ greeting }}")

	bucket, err := cache.GetBucket(ctx, "hello.html", "templates/hello.html", source)
	require.NoError(t, err)
	require.Nil(t, bucket.Code, "first lookup should miss")

	bucket.Code = []byte("compiled")
	require.NoError(t, cache.SetBucket(ctx, bucket))

	again, err := cache.GetBucket(ctx, "hello.html", "templates/hello.html", source)
	require.NoError(t, err)
	assert.Equal(t, []byte("compiled"), again.Code)
}

func TestFileSystemBytecodeCache_SourceChangeInvalidates(t *testing.T) {
	fs := memfs.New()
	cache := NewFileSystem(fs, "bytecode")
	ctx := context.Background()

	bucket, err := cache.GetBucket(ctx, "page.html", "", []byte("v1"))
	require.NoError(t, err)
	bucket.Code = []byte("compiled v1")
	require.NoError(t, cache.SetBucket(ctx, bucket))

	stale, err := cache.GetBucket(ctx, "page.html", "", []byte("v2"))
	require.NoError(t, err)
	assert.Nil(t, stale.Code)
}

func TestFileSystemBytecodeCache_NoTempFileLeftBehind(t *testing.T) {
	fs := memfs.New()
	cache := NewFileSystem(fs, "bytecode")
	ctx := context.Background()

	bucket, err := cache.GetBucket(ctx, "a.html", "", []byte("src"))
	require.NoError(t, err)
	bucket.Code = []byte("compiled")
	require.NoError(t, cache.SetBucket(ctx, bucket))

	entries, err := fs.ReadDir("bytecode")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, bucket.Key+".bcc", entries[0].Name())
}

func TestFileSystemBytecodeCache_CorruptFileReadsAsEmpty(t *testing.T) {
	fs := memfs.New()
	cache := NewFileSystem(fs, "bytecode")
	ctx := context.Background()
	source := []byte("src")

	key := CacheKey("a.html", "")
	require.NoError(t, util.WriteFile(fs, fs.Join("bytecode", key+".bcc"), []byte("garbage"), 0o644))

	bucket, err := cache.GetBucket(ctx, "a.html", "", source)
	require.NoError(t, err)
	assert.Nil(t, bucket.Code)
}

func TestFileSystemBytecodeCache_CancelledContext(t *testing.T) {
	fs := memfs.New()
	cache := NewFileSystem(fs, "bytecode")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cache.GetBucket(ctx, "a.html", "", []byte("src"))
	assert.ErrorIs(t, err, context.Canceled)

	err = cache.SetBucket(ctx, &Bucket{Key: "k", Checksum: "c"})
	assert.ErrorIs(t, err, context.Canceled)
}
