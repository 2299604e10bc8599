package bccache

import (
	"context"
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

var _ BytecodeCache = (*FileSystemBytecodeCache)(nil)

// FileSystemBytecodeCache keeps bytecode buckets as files in a directory.
//
// Writes go through a temporary file and rename so a concurrent reader never
// observes a partially written bucket.
type FileSystemBytecodeCache struct {
	fs  billy.Filesystem
	dir string
}

// NewFileSystem creates a filesystem-backed bytecode cache rooted at dir.
// The directory is created on first write if it does not exist.
func NewFileSystem(fs billy.Filesystem, dir string) *FileSystemBytecodeCache {
	return &FileSystemBytecodeCache{fs: fs, dir: dir}
}

func (c *FileSystemBytecodeCache) bucketPath(key string) string {
	return c.fs.Join(c.dir, key+".bcc")
}

// GetBucket loads the bucket for a template. A missing file or a record
// compiled from different source yields an empty bucket, not an error.
func (c *FileSystemBytecodeCache) GetBucket(ctx context.Context, name, path string, source []byte) (*Bucket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bucket := newBucket(name, path, source)

	data, err := util.ReadFile(c.fs, c.bucketPath(bucket.Key))
	if os.IsNotExist(err) {
		return bucket, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read bytecode bucket %s: %w", bucket.Key, err)
	}

	bucket.Load(data)
	return bucket, nil
}

// SetBucket stores the bucket atomically via write-to-temp plus rename.
func (c *FileSystemBytecodeCache) SetBucket(ctx context.Context, bucket *Bucket) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := c.fs.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create bytecode cache directory: %w", err)
	}

	path := c.bucketPath(bucket.Key)
	tmpPath := path + ".tmp"

	tmpFile, err := c.fs.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary bucket file: %w", err)
	}

	if _, err := tmpFile.Write(bucket.Bytes()); err != nil {
		tmpFile.Close()
		_ = c.fs.Remove(tmpPath)
		return fmt.Errorf("failed to write temporary bucket file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		_ = c.fs.Remove(tmpPath)
		return fmt.Errorf("failed to close temporary bucket file: %w", err)
	}

	if err := c.fs.Rename(tmpPath, path); err != nil {
		_ = c.fs.Remove(tmpPath)
		return fmt.Errorf("failed to rename bucket file: %w", err)
	}

	return nil
}
