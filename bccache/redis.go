package bccache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ BytecodeCache = (*RedisBytecodeCache)(nil)

// RedisBytecodeCache shares bytecode buckets across processes through Redis.
type RedisBytecodeCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisBytecodeCache.
type RedisOption func(*RedisBytecodeCache)

// WithPrefix namespaces all bucket keys, separated from the key by a colon.
func WithPrefix(prefix string) RedisOption {
	return func(c *RedisBytecodeCache) {
		c.prefix = prefix
	}
}

// WithExpiry bounds how long a bucket may live in Redis. Zero or negative
// means no expiry.
func WithExpiry(ttl time.Duration) RedisOption {
	return func(c *RedisBytecodeCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewRedis wraps an existing Redis client as a bytecode cache. The client's
// lifecycle stays with the caller.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *RedisBytecodeCache {
	c := &RedisBytecodeCache{client: client}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisBytecodeCache) bucketName(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}

// GetBucket loads the bucket for a template. A missing key or a record
// compiled from different source yields an empty bucket, not an error.
func (c *RedisBytecodeCache) GetBucket(ctx context.Context, name, path string, source []byte) (*Bucket, error) {
	bucket := newBucket(name, path, source)

	data, err := c.client.Get(ctx, c.bucketName(bucket.Key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return bucket, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load bytecode bucket %s: %w", bucket.Key, err)
	}

	bucket.Load(data)
	return bucket, nil
}

// SetBucket stores the bucket, applying the configured expiry.
func (c *RedisBytecodeCache) SetBucket(ctx context.Context, bucket *Bucket) error {
	if err := c.client.Set(ctx, c.bucketName(bucket.Key), bucket.Bytes(), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store bytecode bucket %s: %w", bucket.Key, err)
	}
	return nil
}
