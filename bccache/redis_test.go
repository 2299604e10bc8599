package bccache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisBytecodeCache_BucketName(t *testing.T) {
	client := redis.NewClient(&redis.Options{})

	assert.Equal(t, "abc", NewRedis(client).bucketName("abc"))
	assert.Equal(t, "tpl:abc", NewRedis(client, WithPrefix("tpl")).bucketName("abc"))
}

// redisClient connects to the instance named by REDIS_ADDR, skipping the
// test when none is configured.
func redisClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping Redis integration test")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	require.NoError(t, client.Ping(context.Background()).Err())
	return client
}

func TestRedisBytecodeCache_RoundTrip(t *testing.T) {
	client := redisClient(t)
	cache := NewRedis(client, WithPrefix("bccache-test"), WithExpiry(time.Minute))
	ctx := context.Background()
	source := []byte("{{ greeting }}")

	bucket, err := cache.GetBucket(ctx, "hello.html", "templates/hello.html", source)
	require.NoError(t, err)
	require.Nil(t, bucket.Code, "first lookup should miss")

	bucket.Code = []byte("compiled")
	require.NoError(t, cache.SetBucket(ctx, bucket))
	t.Cleanup(func() { client.Del(ctx, "bccache-test:"+bucket.Key) })

	again, err := cache.GetBucket(ctx, "hello.html", "templates/hello.html", source)
	require.NoError(t, err)
	assert.Equal(t, []byte("compiled"), again.Code)
}

func TestRedisBytecodeCache_SourceChangeInvalidates(t *testing.T) {
	client := redisClient(t)
	cache := NewRedis(client, WithPrefix("bccache-test"))
	ctx := context.Background()

	bucket, err := cache.GetBucket(ctx, "page.html", "", []byte("v1"))
	require.NoError(t, err)
	bucket.Code = []byte("compiled v1")
	require.NoError(t, cache.SetBucket(ctx, bucket))
	t.Cleanup(func() { client.Del(ctx, "bccache-test:"+bucket.Key) })

	stale, err := cache.GetBucket(ctx, "page.html", "", []byte("v2"))
	require.NoError(t, err)
	assert.Nil(t, stale.Code)
}
