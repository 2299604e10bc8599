package bccache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucket_RoundTrip(t *testing.T) {
	source := []byte("<h1>{{ title }}</h1>")
	stored := &Bucket{
		Key:      CacheKey("index.html", "templates/index.html"),
		Checksum: SourceChecksum(source),
		Code:     []byte("compiled bytecode"),
	}

	loaded := &Bucket{Key: stored.Key, Checksum: stored.Checksum}
	loaded.Load(stored.Bytes())

	assert.Equal(t, stored.Code, loaded.Code)
}

func TestBucket_ChecksumMismatchReadsAsEmpty(t *testing.T) {
	stored := &Bucket{
		Key:      CacheKey("index.html", ""),
		Checksum: SourceChecksum([]byte("old source")),
		Code:     []byte("compiled from old source"),
	}

	loaded := &Bucket{
		Key:      stored.Key,
		Checksum: SourceChecksum([]byte("new source")),
	}
	loaded.Load(stored.Bytes())

	assert.Nil(t, loaded.Code)
}

func TestBucket_CorruptRecordReadsAsEmpty(t *testing.T) {
	bucket := &Bucket{Key: "k", Checksum: SourceChecksum([]byte("src"))}

	for name, data := range map[string][]byte{
		"empty":           nil,
		"wrong magic":     []byte("nope\x01rest of the record"),
		"truncated":       bucketMagic,
		"length overrun":  append(append([]byte{}, bucketMagic...), 0xff, 0xff, 0xff, 0xff),
		"stale version":   []byte("tcbc\x00rest of the record"),
	} {
		t.Run(name, func(t *testing.T) {
			bucket.Code = []byte("left over")
			bucket.Load(data)
			assert.Nil(t, bucket.Code)
		})
	}
}

func TestBucket_LoadDiscardsPreviousCode(t *testing.T) {
	bucket := &Bucket{Key: "k", Checksum: "c", Code: []byte("stale")}
	bucket.Load(nil)
	assert.Nil(t, bucket.Code)
}

func TestCacheKey(t *testing.T) {
	require.NotEqual(t, CacheKey("a.html", "x/a.html"), CacheKey("a.html", "y/a.html"))
	require.NotEqual(t, CacheKey("a.html", ""), CacheKey("b.html", ""))
	assert.Equal(t, CacheKey("a.html", "x/a.html"), CacheKey("a.html", "x/a.html"))
}

func TestSourceChecksum(t *testing.T) {
	assert.Equal(t, SourceChecksum([]byte("abc")), SourceChecksum([]byte("abc")))
	assert.NotEqual(t, SourceChecksum([]byte("abc")), SourceChecksum([]byte("abd")))
}
