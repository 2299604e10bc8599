package bccache

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
)

// bucketMagic identifies the serialized bucket format. The trailing byte is
// the format version; bump it whenever the layout changes so older records
// read as stale instead of garbage.
var bucketMagic = []byte("tcbc\x01")

// Bucket holds the cached bytecode for a single template.
//
// Key identifies the template, Checksum identifies the exact source the
// bytecode was compiled from. A bucket whose stored checksum does not match
// the current source behaves as if it were empty.
type Bucket struct {
	Key      string
	Checksum string
	Code     []byte
}

// Reset discards any loaded bytecode.
func (b *Bucket) Reset() {
	b.Code = nil
}

// Load deserializes a stored record into the bucket. Records with an
// unknown magic, a truncated body, or a checksum that does not match the
// bucket's current checksum leave the bucket empty.
func (b *Bucket) Load(data []byte) {
	b.Reset()

	if !bytes.HasPrefix(data, bucketMagic) {
		return
	}
	rest := data[len(bucketMagic):]

	if len(rest) < 4 {
		return
	}
	checksumLen := int(binary.BigEndian.Uint32(rest))
	rest = rest[4:]
	if len(rest) < checksumLen {
		return
	}
	if string(rest[:checksumLen]) != b.Checksum {
		return
	}

	b.Code = append([]byte(nil), rest[checksumLen:]...)
}

// Bytes serializes the bucket for storage.
func (b *Bucket) Bytes() []byte {
	buf := make([]byte, 0, len(bucketMagic)+4+len(b.Checksum)+len(b.Code))
	buf = append(buf, bucketMagic...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(b.Checksum)))
	buf = append(buf, b.Checksum...)
	buf = append(buf, b.Code...)
	return buf
}

// CacheKey derives the storage key for a template. The path distinguishes
// templates that share a name across search paths.
func CacheKey(name, path string) string {
	h := sha1.New()
	h.Write([]byte(name))
	if path != "" {
		h.Write([]byte{0})
		h.Write([]byte(path))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// SourceChecksum fingerprints template source for staleness detection.
func SourceChecksum(source []byte) string {
	sum := sha1.Sum(source)
	return hex.EncodeToString(sum[:])
}

// BytecodeCache stores and retrieves bytecode buckets.
//
// GetBucket always returns a usable bucket: on a miss, a checksum mismatch,
// or a corrupt record the bucket's Code is nil and the caller is expected to
// compile and SetBucket the result.
type BytecodeCache interface {
	GetBucket(ctx context.Context, name, path string, source []byte) (*Bucket, error)
	SetBucket(ctx context.Context, bucket *Bucket) error
}

// newBucket builds the bucket shell for a template before loading.
func newBucket(name, path string, source []byte) *Bucket {
	return &Bucket{
		Key:      CacheKey(name, path),
		Checksum: SourceChecksum(source),
	}
}
