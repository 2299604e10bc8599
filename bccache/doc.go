// Package bccache persists compiled template bytecode between processes.
//
// # Overview
//
// Compiling a template is the expensive step of resolution. A bytecode cache
// lets one process reuse the compiled form produced by another: buckets are
// keyed by template identity and carry a checksum of the source they were
// compiled from, so a stale bucket is indistinguishable from a missing one.
//
// Two backends are provided. RedisBytecodeCache shares buckets across hosts
// through a Redis instance; FileSystemBytecodeCache keeps them in a directory
// on any billy.Filesystem, which also makes it trivial to test in memory.
//
// # Usage
//
//	bcc := bccache.NewFileSystem(osfs.New("/var/cache/templates"), ".")
//	bucket, err := bcc.GetBucket(ctx, "index.html", path, source)
//	if err != nil {
//		return err
//	}
//	if bucket.Code == nil {
//		bucket.Code = compile(source)
//		if err := bcc.SetBucket(ctx, bucket); err != nil {
//			return err
//		}
//	}
//
// Backends treat a missing or corrupt record as an empty bucket rather than
// an error, so callers only handle real I/O failures.
package bccache
