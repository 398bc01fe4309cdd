// Package blobstore abstracts the durable storage that index snapshots are
// published to.
//
// A Store holds immutable named blobs. Implementations must be safe for
// concurrent use and must return an error satisfying
// errors.Is(err, ErrNotFound) for missing blobs.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests and ephemeral pipelines
//   - LocalStore: local filesystem with atomic writes
//   - s3.Store: Amazon S3, with s3.DDBCommitStore for atomic CURRENT pointers
//   - minio.Store: MinIO and other S3-compatible services
package blobstore
