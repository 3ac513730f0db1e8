// Package blobstore provides the storage abstraction used for off-site snapshots
// of a search.
//
// Store is the interface for writing and reading whole named blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests
//   - LocalStore: a directory on the local filesystem, atomic writes
//   - minio.Store: MinIO and other S3-compatible services
//   - s3.Store: Amazon S3 with multipart uploads
//   - s3.CommitStore: s3.Store plus a DynamoDB pointer for the latest snapshot
//
// # Custom Implementations
//
//	type Store interface {
//	    Put(ctx, name, r) error
//	    Get(ctx, name) (io.ReadCloser, error)
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// A store that can publish the latest snapshot atomically also implements
// Committer; otherwise a pointer blob is written with Put.
package blobstore
