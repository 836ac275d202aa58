// Package storage provides read access to snapshots kept in object storage.
//
// It wraps the MinIO Go client behind a narrow interface so that snapshot
// sources can be mocked in tests (see core/storage/mocks). Both AWS S3 and
// self-hosted MinIO instances are supported.
//
// # Operations
//
//   - BucketExists: Verifies access to the snapshot bucket.
//   - GetObject: Retrieves a snapshot as a stream.
//   - StatObject: Reads object size before buffering an archive.
//   - ListObjects: Lists snapshots under a prefix.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	exists, err := client.BucketExists(ctx, cfg.Storage.Bucket)
package storage
