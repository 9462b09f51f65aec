// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client so the cache store can keep its envelopes in an
// S3-compatible bucket when a shared, durable medium is preferred over the database.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Helpers
//
//   - ReadObject: downloads a whole object, mapping a missing key to ErrObjectNotFound.
//   - WriteObject: uploads a JSON payload.
//   - RemovePrefix: lists and batch-deletes every object under a prefix.
//   - RemoveMatching: the same, restricted by a predicate on the object name.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	data, err := storage.ReadObject(ctx, client, "portal-cache", "cache/portal/v1/u42/options")
package storage
