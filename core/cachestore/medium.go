package cachestore

import (
	"context"
	"errors"
	"fmt"

	"roster-workbench/core/storage"

	"gorm.io/gorm"
)

// ErrNotFound is returned by a Medium when the key does not exist.
var ErrNotFound = errors.New("cache key not found")

// Medium is the persistent key/value medium underneath the store.
type Medium interface {
	// Read returns the raw bytes stored under key, or ErrNotFound.
	Read(ctx context.Context, key string) ([]byte, error)
	// Write stores data under key, replacing any previous value.
	Write(ctx context.Context, key string, data []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key starting with prefix and reports how many were removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
	// DeleteMatching removes every key not starting with skip for which match reports
	// true, and reports how many were removed.
	DeleteMatching(ctx context.Context, skip string, match func(key string) bool) (int, error)
}

// NewMedium builds the medium selected by cfg.Medium.
func NewMedium(cfg Config, db *gorm.DB, client storage.Client, bucket string) (Medium, error) {
	switch cfg.Medium {
	case MediumDatabase:
		if db == nil {
			return nil, fmt.Errorf("cache medium %q requires a database connection", cfg.Medium)
		}
		return NewDatabaseMedium(db)
	case MediumObject:
		if client == nil {
			return nil, fmt.Errorf("cache medium %q requires a storage client", cfg.Medium)
		}
		return NewObjectMedium(client, bucket, cfg.ObjectPrefix), nil
	default:
		return nil, fmt.Errorf("unsupported cache medium %q", cfg.Medium)
	}
}
