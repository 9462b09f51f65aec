package cachestore

import (
	"context"
	"errors"
	"strings"

	"roster-workbench/core/storage"

	"github.com/minio/minio-go/v7"
)

// ObjectMedium stores each cache envelope as one object under a bucket prefix.
type ObjectMedium struct {
	client storage.Client
	bucket string
	prefix string
}

// NewObjectMedium returns a medium writing objects named "<prefix>/<key>".
func NewObjectMedium(client storage.Client, bucket, prefix string) *ObjectMedium {
	return &ObjectMedium{client: client, bucket: bucket, prefix: prefix}
}

func (m *ObjectMedium) objectName(key string) string {
	if m.prefix == "" {
		return key
	}
	return m.prefix + "/" + key
}

func (m *ObjectMedium) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := storage.ReadObject(ctx, m.client, m.bucket, m.objectName(key))
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, ErrNotFound
	}
	return data, err
}

func (m *ObjectMedium) Write(ctx context.Context, key string, data []byte) error {
	return storage.WriteObject(ctx, m.client, m.bucket, m.objectName(key), data)
}

func (m *ObjectMedium) Delete(ctx context.Context, key string) error {
	return m.client.RemoveObject(ctx, m.bucket, m.objectName(key), minio.RemoveObjectOptions{})
}

func (m *ObjectMedium) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	return storage.RemovePrefix(ctx, m.client, m.bucket, m.objectName(prefix))
}

func (m *ObjectMedium) DeleteMatching(ctx context.Context, skip string, match func(key string) bool) (int, error) {
	root := m.objectName("")
	return storage.RemoveMatching(ctx, m.client, m.bucket, root, func(name string) bool {
		key := strings.TrimPrefix(name, root)
		return !strings.HasPrefix(key, skip) && match(key)
	})
}
