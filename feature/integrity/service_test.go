package integrity

import (
	"context"
	"testing"

	"roster-workbench/core/cachestore"
	"roster-workbench/core/database"
	"roster-workbench/core/sources"
	"roster-workbench/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func cacheConfig(medium string) cachestore.Config {
	return cachestore.Config{Medium: medium, Namespace: "portal", Version: "v1", ObjectPrefix: "cache"}
}

// setupDB creates a migrated in-memory database with a database cache medium.
func setupDB(t *testing.T) (*gorm.DB, cachestore.Medium) {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, sources.Migrate(db))
	medium, err := cachestore.NewDatabaseMedium(db)
	require.NoError(t, err)
	return db, medium
}

func TestService_Models(t *testing.T) {
	svc := NewService(nil, "", zap.NewNop(), nil, cacheConfig(cachestore.MediumDatabase), nil)
	assert.Len(t, svc.Models(), 4)

	svc = NewService(nil, "", zap.NewNop(), nil, cacheConfig(cachestore.MediumObject), nil)
	assert.Len(t, svc.Models(), 3)
	assert.True(t, svc.UsesObjectStorage())
}

func TestService_CheckServer(t *testing.T) {
	db, medium := setupDB(t)
	svc := NewService(nil, "", zap.NewNop(), db, cacheConfig(cachestore.MediumDatabase), medium)

	report, err := svc.CheckServer()
	require.NoError(t, err)
	assert.True(t, report.Matched)
	assert.Contains(t, report.Tables, "cache_entries")
}

func TestService_Structure(t *testing.T) {
	mockClient := new(mocks.Client)
	svc := NewService(mockClient, "test-bucket", zap.NewNop(), nil, cacheConfig(cachestore.MediumObject), nil)

	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
	mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return(func(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
		ch := make(chan minio.ObjectInfo)
		close(ch)
		return ch
	})
	mockClient.On("PutObject", mock.Anything, "test-bucket", "cache/", mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)

	report, err := svc.CheckStructure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"cache"}, report.Missing)

	require.NoError(t, svc.FixStructure(context.Background(), report))
	mockClient.AssertCalled(t, "PutObject", mock.Anything, "test-bucket", "cache/", mock.Anything, int64(0), mock.Anything)
}

func TestService_CheckCache(t *testing.T) {
	_, medium := setupDB(t)

	svc := NewService(nil, "", zap.NewNop(), nil, cacheConfig(cachestore.MediumDatabase), medium)
	assert.Equal(t, "ok", svc.CheckCache(context.Background()).Status)

	svc = NewService(nil, "", zap.NewNop(), nil, cacheConfig(cachestore.MediumDatabase), nil)
	report := svc.CheckCache(context.Background())
	assert.Equal(t, "error", report.Status)
	assert.Equal(t, "cache medium not configured", report.Error)
}
