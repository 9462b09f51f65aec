package integrity

import (
	"context"

	"roster-workbench/core/cachestore"
	"roster-workbench/core/sources"
	"roster-workbench/core/storage"
	"roster-workbench/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks.
type Service struct {
	client storage.Client
	bucket string
	logger *zap.Logger
	db     *gorm.DB
	cache  cachestore.Config
	medium cachestore.Medium
}

// NewService creates a new integrity service. medium is the cache medium in use.
func NewService(client storage.Client, bucket string, logger *zap.Logger, db *gorm.DB, cache cachestore.Config, medium cachestore.Medium) *Service {
	return &Service{
		client: client,
		bucket: bucket,
		logger: logger,
		db:     db,
		cache:  cache,
		medium: medium,
	}
}

// Models lists the GORM models the connected database must carry.
func (s *Service) Models() []any {
	models := sources.Models()
	if s.cache.Medium == cachestore.MediumDatabase {
		models = append(models, &cachestore.CacheEntry{})
	}
	return models
}

// CheckServer validates the database schema against the models.
func (s *Service) CheckServer() (*checks.ServerReport, error) {
	return checks.CheckServerIntegrity(s.db, s.Models())
}

// UsesObjectStorage reports whether the bucket structure matters for this deployment.
func (s *Service) UsesObjectStorage() bool {
	return s.cache.Medium == cachestore.MediumObject
}

// CheckStructure reports on the cache bucket and its object prefix.
func (s *Service) CheckStructure(ctx context.Context) (*checks.StructureReport, error) {
	var folders []string
	if s.cache.ObjectPrefix != "" {
		folders = append(folders, s.cache.ObjectPrefix)
	}
	return checks.CheckStructure(ctx, s.client, s.bucket, folders)
}

// FixStructure creates what CheckStructure found missing.
func (s *Service) FixStructure(ctx context.Context, report *checks.StructureReport) error {
	return checks.FixStructure(ctx, s.client, s.logger, report)
}

// CheckCache round-trips a check entry through the cache medium.
func (s *Service) CheckCache(ctx context.Context) *checks.CacheReport {
	if s.medium == nil {
		return &checks.CacheReport{Medium: s.cache.Medium, Status: "error", Error: "cache medium not configured"}
	}
	return checks.CheckCache(ctx, s.medium, s.cache.Medium)
}
