package cmd

import (
	"fmt"

	"roster-workbench/core/cachestore"
	"roster-workbench/core/config"
	"roster-workbench/core/database"
	"roster-workbench/core/logger"
	"roster-workbench/core/sources"
	"roster-workbench/core/storage"
	"roster-workbench/feature/roster"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime is everything a command needs after startup.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	client storage.Client
	medium cachestore.Medium
	store  *cachestore.Store
	roster *roster.Service
}

// bootstrap loads the configuration and connects the database, object storage and
// cache store. The schema is migrated unless migrate is false.
func bootstrap(migrate bool) (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database connection required: %w", err)
	}
	logg = logg.With(zap.String("profile", cfg.Server.Profile))

	if migrate {
		if err := sources.Migrate(db); err != nil {
			return nil, err
		}
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	medium, err := cachestore.NewMedium(cfg.Cache, db, client, cfg.Storage.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache medium: %w", err)
	}
	store := cachestore.New(medium, cfg.Cache, logg)

	return &runtime{
		cfg:    cfg,
		logger: logg,
		db:     db,
		client: client,
		medium: medium,
		store:  store,
		roster: roster.NewService(db, store, logg, cfg.Hierarchy, cfg.Reconcile, cfg.Server.Profile),
	}, nil
}

func (r *runtime) Close() {
	r.store.Close()
	_ = r.logger.Sync()
}
