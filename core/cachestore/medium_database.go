package cachestore

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CacheEntry is the row layout of the database medium.
type CacheEntry struct {
	CacheKey  string    `gorm:"column:cache_key;primaryKey;size:512"`
	Payload   string    `gorm:"column:payload;type:text"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName pins the table name independent of GORM's naming strategy.
func (CacheEntry) TableName() string {
	return "cache_entries"
}

// DatabaseMedium stores cache envelopes in the cache_entries table.
type DatabaseMedium struct {
	db *gorm.DB
}

// NewDatabaseMedium migrates the cache table and returns the medium.
func NewDatabaseMedium(db *gorm.DB) (*DatabaseMedium, error) {
	if err := db.AutoMigrate(&CacheEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate cache table: %w", err)
	}
	return &DatabaseMedium{db: db}, nil
}

func (m *DatabaseMedium) Read(ctx context.Context, key string) ([]byte, error) {
	var entry CacheEntry
	err := m.db.WithContext(ctx).Where("cache_key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(entry.Payload), nil
}

func (m *DatabaseMedium) Write(ctx context.Context, key string, data []byte) error {
	entry := CacheEntry{CacheKey: key, Payload: string(data), UpdatedAt: time.Now()}
	return m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&entry).Error
}

func (m *DatabaseMedium) Delete(ctx context.Context, key string) error {
	return m.db.WithContext(ctx).Where("cache_key = ?", key).Delete(&CacheEntry{}).Error
}

// DeletePrefix compares a leading substring instead of using LIKE, since scopes may
// contain LIKE wildcards.
func (m *DatabaseMedium) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	res := m.db.WithContext(ctx).
		Where("SUBSTR(cache_key, 1, ?) = ?", utf8.RuneCountInString(prefix), prefix).
		Delete(&CacheEntry{})
	return int(res.RowsAffected), res.Error
}

// deleteBatch bounds the IN list of one DeleteMatching statement.
const deleteBatch = 500

func (m *DatabaseMedium) DeleteMatching(ctx context.Context, skip string, match func(key string) bool) (int, error) {
	var keys []string
	err := m.db.WithContext(ctx).Model(&CacheEntry{}).
		Where("SUBSTR(cache_key, 1, ?) <> ?", utf8.RuneCountInString(skip), skip).
		Pluck("cache_key", &keys).Error
	if err != nil {
		return 0, err
	}

	doomed := keys[:0]
	for _, k := range keys {
		if match(k) {
			doomed = append(doomed, k)
		}
	}

	removed := 0
	for start := 0; start < len(doomed); start += deleteBatch {
		end := min(start+deleteBatch, len(doomed))
		res := m.db.WithContext(ctx).Where("cache_key IN ?", doomed[start:end]).Delete(&CacheEntry{})
		if res.Error != nil {
			return removed, res.Error
		}
		removed += int(res.RowsAffected)
	}
	return removed, nil
}
