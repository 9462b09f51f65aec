package sources

import (
	"context"
	"fmt"

	"roster-workbench/core/hierarchy"

	"gorm.io/gorm"
)

// Catalog serves hierarchy children from the catalog_entities table of one profile.
type Catalog struct {
	db      *gorm.DB
	profile string
}

// NewCatalog creates a catalog provider for profile.
func NewCatalog(db *gorm.DB, profile string) *Catalog {
	return &Catalog{db: db, profile: profile}
}

// FetchChildren returns the entities of level whose parent is parentID, in position order.
func (c *Catalog) FetchChildren(ctx context.Context, level int, parentID string) ([]hierarchy.Entity, error) {
	var rows []CatalogEntity
	err := c.db.WithContext(ctx).
		Where("profile = ? AND level = ? AND parent_id = ?", c.profile, level, parentID).
		Order("position, entity_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog level %d: %w", level, err)
	}

	out := make([]hierarchy.Entity, 0, len(rows))
	for _, r := range rows {
		out = append(out, hierarchy.Entity{ID: r.EntityID, DisplayName: r.DisplayName, ParentID: r.ParentID})
	}
	return out, nil
}
