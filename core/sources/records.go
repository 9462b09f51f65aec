package sources

import (
	"context"
	"encoding/json"
	"fmt"

	"roster-workbench/core/hierarchy"
	"roster-workbench/core/reconcile"

	"gorm.io/gorm"
)

// Records serves primary and secondary rows of one profile. Every row carries its
// identity under identityField.
type Records struct {
	db            *gorm.DB
	profile       string
	identityField string
}

// NewRecords creates a record provider.
func NewRecords(db *gorm.DB, profile, identityField string) *Records {
	return &Records{db: db, profile: profile, identityField: identityField}
}

// Primary returns the primary rows belonging to any of groupIDs, in insertion order.
func (r *Records) Primary(ctx context.Context, groupIDs []string) ([]reconcile.Row, error) {
	if len(groupIDs) == 0 {
		return []reconcile.Row{}, nil
	}

	var recs []PrimaryRecord
	err := r.db.WithContext(ctx).
		Where("profile = ? AND group_id IN ?", r.profile, groupIDs).
		Order("id").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query primary records: %w", err)
	}

	out := make([]reconcile.Row, 0, len(recs))
	for _, rec := range recs {
		row, err := r.toRow(rec.Identity, rec.Attributes)
		if err != nil {
			return nil, fmt.Errorf("primary record %d: %w", rec.ID, err)
		}
		out = append(out, row)
	}
	return out, nil
}

// FetchForPartition returns the secondary rows stored for one partition.
func (r *Records) FetchForPartition(ctx context.Context, p hierarchy.Partition) ([]reconcile.Row, error) {
	var recs []SecondaryRecord
	err := r.db.WithContext(ctx).
		Where("profile = ? AND partition_key = ?", r.profile, p.Key()).
		Order("id").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query partition %s: %w", p.Key(), err)
	}

	out := make([]reconcile.Row, 0, len(recs))
	for _, rec := range recs {
		row, err := r.toRow(rec.Identity, rec.Attributes)
		if err != nil {
			return nil, fmt.Errorf("secondary record %d: %w", rec.ID, err)
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *Records) toRow(identity, attributes string) (reconcile.Row, error) {
	row := reconcile.Row{}
	if attributes != "" {
		if err := json.Unmarshal([]byte(attributes), &row); err != nil {
			return nil, fmt.Errorf("invalid attributes: %w", err)
		}
		if row == nil {
			row = reconcile.Row{}
		}
	}
	row[r.identityField] = identity
	return row, nil
}
