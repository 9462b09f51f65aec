package sources

import "time"

// CatalogEntity is one node of the reference hierarchy served to the filter resolver.
type CatalogEntity struct {
	ID          uint   `gorm:"column:id;primaryKey;autoIncrement"`
	Profile     string `gorm:"column:profile;size:64;index:idx_catalog_lookup,priority:1"`
	Level       int    `gorm:"column:level;index:idx_catalog_lookup,priority:2"`
	ParentID    string `gorm:"column:parent_id;size:128;index:idx_catalog_lookup,priority:3"`
	EntityID    string `gorm:"column:entity_id;size:128"`
	DisplayName string `gorm:"column:display_name;size:255"`
	Position    int    `gorm:"column:position"`
}

// TableName overrides the table name.
func (CatalogEntity) TableName() string {
	return "catalog_entities"
}

// PrimaryRecord is an identity-bearing record, e.g. a student account. GroupID is the
// hierarchy entity it belongs to.
type PrimaryRecord struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Profile    string    `gorm:"column:profile;size:64;index:idx_primary_group,priority:1"`
	GroupID    string    `gorm:"column:group_id;size:128;index:idx_primary_group,priority:2"`
	Identity   string    `gorm:"column:identity;size:128"`
	Attributes string    `gorm:"column:attributes;type:text"` // JSON object
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

// TableName overrides the table name.
func (PrimaryRecord) TableName() string {
	return "primary_records"
}

// SecondaryRecord is an attribute-bearing record served per partition, e.g. the
// academic record of a student for one program and semester.
type SecondaryRecord struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Profile      string    `gorm:"column:profile;size:64;index:idx_secondary_partition,priority:1"`
	PartitionKey string    `gorm:"column:partition_key;size:255;index:idx_secondary_partition,priority:2"`
	Identity     string    `gorm:"column:identity;size:128"`
	Attributes   string    `gorm:"column:attributes;type:text"` // JSON object
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

// TableName overrides the table name.
func (SecondaryRecord) TableName() string {
	return "secondary_records"
}

// Models returns one value of every provider model, for migrations and schema checks.
func Models() []any {
	return []any{&CatalogEntity{}, &PrimaryRecord{}, &SecondaryRecord{}}
}
