package sources

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
)

// Migrate creates or updates the provider tables.
func Migrate(db *gorm.DB) error {
	for _, model := range Models() {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}
	return nil
}

type demoStudent struct {
	id     string
	group  string
	fields map[string]any
}

type demoResult struct {
	partition string
	id        string
	fields    map[string]any
}

// SeedDemo replaces the data of profile with a small demo hierarchy:
// college C1 with departments D1 and D2, programs P1 (D1) and P2 (D2), and
// semesters 1 and 2 under each program, plus a handful of students and results.
func SeedDemo(ctx context.Context, db *gorm.DB, profile string) error {
	catalog := []CatalogEntity{
		{Level: 0, EntityID: "C1", DisplayName: "College of Engineering", Position: 1},
		{Level: 1, ParentID: "C1", EntityID: "D1", DisplayName: "Computer Science", Position: 1},
		{Level: 1, ParentID: "C1", EntityID: "D2", DisplayName: "Electrical Engineering", Position: 2},
		{Level: 2, ParentID: "D1", EntityID: "P1", DisplayName: "BSc Computer Science", Position: 1},
		{Level: 2, ParentID: "D2", EntityID: "P2", DisplayName: "BSc Electrical Engineering", Position: 1},
	}
	for _, program := range []string{"P1", "P2"} {
		for i, sem := range []string{"1", "2"} {
			catalog = append(catalog, CatalogEntity{
				Level: 3, ParentID: program, EntityID: sem, DisplayName: "Semester " + sem, Position: i + 1,
			})
		}
	}

	students := []demoStudent{
		{"s1", "D1", map[string]any{"name": "Ada Lovelace", "email": "ada@example.edu"}},
		{"s2", "D1", map[string]any{"name": "Alan Turing", "email": "alan@example.edu"}},
		{"s3", "D2", map[string]any{"name": "Grace Hopper", "email": "grace@example.edu"}},
		{"s4", "D2", map[string]any{"name": "Claude Shannon", "email": "claude@example.edu"}},
	}

	results := []demoResult{
		{"P1|1", "s1", map[string]any{"program": "P1", "semester": 1, "gpa": 3.8, "status": "enrolled"}},
		{"P1|1", "s2", map[string]any{"program": "P1", "semester": 1, "gpa": 3.1, "status": "enrolled"}},
		{"P1|2", "s1", map[string]any{"program": "P1", "semester": 2, "gpa": 3.9, "status": "enrolled"}},
		{"P2|1", "s3", map[string]any{"program": "P2", "semester": 1, "gpa": 3.5, "status": "pending"}},
		{"P2|2", "s3", map[string]any{"program": "P2", "semester": 2, "gpa": 3.6, "status": "enrolled"}},
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&CatalogEntity{}, &PrimaryRecord{}, &SecondaryRecord{}} {
			if err := tx.Where("profile = ?", profile).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to clear demo data: %w", err)
			}
		}

		for i := range catalog {
			catalog[i].Profile = profile
		}
		if err := tx.Create(&catalog).Error; err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}

		for _, s := range students {
			attrs, err := json.Marshal(s.fields)
			if err != nil {
				return err
			}
			rec := PrimaryRecord{Profile: profile, GroupID: s.group, Identity: s.id, Attributes: string(attrs)}
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("failed to seed primary record %s: %w", s.id, err)
			}
		}

		for _, r := range results {
			attrs, err := json.Marshal(r.fields)
			if err != nil {
				return err
			}
			rec := SecondaryRecord{Profile: profile, PartitionKey: r.partition, Identity: r.id, Attributes: string(attrs)}
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("failed to seed secondary record %s: %w", r.id, err)
			}
		}
		return nil
	})
}
