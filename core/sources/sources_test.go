package sources_test

import (
	"context"
	"regexp"
	"testing"

	"roster-workbench/core/database"
	"roster-workbench/core/hierarchy"
	"roster-workbench/core/reconcile"
	"roster-workbench/core/sources"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func seededDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, sources.Migrate(db))
	require.NoError(t, sources.SeedDemo(context.Background(), db, "default"))
	return db
}

func TestCatalog_FetchChildren(t *testing.T) {
	ctx := context.Background()
	db := seededDB(t)
	catalog := sources.NewCatalog(db, "default")

	tests := []struct {
		name   string
		level  int
		parent string
		want   []string
	}{
		{"Root", 0, "", []string{"C1"}},
		{"Departments", 1, "C1", []string{"D1", "D2"}},
		{"Programs", 2, "D2", []string{"P2"}},
		{"Semesters", 3, "P1", []string{"1", "2"}},
		{"Unknown parent", 1, "C9", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := catalog.FetchChildren(ctx, tt.level, tt.parent)
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, e := range got {
				ids = append(ids, e.ID)
				assert.Equal(t, tt.parent, e.ParentID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	// Another profile sees nothing.
	other, err := sources.NewCatalog(db, "theme-b").FetchChildren(ctx, 0, "")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestCatalog_QueryError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `catalog_entities`")).WillReturnError(assert.AnError)

	_, err = sources.NewCatalog(db, "default").FetchChildren(context.Background(), 0, "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "catalog level 0")
}

func TestRecords_Primary(t *testing.T) {
	ctx := context.Background()
	records := sources.NewRecords(seededDB(t), "default", "student_id")

	rows, err := records.Primary(ctx, []string{"C1", "D1"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "s1", rows[0]["student_id"])
	assert.Equal(t, "Ada Lovelace", rows[0]["name"])
	assert.Equal(t, "s2", rows[1]["student_id"])

	rows, err = records.Primary(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRecords_FetchForPartition(t *testing.T) {
	ctx := context.Background()
	records := sources.NewRecords(seededDB(t), "default", "student_id")

	p := hierarchy.Partition{Levels: []string{"program", "semester"}, IDs: []string{"P1", "1"}}
	rows, err := records.FetchForPartition(ctx, p)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, reconcile.Row{
		"student_id": "s1",
		"program":    "P1",
		"semester":   float64(1),
		"gpa":        3.8,
		"status":     "enrolled",
	}, rows[0])

	p.IDs = []string{"P2", "2"}
	rows, err = records.FetchForPartition(ctx, p)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "s3", rows[0]["student_id"])
}

func TestRecords_InvalidAttributes(t *testing.T) {
	ctx := context.Background()
	db := seededDB(t)
	require.NoError(t, db.Create(&sources.PrimaryRecord{Profile: "broken", GroupID: "D1", Identity: "x", Attributes: "{nope"}).Error)
	require.NoError(t, db.Create(&sources.PrimaryRecord{Profile: "nulls", GroupID: "D1", Identity: "y", Attributes: "null"}).Error)

	_, err := sources.NewRecords(db, "broken", "id").Primary(ctx, []string{"D1"})
	assert.Error(t, err)

	rows, err := sources.NewRecords(db, "nulls", "id").Primary(ctx, []string{"D1"})
	require.NoError(t, err)
	assert.Equal(t, []reconcile.Row{{"id": "y"}}, rows)
}

func TestSeedDemo_Idempotent(t *testing.T) {
	db := seededDB(t)
	require.NoError(t, sources.SeedDemo(context.Background(), db, "default"))

	var count int64
	require.NoError(t, db.Model(&sources.CatalogEntity{}).Count(&count).Error)
	assert.Equal(t, int64(9), count)
	require.NoError(t, db.Model(&sources.SecondaryRecord{}).Count(&count).Error)
	assert.Equal(t, int64(5), count)
}

func TestMigrate_CreatesColumns(t *testing.T) {
	db := seededDB(t)
	missing, err := database.MissingColumns(db, "secondary_records", []string{"profile", "partition_key", "identity", "attributes"})
	require.NoError(t, err)
	assert.Empty(t, missing)
}
