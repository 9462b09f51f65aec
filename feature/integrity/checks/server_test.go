package checks

import (
	"testing"

	"roster-workbench/core/cachestore"
	"roster-workbench/core/database"
	"roster-workbench/core/sources"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type sampleModel struct {
	ID      uint   `gorm:"column:id;primaryKey"`
	Name    string `gorm:"column:name;size:64"`
	Payload string `gorm:"column:payload;type:text"`
	Ignored string `gorm:"-"`
}

func (sampleModel) TableName() string {
	return "samples"
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestCheckServerIntegrity_NilDB(t *testing.T) {
	report, err := CheckServerIntegrity(nil, []any{sampleModel{}})
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestCheckServerIntegrity_NoModels(t *testing.T) {
	db, _ := setupMockDB(t)
	_, err := CheckServerIntegrity(db, nil)
	assert.Error(t, err)
}

func TestCheckServerIntegrity_NotAStruct(t *testing.T) {
	db, _ := setupMockDB(t)
	_, err := CheckServerIntegrity(db, []any{"samples"})
	assert.Error(t, err)
}

func TestCheckServerIntegrity_MissingColumn(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
	rows.AddRow("id", "int(11)", "NO", "PRI", nil, "auto_increment")
	rows.AddRow("payload", "text", "YES", "", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `samples`").WillReturnRows(rows)

	report, err := CheckServerIntegrity(db, []any{&sampleModel{}})
	require.NoError(t, err)
	assert.Equal(t, "mysql", report.Driver)
	assert.False(t, report.Matched)

	tbl, ok := report.Tables["samples"]
	require.True(t, ok)
	assert.Equal(t, "error", tbl.Status)
	assert.Equal(t, []string{"name"}, tbl.MissingColumns)
	assert.Empty(t, tbl.TypeMismatches)
}

func TestCheckServerIntegrity_TypeMismatch(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
	rows.AddRow("id", "int(11)", "NO", "PRI", nil, "")
	rows.AddRow("name", "varchar(64)", "YES", "", nil, "")
	rows.AddRow("payload", "VARCHAR(255)", "YES", "", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `samples`").WillReturnRows(rows)

	report, err := CheckServerIntegrity(db, []any{sampleModel{}})
	require.NoError(t, err)
	assert.False(t, report.Matched)
	assert.Equal(t, []string{"payload: expected text, got varchar(255)"}, report.Tables["samples"].TypeMismatches)
}

func TestCheckServerIntegrity_InspectError(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SHOW COLUMNS FROM `samples`").WillReturnError(assert.AnError)

	report, err := CheckServerIntegrity(db, []any{sampleModel{}})
	require.NoError(t, err)
	assert.False(t, report.Matched)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "samples")
}

func TestCheckServerIntegrity_MigratedSQLite(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, sources.Migrate(db))
	_, err = cachestore.NewDatabaseMedium(db)
	require.NoError(t, err)

	models := append(sources.Models(), &cachestore.CacheEntry{})
	report, err := CheckServerIntegrity(db, models)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", report.Driver)
	assert.True(t, report.Matched, "%+v", report)
	assert.Len(t, report.Tables, 4)
	for name, tbl := range report.Tables {
		assert.Equal(t, "ok", tbl.Status, name)
	}

	// Tables that were never created report every column missing.
	report, err = CheckServerIntegrity(db, []any{sampleModel{}})
	require.NoError(t, err)
	assert.False(t, report.Matched)
	assert.Equal(t, []string{"id", "name", "payload"}, report.Tables["samples"].MissingColumns)
}

func TestParseGormTags(t *testing.T) {
	assert.Equal(t, "id", parseGormColumn("column:id;primaryKey"))
	assert.Equal(t, "item_name", parseGormColumn("primaryKey;column:item_name;type:varchar(100)"))
	assert.Equal(t, "", parseGormColumn("primaryKey"))

	assert.Equal(t, "int(11)", parseGormType("column:id;type:int(11)"))
	assert.Equal(t, "", parseGormType("column:id"))
}
