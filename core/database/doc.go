// Package database handles database connections and schema inspection.
//
// It wraps GORM to open either MySQL (production) or SQLite (local runs, tests)
// based on the application's configuration. The connection backs the cache store's
// database medium and the record providers in core/sources.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns read the live table definitions so the integrity
// feature can report tables that drifted from the models the application migrates.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "cache_entries", []string{"cache_key", "payload"})
package database
