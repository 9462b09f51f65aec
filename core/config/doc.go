// Package config provides configuration management for the roster workbench.
//
// Values come from environment variables, optionally seeded from a .env file. Keys
// map to nested sections with "_" (CACHE_TTL_MINUTES -> cache.ttl_minutes), and every
// field's default is declared in its `default` struct tag.
//
// # Configuration Structure
//
//   - Server: port, default profile and request limits
//   - Database: MySQL or SQLite connection
//   - Storage: S3/MinIO credentials and bucket (object cache medium)
//   - Log: level and format
//   - Cache: medium, namespace/version tags, TTL and hot tier size
//   - Hierarchy: level names, de-duplication policy, fan-out and partition depth
//   - Reconcile: identity field, partition delay, unmatched policy
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Hierarchy.LevelNames())
package config
