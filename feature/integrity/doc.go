// Package integrity provides health checks for the stores the roster core relies on.
//
// # Checks Provided
//
//   - Server: validates that the connected database carries the catalog, record and
//     (for the database medium) cache tables with the expected columns.
//   - Structure: for the object medium, checks that the cache bucket and prefix exist.
//   - Cache: writes, reads and deletes a check entry on the cache medium.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure : Runs structure check (supports ?fix=true).
//   - GET /integrity/server : Runs server schema check.
//   - GET /integrity/cache : Runs cache medium check.
package integrity
