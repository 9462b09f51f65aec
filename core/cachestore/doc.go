// Package cachestore provides a namespaced, versioned, TTL-expiring key/value cache
// backed by a persistent medium.
//
// The store exists to avoid redundant round trips to the catalog and record
// providers. It is never the source of truth: every miss must be resolvable by asking
// the provider again, and every failure inside the store degrades to a miss.
//
// # Keys
//
// A Key is composed from a namespace tag, a schema version tag, an owner scope (a
// user id, or a resource chain such as "collegeX:deptY") and a logical name:
//
//	portal:v1:u42:options:1:C1
//
// # Envelopes
//
// Values are stored as a JSON envelope {"value": ..., "expiresAt": <unix ms>|null}.
// A read of an envelope whose expiresAt has passed is a miss and evicts the entry.
// Entries without expiresAt never expire. Nothing is garbage collected proactively.
//
// # Legacy keys
//
// Older deployments wrote bare JSON values under unprefixed keys. When LegacyFallback
// is enabled, Get falls back to those keys after a miss under the current scheme.
// The store never writes the legacy scheme. A legacy hit is moved under the current
// key with the default TTL and the legacy key is deleted; eviction, Invalidate and
// ResetScope remove legacy twins as well.
//
// # Mediums
//
//   - DatabaseMedium: a cache_entries table through GORM (MySQL or SQLite).
//   - ObjectMedium: one object per key in an S3/MinIO bucket.
//
// A ttlcache hot tier sits in front of the medium so repeated reads within one
// process skip the medium. It trusts an entry for at most HotTTLSeconds, after which
// the medium is read again and resets made by other processes become visible.
package cachestore
