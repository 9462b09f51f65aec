package cachestore

import "time"

const (
	MediumDatabase = "database"
	MediumObject   = "object"
)

// Config holds configuration for the cache store.
type Config struct {
	// Medium selects the persistent medium (database, object).
	Medium string `mapstructure:"medium" default:"database"`
	// Namespace is the fixed namespace tag of every key.
	Namespace string `mapstructure:"namespace" default:"portal"`
	// Version is the schema version tag; bumping it orphans older entries.
	Version string `mapstructure:"version" default:"v1"`
	// TTLMinutes is the default time-to-live of option lists.
	TTLMinutes int `mapstructure:"ttl_minutes" default:"30"`
	// HotCapacity bounds the in-process hot tier. Zero disables it.
	HotCapacity int `mapstructure:"hot_capacity" default:"10000"`
	// HotTTLSeconds bounds how long the hot tier serves an entry without rereading the
	// medium, so resets made by other processes are seen within that window.
	HotTTLSeconds int `mapstructure:"hot_ttl_seconds" default:"30"`
	// ObjectPrefix is the key prefix used by the object medium.
	ObjectPrefix string `mapstructure:"object_prefix" default:"cache"`
	// LegacyFallback enables reads of the old unprefixed key scheme.
	LegacyFallback bool `mapstructure:"legacy_fallback" default:"true"`
}

// IsValidMedium checks if the configured medium is supported.
func (c Config) IsValidMedium() bool {
	switch c.Medium {
	case MediumDatabase, MediumObject:
		return true
	default:
		return false
	}
}

// HotTTL returns the hot tier bound. Zero or less falls back to 30 seconds.
func (c Config) HotTTL() time.Duration {
	if c.HotTTLSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.HotTTLSeconds) * time.Second
}

// DefaultTTL returns the configured TTL as a duration.
func (c Config) DefaultTTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}
