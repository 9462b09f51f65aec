package reconcile

import "time"

// Config holds configuration for record reconciliation.
type Config struct {
	// IdentityField is the field matching primary and secondary records.
	IdentityField string `mapstructure:"identity_field" default:"student_id"`
	// PartitionDelayMs is the pause between two secondary fetches.
	PartitionDelayMs int `mapstructure:"partition_delay_ms" default:"150"`
	// IncludeUnmatched keeps primary records no partition returned.
	IncludeUnmatched bool `mapstructure:"include_unmatched" default:"false"`
}

// Delay returns the partition delay as a duration.
func (c Config) Delay() time.Duration {
	return time.Duration(c.PartitionDelayMs) * time.Millisecond
}
