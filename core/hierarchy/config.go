package hierarchy

import (
	"fmt"

	"roster-workbench/core/utils"
)

// Config holds configuration for the filter hierarchy.
type Config struct {
	// Levels is the comma separated list of level names, root first.
	Levels string `mapstructure:"levels" default:"college,department,program,semester"`
	// Dedupe is the option de-duplication policy (id, name).
	Dedupe string `mapstructure:"dedupe" default:"id"`
	// Concurrency bounds parallel option fetches per level.
	Concurrency int `mapstructure:"concurrency" default:"4"`
	// PartitionDepth is how many trailing levels form a record partition.
	PartitionDepth int `mapstructure:"partition_depth" default:"2"`
}

// LevelNames returns the parsed level list.
func (c Config) LevelNames() []string {
	return utils.SplitList(c.Levels)
}

// Validate checks the level list and dedupe policy.
func (c Config) Validate() error {
	names := c.LevelNames()
	if len(names) == 0 {
		return fmt.Errorf("hierarchy needs at least one level")
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return fmt.Errorf("level %q is listed twice", n)
		}
		seen[n] = true
	}
	if !DedupeKey(c.Dedupe).IsValid() {
		return fmt.Errorf("unknown dedupe policy %q", c.Dedupe)
	}
	if c.PartitionDepth < 1 || c.PartitionDepth > len(names) {
		return fmt.Errorf("partition depth %d out of range 1..%d", c.PartitionDepth, len(names))
	}
	return nil
}
