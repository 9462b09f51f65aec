package hierarchy

import (
	"context"
	"strings"
	"time"

	"roster-workbench/core/cachestore"
	"roster-workbench/core/utils"

	"go.uber.org/zap"
)

// All is the selection sentinel meaning "every option currently loaded at this level".
const All = "*"

// Entity is one catalog item.
type Entity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	ParentID    string `json:"parentId,omitempty"`
}

// Provider supplies the children of a parent entity at a level. Level 0 is called
// with an empty parentID. Implementations must be idempotent and safe to retry.
type Provider interface {
	FetchChildren(ctx context.Context, level int, parentID string) ([]Entity, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, level int, parentID string) ([]Entity, error)

func (f ProviderFunc) FetchChildren(ctx context.Context, level int, parentID string) ([]Entity, error) {
	return f(ctx, level, parentID)
}

// OptionCache is the subset of the cache store the resolver needs.
type OptionCache interface {
	Key(scope, name string) cachestore.Key
	Get(ctx context.Context, key cachestore.Key, dst any) bool
	Set(ctx context.Context, key cachestore.Key, value any, ttl time.Duration)
}

// DedupeKey selects how option lists merged from several parents are de-duplicated.
type DedupeKey string

const (
	// DedupeByID treats entities with the same id as one option. Entities without an id
	// fall back to their normalized display name.
	DedupeByID DedupeKey = "id"
	// DedupeByDisplayName treats entities whose trimmed, case-folded display names match
	// as one option. Distinct entities sharing a name collapse into the first one seen.
	DedupeByDisplayName DedupeKey = "name"
)

// IsValid reports whether d is a known policy.
func (d DedupeKey) IsValid() bool {
	return d == DedupeByID || d == DedupeByDisplayName
}

func (d DedupeKey) key(e Entity) string {
	if d == DedupeByDisplayName || e.ID == "" {
		return "name:" + utils.NormalizeName(e.DisplayName)
	}
	return "id:" + e.ID
}

// Session is the explicit caller context a resolver is built for. Scope is the
// owner-scope of cache keys (a user id, or a resource chain such as "collegeX:deptY");
// Profile selects which catalog and record endpoints serve the caller.
type Session struct {
	Scope   string `json:"scope"`
	Profile string `json:"profile"`
}

// State is the load state of one level.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "empty"
	}
}

// MarshalText renders the state name in JSON responses.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Options configures a Resolver.
type Options struct {
	// Levels names each level, root first. Its length fixes the depth.
	Levels []string
	// Dedupe is the option de-duplication policy. Defaults to DedupeByID.
	Dedupe DedupeKey
	// Concurrency bounds parallel provider calls for one level. Defaults to 4.
	Concurrency int
	// TTL is the lifetime of cached option lists. Zero stores entries without expiry.
	TTL time.Duration
	// Logger receives provider warnings. Nil discards them.
	Logger *zap.Logger
}

// LevelView is a read-only snapshot of one level.
type LevelView struct {
	Index    int      `json:"index"`
	Name     string   `json:"name"`
	State    State    `json:"state"`
	Options  []Entity `json:"options"`
	Selected []string `json:"selected"`
	Warnings []string `json:"warnings,omitempty"`
}

// FilterTuple is the concrete selection of every level with All expanded.
type FilterTuple struct {
	Names []string   `json:"names"`
	IDs   [][]string `json:"ids"`
}

// Partition is one concrete leaf combination of a tuple, e.g. one program and one semester.
type Partition struct {
	Levels []string `json:"levels"`
	IDs    []string `json:"ids"`
}

// Key joins the partition ids; it is stable for a given combination.
func (p Partition) Key() string {
	return strings.Join(p.IDs, "|")
}

// ID returns the partition's id at the named level, or "" if the level is not part of it.
func (p Partition) ID(level string) string {
	for i, name := range p.Levels {
		if name == level {
			return p.IDs[i]
		}
	}
	return ""
}

// Level returns the ids selected at the named level.
func (t FilterTuple) Level(name string) []string {
	for i, n := range t.Names {
		if n == name {
			return t.IDs[i]
		}
	}
	return nil
}

// Partitions returns the cross product of the last depth levels, outermost level
// varying slowest. Ancestor levels above depth only constrain which options existed.
// depth is clamped to [1, number of levels].
//
// The product does not consult parentage. Option lists are de-duplicated across parents,
// so an id such as semester "1" stands for every program that offers it and one
// ParentID cannot tell which combinations exist. When child ids are parent-specific
// (semester "P2-S1"), combinations such as P1|P2-S1 are produced too; fetching them
// returns no rows and costs one provider call each.
func (t FilterTuple) Partitions(depth int) []Partition {
	n := len(t.IDs)
	if n == 0 {
		return nil
	}
	if depth < 1 {
		depth = 1
	}
	if depth > n {
		depth = n
	}
	names := t.Names[n-depth:]
	axes := t.IDs[n-depth:]

	combos := [][]string{{}}
	for _, axis := range axes {
		next := make([][]string, 0, len(combos)*len(axis))
		for _, prefix := range combos {
			for _, id := range axis {
				combo := make([]string, len(prefix), len(prefix)+1)
				copy(combo, prefix)
				next = append(next, append(combo, id))
			}
		}
		combos = next
	}

	out := make([]Partition, 0, len(combos))
	for _, ids := range combos {
		out = append(out, Partition{Levels: names, IDs: ids})
	}
	return out
}
