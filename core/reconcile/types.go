package reconcile

import (
	"fmt"
	"maps"
	"strings"
)

// Row is one record from either source, keyed by field name.
type Row map[string]any

// Clone returns a shallow copy of r.
func (r Row) Clone() Row {
	if r == nil {
		return Row{}
	}
	return maps.Clone(r)
}

// merge copies src over r, src winning on collision.
func (r Row) merge(src Row) {
	for k, v := range src {
		r[k] = v
	}
}

// JoinType selects the equality join semantics.
type JoinType string

const (
	// JoinInner emits one row per matching pair.
	JoinInner JoinType = "inner"
	// JoinLeft also emits left rows without a match.
	JoinLeft JoinType = "left"
	// JoinRight emits the inner rows plus right rows no left row matched.
	JoinRight JoinType = "right"
)

// ParseJoinType parses a join type name. An empty name means JoinInner.
func ParseJoinType(s string) (JoinType, error) {
	switch t := JoinType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return JoinInner, nil
	case JoinInner, JoinLeft, JoinRight:
		return t, nil
	default:
		return "", fmt.Errorf("unknown join type %q", s)
	}
}

// ResultSet is what a resolution cycle hands to a projector or exporter.
type ResultSet struct {
	reconciled *Accumulation
	joined     []Row
}

// NewResultSet bundles an accumulation and joined rows; either may be nil.
func NewResultSet(acc *Accumulation, joined []Row) *ResultSet {
	return &ResultSet{reconciled: acc, joined: joined}
}

// ReconciledRows returns the accumulated rows in first-seen identity order.
func (r *ResultSet) ReconciledRows() []Row {
	if r.reconciled == nil {
		return []Row{}
	}
	return r.reconciled.Rows()
}

// JoinedRows returns the equality join output.
func (r *ResultSet) JoinedRows() []Row {
	out := make([]Row, len(r.joined))
	for i, row := range r.joined {
		out[i] = row.Clone()
	}
	return out
}
