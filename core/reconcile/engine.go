package reconcile

import (
	"context"
	"fmt"
	"time"

	"roster-workbench/core/errs"
	"roster-workbench/core/utils"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// Join performs an equality join of left and right on left[leftKey] == right[rightKey],
// both compared in their string form.
//
// Every match produces its own output row with right fields overriding left ones, so a
// left row with three matches yields three rows. Rows without a usable key never match.
// Output follows left order, then (for JoinRight) unmatched right rows in right order.
func Join(left, right []Row, leftKey, rightKey string, joinType JoinType) []Row {
	index := make(map[string][]Row)
	for _, r := range right {
		if k, ok := utils.KeyOf(r, rightKey); ok {
			index[k] = append(index[k], r)
		}
	}

	matched := mapset.NewThreadUnsafeSet[string]()
	out := make([]Row, 0, len(left))
	for _, l := range left {
		k, ok := utils.KeyOf(l, leftKey)
		var matches []Row
		if ok {
			matches = index[k]
		}
		if len(matches) == 0 {
			if joinType == JoinLeft {
				out = append(out, l.Clone())
			}
			continue
		}
		matched.Add(k)
		for _, m := range matches {
			row := l.Clone()
			row.merge(m)
			out = append(out, row)
		}
	}

	if joinType == JoinRight {
		for _, r := range right {
			if k, ok := utils.KeyOf(r, rightKey); ok && matched.Contains(k) {
				continue
			}
			out = append(out, r.Clone())
		}
	}
	return out
}

// FetchFunc returns the secondary rows of one partition.
type FetchFunc[P any] func(ctx context.Context, partition P) ([]Row, error)

// AccumulateOptions controls an identity-keyed accumulation.
type AccumulateOptions struct {
	// IdentityField is the field shared by primary and secondary rows.
	IdentityField string
	// Delay is waited between two partition fetches.
	Delay time.Duration
	// IncludeUnmatchedPrimary appends primary rows no partition returned, in primary order.
	IncludeUnmatchedPrimary bool
	// RequirePrimary drops secondary rows whose identity has no primary row.
	RequirePrimary bool
	// Logger receives partition progress and failures. Nil discards them.
	Logger *zap.Logger
}

// Accumulation is the ordered identity map built by Accumulate.
type Accumulation struct {
	order    []string
	rows     map[string]Row
	fetched  int
	warnings *multierror.Error
}

func newAccumulation() *Accumulation {
	return &Accumulation{rows: make(map[string]Row)}
}

func (a *Accumulation) upsert(id string, base, fields Row) {
	row, ok := a.rows[id]
	if !ok {
		row = base.Clone()
		a.rows[id] = row
		a.order = append(a.order, id)
	}
	row.merge(fields)
}

// Rows returns copies of the reconciled rows in first-seen identity order.
func (a *Accumulation) Rows() []Row {
	out := make([]Row, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.rows[id].Clone())
	}
	return out
}

// Get returns the reconciled row of one identity.
func (a *Accumulation) Get(id string) (Row, bool) {
	row, ok := a.rows[id]
	if !ok {
		return nil, false
	}
	return row.Clone(), true
}

// IDs returns the identities in first-seen order.
func (a *Accumulation) IDs() []string {
	return append([]string(nil), a.order...)
}

// Len returns the number of reconciled rows.
func (a *Accumulation) Len() int {
	return len(a.order)
}

// Fetched returns how many partition fetches were issued.
func (a *Accumulation) Fetched() int {
	return a.fetched
}

// Warnings returns the partition failures, or nil.
func (a *Accumulation) Warnings() error {
	return a.warnings.ErrorOrNil()
}

// Accumulate merges primary rows with the secondary rows of every partition into one
// identity-keyed map.
//
// Partitions are fetched one after another, waiting opts.Delay between calls. The first
// pass that returns an identity creates its row from the primary record; every pass then
// overwrites the fields it supplies, so later partitions win field by field. A failed
// partition is skipped and recorded as a warning. The only error returned is the
// context's, together with what was accumulated so far.
func Accumulate[P any](ctx context.Context, primary []Row, partitions []P, fetch FetchFunc[P], opts AccumulateOptions) (*Accumulation, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	acc := newAccumulation()

	index := make(map[string]Row, len(primary))
	for _, p := range primary {
		id, ok := utils.KeyOf(p, opts.IdentityField)
		if !ok {
			continue
		}
		if _, dup := index[id]; !dup {
			index[id] = p
		}
	}

	var err error
	acc.fetched, acc.warnings, err = eachPartition(ctx, partitions, fetch, opts.Delay, logger, func(partition P, rows []Row) {
		skipped := 0
		for _, row := range rows {
			id, ok := utils.KeyOf(row, opts.IdentityField)
			if !ok {
				skipped++
				continue
			}
			base, hasPrimary := index[id]
			if !hasPrimary && opts.RequirePrimary {
				skipped++
				continue
			}
			acc.upsert(id, base, row)
		}
		logger.Debug("Partition merged",
			zap.Any("partition", partition),
			zap.Int("rows", len(rows)),
			zap.Int("skipped", skipped),
			zap.Int("total", acc.Len()),
		)
	})
	if err != nil {
		return acc, err
	}

	if opts.IncludeUnmatchedPrimary {
		for _, p := range primary {
			id, ok := utils.KeyOf(p, opts.IdentityField)
			if !ok {
				continue
			}
			if _, seen := acc.rows[id]; !seen {
				acc.upsert(id, index[id], nil)
			}
		}
	}
	return acc, nil
}

// Collection is the concatenated output of Collect.
type Collection struct {
	Rows     []Row
	Fetched  int
	Warnings error
}

// Collect fetches partitions the way Accumulate does but keeps every row as returned,
// in partition order. It feeds joins that need the raw secondary rows.
func Collect[P any](ctx context.Context, partitions []P, fetch FetchFunc[P], delay time.Duration, logger *zap.Logger) (*Collection, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := &Collection{Rows: []Row{}}
	fetched, warnings, err := eachPartition(ctx, partitions, fetch, delay, logger, func(_ P, rows []Row) {
		out.Rows = append(out.Rows, rows...)
	})
	out.Fetched = fetched
	out.Warnings = warnings.ErrorOrNil()
	return out, err
}

// eachPartition fetches partitions sequentially, pausing delay between calls, and
// hands each successful result to fn. Failed partitions become warnings.
func eachPartition[P any](ctx context.Context, partitions []P, fetch FetchFunc[P], delay time.Duration, logger *zap.Logger, fn func(P, []Row)) (int, *multierror.Error, error) {
	var (
		fetched  int
		warnings *multierror.Error
	)
	for i, partition := range partitions {
		if i > 0 && delay > 0 {
			if err := sleep(ctx, delay); err != nil {
				return fetched, warnings, err
			}
		}
		if err := ctx.Err(); err != nil {
			return fetched, warnings, err
		}

		fetched++
		rows, err := fetch(ctx, partition)
		if err != nil {
			logger.Warn("Partition fetch failed", zap.Any("partition", partition), zap.Error(err))
			warnings = multierror.Append(warnings, errs.Unavailable(fmt.Sprintf("partition %v", partition), err))
			continue
		}
		fn(partition, rows)
	}
	return fetched, warnings, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
