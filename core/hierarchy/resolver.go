package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"roster-workbench/core/errs"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrSuperseded is returned by LoadOptions when the level was reset or reloaded while
// the load was in flight. Its results were discarded.
var ErrSuperseded = errors.New("load superseded by a newer selection")

type level struct {
	name     string
	state    State
	options  []Entity
	selected []string
	warning  error
	cancel   context.CancelFunc
}

// Resolver holds the cascading, multi-select filter state of one caller.
//
// All state transitions happen under one mutex; provider calls run outside it. Every
// level carries a generation number that is bumped whenever the level is reset or a
// new load starts, and a load only commits if its generation is still current.
type Resolver struct {
	mu         sync.Mutex
	levels     []*level
	generation []uint64

	provider Provider
	cache    OptionCache
	session  Session
	opts     Options
	logger   *zap.Logger
	sf       singleflight.Group
}

// NewResolver creates a resolver for the given session. cache may be nil.
func NewResolver(provider Provider, cache OptionCache, session Session, opts Options) (*Resolver, error) {
	if len(opts.Levels) == 0 {
		return nil, fmt.Errorf("resolver needs at least one level")
	}
	if opts.Dedupe == "" {
		opts.Dedupe = DedupeByID
	}
	if !opts.Dedupe.IsValid() {
		return nil, fmt.Errorf("unknown dedupe policy %q", opts.Dedupe)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Resolver{
		levels:     make([]*level, len(opts.Levels)),
		generation: make([]uint64, len(opts.Levels)),
		provider:   provider,
		cache:      cache,
		session:    session,
		opts:       opts,
		logger:     logger.Named("hierarchy").With(zap.String("scope", session.Scope), zap.String("profile", session.Profile)),
	}
	for i, name := range opts.Levels {
		r.levels[i] = &level{name: name}
	}
	return r, nil
}

// Depth returns the number of levels.
func (r *Resolver) Depth() int {
	return len(r.levels)
}

// Start loads the root level.
func (r *Resolver) Start(ctx context.Context) error {
	return r.LoadOptions(ctx, 0)
}

// Select toggles value in level k's selection, honoring All exclusivity, resets every
// deeper level and, if level k is left with a selection, loads level k+1.
//
// A rejected selection returns ErrInvalidSelection and changes nothing. Otherwise the
// selection is applied and the error, if any, is the provider warning of the follow-up
// load.
func (r *Resolver) Select(ctx context.Context, k int, value string) error {
	r.mu.Lock()
	lv, err := r.selectableLocked(k)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	if value != All && !hasOption(lv.options, value) {
		r.mu.Unlock()
		return errs.Invalid("%q is not an option of %s", value, lv.name)
	}
	lv.selected = toggle(lv.selected, value)
	return r.commitSelectionLocked(ctx, k)
}

// Replace sets level k's whole selection at once. values must be either [All] or a list
// of loaded option ids; mixing All with ids is rejected.
func (r *Resolver) Replace(ctx context.Context, k int, values []string) error {
	r.mu.Lock()
	lv, err := r.selectableLocked(k)
	if err != nil {
		r.mu.Unlock()
		return err
	}

	seen := mapset.NewThreadUnsafeSet[string]()
	next := make([]string, 0, len(values))
	for _, v := range values {
		if seen.Add(v) {
			next = append(next, v)
		}
	}
	if seen.Contains(All) && len(next) > 1 {
		r.mu.Unlock()
		return errs.Invalid("%s cannot combine %q with explicit ids", lv.name, All)
	}
	for _, v := range next {
		if v != All && !hasOption(lv.options, v) {
			r.mu.Unlock()
			return errs.Invalid("%q is not an option of %s", v, lv.name)
		}
	}

	lv.selected = next
	return r.commitSelectionLocked(ctx, k)
}

// Apply replays a full selection, root first, the way a stateless request describes
// it. Missing trailing levels stay empty. Provider warnings are collected; the first
// invalid selection stops the replay.
func (r *Resolver) Apply(ctx context.Context, selections [][]string) error {
	if len(selections) > len(r.levels) {
		return errs.Invalid("got %d levels of selections, hierarchy has %d", len(selections), len(r.levels))
	}

	var warnings *multierror.Error
	if err := r.Start(ctx); err != nil {
		if !errors.Is(err, errs.ErrProviderUnavailable) {
			return err
		}
		warnings = multierror.Append(warnings, err)
	}
	for k, values := range selections {
		if len(values) == 0 {
			break
		}
		if err := r.Replace(ctx, k, values); err != nil {
			if !errors.Is(err, errs.ErrProviderUnavailable) {
				return err
			}
			warnings = multierror.Append(warnings, err)
		}
	}
	return warnings.ErrorOrNil()
}

// commitSelectionLocked resets the levels below k and loads k+1 when k has a selection.
// It releases r.mu.
func (r *Resolver) commitSelectionLocked(ctx context.Context, k int) error {
	r.resetBelowLocked(k)
	load := len(r.levels[k].selected) > 0 && k+1 < len(r.levels)
	r.mu.Unlock()

	if !load {
		return nil
	}
	err := r.LoadOptions(ctx, k+1)
	if errors.Is(err, ErrSuperseded) {
		return nil
	}
	return err
}

// LoadOptions fetches the options of level k for every id selected at level k-1 (All
// expanded), through the cache, and marks the level ready once every parent settled.
// Loading clears level k's selection and resets deeper levels.
//
// Provider failures leave the failing parents' options out and are returned as a
// warning wrapping ErrProviderUnavailable. The call can simply be repeated to retry.
func (r *Resolver) LoadOptions(ctx context.Context, k int) error {
	r.mu.Lock()
	if k < 0 || k >= len(r.levels) {
		r.mu.Unlock()
		return errs.Invalid("level %d does not exist", k)
	}
	parents, err := r.parentsLocked(k)
	if err != nil {
		r.mu.Unlock()
		return err
	}

	lv := r.levels[k]
	if lv.cancel != nil {
		lv.cancel()
	}
	r.generation[k]++
	gen := r.generation[k]
	loadCtx, cancel := context.WithCancel(ctx)
	lv.cancel = cancel
	lv.state = StateLoading
	lv.options = nil
	lv.selected = nil
	lv.warning = nil
	r.resetBelowLocked(k)
	r.mu.Unlock()
	defer cancel()

	options, warning := r.fetchAll(loadCtx, k, lv.name, parents)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation[k] != gen {
		r.logger.Debug("Discarding superseded load", zap.String("level", lv.name))
		return ErrSuperseded
	}
	lv.cancel = nil
	lv.options = options
	lv.state = StateReady
	lv.warning = warning
	return warning
}

// fetchAll fans out one fetch per parent and merges the results in parent order.
func (r *Resolver) fetchAll(ctx context.Context, k int, name string, parents []string) ([]Entity, error) {
	results := make([][]Entity, len(parents))
	failures := make([]error, len(parents))

	var g errgroup.Group
	g.SetLimit(r.opts.Concurrency)
	for i, parent := range parents {
		g.Go(func() error {
			results[i], failures[i] = r.fetchParent(ctx, k, name, parent)
			return nil
		})
	}
	_ = g.Wait()

	var warnings *multierror.Error
	seen := mapset.NewThreadUnsafeSet[string]()
	options := make([]Entity, 0)
	for i := range parents {
		if failures[i] != nil {
			r.logger.Warn("Option fetch failed", zap.String("level", name), zap.String("parent", parents[i]), zap.Error(failures[i]))
			warnings = multierror.Append(warnings, failures[i])
			continue
		}
		for _, e := range results[i] {
			if seen.Add(r.opts.Dedupe.key(e)) {
				options = append(options, e)
			}
		}
	}
	return options, warnings.ErrorOrNil()
}

// fetchParent resolves one parent's children: cache, then provider with write-through.
// Concurrent identical fetches are coalesced. The shared provider call is detached from
// the cancellation of whichever load started it, so a superseded load cannot fail the
// load that replaced it; each caller still stops waiting when its own ctx is done.
func (r *Resolver) fetchParent(ctx context.Context, k int, name, parent string) ([]Entity, error) {
	cacheName := fmt.Sprintf("options:%s:%s:%s", r.session.Profile, name, parent)
	flightKey := r.session.Scope + "|" + cacheName

	if r.cache != nil {
		var cached []Entity
		if r.cache.Get(ctx, r.cache.Key(r.session.Scope, cacheName), &cached) {
			return cached, nil
		}
	}

	shared := context.WithoutCancel(ctx)
	ch := r.sf.DoChan(flightKey, func() (any, error) {
		entities, err := r.provider.FetchChildren(shared, k, parent)
		if err != nil {
			return nil, errs.Unavailable(fmt.Sprintf("%s options of %q", name, parent), err)
		}
		if entities == nil {
			entities = []Entity{}
		}
		if r.cache != nil {
			r.cache.Set(shared, r.cache.Key(r.session.Scope, cacheName), entities, r.opts.TTL)
		}
		return entities, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Entity), nil
	case <-ctx.Done():
		return nil, errs.Unavailable(fmt.Sprintf("%s options of %q", name, parent), ctx.Err())
	}
}

// parentsLocked returns the parent ids level k is loaded for.
func (r *Resolver) parentsLocked(k int) ([]string, error) {
	if k == 0 {
		return []string{""}, nil
	}
	prev := r.levels[k-1]
	ids := expand(prev)
	if prev.state != StateReady || len(ids) == 0 {
		return nil, errs.Invalid("select %s before loading %s", prev.name, r.levels[k].name)
	}
	return ids, nil
}

func (r *Resolver) selectableLocked(k int) (*level, error) {
	if k < 0 || k >= len(r.levels) {
		return nil, errs.Invalid("level %d does not exist", k)
	}
	lv := r.levels[k]
	if lv.state != StateReady {
		return nil, errs.Invalid("%s options are %s", lv.name, lv.state)
	}
	return lv, nil
}

// resetBelowLocked empties every level deeper than k and cancels their loads.
func (r *Resolver) resetBelowLocked(k int) {
	for j := k + 1; j < len(r.levels); j++ {
		lv := r.levels[j]
		if lv.cancel != nil {
			lv.cancel()
			lv.cancel = nil
		}
		r.generation[j]++
		lv.state = StateEmpty
		lv.options = nil
		lv.selected = nil
		lv.warning = nil
	}
}

// Levels returns a snapshot of every level.
func (r *Resolver) Levels() []LevelView {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]LevelView, len(r.levels))
	for i, lv := range r.levels {
		out[i] = LevelView{
			Index:    i,
			Name:     lv.name,
			State:    lv.state,
			Options:  slices.Clone(lv.options),
			Selected: slices.Clone(lv.selected),
			Warnings: errs.Messages(lv.warning),
		}
	}
	return out
}

// Tuple returns the current selection with All expanded. Levels without a selection
// have no ids.
func (r *Resolver) Tuple() FilterTuple {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := FilterTuple{Names: make([]string, len(r.levels)), IDs: make([][]string, len(r.levels))}
	for i, lv := range r.levels {
		t.Names[i] = lv.name
		t.IDs[i] = expand(lv)
	}
	return t
}

// CanQuery reports whether every level has a non-empty selection.
func (r *Resolver) CanQuery() bool {
	_, err := r.QueryTuple()
	return err == nil
}

// QueryTuple returns the tuple if it is complete, or ErrInvalidSelection naming the
// first level without a selection.
func (r *Resolver) QueryTuple() (FilterTuple, error) {
	t := r.Tuple()
	for i, ids := range t.IDs {
		if len(ids) == 0 {
			return FilterTuple{}, errs.Invalid("select at least one %s", t.Names[i])
		}
	}
	return t, nil
}

// expand resolves a level's selection to concrete ids.
func expand(lv *level) []string {
	if lv.state != StateReady {
		return nil
	}
	if slices.Contains(lv.selected, All) {
		ids := make([]string, 0, len(lv.options))
		for _, o := range lv.options {
			ids = append(ids, o.ID)
		}
		return ids
	}
	return slices.Clone(lv.selected)
}

// toggle flips value in selected. All and concrete ids exclude each other.
func toggle(selected []string, value string) []string {
	if value == All {
		if slices.Contains(selected, All) {
			return nil
		}
		return []string{All}
	}
	if slices.Contains(selected, All) {
		return []string{value}
	}
	if i := slices.Index(selected, value); i >= 0 {
		return slices.Delete(slices.Clone(selected), i, i+1)
	}
	return append(slices.Clone(selected), value)
}

func hasOption(options []Entity, id string) bool {
	return slices.ContainsFunc(options, func(e Entity) bool { return e.ID == id })
}
