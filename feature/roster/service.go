package roster

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"roster-workbench/core/cachestore"
	"roster-workbench/core/errs"
	"roster-workbench/core/hierarchy"
	"roster-workbench/core/reconcile"
	"roster-workbench/core/sources"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Cache is the part of the cache store the roster needs.
type Cache interface {
	hierarchy.OptionCache
	DefaultTTL() time.Duration
	ResetScope(ctx context.Context, scope string) (int, error)
}

// Request is the stateless description of a filter selection.
type Request struct {
	Scope      string     `json:"scope"`
	Profile    string     `json:"profile"`
	Selections [][]string `json:"selections"`
}

// QueryRequest asks for a reconciled roster.
type QueryRequest struct {
	Request
	// IncludeUnmatched overrides the configured inclusion policy when set.
	IncludeUnmatched *bool    `json:"include_unmatched,omitempty"`
	Columns          []string `json:"columns,omitempty"`
}

// OptionsResponse is the resolver state after replaying a selection.
type OptionsResponse struct {
	Levels   []hierarchy.LevelView `json:"levels"`
	CanQuery bool                  `json:"can_query"`
	Warnings []string              `json:"warnings"`
}

// QueryResponse is a reconciled roster.
type QueryResponse struct {
	Tuple      hierarchy.FilterTuple `json:"tuple"`
	Partitions int                   `json:"partitions"`
	Rows       []reconcile.Row       `json:"rows,omitempty"`
	Table      *reconcile.Table      `json:"table,omitempty"`
	Warnings   []string              `json:"warnings"`
}

// Resolution is a replayed selection ready to be queried.
type Resolution struct {
	Tuple    hierarchy.FilterTuple
	Records  *sources.Records
	Warnings *multierror.Error
}

// Service handles roster business logic.
type Service struct {
	db             *gorm.DB
	cache          Cache
	logger         *zap.Logger
	hierarchy      hierarchy.Config
	reconcile      reconcile.Config
	defaultProfile string
}

// NewService creates a new roster service.
func NewService(db *gorm.DB, cache Cache, logger *zap.Logger, hcfg hierarchy.Config, rcfg reconcile.Config, defaultProfile string) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:             db,
		cache:          cache,
		logger:         logger.Named("roster"),
		hierarchy:      hcfg,
		reconcile:      rcfg,
		defaultProfile: defaultProfile,
	}
}

// Logger returns the service logger.
func (s *Service) Logger() *zap.Logger {
	return s.logger
}

// Reconcile returns the reconciliation settings.
func (s *Service) Reconcile() reconcile.Config {
	return s.reconcile
}

// PartitionDepth returns how many trailing levels form a partition.
func (s *Service) PartitionDepth() int {
	return s.hierarchy.PartitionDepth
}

func (s *Service) session(req Request) (hierarchy.Session, error) {
	if req.Scope == "" {
		return hierarchy.Session{}, errs.Invalid("scope is required")
	}
	profile := req.Profile
	if profile == "" {
		profile = s.defaultProfile
	}
	return hierarchy.Session{Scope: req.Scope, Profile: profile}, nil
}

func (s *Service) replay(ctx context.Context, req Request) (*hierarchy.Resolver, hierarchy.Session, *multierror.Error, error) {
	session, err := s.session(req)
	if err != nil {
		return nil, session, nil, err
	}

	resolver, err := hierarchy.NewResolver(sources.NewCatalog(s.db, session.Profile), s.cache, session, hierarchy.Options{
		Levels:      s.hierarchy.LevelNames(),
		Dedupe:      hierarchy.DedupeKey(s.hierarchy.Dedupe),
		Concurrency: s.hierarchy.Concurrency,
		TTL:         s.cache.DefaultTTL(),
		Logger:      s.logger,
	})
	if err != nil {
		return nil, session, nil, err
	}

	var warnings *multierror.Error
	if err := resolver.Apply(ctx, req.Selections); err != nil {
		if !errors.Is(err, errs.ErrProviderUnavailable) {
			return nil, session, nil, err
		}
		warnings = multierror.Append(warnings, err)
	}
	return resolver, session, warnings, nil
}

// Options replays the selection and returns every level's options and selection.
func (s *Service) Options(ctx context.Context, req Request) (*OptionsResponse, error) {
	resolver, _, warnings, err := s.replay(ctx, req)
	if err != nil {
		return nil, err
	}
	return &OptionsResponse{
		Levels:   resolver.Levels(),
		CanQuery: resolver.CanQuery(),
		Warnings: errs.Messages(warnings.ErrorOrNil()),
	}, nil
}

// Resolve replays the selection and returns the concrete tuple to query. It fails with
// ErrInvalidSelection when some level has nothing selected.
func (s *Service) Resolve(ctx context.Context, req Request) (*Resolution, error) {
	resolver, session, warnings, err := s.replay(ctx, req)
	if err != nil {
		return nil, err
	}
	tuple, err := resolver.QueryTuple()
	if err != nil {
		return nil, err
	}
	return &Resolution{
		Tuple:    tuple,
		Records:  sources.NewRecords(s.db, session.Profile, s.reconcile.IdentityField),
		Warnings: warnings,
	}, nil
}

// PrimaryRows reads the primary records of every id in the tuple. A failed read is a
// warning and yields no rows.
func (s *Service) PrimaryRows(ctx context.Context, res *Resolution) []reconcile.Row {
	var groups []string
	for _, ids := range res.Tuple.IDs {
		groups = append(groups, ids...)
	}
	slices.Sort(groups)
	groups = slices.Compact(groups)

	rows, err := res.Records.Primary(ctx, groups)
	if err != nil {
		s.logger.Warn("Primary records unavailable", zap.Error(err))
		res.Warnings = multierror.Append(res.Warnings, errs.Unavailable("primary records", err))
		return nil
	}
	return rows
}

// Query builds the reconciled roster of a selection.
func (s *Service) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	res, err := s.Resolve(ctx, req.Request)
	if err != nil {
		return nil, err
	}

	primary := s.PrimaryRows(ctx, res)
	partitions := res.Tuple.Partitions(s.hierarchy.PartitionDepth)

	include := s.reconcile.IncludeUnmatched
	if req.IncludeUnmatched != nil {
		include = *req.IncludeUnmatched
	}

	start := time.Now()
	acc, err := reconcile.Accumulate(ctx, primary, partitions, res.Records.FetchForPartition, reconcile.AccumulateOptions{
		IdentityField:           s.reconcile.IdentityField,
		Delay:                   s.reconcile.Delay(),
		IncludeUnmatchedPrimary: include,
		Logger:                  s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("roster query interrupted after %d partitions: %w", acc.Fetched(), err)
	}
	if w := acc.Warnings(); w != nil {
		res.Warnings = multierror.Append(res.Warnings, w)
	}

	s.logger.Info("Roster reconciled",
		zap.Int("primary", len(primary)),
		zap.Int("partitions", acc.Fetched()),
		zap.Int("rows", acc.Len()),
		zap.Duration("duration", time.Since(start)),
	)

	resp := &QueryResponse{
		Tuple:      res.Tuple,
		Partitions: acc.Fetched(),
		Warnings:   errs.Messages(res.Warnings.ErrorOrNil()),
	}
	rows := reconcile.NewResultSet(acc, nil).ReconciledRows()
	if len(req.Columns) > 0 {
		table := reconcile.Project(rows, req.Columns)
		resp.Table = &table
	} else {
		resp.Rows = rows
	}
	return resp, nil
}

// ResetCache removes every cached option list of scope.
func (s *Service) ResetCache(ctx context.Context, scope string) (int, error) {
	if scope == "" {
		return 0, errs.Invalid("scope is required")
	}
	n, err := s.cache.ResetScope(ctx, scope)
	if err != nil {
		return n, fmt.Errorf("failed to reset cache scope %s: %w", scope, err)
	}
	return n, nil
}

var _ Cache = (*cachestore.Store)(nil)
