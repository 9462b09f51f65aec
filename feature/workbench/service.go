package workbench

import (
	"context"
	"fmt"
	"time"

	"roster-workbench/core/errs"
	"roster-workbench/core/reconcile"
	"roster-workbench/feature/roster"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// JoinRequest describes a join over one filter selection. Empty keys default to the
// configured identity field.
type JoinRequest struct {
	roster.Request
	LeftKey  string   `json:"left_key"`
	RightKey string   `json:"right_key"`
	Type     string   `json:"type"`
	Columns  []string `json:"columns,omitempty"`
}

// JoinResponse is the result of a join.
type JoinResponse struct {
	Type       reconcile.JoinType `json:"type"`
	Partitions int                `json:"partitions"`
	LeftRows   int                `json:"left_rows"`
	RightRows  int                `json:"right_rows"`
	Rows       []reconcile.Row    `json:"rows,omitempty"`
	Table      *reconcile.Table   `json:"table,omitempty"`
	Warnings   []string           `json:"warnings"`
}

// Service handles workbench business logic.
type Service struct {
	roster *roster.Service
	logger *zap.Logger
}

// NewService creates a new workbench service on top of the roster's selection handling.
func NewService(rosterSvc *roster.Service) *Service {
	return &Service{roster: rosterSvc, logger: rosterSvc.Logger().Named("workbench")}
}

// Join resolves the selection, reads the primary rows as the left side and every
// partition's secondary rows as the right side, and joins them.
func (s *Service) Join(ctx context.Context, req JoinRequest) (*JoinResponse, error) {
	joinType, err := reconcile.ParseJoinType(req.Type)
	if err != nil {
		return nil, errs.Invalid("%v", err)
	}

	identity := s.roster.Reconcile().IdentityField
	leftKey, rightKey := req.LeftKey, req.RightKey
	if leftKey == "" {
		leftKey = identity
	}
	if rightKey == "" {
		rightKey = identity
	}

	res, err := s.roster.Resolve(ctx, req.Request)
	if err != nil {
		return nil, err
	}

	left := s.roster.PrimaryRows(ctx, res)
	partitions := res.Tuple.Partitions(s.roster.PartitionDepth())
	right, err := reconcile.Collect(ctx, partitions, res.Records.FetchForPartition, s.roster.Reconcile().Delay(), s.logger)
	if err != nil {
		return nil, fmt.Errorf("join interrupted after %d partitions: %w", right.Fetched, err)
	}

	var warnings *multierror.Error
	warnings = multierror.Append(warnings, res.Warnings.ErrorOrNil(), right.Warnings)

	start := time.Now()
	joined := reconcile.Join(left, right.Rows, leftKey, rightKey, joinType)
	s.logger.Info("Join complete",
		zap.String("type", string(joinType)),
		zap.Int("left", len(left)),
		zap.Int("right", len(right.Rows)),
		zap.Int("rows", len(joined)),
		zap.Duration("duration", time.Since(start)),
	)

	resp := &JoinResponse{
		Type:       joinType,
		Partitions: right.Fetched,
		LeftRows:   len(left),
		RightRows:  len(right.Rows),
		Warnings:   errs.Messages(warnings.ErrorOrNil()),
	}
	rows := reconcile.NewResultSet(nil, joined).JoinedRows()
	if len(req.Columns) > 0 {
		table := reconcile.Project(rows, req.Columns)
		resp.Table = &table
	} else {
		resp.Rows = rows
	}
	return resp, nil
}
