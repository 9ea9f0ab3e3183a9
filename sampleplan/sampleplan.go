// Package sampleplan implements a family of sampling-based global path
// planners over 2D cost grids: RRT, RRT*, RRT-Connect, informed RRT* and
// quick informed RRT*. A planner grows one or two trees of grid cells by
// random sampling, steering and collision checking, and returns a
// collision-free polyline from start to goal in world coordinates.
package sampleplan

import (
	"context"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"go.viam.com/utils"

	"github.com/viam-labs/gridplan/costgrid"
)

// gridPlanner is the per-variant planning loop. Implementations are not
// reentrant: one plan call at a time per planner.
type gridPlanner interface {
	plan(ctx context.Context, start, goal Node) *planReturn
	setFactor(factor float64)
}

// Plan is the product of a planning call.
type Plan struct {
	// Poses is the path in world coordinates, start to goal. The final
	// pose is the exact requested goal rather than its cell center.
	Poses []r2.Point

	// Path is the same path as grid cells with edge-summed costs.
	Path []Node

	// Cost is the total path cost in cell units.
	Cost float64

	// Expansion records every accepted tree vertex in discovery order,
	// for visualization.
	Expansion []Node

	// Convergence records best-cost improvements for the optimizing
	// variants; empty for plain RRT and RRT-Connect.
	Convergence []ConvergencePoint
}

// SamplePlanner drives a selected planner variant against a grid snapshot.
// It is the host-facing surface: configuration, per-call conversions, and
// the last-successful-path fallback live here, not in the planning loops.
type SamplePlanner struct {
	grid    *costgrid.Grid
	cfg     Config
	logger  golog.Logger
	planner gridPlanner
	history *Plan
}

// NewSamplePlanner validates the config and instantiates the named variant
// against the given grid snapshot.
func NewSamplePlanner(grid *costgrid.Grid, cfg Config, logger golog.Logger) (*SamplePlanner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.OutlineMap {
		grid = grid.Outline()
	}

	base := newRRTPlanner(grid, cfg, logger)
	var planner gridPlanner
	switch cfg.PlannerName {
	case PlannerRRT:
		planner = base
	case PlannerRRTStar:
		planner = newRRTStarPlanner(base, cfg.OptimizationR)
	case PlannerRRTConnect:
		planner = newRRTConnectPlanner(base)
	case PlannerInformedRRT:
		planner = newInformedRRTPlanner(newRRTStarPlanner(base, cfg.OptimizationR))
	case PlannerQuickInformedRRT:
		planner = newQuickInformedRRTPlanner(
			newInformedRRTPlanner(newRRTStarPlanner(base, cfg.OptimizationR)), cfg)
	default:
		return nil, NewUnknownPlannerError(cfg.PlannerName)
	}

	logger.Infof("using global sample planner: %s", cfg.PlannerName)
	return &SamplePlanner{grid: grid, cfg: cfg, logger: logger, planner: planner}, nil
}

// Plan finds a collision-free path between two world poses. On budget
// exhaustion it falls back to the path of the last successful call on this
// planner, if any; otherwise ErrNoPath is returned together with a Plan
// carrying the accumulated expansion trace.
func (sp *SamplePlanner) Plan(ctx context.Context, startW, goalW r2.Point) (*Plan, error) {
	sx, sy, ok := sp.grid.WorldToMap(startW)
	if !ok {
		return nil, NewOffGridError("start", startW)
	}
	gx, gy, ok := sp.grid.WorldToMap(goalW)
	if !ok {
		return nil, NewOffGridError("goal", goalW)
	}
	if sp.grid.IsLethal(gx, gy) {
		return nil, NewLethalGoalError(goalW)
	}

	start := newNode(sp.grid, sx, sy, 0, rootPID)
	goal := newNode(sp.grid, gx, gy, 0, rootPID)

	solutionChan := make(chan *planReturn, 1)
	utils.PanicCapturingGo(func() {
		solutionChan <- sp.planner.plan(ctx, start, goal)
	})

	var result *planReturn
	select {
	case <-ctx.Done():
		// the loop checks ctx at every iteration boundary and returns the
		// expansion it has accumulated
		result = <-solutionChan
	case result = <-solutionChan:
	}

	if result.err != nil {
		partial := &Plan{Expansion: result.expand, Convergence: result.convergence}
		if result.err == ErrNoPath && sp.history != nil {
			sp.logger.Warn("no path found, using history path")
			fallback := *sp.history
			fallback.Expansion = result.expand
			return &fallback, nil
		}
		return partial, result.err
	}

	if len(result.path) == 0 {
		return &Plan{Expansion: result.expand, Convergence: result.convergence}, ErrNoPath
	}

	plan := &Plan{
		Path:        result.path,
		Cost:        pathCost(result.path),
		Expansion:   result.expand,
		Convergence: result.convergence,
	}
	plan.Poses = make([]r2.Point, len(result.path))
	for i, n := range result.path {
		plan.Poses[i] = sp.grid.MapToWorld(n.X, n.Y)
	}
	// pin the final waypoint to the requested pose to avoid cell-center
	// quantization drift
	plan.Poses[len(plan.Poses)-1] = goalW

	sp.history = plan
	return plan, nil
}

// SetFactor changes the obstacle factor between calls.
func (sp *SamplePlanner) SetFactor(factor float64) {
	sp.cfg.ObstacleFactor = factor
	sp.planner.setFactor(factor)
}

// CostGrid returns the grid snapshot the planner runs against, with the
// outline applied if configured.
func (sp *SamplePlanner) CostGrid() *costgrid.Grid {
	return sp.grid
}

// WorldToMap converts a world pose to cell coordinates on the planning grid.
func (sp *SamplePlanner) WorldToMap(w r2.Point) (int, int, bool) {
	return sp.grid.WorldToMap(w)
}

// MapToWorld converts cell coordinates to the world pose of the cell center.
func (sp *SamplePlanner) MapToWorld(mx, my int) r2.Point {
	return sp.grid.MapToWorld(mx, my)
}

// GridToIndex converts cell coordinates to the flat cell index.
func (sp *SamplePlanner) GridToIndex(x, y int) int {
	return sp.grid.GridToIndex(x, y)
}

// IndexToGrid converts a flat cell index back to cell coordinates.
func (sp *SamplePlanner) IndexToGrid(index int) (int, int) {
	return sp.grid.IndexToGrid(index)
}
