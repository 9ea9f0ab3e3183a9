package sampleplan

import (
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// ErrNoPath is returned when the sample budget is exhausted without a
// feasible connection between start and goal.
var ErrNoPath = errors.New("no path found between start and goal")

// NewUnknownPlannerError is returned when a config names a planner variant
// that does not exist.
func NewUnknownPlannerError(name string) error {
	return errors.Errorf("unknown planner name %q", name)
}

// NewOffGridError is returned when a start or goal pose lies outside the
// cost grid.
func NewOffGridError(role string, w r2.Point) error {
	return errors.Errorf("%s pose (%.3f, %.3f) is off the cost grid", role, w.X, w.Y)
}

// NewLethalGoalError is returned when the goal cell is an obstacle, making
// any plan to it infeasible.
func NewLethalGoalError(w r2.Point) error {
	return errors.Errorf("goal pose (%.3f, %.3f) lies on a lethal cell", w.X, w.Y)
}
