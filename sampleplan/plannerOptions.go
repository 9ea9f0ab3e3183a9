package sampleplan

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Recognized planner names.
const (
	PlannerRRT              = "rrt"
	PlannerRRTStar          = "rrt_star"
	PlannerRRTConnect       = "rrt_connect"
	PlannerInformedRRT      = "informed_rrt"
	PlannerQuickInformedRRT = "quick_informed_rrt"
)

// default values for planning options.
const (
	// Number of samples drawn before giving up.
	defaultSamplePoints = 500

	// Max steering step between a tree vertex and a new sample, in cells.
	defaultSampleMaxD = 5.0

	// Rewire neighborhood radius, in cells.
	defaultOptimizationR = 10.0

	// Scaling applied to the lethal threshold during collision checks.
	defaultObstacleFactor = 0.5

	// Radius of the concentrated sampling disks around the incumbent path.
	defaultPriorSampleSetR = 10.0

	// Worker count for the parallel rewire phase.
	defaultRewireThreads = 2

	// Initial adaptive steering step, in cells.
	defaultStepExtendD = 5.0

	// Degrees of freedom of the heavy-tailed growth distribution.
	defaultTDistrFreedom = 1.0

	// Fraction of the budget between progress log lines.
	defaultLoggingInterval = 0.1
)

// Config selects a planner variant and carries its tuning knobs. The zero
// value is not usable; start from DefaultConfig.
type Config struct {
	// PlannerName is one of the Planner* constants.
	PlannerName string `json:"planner_name" yaml:"planner_name"`

	// SamplePoints is the iteration budget of a single Plan call.
	SamplePoints int `json:"sample_points" yaml:"sample_points"`

	// SampleMaxD is the steering step in cell units.
	SampleMaxD float64 `json:"sample_max_d" yaml:"sample_max_d"`

	// OptimizationR is the rewire neighborhood radius (RRT* and above).
	OptimizationR float64 `json:"optimization_r" yaml:"optimization_r"`

	// ObstacleFactor scales the lethal threshold used in collision checks.
	ObstacleFactor float64 `json:"obstacle_factor" yaml:"obstacle_factor"`

	// OutlineMap paints the grid border lethal before planning.
	OutlineMap bool `json:"outline_map" yaml:"outline_map"`

	// DefaultTolerance accepts the goal within this world-frame distance.
	DefaultTolerance float64 `json:"default_tolerance" yaml:"default_tolerance"`

	// PriorSampleSetR is the prior-set disk radius (quick informed only).
	PriorSampleSetR float64 `json:"prior_sample_set_r" yaml:"prior_sample_set_r"`

	// RewireThreadsNum is the parallel rewire worker count (quick informed only).
	RewireThreadsNum int `json:"rewire_threads_num" yaml:"rewire_threads_num"`

	// StepExtendD is the initial adaptive steering step (quick informed only).
	StepExtendD float64 `json:"step_extend_d" yaml:"step_extend_d"`

	// TDistrFreedom is the Student-t degrees of freedom (quick informed only).
	TDistrFreedom float64 `json:"t_distr_freedom" yaml:"t_distr_freedom"`

	// Seed fixes the random stream of each Plan call. Plans are
	// deterministic given equal seeds, grids and endpoints.
	Seed int64 `json:"seed" yaml:"seed"`
}

// DefaultConfig returns a config with every knob at its recognized default
// and the base RRT variant selected.
func DefaultConfig() Config {
	return Config{
		PlannerName:      PlannerRRT,
		SamplePoints:     defaultSamplePoints,
		SampleMaxD:       defaultSampleMaxD,
		OptimizationR:    defaultOptimizationR,
		ObstacleFactor:   defaultObstacleFactor,
		PriorSampleSetR:  defaultPriorSampleSetR,
		RewireThreadsNum: defaultRewireThreads,
		StepExtendD:      defaultStepExtendD,
		TDistrFreedom:    defaultTDistrFreedom,
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var err error
	switch c.PlannerName {
	case PlannerRRT, PlannerRRTStar, PlannerRRTConnect, PlannerInformedRRT, PlannerQuickInformedRRT:
	default:
		err = multierr.Append(err, NewUnknownPlannerError(c.PlannerName))
	}
	if c.SamplePoints <= 0 {
		err = multierr.Append(err, errors.Errorf("sample_points must be positive, got %d", c.SamplePoints))
	}
	if c.SampleMaxD <= 0 {
		err = multierr.Append(err, errors.Errorf("sample_max_d must be positive, got %f", c.SampleMaxD))
	}
	if c.OptimizationR < 0 {
		err = multierr.Append(err, errors.Errorf("optimization_r must not be negative, got %f", c.OptimizationR))
	}
	if c.ObstacleFactor < 0 || c.ObstacleFactor > 1 {
		err = multierr.Append(err, errors.Errorf("obstacle_factor must be in [0, 1], got %f", c.ObstacleFactor))
	}
	if c.DefaultTolerance < 0 {
		err = multierr.Append(err, errors.Errorf("default_tolerance must not be negative, got %f", c.DefaultTolerance))
	}
	if c.PlannerName == PlannerQuickInformedRRT {
		if c.PriorSampleSetR < 0 {
			err = multierr.Append(err, errors.Errorf("prior_sample_set_r must not be negative, got %f", c.PriorSampleSetR))
		}
		if c.RewireThreadsNum <= 0 {
			err = multierr.Append(err, errors.Errorf("rewire_threads_num must be positive, got %d", c.RewireThreadsNum))
		}
		if c.StepExtendD <= 0 {
			err = multierr.Append(err, errors.Errorf("step_extend_d must be positive, got %f", c.StepExtendD))
		}
		if c.TDistrFreedom <= 0 {
			err = multierr.Append(err, errors.Errorf("t_distr_freedom must be positive, got %f", c.TDistrFreedom))
		}
	}
	return err
}
