package main

import (
	"os"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/viam-labs/gridplan/costgrid"
	"github.com/viam-labs/gridplan/sampleplan"
)

// rectObstacle is an axis-aligned block of lethal cells.
type rectObstacle struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

type gridSpec struct {
	MapFile    string         `yaml:"map_file"`
	Width      int            `yaml:"width"`
	Height     int            `yaml:"height"`
	Resolution float64        `yaml:"resolution"`
	Origin     []float64      `yaml:"origin"`
	Obstacles  []rectObstacle `yaml:"obstacles"`
}

// scenario is one planning problem: a grid, two poses, and a planner config.
type scenario struct {
	Grid    gridSpec          `yaml:"grid"`
	Start   []float64         `yaml:"start"`
	Goal    []float64         `yaml:"goal"`
	Planner sampleplan.Config `yaml:"planner"`
}

func loadScenario(path string) (*scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading scenario")
	}
	sc := &scenario{Planner: sampleplan.DefaultConfig()}
	if err := yaml.Unmarshal(raw, sc); err != nil {
		return nil, errors.Wrap(err, "parsing scenario")
	}
	if len(sc.Start) != 2 || len(sc.Goal) != 2 {
		return nil, errors.New("scenario start and goal must each be [x, y]")
	}
	return sc, nil
}

func (sc *scenario) buildGrid() (*costgrid.Grid, error) {
	res := sc.Grid.Resolution
	if res == 0 {
		res = 1.0
	}
	origin := r2.Point{}
	if len(sc.Grid.Origin) == 2 {
		origin = r2.Point{X: sc.Grid.Origin[0], Y: sc.Grid.Origin[1]}
	}

	if sc.Grid.MapFile != "" {
		raw, err := os.ReadFile(sc.Grid.MapFile)
		if err != nil {
			return nil, errors.Wrap(err, "reading map file")
		}
		return costgrid.ParseTextGrid(string(raw), res, origin)
	}

	grid, err := costgrid.NewEmptyGrid(sc.Grid.Width, sc.Grid.Height, res, origin)
	if err != nil {
		return nil, err
	}
	for _, ob := range sc.Grid.Obstacles {
		for y := ob.Y; y < ob.Y+ob.H; y++ {
			for x := ob.X; x < ob.X+ob.W; x++ {
				grid = grid.SetCost(x, y, costgrid.LethalCost)
			}
		}
	}
	return grid, nil
}

func (sc *scenario) startPose() r2.Point {
	return r2.Point{X: sc.Start[0], Y: sc.Start[1]}
}

func (sc *scenario) goalPose() r2.Point {
	return r2.Point{X: sc.Goal[0], Y: sc.Goal[1]}
}
