// The gridplan command runs one of the sampling planners against a scenario
// file and reports the result, optionally rendering the tree and the cost
// convergence.
package main

import (
	"context"
	"os"
	"time"

	"github.com/edaniels/golog"
	"github.com/urfave/cli/v2"

	"github.com/viam-labs/gridplan/sampleplan"
)

func main() {
	app := &cli.App{
		Name:            "gridplan",
		Usage:           "plan paths on 2D cost grids with sampling-based planners",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "plan",
				Usage:     "run a planner over a scenario file",
				ArgsUsage: "",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "scenario",
						Aliases:  []string{"s"},
						Usage:    "load the planning scenario from `FILE`",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "planner",
						Usage: "override the scenario's planner_name",
					},
					&cli.Int64Flag{
						Name:  "seed",
						Usage: "override the scenario's random seed",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "abort planning after this long",
						Value: 30 * time.Second,
					},
					&cli.StringFlag{
						Name:  "png",
						Usage: "render grid, tree and path to `FILE`",
					},
					&cli.StringFlag{
						Name:  "html",
						Usage: "render the convergence chart to `FILE`",
					},
				},
				Action: planAction,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		golog.Global().Fatal(err)
	}
}

func planAction(c *cli.Context) error {
	logger := golog.NewLogger("gridplan")
	if c.Bool("debug") {
		logger = golog.NewDebugLogger("gridplan")
	}

	sc, err := loadScenario(c.String("scenario"))
	if err != nil {
		return err
	}
	if name := c.String("planner"); name != "" {
		sc.Planner.PlannerName = name
	}
	if c.IsSet("seed") {
		sc.Planner.Seed = c.Int64("seed")
	}

	grid, err := sc.buildGrid()
	if err != nil {
		return err
	}

	sp, err := sampleplan.NewSamplePlanner(grid, sc.Planner, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	started := time.Now()
	plan, err := sp.Plan(ctx, sc.startPose(), sc.goalPose())
	if err != nil {
		if plan != nil {
			logger.Infow("planning failed", "expanded", len(plan.Expansion), "elapsed", time.Since(started))
		}
		return err
	}

	logger.Infow("plan found",
		"waypoints", len(plan.Poses),
		"cost", plan.Cost,
		"expanded", len(plan.Expansion),
		"elapsed", time.Since(started),
	)

	if out := c.String("png"); out != "" {
		if err := renderPNG(out, sp.CostGrid(), plan); err != nil {
			return err
		}
		logger.Infof("wrote %s", out)
	}
	if out := c.String("html"); out != "" {
		if err := renderConvergenceChart(out, plan); err != nil {
			return err
		}
		logger.Infof("wrote %s", out)
	}
	return nil
}
