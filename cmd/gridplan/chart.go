package main

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/errors"

	"github.com/viam-labs/gridplan/sampleplan"
)

// renderConvergenceChart writes an HTML line chart of best-cost improvements
// over iterations for the optimizing planner variants.
func renderConvergenceChart(path string, plan *sampleplan.Plan) error {
	if len(plan.Convergence) == 0 {
		return errors.New("plan has no convergence trace; use an optimizing planner variant")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "best path cost over iterations",
			Subtitle: fmt.Sprintf("final cost %.3f after %d improvements", plan.Cost, len(plan.Convergence)),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "iteration"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "c_best"}),
	)

	xs := make([]string, len(plan.Convergence))
	ys := make([]opts.LineData, len(plan.Convergence))
	for i, p := range plan.Convergence {
		xs[i] = fmt.Sprintf("%d", p.Iteration)
		ys[i] = opts.LineData{Value: p.CBest}
	}
	line.SetXAxis(xs).AddSeries("c_best", ys)

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating chart file")
	}
	defer f.Close()
	return line.Render(f)
}
