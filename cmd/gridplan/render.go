package main

import (
	"github.com/fogleman/gg"

	"github.com/viam-labs/gridplan/costgrid"
	"github.com/viam-labs/gridplan/sampleplan"
)

const cellPx = 12

// renderPNG draws the grid, the expansion tree and the final path to a PNG,
// the offline analog of the tree and plan topics the ROS navigation stack
// publishes for rviz.
func renderPNG(path string, grid *costgrid.Grid, plan *sampleplan.Plan) error {
	w := grid.NX() * cellPx
	h := grid.NY() * cellPx
	dc := gg.NewContext(w, h)

	// cells, darker with cost; the y axis is flipped so row 0 is at the
	// bottom like the map frame
	for y := 0; y < grid.NY(); y++ {
		for x := 0; x < grid.NX(); x++ {
			shade := 1.0 - 0.8*float64(grid.Cost(x, y))/float64(costgrid.MaxCost)
			dc.SetRGB(shade, shade, shade)
			dc.DrawRectangle(float64(x*cellPx), float64((grid.NY()-1-y)*cellPx), cellPx, cellPx)
			dc.Fill()
		}
	}

	center := func(n sampleplan.Node) (float64, float64) {
		return float64(n.X)*cellPx + cellPx/2, float64(grid.NY()-1-n.Y)*cellPx + cellPx/2
	}

	// expansion tree edges
	byID := make(map[int]sampleplan.Node, len(plan.Expansion))
	for _, n := range plan.Expansion {
		byID[n.ID] = n
	}
	dc.SetRGBA(0.43, 0.54, 0.24, 0.5)
	dc.SetLineWidth(1)
	for _, n := range plan.Expansion {
		parent, ok := byID[n.PID]
		if !ok {
			continue
		}
		x1, y1 := center(n)
		x2, y2 := center(parent)
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	}

	// final path
	dc.SetRGB(0.85, 0.2, 0.2)
	dc.SetLineWidth(3)
	for i := 1; i < len(plan.Path); i++ {
		x1, y1 := center(plan.Path[i-1])
		x2, y2 := center(plan.Path[i])
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	}

	// endpoints
	if len(plan.Path) > 0 {
		x, y := center(plan.Path[0])
		dc.SetRGB(0.1, 0.4, 0.9)
		dc.DrawCircle(x, y, cellPx/2)
		dc.Fill()
		x, y = center(plan.Path[len(plan.Path)-1])
		dc.SetRGB(0.1, 0.8, 0.3)
		dc.DrawCircle(x, y, cellPx/2)
		dc.Fill()
	}

	return dc.SavePNG(path)
}
