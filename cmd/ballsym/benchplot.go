package main

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// plotBench saves a bar chart of the average latency of every benchmarked
// command. The image format follows the extension of path.
func plotBench(results []benchResult, path string) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to plot")
	}

	avgs := make(plotter.Values, len(results))
	labels := make([]string, len(results))
	for i, r := range results {
		avgs[i] = float64(r.Avg().Microseconds()) / 1000
		labels[i] = r.Preset + " " + strings.TrimPrefix(r.Command, "get_ball_prediction_struct")
	}

	p := plot.New()
	p.Title.Text = "Average prediction latency"
	p.Y.Label.Text = "ms"
	p.Y.Min = 0

	bars, err := plotter.NewBarChart(avgs, vg.Points(12))
	if err != nil {
		return fmt.Errorf("building bar chart: %w", err)
	}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars, plotter.NewGrid())

	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	width := max(8*vg.Inch, vg.Length(len(results))*vg.Points(18))
	if err := p.Save(width, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
