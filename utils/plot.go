package utils

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// AccuracyPlot writes the per-epoch accuracy history of a run to a PNG line chart
func AccuracyPlot(accuracies []float64, filename string) error {
	pts := make(plotter.XYs, len(accuracies))
	for i, acc := range accuracies {
		pts[i].X = float64(i)
		pts[i].Y = acc
	}

	p := plot.New()
	p.Title.Text = "training accuracy"
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "accuracy"
	p.Y.Min = 0
	p.Y.Max = 1

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line)
	p.Add(plotter.NewGrid())

	return p.Save(6*vg.Inch, 4*vg.Inch, filename)
}
