package report

import (
	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/hanfei1991/jobsweep/model"
)

// Reporter renders the accumulated results of a running search.
// Render receives the full cumulative set on every call and must not
// retain or modify the slice.
type Reporter interface {
	Render(results []model.ResultRecord) error
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(results []model.ResultRecord) error

func (f ReporterFunc) Render(results []model.ResultRecord) error {
	return f(results)
}

// Point is one (x, y) sample handed to a PlotSink.
type Point struct {
	X float64
	Y float64
}

// PlotSink receives the numeric view of the results, sorted by X.
type PlotSink interface {
	Plot(title string, points []Point) error
}

// LogPlotSink writes every plot to the global logger.
type LogPlotSink struct{}

func (LogPlotSink) Plot(title string, points []Point) error {
	xs := make([]float64, 0, len(points))
	ys := make([]float64, 0, len(points))
	for _, p := range points {
		xs = append(xs, p.X)
		ys = append(ys, p.Y)
	}
	log.L().Info(title, zap.Float64s("x", xs), zap.Float64s("y", ys))
	return nil
}
