package app

import (
	"time"

	"github.com/dyike/EquilibriumGo/pkg/chart"
)

func (e *Engine) ChartOptions() chart.Options {
	opts := chart.DefaultOptions()
	opts.MinPrice = e.Config.PlotMinPrice
	opts.MaxPrice = e.Config.PlotMaxPrice
	opts.Step = e.Config.PlotStep
	return opts
}

func (a *Analysis) Market() chart.Market {
	return chart.Market{
		Supply:       a.Supply,
		Demand:       a.Demand,
		SupplyPoints: a.SupplyPoints,
		DemandPoints: a.DemandPoints,
		Equilibrium:  a.Equilibrium,
	}
}

// Samples evaluates both curves over the configured plot range.
func (e *Engine) Samples(a *Analysis) []chart.Sample {
	return chart.SampleCurves(a.Supply, a.Demand, e.ChartOptions())
}

// RenderChart draws the analysis to path, or to a timestamped file in the
// results directory when path is empty. It returns the written path.
func (e *Engine) RenderChart(a *Analysis, path string) (string, error) {
	if path == "" {
		path = chart.FileName(e.Config.ResultsDir, e.Config.PlotFormat, time.Now())
	}
	if err := chart.Render(a.Market(), e.ChartOptions(), path); err != nil {
		return "", err
	}
	e.logger.WithField("path", path).Info("chart written")
	return path, nil
}
