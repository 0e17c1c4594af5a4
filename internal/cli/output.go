package cli

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/dyike/EquilibriumGo/internal/display"
	"github.com/dyike/EquilibriumGo/internal/utils"
	"github.com/dyike/EquilibriumGo/pkg/app"
)

// outputOptions selects the files written after an analysis.
type outputOptions struct {
	plotPath   string
	noPlot     bool
	reportPath string
	csvPath    string
}

func (o *outputOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.plotPath, "plot", "", "Chart output path (.png or .svg); defaults to <results_dir>/market_<timestamp>")
	fs.BoolVar(&o.noPlot, "no-plot", false, "Do not render the chart")
	fs.StringVar(&o.reportPath, "report", "", "Write an analysis report (.yaml, .yml or .md)")
	fs.StringVar(&o.csvPath, "export-csv", "", "Write the sampled curves as CSV")
}

// renderChart draws the chart unless disabled. An explicit --plot path wins
// over plot_enabled=false in the config.
func renderChart(w io.Writer, engine *app.Engine, a *app.Analysis, opts outputOptions) error {
	if opts.noPlot {
		return nil
	}
	if !engine.Config.PlotEnabled && opts.plotPath == "" {
		return nil
	}
	path, err := engine.RenderChart(a, opts.plotPath)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	DisplaySuccess(w, fmt.Sprintf("Chart saved to %s", path))
	return nil
}

// exportResults writes the report and the CSV samples when requested.
func exportResults(w io.Writer, engine *app.Engine, a *app.Analysis, quotes []app.Quote, opts outputOptions) error {
	if opts.reportPath != "" {
		if err := display.WriteReport(opts.reportPath, app.NewReport(a, quotes)); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		DisplaySuccess(w, fmt.Sprintf("Report saved to %s", opts.reportPath))
	}
	if opts.csvPath != "" {
		mgr := utils.NewCSVManager(engine.Config.ResultsDir)
		path, err := mgr.WriteSamplesToCSV(opts.csvPath, engine.Samples(a))
		if err != nil {
			return fmt.Errorf("export csv: %w", err)
		}
		DisplaySuccess(w, fmt.Sprintf("Curve samples saved to %s", path))
	}
	return nil
}
