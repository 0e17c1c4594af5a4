package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dyike/EquilibriumGo/config"
	"github.com/dyike/EquilibriumGo/internal/display"
	"github.com/dyike/EquilibriumGo/pkg/app"
	"github.com/dyike/EquilibriumGo/pkg/equilibrium"
	"github.com/dyike/EquilibriumGo/pkg/models"
)

// Worked example on a small textbook market. The interactive tool lives in cmd/.
func main() {
	cfg := config.DefaultConfig()

	engine, err := app.BuildEngine(*cfg)
	if err != nil {
		log.Fatalf("Engine setup failed: %v", err)
	}

	supply := models.Points{{Price: 1, Quantity: 1}, {Price: 2, Quantity: 2}, {Price: 3, Quantity: 3}}
	demand := models.Points{{Price: 1, Quantity: 10}, {Price: 2, Quantity: 5}, {Price: 4, Quantity: 2.5}}

	analysis, err := engine.Analyze(supply, demand)
	if analysis == nil || (err != nil && !errors.Is(err, equilibrium.ErrNoEquilibrium)) {
		log.Fatalf("Analysis failed: %v", err)
	}

	d := display.NewResultsDisplay(os.Stdout)
	d.DisplayPoints("Supply points", supply)
	d.DisplayPoints("Demand points", demand)
	d.DisplayAnalysisResults(analysis)

	for _, price := range []float64{2, 3, 4} {
		quote, err := analysis.Query(price)
		if err != nil {
			fmt.Printf("Query at %v failed: %v\n", price, err)
			continue
		}
		d.DisplayQuote(quote)
	}

	if cfg.PlotEnabled {
		if err := cfg.EnsureDirectories(); err != nil {
			log.Fatalf("Create results dir: %v", err)
		}
		path, err := engine.RenderChart(analysis, "")
		if err != nil {
			log.Fatalf("Chart failed: %v", err)
		}
		fmt.Printf("Chart saved to %s\n", path)
	}
}
