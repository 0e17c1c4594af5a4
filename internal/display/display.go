// Package display renders analyses as console text and exportable reports.
package display

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dyike/EquilibriumGo/pkg/app"
	"github.com/dyike/EquilibriumGo/pkg/models"
	"github.com/dyike/EquilibriumGo/pkg/utils"
)

// ResultsDisplay writes analysis results line by line.
type ResultsDisplay struct {
	out io.Writer
}

func NewResultsDisplay(out io.Writer) *ResultsDisplay {
	return &ResultsDisplay{out: out}
}

// DisplayAnalysisResults prints both curves followed by the equilibrium.
func (d *ResultsDisplay) DisplayAnalysisResults(a *app.Analysis) {
	d.DisplayCurves(a)
	d.DisplayEquilibrium(a)
}

func (d *ResultsDisplay) DisplayCurves(a *app.Analysis) {
	fmt.Fprintf(d.out, "Supply Curve: %s\n", a.Supply.Equation())
	fmt.Fprintf(d.out, "Demand Curve: %s\n", a.Demand.Equation())
}

func (d *ResultsDisplay) DisplayEquilibrium(a *app.Analysis) {
	if a.Equilibrium == nil {
		fmt.Fprintln(d.out, "No equilibrium found in the searched price range")
		return
	}
	fmt.Fprintln(d.out, a.Equilibrium.String())
}

func (d *ResultsDisplay) DisplayQuote(q app.Quote) {
	fmt.Fprintln(d.out, q.String())
}

// DisplayPoints echoes the points collected so far.
func (d *ResultsDisplay) DisplayPoints(label string, points models.Points) {
	fmt.Fprintf(d.out, "%s: %s\n", label, FormatPoints(points))
}

// FormatPoints renders points as [(p, q), ...].
func FormatPoints(points models.Points) string {
	parts := make([]string, 0, len(points))
	for _, p := range points {
		parts = append(parts, fmt.Sprintf("(%s, %s)", num(p.Price), num(p.Quantity)))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func num(v float64) string {
	return decimal.NewFromFloat(v).String()
}

// Markdown renders a report as a Markdown document.
func Markdown(r app.Report) string {
	var b strings.Builder

	b.WriteString("# Market Equilibrium Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("## Curves\n\n")
	b.WriteString("| Curve | Kind | Equation | Points |\n")
	b.WriteString("|---|---|---|---|\n")
	fmt.Fprintf(&b, "| Supply | %s | `%s` | %d |\n", r.Supply.Kind, r.Supply.Equation, len(r.Supply.Points))
	fmt.Fprintf(&b, "| Demand | %s | `%s` | %d |\n\n", r.Demand.Kind, r.Demand.Equation, len(r.Demand.Points))

	b.WriteString("## Observations\n\n")
	fmt.Fprintf(&b, "- Supply: %s\n", FormatPoints(r.Supply.Points))
	fmt.Fprintf(&b, "- Demand: %s\n\n", FormatPoints(r.Demand.Points))

	b.WriteString("## Equilibrium\n\n")
	if r.Equilibrium == nil {
		b.WriteString("No equilibrium found in the searched price range.\n")
	} else {
		fmt.Fprintf(&b, "- Price: **%s**\n", r.Equilibrium.Price)
		fmt.Fprintf(&b, "- Quantity: **%s**\n", r.Equilibrium.Quantity)
		fmt.Fprintf(&b, "- Method: %s\n", r.Equilibrium.Method)
	}

	if len(r.Queries) > 0 {
		b.WriteString("\n## Price Queries\n\n")
		b.WriteString("| Price | Quantity Supplied | Quantity Demanded |\n")
		b.WriteString("|---|---|---|\n")
		for _, q := range r.Queries {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", num(q.Price), q.Supplied, q.Demanded)
		}
	}
	return b.String()
}

// WriteReport exports r to path. The extension selects the format:
// .yaml or .yml for YAML, .md for Markdown.
func WriteReport(path string, r app.Report) error {
	dir, name := filepath.Split(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := r.YAML()
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		_, err = utils.WriteFile(dir, name, data)
		return err
	case ".md":
		return utils.WriteMarkdown(dir, name, Markdown(r))
	default:
		return fmt.Errorf("unsupported report format %q (want .yaml, .yml or .md)", filepath.Ext(path))
	}
}
