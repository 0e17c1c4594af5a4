// Package chart draws supply and demand curves with their equilibrium.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/dyike/EquilibriumGo/pkg/curve"
	"github.com/dyike/EquilibriumGo/pkg/equilibrium"
	"github.com/dyike/EquilibriumGo/pkg/models"
)

var ErrNothingToPlot = errors.New("no curve point could be evaluated in the plot range")

var (
	supplyColor      = color.RGBA{R: 0, G: 128, B: 0, A: 255}
	demandColor      = color.RGBA{R: 220, G: 20, B: 20, A: 255}
	equilibriumColor = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	dotted           = []vg.Length{vg.Points(1), vg.Points(3)}
)

type Options struct {
	MinPrice float64
	MaxPrice float64
	Step     float64
	Width    vg.Length
	Height   vg.Length
}

func DefaultOptions() Options {
	return Options{
		MinPrice: 0.10,
		MaxPrice: 4.99,
		Step:     0.01,
		Width:    10 * vg.Inch,
		Height:   6 * vg.Inch,
	}
}

// Sample is both curves evaluated at one price. A side that could not be
// evaluated has its OK flag unset.
type Sample struct {
	Price    float64
	Supply   float64
	Demand   float64
	SupplyOK bool
	DemandOK bool
}

// SampleCurves evaluates both curves from MinPrice to MaxPrice in Step increments.
func SampleCurves(supply, demand curve.Curve, opts Options) []Sample {
	if opts.Step <= 0 || opts.MaxPrice < opts.MinPrice {
		return nil
	}
	n := int(math.Floor((opts.MaxPrice-opts.MinPrice)/opts.Step + 1e-9))
	samples := make([]Sample, 0, n+1)
	for i := 0; i <= n; i++ {
		s := Sample{Price: opts.MinPrice + float64(i)*opts.Step}
		if q, err := supply.Quantity(s.Price); err == nil {
			s.Supply, s.SupplyOK = q, true
		}
		if q, err := demand.Quantity(s.Price); err == nil {
			s.Demand, s.DemandOK = q, true
		}
		samples = append(samples, s)
	}
	return samples
}

// Market is everything drawn on one chart.
type Market struct {
	Supply       curve.Curve
	Demand       curve.Curve
	SupplyPoints models.Points
	DemandPoints models.Points
	// Equilibrium is optional; without it no marker or guides are drawn.
	Equilibrium *equilibrium.Result
}

// Build lays out the chart with quantity on the X axis and price on the Y axis.
func Build(m Market, opts Options) (*plot.Plot, error) {
	var supplyXYs, demandXYs plotter.XYs
	for _, s := range SampleCurves(m.Supply, m.Demand, opts) {
		if s.SupplyOK {
			supplyXYs = append(supplyXYs, plotter.XY{X: s.Supply, Y: s.Price})
		}
		if s.DemandOK {
			demandXYs = append(demandXYs, plotter.XY{X: s.Demand, Y: s.Price})
		}
	}
	if len(supplyXYs) == 0 && len(demandXYs) == 0 {
		return nil, ErrNothingToPlot
	}

	p := plot.New()
	p.Title.Text = "Supply and Demand Curves with Equilibrium"
	p.X.Label.Text = "Quantity"
	p.Y.Label.Text = "Price"
	p.Add(plotter.NewGrid())

	if err := addCurve(p, "Supply Curve", supplyXYs, m.SupplyPoints, supplyColor); err != nil {
		return nil, err
	}
	if err := addCurve(p, "Demand Curve", demandXYs, m.DemandPoints, demandColor); err != nil {
		return nil, err
	}

	if m.Equilibrium != nil {
		if err := addEquilibrium(p, m.Equilibrium, append(supplyXYs, demandXYs...)); err != nil {
			return nil, err
		}
	}

	p.Legend.Top = true
	return p, nil
}

func addCurve(p *plot.Plot, name string, xys plotter.XYs, observed models.Points, c color.Color) error {
	if len(xys) == 0 {
		return nil
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	line.LineStyle.Color = c
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add(name, line)

	if len(observed) == 0 {
		return nil
	}
	pts := make(plotter.XYs, 0, len(observed))
	for _, o := range observed {
		pts = append(pts, plotter.XY{X: o.Quantity, Y: o.Price})
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("%s points: %w", name, err)
	}
	scatter.GlyphStyle.Color = c
	scatter.GlyphStyle.Shape = draw.RingGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(3)
	p.Add(scatter)
	return nil
}

func addEquilibrium(p *plot.Plot, r *equilibrium.Result, all plotter.XYs) error {
	price := r.Price.InexactFloat64()
	quantity := r.Quantity.InexactFloat64()

	minX, maxX := quantity, quantity
	minY, maxY := price, price
	for _, xy := range all {
		minX, maxX = math.Min(minX, xy.X), math.Max(maxX, xy.X)
		minY, maxY = math.Min(minY, xy.Y), math.Max(maxY, xy.Y)
	}

	horizontal, err := plotter.NewLine(plotter.XYs{{X: minX, Y: price}, {X: maxX, Y: price}})
	if err != nil {
		return err
	}
	vertical, err := plotter.NewLine(plotter.XYs{{X: quantity, Y: minY}, {X: quantity, Y: maxY}})
	if err != nil {
		return err
	}
	for _, l := range []*plotter.Line{horizontal, vertical} {
		l.LineStyle.Color = equilibriumColor
		l.LineStyle.Dashes = dotted
		p.Add(l)
	}

	marker, err := plotter.NewScatter(plotter.XYs{{X: quantity, Y: price}})
	if err != nil {
		return err
	}
	marker.GlyphStyle.Color = equilibriumColor
	marker.GlyphStyle.Shape = draw.CircleGlyph{}
	marker.GlyphStyle.Radius = vg.Points(5)
	p.Add(marker)
	p.Legend.Add("Equilibrium", marker)
	return nil
}

// Render builds the chart and writes it to path. The image format follows
// the file extension (png, svg, pdf, ...).
func Render(m Market, opts Options, path string) error {
	p, err := Build(m, opts)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create chart dir: %w", err)
		}
	}
	if err := p.Save(opts.Width, opts.Height, path); err != nil {
		return fmt.Errorf("save chart %s: %w", path, err)
	}
	return nil
}

// FileName returns a timestamped chart path inside dir.
func FileName(dir, format string, at time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("market_%s.%s", at.Format("20060102_150405"), format))
}
