package app

import (
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dyike/EquilibriumGo/pkg/curve"
	"github.com/dyike/EquilibriumGo/pkg/equilibrium"
	"github.com/dyike/EquilibriumGo/pkg/models"
)

// Report is the exportable summary of an analysis.
type Report struct {
	GeneratedAt time.Time          `yaml:"generated_at"`
	Supply      CurveReport        `yaml:"supply"`
	Demand      CurveReport        `yaml:"demand"`
	Equilibrium *EquilibriumReport `yaml:"equilibrium,omitempty"`
	Queries     []QuoteReport      `yaml:"queries,omitempty"`
}

type CurveReport struct {
	Kind     curve.Kind         `yaml:"kind"`
	Equation string             `yaml:"equation"`
	Params   map[string]float64 `yaml:"params"`
	Points   models.Points      `yaml:"points"`
}

type EquilibriumReport struct {
	Price    string             `yaml:"price"`
	Quantity string             `yaml:"quantity"`
	Method   equilibrium.Method `yaml:"method"`
}

type QuoteReport struct {
	Price    float64 `yaml:"price"`
	Supplied string  `yaml:"supplied"`
	Demanded string  `yaml:"demanded"`
}

func NewReport(a *Analysis, quotes []Quote) Report {
	r := Report{
		GeneratedAt: time.Now(),
		Supply: CurveReport{
			Kind:     a.Supply.Kind(),
			Equation: a.Supply.Equation(),
			Params: map[string]float64{
				"intercept": a.Supply.Intercept,
				"slope":     a.Supply.Slope,
			},
			Points: a.SupplyPoints,
		},
		Demand: CurveReport{
			Kind:     a.Demand.Kind(),
			Equation: a.Demand.Equation(),
			Params: map[string]float64{
				"coefficient": a.Demand.Coefficient,
				"exponent":    a.Demand.Exponent,
			},
			Points: a.DemandPoints,
		},
	}
	if a.Equilibrium != nil {
		r.Equilibrium = &EquilibriumReport{
			Price:    a.Equilibrium.Price.StringFixed(equilibrium.Places),
			Quantity: a.Equilibrium.Quantity.StringFixed(equilibrium.Places),
			Method:   a.Equilibrium.Method,
		}
	}
	for _, q := range quotes {
		r.Queries = append(r.Queries, QuoteReport{
			Price:    q.Price,
			Supplied: q.Supplied.StringFixed(equilibrium.Places),
			Demanded: q.Demanded.StringFixed(equilibrium.Places),
		})
	}
	return r
}

func (r Report) YAML() ([]byte, error) {
	return yaml.Marshal(r)
}
