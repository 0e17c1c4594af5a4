package equilibrium

import "github.com/shopspring/decimal"

// Places is the number of decimal places reported results are rounded to.
const Places = 2

// Result is the equilibrium price and quantity, both rounded to two places.
type Result struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal

	// Gap is |supply - demand| at the unrounded winning price.
	Gap float64
	// Evaluated counts prices at which both curves could be evaluated.
	Evaluated int
	Method    Method
}

// Round rounds v half away from zero to two decimal places.
func Round(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(Places)
}

func (r Result) String() string {
	return "Equilibrium Price = " + r.Price.StringFixed(Places) +
		", Equilibrium Quantity = " + r.Quantity.StringFixed(Places)
}
