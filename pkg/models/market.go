package models

import "math"

// Point is a single (price, quantity) observation.
type Point struct {
	Price    float64 `json:"price" yaml:"price"`
	Quantity float64 `json:"quantity" yaml:"quantity"`
}

// Points keeps the order in which observations were entered.
type Points []Point

func (ps Points) Prices() []float64 {
	prices := make([]float64, 0, len(ps))
	for _, p := range ps {
		prices = append(prices, p.Price)
	}
	return prices
}

func (ps Points) Quantities() []float64 {
	quantities := make([]float64, 0, len(ps))
	for _, p := range ps {
		quantities = append(quantities, p.Quantity)
	}
	return quantities
}

// PriceRange returns the smallest and largest price across all given sets.
// ok is false when the sets hold no points at all.
func PriceRange(sets ...Points) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, set := range sets {
		for _, p := range set {
			lo = math.Min(lo, p.Price)
			hi = math.Max(hi, p.Price)
			ok = true
		}
	}
	return lo, hi, ok
}
