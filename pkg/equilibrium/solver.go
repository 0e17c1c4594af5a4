// Package equilibrium searches for the price at which supply meets demand.
package equilibrium

import (
	"fmt"
	"math"

	"github.com/dyike/EquilibriumGo/pkg/curve"
	"github.com/dyike/EquilibriumGo/pkg/models"
)

type Method string

const (
	// MethodGrid scans the price range in fixed steps.
	MethodGrid Method = "grid"
	// MethodBisect brackets the first sign change of supply-demand and bisects it.
	MethodBisect Method = "bisect"
)

const (
	DefaultStep     = 0.0001
	DefaultMinPrice = 0.01

	bisectSegments  = 1000
	bisectTolerance = 1e-10
	bisectMaxIter   = 200
)

// Solver holds search settings. The zero value is not usable; start from DefaultSolver.
type Solver struct {
	// Step is the grid increment in price units.
	Step float64
	// MinPrice floors the lower search bound so the power curve stays in its domain.
	MinPrice float64
	Method   Method
}

func DefaultSolver() Solver {
	return Solver{
		Step:     DefaultStep,
		MinPrice: DefaultMinPrice,
		Method:   MethodGrid,
	}
}

func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodGrid, MethodBisect:
		return m, nil
	case "":
		return MethodGrid, nil
	default:
		return "", fmt.Errorf("unknown solver method %q (want %q or %q)", s, MethodGrid, MethodBisect)
	}
}

// FindEquilibrium runs the default grid search.
func FindEquilibrium(supply, demand curve.Curve, supplyPoints, demandPoints models.Points) (Result, error) {
	return DefaultSolver().Find(supply, demand, supplyPoints, demandPoints)
}

type sample struct {
	price   float64
	supply  float64
	demand  float64
	gap     float64
	success bool
}

// Find searches [max(min price, MinPrice), max price] over all sample points
// for the price minimising |supply - demand|. Ties keep the lowest price.
func (s Solver) Find(supply, demand curve.Curve, supplyPoints, demandPoints models.Points) (Result, error) {
	if s.Step <= 0 {
		return Result{}, fmt.Errorf("search step must be positive, got %v", s.Step)
	}

	minPrice, maxPrice, ok := models.PriceRange(supplyPoints, demandPoints)
	if !ok {
		return Result{}, fmt.Errorf("%w: no sample points", ErrNoEquilibrium)
	}
	lo := math.Max(minPrice, s.MinPrice)
	hi := maxPrice
	if lo > hi {
		return Result{}, fmt.Errorf("%w: empty price range [%v, %v]", ErrNoEquilibrium, lo, hi)
	}

	var (
		best      sample
		evaluated int
		method    = MethodGrid
	)
	if s.Method == MethodBisect {
		best, evaluated = s.bisect(supply, demand, lo, hi)
		method = MethodBisect
	}
	if !best.success {
		best, evaluated = s.grid(supply, demand, lo, hi)
		method = MethodGrid
	}
	if !best.success {
		return Result{}, fmt.Errorf("%w: no price in [%v, %v] could be evaluated", ErrNoEquilibrium, lo, hi)
	}

	return Result{
		Price:     Round(best.price),
		Quantity:  Round((best.supply + best.demand) / 2),
		Gap:       best.gap,
		Evaluated: evaluated,
		Method:    method,
	}, nil
}

func evaluate(supply, demand curve.Curve, price float64) sample {
	qs, err := supply.Quantity(price)
	if err != nil {
		return sample{price: price}
	}
	qd, err := demand.Quantity(price)
	if err != nil {
		return sample{price: price}
	}
	return sample{price: price, supply: qs, demand: qd, gap: math.Abs(qs - qd), success: true}
}

func (s Solver) grid(supply, demand curve.Curve, lo, hi float64) (sample, int) {
	// Prices are lo + i*Step rather than an accumulated sum so repeated runs
	// visit exactly the same prices.
	steps := int(math.Floor((hi-lo)/s.Step + 1e-9))

	var best sample
	evaluated := 0
	for i := 0; i <= steps; i++ {
		cur := evaluate(supply, demand, lo+float64(i)*s.Step)
		if !cur.success {
			continue
		}
		evaluated++
		if !best.success || cur.gap < best.gap {
			best = cur
		}
	}
	return best, evaluated
}

func (s Solver) bisect(supply, demand curve.Curve, lo, hi float64) (sample, int) {
	width := (hi - lo) / bisectSegments
	if width <= 0 {
		return sample{}, 0
	}

	evaluated := 0
	prev := evaluate(supply, demand, lo)
	if prev.success {
		evaluated++
	}
	for i := 1; i <= bisectSegments; i++ {
		price := lo + float64(i)*width
		if i == bisectSegments {
			price = hi
		}
		cur := evaluate(supply, demand, price)
		if !cur.success {
			prev = cur
			continue
		}
		evaluated++
		if prev.success {
			if prev.gap == 0 {
				return prev, evaluated
			}
			if diffSign(prev) != diffSign(cur) {
				root, n := refine(supply, demand, prev, cur)
				return root, evaluated + n
			}
		}
		prev = cur
	}
	if prev.success && prev.gap == 0 {
		return prev, evaluated
	}
	return sample{}, evaluated
}

// refine bisects between a and b, whose supply-demand differences have opposite signs.
func refine(supply, demand curve.Curve, a, b sample) (sample, int) {
	evaluated := 0
	for iter := 0; iter < bisectMaxIter && b.price-a.price > bisectTolerance; iter++ {
		mid := evaluate(supply, demand, (a.price+b.price)/2)
		if !mid.success {
			break
		}
		evaluated++
		if mid.gap == 0 {
			return mid, evaluated
		}
		if diffSign(mid) == diffSign(a) {
			a = mid
		} else {
			b = mid
		}
	}
	if a.gap <= b.gap {
		return a, evaluated
	}
	return b, evaluated
}

func diffSign(s sample) bool {
	return s.supply-s.demand > 0
}
