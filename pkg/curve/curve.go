// Package curve fits supply and demand curves to (price, quantity) samples.
package curve

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindLinear Kind = "linear"
	KindPower  Kind = "power"
)

// Curve maps a price to a quantity.
type Curve interface {
	Kind() Kind
	Quantity(price float64) (float64, error)
	Equation() string
}

// LinearCurve is quantity = Intercept + Slope*price.
type LinearCurve struct {
	Intercept float64 `json:"intercept" yaml:"intercept"`
	Slope     float64 `json:"slope" yaml:"slope"`
}

func (c LinearCurve) Kind() Kind { return KindLinear }

func (c LinearCurve) Quantity(price float64) (float64, error) {
	return finite(c.Intercept+c.Slope*price, price)
}

// Equation renders the curve as "Qs = <intercept>+<slope>P".
func (c LinearCurve) Equation() string {
	return fmt.Sprintf("Qs = %s+%sP", formatParam(c.Intercept), formatParam(c.Slope))
}

// PowerCurve is quantity = Coefficient * price^Exponent.
type PowerCurve struct {
	Coefficient float64 `json:"coefficient" yaml:"coefficient"`
	Exponent    float64 `json:"exponent" yaml:"exponent"`
}

func (c PowerCurve) Kind() Kind { return KindPower }

// Quantity fails with ErrInvalidDomain where the power is undefined,
// e.g. a negative price raised to a fractional exponent.
func (c PowerCurve) Quantity(price float64) (float64, error) {
	return finite(c.Coefficient*math.Pow(price, c.Exponent), price)
}

// Equation renders the curve as "Qd = <coefficient> * P^<exponent>".
func (c PowerCurve) Equation() string {
	return fmt.Sprintf("Qd = %s * P^%s", formatParam(c.Coefficient), formatParam(c.Exponent))
}

func finite(q, price float64) (float64, error) {
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0, fmt.Errorf("%w: quantity undefined at price %v", ErrInvalidDomain, price)
	}
	return q, nil
}

func formatParam(v float64) string {
	return decimal.NewFromFloat(v).String()
}
