package curve

import (
	"fmt"
	"math"

	"github.com/dyike/EquilibriumGo/pkg/models"
)

// MinPoints is the smallest sample a curve can be fitted to.
const MinPoints = 2

// FitLinear fits a supply curve by ordinary least squares of quantity on price.
func FitLinear(points models.Points) (LinearCurve, error) {
	intercept, slope, err := regress(points.Prices(), points.Quantities())
	if err != nil {
		return LinearCurve{}, err
	}
	return LinearCurve{Intercept: intercept, Slope: slope}, nil
}

// FitPower fits a demand curve by least squares on (ln price, ln quantity).
// Every price and quantity must be strictly positive.
func FitPower(points models.Points) (PowerCurve, error) {
	if len(points) < MinPoints {
		return PowerCurve{}, ErrInsufficientPoints
	}

	logX := make([]float64, 0, len(points))
	logY := make([]float64, 0, len(points))
	for i, p := range points {
		if p.Price <= 0 || p.Quantity <= 0 {
			return PowerCurve{}, fmt.Errorf("%w: point %d (%v,%v) must have positive price and quantity",
				ErrInvalidDomain, i+1, p.Price, p.Quantity)
		}
		logX = append(logX, math.Log(p.Price))
		logY = append(logY, math.Log(p.Quantity))
	}

	logCoefficient, exponent, err := regress(logX, logY)
	if err != nil {
		return PowerCurve{}, err
	}
	return PowerCurve{Coefficient: math.Exp(logCoefficient), Exponent: exponent}, nil
}

// regress returns the least squares intercept and slope of y on x. Sums are
// taken over deviations from the means so closely spaced large x-values keep
// their precision. The fit is degenerate only when every x is the same.
func regress(xs, ys []float64) (intercept, slope float64, err error) {
	if len(xs) < MinPoints {
		return 0, 0, ErrInsufficientPoints
	}

	n := float64(len(xs))
	var sumX, sumY float64
	distinct := false
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		if xs[i] != xs[0] {
			distinct = true
		}
	}
	if !distinct {
		return 0, 0, fmt.Errorf("%w: all %d prices are equal", ErrDegenerateFit, len(xs))
	}
	meanX, meanY := sumX/n, sumY/n

	var sxx, sxy float64
	for i := range xs {
		dx := xs[i] - meanX
		sxx += dx * dx
		sxy += dx * (ys[i] - meanY)
	}
	if sxx == 0 {
		return 0, 0, fmt.Errorf("%w: prices do not vary", ErrDegenerateFit)
	}

	slope = sxy / sxx
	intercept = meanY - slope*meanX
	return intercept, slope, nil
}
