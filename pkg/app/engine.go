// Package app wires curve fitting and the equilibrium search into a single
// analysis pipeline.
package app

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/dyike/EquilibriumGo/config"
	"github.com/dyike/EquilibriumGo/pkg/curve"
	"github.com/dyike/EquilibriumGo/pkg/equilibrium"
	"github.com/dyike/EquilibriumGo/pkg/models"
)

type Engine struct {
	Config  config.Config
	BuiltAt time.Time
	Version uint64

	solver equilibrium.Solver
	logger logrus.FieldLogger
}

var engineSeq atomic.Uint64

func BuildEngine(cfg config.Config) (*Engine, error) {
	return BuildEngineWithLogger(cfg, logrus.StandardLogger())
}

func BuildEngineWithLogger(cfg config.Config, logger logrus.FieldLogger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	solver, err := cfg.Solver()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Engine{
		Config:  cfg,
		BuiltAt: time.Now(),
		Version: engineSeq.Add(1),
		solver:  solver,
		logger:  logger,
	}, nil
}

// Analysis holds the fitted curves and, when the search succeeded, the
// equilibrium.
type Analysis struct {
	SupplyPoints models.Points
	DemandPoints models.Points

	Supply curve.LinearCurve
	Demand curve.PowerCurve

	// Equilibrium is nil when the search found no candidate.
	Equilibrium *equilibrium.Result
}

// Analyze fits both curves and searches for the equilibrium.
//
// A fitting failure returns a nil Analysis. A failed search returns the
// Analysis with its curves together with an error wrapping
// equilibrium.ErrNoEquilibrium, so callers can still chart the curves.
func (e *Engine) Analyze(supplyPoints, demandPoints models.Points) (*Analysis, error) {
	supply, err := curve.FitLinear(supplyPoints)
	if err != nil {
		return nil, fmt.Errorf("fit supply curve: %w", err)
	}
	e.logger.WithFields(logrus.Fields{
		"points":    len(supplyPoints),
		"intercept": supply.Intercept,
		"slope":     supply.Slope,
	}).Debug("supply curve fitted")

	demand, err := curve.FitPower(demandPoints)
	if err != nil {
		return nil, fmt.Errorf("fit demand curve: %w", err)
	}
	e.logger.WithFields(logrus.Fields{
		"points":      len(demandPoints),
		"coefficient": demand.Coefficient,
		"exponent":    demand.Exponent,
	}).Debug("demand curve fitted")

	analysis := &Analysis{
		SupplyPoints: supplyPoints,
		DemandPoints: demandPoints,
		Supply:       supply,
		Demand:       demand,
	}

	started := time.Now()
	result, err := e.solver.Find(supply, demand, supplyPoints, demandPoints)
	if err != nil {
		if errors.Is(err, equilibrium.ErrNoEquilibrium) {
			e.logger.WithError(err).Warn("equilibrium search failed")
		}
		return analysis, err
	}
	analysis.Equilibrium = &result

	e.logger.WithFields(logrus.Fields{
		"price":     result.Price.StringFixed(equilibrium.Places),
		"quantity":  result.Quantity.StringFixed(equilibrium.Places),
		"method":    result.Method,
		"evaluated": result.Evaluated,
		"elapsed":   time.Since(started).Round(time.Microsecond),
	}).Info("equilibrium found")

	return analysis, nil
}

// Quote is the quantity supplied and demanded at one price.
type Quote struct {
	Price    float64
	Supplied decimal.Decimal
	Demanded decimal.Decimal
}

func (q Quote) String() string {
	return fmt.Sprintf("At price %s, Quantity Supplied: %s, Quantity Demanded: %s",
		decimal.NewFromFloat(q.Price).String(),
		q.Supplied.StringFixed(equilibrium.Places),
		q.Demanded.StringFixed(equilibrium.Places))
}

// Query evaluates both fitted curves at price, rounding to two places.
func (a *Analysis) Query(price float64) (Quote, error) {
	qs, err := a.Supply.Quantity(price)
	if err != nil {
		return Quote{}, fmt.Errorf("supply at price %v: %w", price, err)
	}
	qd, err := a.Demand.Quantity(price)
	if err != nil {
		return Quote{}, fmt.Errorf("demand at price %v: %w", price, err)
	}
	return Quote{
		Price:    price,
		Supplied: equilibrium.Round(qs),
		Demanded: equilibrium.Round(qd),
	}, nil
}
