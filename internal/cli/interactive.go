package cli

import (
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/dyike/EquilibriumGo/internal/display"
	"github.com/dyike/EquilibriumGo/pkg/app"
	"github.com/dyike/EquilibriumGo/pkg/curve"
	"github.com/dyike/EquilibriumGo/pkg/equilibrium"
)

// InteractiveSession walks the user through entering points, prints the
// fitted market and then answers price queries.
type InteractiveSession struct {
	runtime  *app.Runtime
	prompter Prompter
	out      io.Writer
	display  *display.ResultsDisplay
	output   outputOptions
}

func NewInteractiveSession(rt *app.Runtime, prompter Prompter, out io.Writer, output outputOptions) *InteractiveSession {
	return &InteractiveSession{
		runtime:  rt,
		prompter: prompter,
		out:      out,
		display:  display.NewResultsDisplay(out),
		output:   output,
	}
}

// Start runs the session. A failed curve fit restarts point collection;
// interrupting a prompt ends the session without error.
func (s *InteractiveSession) Start() error {
	DisplayWelcomeBanner(s.out)

	for {
		err := s.run()
		switch {
		case errors.Is(err, ErrAborted):
			DisplayInfo(s.out, "Aborted.")
			return nil
		case errors.Is(err, curve.ErrDegenerateFit), errors.Is(err, curve.ErrInvalidDomain):
			DisplayError(s.out, err)
			DisplayInfo(s.out, "Please enter the points again.")
		default:
			return err
		}
	}
}

func (s *InteractiveSession) run() error {
	DisplaySection(s.out, "Demand observations")
	demand, err := PromptForPoints(s.prompter, s.display, "demand")
	if err != nil {
		return err
	}

	DisplaySection(s.out, "Supply observations")
	supply, err := PromptForPoints(s.prompter, s.display, "supply")
	if err != nil {
		return err
	}

	engine := s.runtime.Engine()
	analysis, err := engine.Analyze(supply, demand)
	if analysis == nil {
		return err
	}

	DisplaySection(s.out, "Results")
	s.display.DisplayCurves(analysis)
	if err != nil {
		if !errors.Is(err, equilibrium.ErrNoEquilibrium) {
			return err
		}
		DisplayWarning(s.out, err.Error())
	}
	s.display.DisplayEquilibrium(analysis)

	if err := renderChart(s.out, engine, analysis, s.output); err != nil {
		DisplayError(s.out, err)
	}

	var quotes []app.Quote
	defer func() {
		if err := exportResults(s.out, engine, analysis, quotes, s.output); err != nil {
			DisplayError(s.out, err)
		}
	}()

	DisplaySection(s.out, "Price queries")
	for {
		price, ok, err := PromptForPrice(s.prompter)
		if err != nil {
			return err
		}
		if !ok {
			DisplayInfo(s.out, "Goodbye.")
			return nil
		}

		quote, err := analysis.Query(price)
		if err != nil {
			logrus.WithError(err).WithField("price", price).Debug("query failed")
			DisplayError(s.out, err)
			continue
		}
		quotes = append(quotes, quote)
		s.display.DisplayQuote(quote)
	}
}
