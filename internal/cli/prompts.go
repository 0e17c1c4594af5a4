package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/dyike/EquilibriumGo/internal/display"
	"github.com/dyike/EquilibriumGo/pkg/curve"
	"github.com/dyike/EquilibriumGo/pkg/models"
)

const exitCommand = "exit"

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("input aborted")

// Prompter asks for one line of input. validate is called on every answer
// and a non-nil error makes the prompter ask again.
type Prompter interface {
	Input(message, help string, validate func(string) error) (string, error)
}

type surveyPrompter struct {
	opts []survey.AskOpt
}

// NewSurveyPrompter returns a terminal Prompter.
func NewSurveyPrompter(opts ...survey.AskOpt) Prompter {
	return &surveyPrompter{opts: opts}
}

func (p *surveyPrompter) Input(message, help string, validate func(string) error) (string, error) {
	var answer string
	prompt := &survey.Input{
		Message: message,
		Help:    help,
	}

	opts := append([]survey.AskOpt{}, p.opts...)
	opts = append(opts, survey.WithValidator(func(val interface{}) error {
		str, ok := val.(string)
		if !ok {
			return fmt.Errorf("invalid answer type")
		}
		return validate(str)
	}))

	if err := survey.AskOne(prompt, &answer, opts...); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", ErrAborted
		}
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// PromptForPoints collects price,quantity pairs until the user enters
// "done". Each accepted point is echoed to d.
func PromptForPoints(p Prompter, d *display.ResultsDisplay, label string) (models.Points, error) {
	var points models.Points
	echoLabel := strings.ToUpper(label[:1]) + label[1:] + " points"

	validate := func(text string) error {
		if models.IsDone(text) {
			if len(points) < curve.MinPoints {
				return fmt.Errorf("at least %d %s points are required before 'done'", curve.MinPoints, label)
			}
			return nil
		}
		_, err := models.ParsePoint(text)
		return err
	}

	for {
		text, err := p.Input(
			fmt.Sprintf("Enter %s point as price,quantity (or '%s' to finish):", label, models.DoneSentinel),
			"Example: 2.5,40. Prices and quantities are real numbers.",
			validate,
		)
		if err != nil {
			return nil, err
		}
		if models.IsDone(text) {
			return points, nil
		}

		point, err := models.ParsePoint(text)
		if err != nil {
			return nil, err
		}
		points = append(points, point)
		d.DisplayPoints(echoLabel, points)
	}
}

// PromptForPrice asks for a price to query. ok is false when the user
// entered "exit".
func PromptForPrice(p Prompter) (price float64, ok bool, err error) {
	text, err := p.Input(
		fmt.Sprintf("Enter a price to query (or '%s' to quit):", exitCommand),
		"The fitted curves are evaluated at this price.",
		func(text string) error {
			if isExit(text) {
				return nil
			}
			_, err := models.ParseNumber(text)
			return err
		},
	)
	if err != nil {
		return 0, false, err
	}
	if isExit(text) {
		return 0, false, nil
	}
	price, err = models.ParseNumber(text)
	if err != nil {
		return 0, false, err
	}
	return price, true, nil
}

func isExit(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), exitCommand)
}
