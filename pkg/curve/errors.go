package curve

import (
	"errors"
	"fmt"
)

var (
	// ErrDegenerateFit means the sample has no variation in price, so no unique line exists.
	ErrDegenerateFit = errors.New("degenerate fit")
	// ErrInsufficientPoints is a degenerate fit caused by fewer than two points.
	ErrInsufficientPoints = fmt.Errorf("%w: at least %d points are required", ErrDegenerateFit, MinPoints)
	// ErrInvalidDomain means a value lies outside the domain of the curve or its fit.
	ErrInvalidDomain = errors.New("invalid domain")
)
