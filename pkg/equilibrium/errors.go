package equilibrium

import "errors"

// ErrNoEquilibrium means the search range was empty or no price in it could
// be evaluated on both curves.
var ErrNoEquilibrium = errors.New("no equilibrium found")
