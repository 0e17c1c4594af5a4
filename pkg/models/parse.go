package models

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// DoneSentinel ends interactive point collection.
const DoneSentinel = "done"

var ErrInvalidPoint = errors.New("invalid point")

// ParseError reports point text that is not a pair of real numbers.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrInvalidPoint, e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrInvalidPoint
}

// IsDone reports whether text is the collection terminator.
func IsDone(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), DoneSentinel)
}

// ParsePoint parses "x,y" into a Point.
func ParsePoint(text string) (Point, error) {
	fields := strings.Split(strings.TrimSpace(text), ",")
	if len(fields) != 2 {
		return Point{}, &ParseError{Input: text, Reason: fmt.Sprintf("expected 2 values, got %d", len(fields))}
	}

	price, err := ParseNumber(fields[0])
	if err != nil {
		return Point{}, &ParseError{Input: text, Reason: "price: " + err.Error()}
	}
	quantity, err := ParseNumber(fields[1])
	if err != nil {
		return Point{}, &ParseError{Input: text, Reason: "quantity: " + err.Error()}
	}

	return Point{Price: price, Quantity: quantity}, nil
}

// ParsePoints parses a ';' separated list such as "1,1;2,2;3,3".
// Empty segments are ignored.
func ParsePoints(text string) (Points, error) {
	var points Points
	for _, segment := range strings.Split(text, ";") {
		if strings.TrimSpace(segment) == "" {
			continue
		}
		p, err := ParsePoint(segment)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

// ParseNumber parses a finite real number.
func ParseNumber(text string) (float64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	v, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}
