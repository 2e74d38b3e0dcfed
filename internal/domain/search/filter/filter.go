package filter

import (
	"fmt"

	"github.com/gifexplorer/gifsearch/internal/domain"
)

// Dimension is a numeric document dimension a range filter can constrain.
type Dimension string

// Recognized filter dimensions.
const (
	Width    Dimension = "width"
	Height   Dimension = "height"
	Duration Dimension = "duration"
)

// IsValid checks if the dimension is one of the recognized values.
func (d Dimension) IsValid() bool {
	return d == Width || d == Height || d == Duration
}

// Range is an inclusive numeric bound on a single dimension.
type Range struct {
	dim  Dimension
	low  float64
	high float64
}

// NewRange validates and creates a range filter.
func NewRange(dim Dimension, low, high float64) (Range, error) {
	if !dim.IsValid() {
		return Range{}, fmt.Errorf("%w: unknown filter dimension %q", domain.ErrMalformedQuery, dim)
	}
	if low > high {
		return Range{}, fmt.Errorf("%w: range %s low %v > high %v", domain.ErrMalformedQuery, dim, low, high)
	}
	return Range{dim: dim, low: low, high: high}, nil
}

// Dim returns the constrained dimension.
func (r Range) Dim() Dimension { return r.dim }

// Low returns the inclusive lower bound.
func (r Range) Low() float64 { return r.low }

// High returns the inclusive upper bound.
func (r Range) High() float64 { return r.high }

// Contains reports whether v falls inside the inclusive bounds.
func (r Range) Contains(v float64) bool {
	return v >= r.low && v <= r.high
}
