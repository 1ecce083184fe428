// Package median maintains a running median over an unbounded stream of
// samples using a max-heap for the lower half and a min-heap for the upper half.
//
// Insert is O(log n) and Median is O(1). A Tracker is not safe for concurrent
// use; callers build one per computation.
package median

import (
	"errors"
	"math"

	"github.com/m-mizutani/goerr/v2"
)

var (
	// ErrInvalidSample is returned by Insert for NaN or infinite values.
	ErrInvalidSample = errors.New("invalid sample")

	// ErrEmptyTracker is returned by Median before any sample was inserted.
	ErrEmptyTracker = errors.New("median tracker is empty")
)

type Tracker struct {
	lower  *floatHeap // max-ordered
	upper  *floatHeap // min-ordered
	median float64
	count  int
}

func New() *Tracker {
	return &Tracker{
		lower: newMaxHeap(),
		upper: newMinHeap(),
	}
}

// Insert adds v to the stream and updates the cached median.
func (t *Tracker) Insert(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return goerr.Wrap(ErrInvalidSample, "sample must be a finite number", goerr.V("value", v))
	}

	if t.count == 0 {
		t.lower.push(v)
		t.median = v
		t.count++
		return nil
	}

	if v <= t.median {
		t.lower.push(v)
	} else {
		t.upper.push(v)
	}
	t.count++

	// A single insert changes one size by exactly 1, so one move restores balance.
	switch {
	case t.lower.Len() > t.upper.Len()+1:
		t.upper.push(t.lower.pop())
	case t.upper.Len() > t.lower.Len()+1:
		t.lower.push(t.upper.pop())
	}

	switch {
	case t.lower.Len() == t.upper.Len():
		t.median = (t.lower.root() + t.upper.root()) / 2
	case t.lower.Len() > t.upper.Len():
		t.median = t.lower.root()
	default:
		t.median = t.upper.root()
	}

	return nil
}

// Median returns the median of all inserted samples.
func (t *Tracker) Median() (float64, error) {
	if t.count == 0 {
		return 0, goerr.Wrap(ErrEmptyTracker, "no sample has been inserted")
	}
	return t.median, nil
}

// Len returns the number of inserted samples.
func (t *Tracker) Len() int {
	return t.count
}

// Sizes returns the current sizes of the lower and upper halves.
func (t *Tracker) Sizes() (lower, upper int) {
	return t.lower.Len(), t.upper.Len()
}
