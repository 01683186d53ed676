// Package grid discretizes a planning horizon into equal-length timesteps
// and maps between wall-clock instants and step indices.
package grid

import (
	"fmt"
	"time"

	"github.com/alderwick/gridsched/core/solveerr"
)

// Grid partitions the horizon [Start, Start+N*Delta) into N steps of equal
// length Delta. Step i covers [TimeOf(i), TimeOf(i+1)).
type Grid struct {
	start time.Time
	delta time.Duration
	steps int
}

// New builds a Grid covering exactly n steps of length delta starting at
// start. It fails with solveerr.ErrInvalidHorizon if delta or n is not
// positive.
func New(start time.Time, n int, delta time.Duration) (Grid, error) {
	if delta <= 0 {
		return Grid{}, fmt.Errorf("%w: timestep must be positive", solveerr.ErrInvalidHorizon)
	}
	if n <= 0 {
		return Grid{}, fmt.Errorf("%w: horizon must contain at least one step", solveerr.ErrInvalidHorizon)
	}
	return Grid{start: start, delta: delta, steps: n}, nil
}

// NewCovering builds the smallest Grid of step length delta, anchored at
// start, whose horizon covers [start, end). It fails with
// solveerr.ErrInvalidHorizon if end does not come strictly after start or
// delta is not positive.
func NewCovering(start, end time.Time, delta time.Duration) (Grid, error) {
	if delta <= 0 {
		return Grid{}, fmt.Errorf("%w: timestep must be positive", solveerr.ErrInvalidHorizon)
	}
	if !end.After(start) {
		return Grid{}, fmt.Errorf("%w: horizon end must be after start", solveerr.ErrInvalidHorizon)
	}
	span := end.Sub(start)
	n := int(span / delta)
	if span%delta != 0 {
		n++
	}
	return New(start, n, delta)
}

// Steps returns the number of steps N in the grid.
func (g Grid) Steps() int { return g.steps }

// Delta returns the timestep length.
func (g Grid) Delta() time.Duration { return g.delta }

// Start returns the horizon start instant t0.
func (g Grid) Start() time.Time { return g.start }

// End returns the horizon end instant t0+H.
func (g Grid) End() time.Time { return g.start.Add(time.Duration(g.steps) * g.delta) }

// TimeOf returns the start instant of step i.
func (g Grid) TimeOf(i int) time.Time {
	return g.start.Add(time.Duration(i) * g.delta)
}

// StepOf floors t to the nearest grid edge at or before t and returns the
// corresponding step index. The returned index is not clamped to [0,N);
// callers that need a horizon-bounded index should check it themselves.
func (g Grid) StepOf(t time.Time) int {
	d := t.Sub(g.start)
	i := int(d / g.delta)
	if d%g.delta < 0 {
		i--
	}
	return i
}

// StepsFor converts a duration into a whole number of steps. It returns
// solveerr.ErrInvalidInput if d is negative or not a multiple of Delta.
func (g Grid) StepsFor(d time.Duration) (int, error) {
	if d < 0 {
		return 0, fmt.Errorf("%w: duration must be non-negative", solveerr.ErrInvalidInput)
	}
	if d%g.delta != 0 {
		return 0, fmt.Errorf("%w: duration %s is not a multiple of timestep %s", solveerr.ErrInvalidInput, d, g.delta)
	}
	return int(d / g.delta), nil
}

// InBounds reports whether step index i is within [0, Steps()).
func (g Grid) InBounds(i int) bool { return i >= 0 && i < g.steps }
