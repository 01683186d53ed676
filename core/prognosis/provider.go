// Package prognosis wraps price and generation providers and samples
// them onto a time grid, generalizing the teacher's capability-interface
// pattern (core/prediction.PredictionEngine) over the sampled quantity
// type.
package prognosis

import (
	"context"
	"fmt"
	"time"

	"github.com/alderwick/gridsched/core/grid"
	"github.com/alderwick/gridsched/core/solveerr"
	"github.com/alderwick/gridsched/core/units"
)

// Provider is a pure function from a half-open interval to a scalar
// quantity of type Q. Implementations may fail; a failure aborts the
// solve with solveerr.ErrPrognosisUnavailable.
type Provider[Q any] interface {
	Sample(ctx context.Context, start, end time.Time) (Q, error)
}

// ProviderFunc adapts a plain function to a Provider.
type ProviderFunc[Q any] func(ctx context.Context, start, end time.Time) (Q, error)

// Sample calls f.
func (f ProviderFunc[Q]) Sample(ctx context.Context, start, end time.Time) (Q, error) {
	return f(ctx, start, end)
}

// PriceProvider samples an average price-per-energy over an interval.
type PriceProvider = Provider[units.EuroPerWh]

// GenerationProvider samples the energy generated during an interval.
type GenerationProvider = Provider[units.WattHour]

// ZeroGeneration is a GenerationProvider that always returns zero, used
// when the caller supplies no on-site generation forecast.
var ZeroGeneration GenerationProvider = ProviderFunc[units.WattHour](
	func(context.Context, time.Time, time.Time) (units.WattHour, error) {
		return 0, nil
	},
)

// Sampler materializes per-step price and generation vectors over a
// grid. Each provider is consulted at most once per grid step, per
// spec.md §6's provider contract.
type Sampler struct {
	Price      PriceProvider
	Generation GenerationProvider
}

// Sampled holds the per-step price and generation vectors produced by a
// Sample call, indexed by grid step.
type Sampled struct {
	Price      []units.EuroPerWh
	Generation []units.WattHour
}

// Sample materializes price[i] and gen[i] for every step i in g by
// calling each provider once per step with the step's wall-clock
// interval. It fails with solveerr.ErrPrognosisUnavailable if either
// provider returns an error.
func (s Sampler) Sample(ctx context.Context, g grid.Grid) (Sampled, error) {
	if s.Generation == nil {
		s.Generation = ZeroGeneration
	}
	n := g.Steps()
	out := Sampled{
		Price:      make([]units.EuroPerWh, n),
		Generation: make([]units.WattHour, n),
	}
	for i := 0; i < n; i++ {
		start := g.TimeOf(i)
		end := g.TimeOf(i + 1)
		p, err := s.Price.Sample(ctx, start, end)
		if err != nil {
			return Sampled{}, fmt.Errorf("%w: price at step %d: %v", solveerr.ErrPrognosisUnavailable, i, err)
		}
		out.Price[i] = p
		gen, err := s.Generation.Sample(ctx, start, end)
		if err != nil {
			return Sampled{}, fmt.Errorf("%w: generation at step %d: %v", solveerr.ErrPrognosisUnavailable, i, err)
		}
		out.Generation[i] = gen
	}
	return out, nil
}
