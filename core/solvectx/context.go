// Package solvectx assembles a caller's loads, batteries, prognoses and
// start time into a validated Context, mirroring the shape of the
// teacher's dispatch context and config construction.
package solvectx

import (
	"fmt"
	"time"

	"github.com/alderwick/gridsched/core/anneal"
	"github.com/alderwick/gridsched/core/model"
	"github.com/alderwick/gridsched/core/prognosis"
	"github.com/alderwick/gridsched/core/solveerr"
)

// Context is the validated input to a single solve, per spec.md §6. End
// is always populated by a successful Build: taken from WithHorizonEnd,
// or derived from the union of all constant/variable action windows when
// the caller leaves it unset, per spec.md §4.1, or set to Start+Delta for
// an instance with no actions, batteries or past actions.
type Context struct {
	Start      time.Time
	End        time.Time
	Delta      time.Duration
	Price      prognosis.PriceProvider
	Generation prognosis.GenerationProvider

	ConstantActions []model.ConstantAction
	VariableActions []model.VariableAction
	Batteries       []model.Battery
	PastActions     []model.PastConstantAction

	Annealer anneal.Config
}

// Builder accumulates inputs before validation, mirroring the teacher's
// fluent context-construction style.
type Builder struct {
	ctx Context
}

// New starts a Builder with the horizon start time and timestep.
func New(start time.Time, delta time.Duration) *Builder {
	return &Builder{ctx: Context{Start: start, Delta: delta, Annealer: anneal.DefaultConfig()}}
}

// WithPrices sets the required price provider.
func (b *Builder) WithPrices(p prognosis.PriceProvider) *Builder {
	b.ctx.Price = p
	return b
}

// WithGeneration sets an optional generation provider.
func (b *Builder) WithGeneration(p prognosis.GenerationProvider) *Builder {
	b.ctx.Generation = p
	return b
}

// WithHorizonEnd sets the horizon end explicitly. Required for instances
// that do not carry a constant or variable action to derive it from
// (e.g. a battery-arbitrage-only instance, per spec.md §8 scenario 3);
// optional otherwise, in which case it still widens the derived horizon
// if it extends past every action window.
func (b *Builder) WithHorizonEnd(end time.Time) *Builder {
	b.ctx.End = end
	return b
}

// AddConstantAction registers a deferrable load of fixed shape.
func (b *Builder) AddConstantAction(a model.ConstantAction) *Builder {
	b.ctx.ConstantActions = append(b.ctx.ConstantActions, a)
	return b
}

// AddVariableAction registers a flexible load.
func (b *Builder) AddVariableAction(a model.VariableAction) *Builder {
	b.ctx.VariableActions = append(b.ctx.VariableActions, a)
	return b
}

// AddBattery registers a storage element.
func (b *Builder) AddBattery(bat model.Battery) *Builder {
	b.ctx.Batteries = append(b.ctx.Batteries, bat)
	return b
}

// AddPastAction folds an already-committed action into the baseline.
func (b *Builder) AddPastAction(a model.PastConstantAction) *Builder {
	b.ctx.PastActions = append(b.ctx.PastActions, a)
	return b
}

// WithAnnealerConfig overrides the default annealing parameters.
func (b *Builder) WithAnnealerConfig(cfg anneal.Config) *Builder {
	b.ctx.Annealer = cfg
	return b
}

// Build validates every entity and the provider requirement, resolves
// the horizon end, and returns solveerr.ErrInvalidInput on the first
// violation found.
func (b *Builder) Build() (Context, error) {
	ctx := b.ctx
	if ctx.Price == nil {
		return Context{}, fmt.Errorf("%w: a price provider is required", solveerr.ErrInvalidInput)
	}
	if ctx.Delta <= 0 {
		return Context{}, fmt.Errorf("%w: timestep must be positive", solveerr.ErrInvalidInput)
	}
	for _, a := range ctx.ConstantActions {
		if err := a.Validate(); err != nil {
			return Context{}, err
		}
	}
	for _, a := range ctx.VariableActions {
		if err := a.Validate(); err != nil {
			return Context{}, err
		}
	}
	for _, bat := range ctx.Batteries {
		if err := bat.Validate(); err != nil {
			return Context{}, err
		}
	}
	for _, a := range ctx.PastActions {
		if err := a.Validate(); err != nil {
			return Context{}, err
		}
	}

	actionEnd := ctx.Start
	for _, a := range ctx.ConstantActions {
		if a.EndBefore.After(actionEnd) {
			actionEnd = a.EndBefore
		}
	}
	for _, a := range ctx.VariableActions {
		if a.End.After(actionEnd) {
			actionEnd = a.End
		}
	}
	hasWindowHint := len(ctx.ConstantActions) > 0 || len(ctx.VariableActions) > 0

	switch {
	case !ctx.End.IsZero():
		if !ctx.End.After(ctx.Start) {
			return Context{}, fmt.Errorf("%w: horizon end must be after start", solveerr.ErrInvalidInput)
		}
		if hasWindowHint && actionEnd.After(ctx.End) {
			return Context{}, fmt.Errorf("%w: horizon end %s is before the latest action window end %s", solveerr.ErrInvalidInput, ctx.End, actionEnd)
		}
	case hasWindowHint:
		ctx.End = actionEnd
	case len(ctx.Batteries) > 0 || len(ctx.PastActions) > 0:
		return Context{}, fmt.Errorf("%w: an instance with no constant or variable action has no window to derive a horizon from; set an explicit horizon with WithHorizonEnd", solveerr.ErrInvalidInput)
	default:
		ctx.End = ctx.Start.Add(ctx.Delta)
	}

	return ctx, nil
}
