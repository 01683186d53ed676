// Package anneal implements the move generator and the Metropolis
// annealing loop that drives the search, per spec.md §4.6 and §4.7.
package anneal

import (
	"math/rand"

	"github.com/alderwick/gridsched/core/schedule"
	"github.com/alderwick/gridsched/core/units"
)

// Kind identifies a move's category.
type Kind int

const (
	ShiftConstant Kind = iota
	ReallocateVariable
	PerturbBattery
)

// Move is a fully-specified proposed perturbation of a schedule.State.
// Apply mutates s according to Kind and the remaining fields.
type Move struct {
	Kind  Kind
	Index int // index into the relevant arena (ConstantActions/VariableActions/Batteries)

	OldStart int // ShiftConstant
	NewStart int // ShiftConstant

	StepI int // ReallocateVariable: window-relative offset; PerturbBattery: absolute step
	StepJ int
	Delta units.Watt // ReallocateVariable/PerturbBattery
}

// Generator proposes random moves against a schedule.State using a
// seeded RNG, per spec.md §4.6. A zero-valued Generator is not usable;
// construct with a non-nil Rng. Weights, if non-nil, overrides the
// default equal-probability-per-category selection (spec.md §4.6) with
// the caller-supplied per-category weights; a category absent from
// Weights or with non-positive weight is treated as disabled alongside
// categories with no eligible entities.
type Generator struct {
	Rng     *rand.Rand
	Weights map[Kind]float64
}

// Propose picks a move category among the categories with at least one
// eligible entity (uniformly, or per Weights if set), then a move within
// that category uniformly at random. ok is false if s has no constant
// actions, variable actions or batteries at all, or Weights disables
// every eligible category.
func (g *Generator) Propose(s *schedule.State) (Move, bool) {
	var categories []Kind
	if len(s.ConstantActions) > 0 {
		categories = append(categories, ShiftConstant)
	}
	if len(s.VariableActions) > 0 {
		categories = append(categories, ReallocateVariable)
	}
	if len(s.Batteries) > 0 {
		categories = append(categories, PerturbBattery)
	}
	if len(categories) == 0 {
		return Move{}, false
	}
	picked, ok := g.pickCategory(categories)
	if !ok {
		return Move{}, false
	}
	switch picked {
	case ShiftConstant:
		return g.proposeShift(s), true
	case ReallocateVariable:
		return g.proposeReallocate(s), true
	default:
		return g.proposeBatteryPerturb(s), true
	}
}

// pickCategory selects one of the eligible categories. With no Weights
// configured, selection is uniform; otherwise it is weighted, restricted
// to the eligible set and renormalized.
func (g *Generator) pickCategory(eligible []Kind) (Kind, bool) {
	if g.Weights == nil {
		return eligible[g.Rng.Intn(len(eligible))], true
	}
	var total float64
	for _, k := range eligible {
		if w := g.Weights[k]; w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return 0, false
	}
	r := g.Rng.Float64() * total
	for _, k := range eligible {
		w := g.Weights[k]
		if w <= 0 {
			continue
		}
		if r < w {
			return k, true
		}
		r -= w
	}
	return eligible[len(eligible)-1], true
}

func (g *Generator) proposeShift(s *schedule.State) Move {
	idx := g.Rng.Intn(len(s.ConstantActions))
	a := s.ConstantActions[idx]
	stepsWide, _ := s.Grid.StepsFor(a.Duration)
	windowStart := s.Grid.StepOf(a.StartFrom)
	windowEnd := s.Grid.StepOf(a.EndBefore)
	span := windowEnd - stepsWide - windowStart + 1
	newStart := windowStart
	if span > 1 {
		newStart += g.Rng.Intn(span)
	}
	return Move{Kind: ShiftConstant, Index: idx, OldStart: s.StartStep[idx], NewStart: newStart}
}

func (g *Generator) proposeReallocate(s *schedule.State) Move {
	idx := g.Rng.Intn(len(s.VariableActions))
	a := s.VariableActions[idx]
	w := len(s.Alloc[idx])
	i := g.Rng.Intn(w)
	j := g.Rng.Intn(w)
	for j == i {
		j = g.Rng.Intn(w)
	}
	deltaMax := float64(minWatt(s.Alloc[idx][i], a.MaxPower-s.Alloc[idx][j]))
	if deltaMax < 0 {
		deltaMax = 0
	}
	delta := units.Watt(g.Rng.Float64() * deltaMax)
	return Move{Kind: ReallocateVariable, Index: idx, StepI: i, StepJ: j, Delta: delta}
}

func (g *Generator) proposeBatteryPerturb(s *schedule.State) Move {
	idx := g.Rng.Intn(len(s.Batteries))
	b := s.Batteries[idx]
	n := s.Grid.Steps()
	i := g.Rng.Intn(n)
	j := g.Rng.Intn(n)
	for j == i {
		j = g.Rng.Intn(n)
	}
	pos := float64(minWatt(b.MaxChargeRate-s.Flow[idx][i], s.Flow[idx][j]+b.MaxDischargeRate))
	neg := float64(minWatt(s.Flow[idx][i]+b.MaxDischargeRate, b.MaxChargeRate-s.Flow[idx][j]))
	if pos < 0 {
		pos = 0
	}
	if neg < 0 {
		neg = 0
	}
	delta := units.Watt(g.Rng.Float64()*(pos+neg) - neg)
	return Move{Kind: PerturbBattery, Index: idx, StepI: i, StepJ: j, Delta: delta}
}

func minWatt(a, b units.Watt) units.Watt {
	if a < b {
		return a
	}
	return b
}

// Apply mutates s according to m and returns the set of grid steps whose
// D value changed, together with their pre-mutation values, for use by
// cost.Delta.
func Apply(s *schedule.State, m Move) (touched []int, before map[int]units.Watt) {
	switch m.Kind {
	case ShiftConstant:
		stepsWide, _ := s.Grid.StepsFor(s.ConstantActions[m.Index].Duration)
		before = make(map[int]units.Watt, 2*stepsWide)
		for i := m.OldStart; i < m.OldStart+stepsWide; i++ {
			before[i] = s.D[i]
		}
		for i := m.NewStart; i < m.NewStart+stepsWide; i++ {
			before[i] = s.D[i]
		}
		touched = s.SetConstantStart(m.Index, m.NewStart)
	case ReallocateVariable:
		w := s.VariableWindowOf(m.Index)
		stepI, stepJ := w.StartStep+m.StepI, w.StartStep+m.StepJ
		before = map[int]units.Watt{stepI: s.D[stepI], stepJ: s.D[stepJ]}
		s.SetVariableAlloc(m.Index, m.StepI, s.Alloc[m.Index][m.StepI]-m.Delta)
		s.SetVariableAlloc(m.Index, m.StepJ, s.Alloc[m.Index][m.StepJ]+m.Delta)
		touched = []int{stepI, stepJ}
	case PerturbBattery:
		before = map[int]units.Watt{m.StepI: s.D[m.StepI], m.StepJ: s.D[m.StepJ]}
		s.SetBatteryFlow(m.Index, m.StepI, s.Flow[m.Index][m.StepI]+m.Delta)
		s.SetBatteryFlow(m.Index, m.StepJ, s.Flow[m.Index][m.StepJ]-m.Delta)
		s.RecomputeBatteryLevel(m.Index)
		touched = []int{m.StepI, m.StepJ}
	}
	return touched, before
}

// Revert undoes a previously applied move by applying its inverse. It is
// used when a move passes the feasibility check but is rejected by the
// Metropolis acceptance test, so the state must return to exactly where
// it was before Apply.
func Revert(s *schedule.State, m Move) {
	switch m.Kind {
	case ShiftConstant:
		Apply(s, Move{Kind: ShiftConstant, Index: m.Index, OldStart: m.NewStart, NewStart: m.OldStart})
	case ReallocateVariable:
		Apply(s, Move{Kind: ReallocateVariable, Index: m.Index, StepI: m.StepI, StepJ: m.StepJ, Delta: -m.Delta})
	case PerturbBattery:
		Apply(s, Move{Kind: PerturbBattery, Index: m.Index, StepI: m.StepI, StepJ: m.StepJ, Delta: -m.Delta})
	}
}
