// Package schedule holds the candidate solution the annealer mutates: a
// flat arena of per-action and per-battery decision variables plus a
// cached net-demand vector, per spec.md §4.3 and the "flat arena + index
// map" design note (spec.md §9).
package schedule

import (
	"github.com/alderwick/gridsched/core/grid"
	"github.com/alderwick/gridsched/core/model"
	"github.com/alderwick/gridsched/core/units"
)

// VariableWindow holds the precomputed grid-step bounds of a variable
// action's window, [StartStep, EndStep).
type VariableWindow struct {
	StartStep int
	EndStep   int
}

// State is the current candidate solution. Constant/variable actions and
// batteries are stored in contiguous slices; the ConstantIndex,
// VariableIndex and BatteryIndex maps let callers
// look entities up by caller-assigned identifier without pointer graphs.
type State struct {
	Grid grid.Grid

	ConstantActions   []model.ConstantAction
	ConstantIndex     map[string]int
	StartStep         []int   // decision variable: start step per constant action
	stepConstantIndex [][]int // reverse index: step -> indices of constant actions covering it

	VariableActions []model.VariableAction
	VariableIndex   map[string]int
	Windows         []VariableWindow
	Alloc           [][]units.Watt // per action, length Windows[i].EndStep-StartStep

	Batteries    []model.Battery
	BatteryIndex map[string]int
	Flow         [][]units.Watt    // per battery, length Grid.Steps()
	Level        [][]units.WattHour // per battery, length Grid.Steps()+1; Level[b][0] is fixed

	Baseline   []units.Watt    // fixed per-step demand from past actions
	Generation []units.WattHour // sampled per-step generation
	Price      []units.EuroPerWh

	// D is the net demand vector: positive means grid import, negative
	// means export. It is kept current by the mutation methods below and
	// is read directly by the cost evaluator.
	D []units.Watt
}

// netOf computes the net demand contribution of a single step from
// scratch: baseline + constant loads on step + variable allocation sum +
// battery flow sum - generation-as-power.
func (s *State) netOf(i int) units.Watt {
	d := s.Baseline[i]
	for _, ai := range s.stepConstantIndex[i] {
		d += s.ConstantActions[ai].Power
	}
	for ai, w := range s.Windows {
		if i >= w.StartStep && i < w.EndStep {
			d += s.Alloc[ai][i-w.StartStep]
		}
	}
	for _, f := range s.Flow {
		d += f[i]
	}
	deltaHours := s.Grid.Delta().Hours()
	if deltaHours > 0 {
		d -= units.Watt(float64(s.Generation[i]) / deltaHours)
	}
	return d
}

// RecomputeAll rebuilds the per-step constant-action index from
// StartStep, then D and Level from scratch for every step. It is used by
// initial-state construction.
func (s *State) RecomputeAll() {
	n := s.Grid.Steps()
	for i := range s.stepConstantIndex {
		s.stepConstantIndex[i] = s.stepConstantIndex[i][:0]
	}
	for idx, a := range s.ConstantActions {
		stepsWide, _ := s.Grid.StepsFor(a.Duration)
		for i := s.StartStep[idx]; i < s.StartStep[idx]+stepsWide; i++ {
			if s.Grid.InBounds(i) {
				s.stepConstantIndex[i] = append(s.stepConstantIndex[i], idx)
			}
		}
	}
	for i := 0; i < n; i++ {
		s.D[i] = s.netOf(i)
	}
	delta := s.Grid.Delta()
	for b := range s.Batteries {
		q := s.Batteries[b].InitialCharge
		s.Level[b][0] = q
		for i := 0; i < n; i++ {
			q += s.Flow[b][i].Over(delta)
			s.Level[b][i+1] = q
		}
	}
}

// RecomputeBatteryLevel rebuilds the charge-level cache for a single
// battery from its current flow vector. Used each time a battery-flow
// move is applied or reverted, since charge level is a running sum and
// cannot be updated purely locally.
func (s *State) RecomputeBatteryLevel(batteryIdx int) {
	delta := s.Grid.Delta()
	q := s.Batteries[batteryIdx].InitialCharge
	s.Level[batteryIdx][0] = q
	for i := 0; i < s.Grid.Steps(); i++ {
		q += s.Flow[batteryIdx][i].Over(delta)
		s.Level[batteryIdx][i+1] = q
	}
}

// SetConstantStart moves constant action idx to a new start step,
// updating the reverse per-step index and D for every step whose
// coverage changed. Returns the set of steps whose D value changed.
func (s *State) SetConstantStart(idx, newStart int) []int {
	a := s.ConstantActions[idx]
	stepsWide, _ := s.Grid.StepsFor(a.Duration)
	oldStart := s.StartStep[idx]

	touched := map[int]struct{}{}
	for i := oldStart; i < oldStart+stepsWide; i++ {
		s.removeConstantFromStep(i, idx)
		touched[i] = struct{}{}
	}
	s.StartStep[idx] = newStart
	for i := newStart; i < newStart+stepsWide; i++ {
		s.stepConstantIndex[i] = append(s.stepConstantIndex[i], idx)
		touched[i] = struct{}{}
	}
	out := make([]int, 0, len(touched))
	for i := range touched {
		s.D[i] = s.netOf(i)
		out = append(out, i)
	}
	return out
}

func (s *State) removeConstantFromStep(step, idx int) {
	list := s.stepConstantIndex[step]
	for j, v := range list {
		if v == idx {
			s.stepConstantIndex[step] = append(list[:j], list[j+1:]...)
			return
		}
	}
}

// SetVariableAlloc sets the allocation of variable action idx at window
// step offset j (0-based within the action's window) and recomputes D
// for that step.
func (s *State) SetVariableAlloc(idx, j int, v units.Watt) {
	s.Alloc[idx][j] = v
	step := s.Windows[idx].StartStep + j
	s.D[step] = s.netOf(step)
}

// SetBatteryFlow sets the flow of battery idx at step i and recomputes D
// for that step. It does not recompute Level; callers must call
// RecomputeBatteryLevel after all flow changes for a move are applied.
func (s *State) SetBatteryFlow(idx, i int, v units.Watt) {
	s.Flow[idx][i] = v
	s.D[i] = s.netOf(i)
}

// VariableWindowOf returns the precomputed window bounds for variable
// action idx.
func (s *State) VariableWindowOf(idx int) VariableWindow { return s.Windows[idx] }

// VariableEnergy returns the current total allocation (power-steps summed
// as energy) for variable action idx, used to audit total-energy
// preservation.
func (s *State) VariableEnergy(idx int) units.WattHour {
	var total units.WattHour
	delta := s.Grid.Delta()
	for _, v := range s.Alloc[idx] {
		total += v.Over(delta)
	}
	return total
}

// Clone returns a deep copy of the state, used by the annealer to keep a
// snapshot of the best-seen state without aliasing the working state's
// slices.
func (s *State) Clone() *State {
	n := &State{
		Grid:            s.Grid,
		ConstantActions: s.ConstantActions,
		ConstantIndex:   s.ConstantIndex,
		VariableActions: s.VariableActions,
		VariableIndex:   s.VariableIndex,
		Windows:         s.Windows,
		Batteries:       s.Batteries,
		BatteryIndex:    s.BatteryIndex,
		Baseline:        s.Baseline,
		Generation:      s.Generation,
		Price:           s.Price,
	}
	n.StartStep = append([]int(nil), s.StartStep...)
	n.stepConstantIndex = make([][]int, len(s.stepConstantIndex))
	for i, l := range s.stepConstantIndex {
		n.stepConstantIndex[i] = append([]int(nil), l...)
	}
	n.Alloc = make([][]units.Watt, len(s.Alloc))
	for i, a := range s.Alloc {
		n.Alloc[i] = append([]units.Watt(nil), a...)
	}
	n.Flow = make([][]units.Watt, len(s.Flow))
	for i, f := range s.Flow {
		n.Flow[i] = append([]units.Watt(nil), f...)
	}
	n.Level = make([][]units.WattHour, len(s.Level))
	for i, l := range s.Level {
		n.Level[i] = append([]units.WattHour(nil), l...)
	}
	n.D = append([]units.Watt(nil), s.D...)
	return n
}

// CopyFrom overwrites the receiver's mutable slices in place from src,
// avoiding reallocation. Used to restore the best-seen state into the
// working state without churning the heap.
func (s *State) CopyFrom(src *State) {
	copy(s.StartStep, src.StartStep)
	for i := range s.stepConstantIndex {
		s.stepConstantIndex[i] = append(s.stepConstantIndex[i][:0], src.stepConstantIndex[i]...)
	}
	for i := range s.Alloc {
		copy(s.Alloc[i], src.Alloc[i])
	}
	for i := range s.Flow {
		copy(s.Flow[i], src.Flow[i])
	}
	for i := range s.Level {
		copy(s.Level[i], src.Level[i])
	}
	copy(s.D, src.D)
}
