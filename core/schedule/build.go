package schedule

import (
	"fmt"

	"github.com/alderwick/gridsched/core/grid"
	"github.com/alderwick/gridsched/core/model"
	"github.com/alderwick/gridsched/core/prognosis"
	"github.com/alderwick/gridsched/core/solveerr"
	"github.com/alderwick/gridsched/core/units"
)

// New builds an empty (zero decision-variable) State from the validated
// inputs: the grid, the action and battery arenas, the committed past
// actions (folded into the baseline) and the sampled prognosis vectors.
// Constant actions are not yet placed and variable allocations/battery
// flows are zeroed; see core/anneal's initial-state construction for
// the first feasible placement, per spec.md §4.7.
func New(g grid.Grid, constants []model.ConstantAction, variables []model.VariableAction, batteries []model.Battery, past []model.PastConstantAction, sampled prognosis.Sampled) (*State, error) {
	s := &State{
		Grid:            g,
		ConstantActions: constants,
		ConstantIndex:   make(map[string]int, len(constants)),
		VariableActions: variables,
		VariableIndex:   make(map[string]int, len(variables)),
		Batteries:       batteries,
		BatteryIndex:    make(map[string]int, len(batteries)),
		Baseline:        make([]units.Watt, g.Steps()),
		Generation:      sampled.Generation,
		Price:           sampled.Price,
		D:               make([]units.Watt, g.Steps()),
	}

	s.StartStep = make([]int, len(constants))
	s.stepConstantIndex = make([][]int, g.Steps())
	for i, a := range constants {
		if _, ok := s.ConstantIndex[a.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate constant action id %q", solveerr.ErrInvalidInput, a.ID)
		}
		s.ConstantIndex[a.ID] = i
		if _, err := g.StepsFor(a.Duration); err != nil {
			return nil, err
		}
	}

	s.Windows = make([]VariableWindow, len(variables))
	s.Alloc = make([][]units.Watt, len(variables))
	for i, a := range variables {
		if _, ok := s.VariableIndex[a.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate variable action id %q", solveerr.ErrInvalidInput, a.ID)
		}
		s.VariableIndex[a.ID] = i
		startStep := g.StepOf(a.Start)
		endStep := g.StepOf(a.End)
		if !g.TimeOf(startStep).Equal(a.Start) || !g.TimeOf(endStep).Equal(a.End) {
			return nil, fmt.Errorf("%w: variable action %s: window is not grid-aligned", solveerr.ErrInvalidInput, a.ID)
		}
		if startStep < 0 || endStep > g.Steps() || startStep >= endStep {
			return nil, fmt.Errorf("%w: variable action %s: window outside horizon", solveerr.ErrInvalidInput, a.ID)
		}
		s.VariableIndex[a.ID] = i
		s.Windows[i] = VariableWindow{StartStep: startStep, EndStep: endStep}
		windowSteps := endStep - startStep
		s.Alloc[i] = make([]units.Watt, windowSteps)
		maxEnergy := units.WattHour(float64(a.MaxPower.Over(g.Delta())) * float64(windowSteps))
		if float64(a.TotalEnergy) > float64(maxEnergy) {
			return nil, fmt.Errorf("%w: variable action %s: total energy %v exceeds window capacity %v", solveerr.ErrInfeasibleInstance, a.ID, a.TotalEnergy, maxEnergy)
		}
	}

	s.Flow = make([][]units.Watt, len(batteries))
	s.Level = make([][]units.WattHour, len(batteries))
	for i, b := range batteries {
		if _, ok := s.BatteryIndex[b.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate battery id %q", solveerr.ErrInvalidInput, b.ID)
		}
		s.BatteryIndex[b.ID] = i
		s.Flow[i] = make([]units.Watt, g.Steps())
		s.Level[i] = make([]units.WattHour, g.Steps()+1)
	}

	for _, p := range past {
		startStep := g.StepOf(p.StartTime)
		stepsWide, err := g.StepsFor(p.Duration)
		if err != nil {
			return nil, err
		}
		for i := startStep; i < startStep+stepsWide; i++ {
			if i < 0 || i >= g.Steps() {
				continue
			}
			s.Baseline[i] += p.Power
		}
	}

	return s, nil
}
