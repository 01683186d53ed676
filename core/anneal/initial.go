package anneal

import (
	"fmt"

	"github.com/alderwick/gridsched/core/schedule"
	"github.com/alderwick/gridsched/core/solveerr"
	"github.com/alderwick/gridsched/core/units"
)

const initialTolerance = 1e-6

// InitialState places every constant action at its earliest feasible
// step, allocates every variable action as uniformly as MaxPower allows
// (overflow redistributed greedily across the rest of the window), and
// leaves every battery at zero flow, per spec.md §4.7's initial-state
// construction. It returns solveerr.ErrInfeasibleInstance if any
// variable action's energy cannot be placed within its window.
func InitialState(s *schedule.State) error {
	s.RecomputeAll()

	for idx, a := range s.ConstantActions {
		windowStart := s.Grid.StepOf(a.StartFrom)
		s.SetConstantStart(idx, windowStart)
	}

	delta := s.Grid.Delta()
	deltaHours := delta.Hours()
	for idx, a := range s.VariableActions {
		windowSteps := len(s.Alloc[idx])
		capEnergy := a.MaxPower.Over(delta)
		baseEnergy := units.WattHour(float64(a.TotalEnergy) / float64(windowSteps))
		if baseEnergy > capEnergy {
			baseEnergy = capEnergy
		}
		energies := make([]units.WattHour, windowSteps)
		for i := range energies {
			energies[i] = baseEnergy
		}
		assigned := units.WattHour(float64(baseEnergy) * float64(windowSteps))
		remaining := a.TotalEnergy - assigned
		for i := 0; i < windowSteps && remaining > initialTolerance; i++ {
			spare := capEnergy - energies[i]
			if spare <= 0 {
				continue
			}
			add := spare
			if add > remaining {
				add = remaining
			}
			energies[i] += add
			remaining -= add
		}
		if remaining > initialTolerance {
			return fmt.Errorf("%w: variable action %s: %v cannot fit within its window under the per-step cap", solveerr.ErrInfeasibleInstance, a.ID, a.TotalEnergy)
		}
		for i, e := range energies {
			s.SetVariableAlloc(idx, i, units.Watt(float64(e)/deltaHours))
		}
	}

	s.RecomputeAll()
	return nil
}
