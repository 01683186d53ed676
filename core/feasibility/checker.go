// Package feasibility validates proposed moves against the hard
// constraints of spec.md §4.4 without mutating the schedule state. A
// move is applied only after it passes its Check* call, so the state is
// never left in a half-mutated, rejected position.
package feasibility

import (
	"fmt"

	"github.com/alderwick/gridsched/core/schedule"
	"github.com/alderwick/gridsched/core/solveerr"
	"github.com/alderwick/gridsched/core/units"
)

const tolerance = 1e-6

// CheckConstantShift verifies that moving constant action idx to
// newStart keeps its covered interval within its own window and within
// the horizon. Overlapping loads are permitted by design (spec.md §4.4):
// the electrical panel is not modeled.
func CheckConstantShift(s *schedule.State, idx, newStart int) error {
	a := s.ConstantActions[idx]
	stepsWide, err := s.Grid.StepsFor(a.Duration)
	if err != nil {
		return err
	}
	windowStart := s.Grid.StepOf(a.StartFrom)
	windowEnd := s.Grid.StepOf(a.EndBefore)
	if newStart < windowStart || newStart+stepsWide > windowEnd {
		return fmt.Errorf("%w: constant action %s: start step %d out of window [%d,%d)", solveerr.ErrInvalidInput, a.ID, newStart, windowStart, windowEnd)
	}
	if newStart < 0 || newStart+stepsWide > s.Grid.Steps() {
		return fmt.Errorf("%w: constant action %s: placement exceeds horizon", solveerr.ErrInvalidInput, a.ID)
	}
	return nil
}

// CheckVariableReallocate verifies that moving delta of power from step
// i to step j of variable action idx keeps every allocation within
// [0, MaxPower] and preserves total energy. Total-energy preservation
// holds by construction (the move only transfers power between two
// steps); this check re-verifies it to the configured tolerance as a
// defensive audit.
func CheckVariableReallocate(s *schedule.State, idx, i, j int, delta units.Watt) error {
	a := s.VariableActions[idx]
	w := s.VariableWindowOf(idx)
	if i == j {
		return fmt.Errorf("%w: variable action %s: reallocation requires distinct steps", solveerr.ErrInvalidInput, a.ID)
	}
	if i < 0 || i >= len(s.Alloc[idx]) || j < 0 || j >= len(s.Alloc[idx]) {
		return fmt.Errorf("%w: variable action %s: step offset outside window [%d,%d)", solveerr.ErrInvalidInput, a.ID, w.StartStep, w.EndStep)
	}
	newI := s.Alloc[idx][i] - delta
	newJ := s.Alloc[idx][j] + delta
	if newI < -tolerance || newJ > a.MaxPower+units.Watt(tolerance) {
		return fmt.Errorf("%w: variable action %s: reallocation violates [0,%v] at step %d or %d", solveerr.ErrInvalidInput, a.ID, a.MaxPower, i, j)
	}
	if newJ < -tolerance || newI > a.MaxPower+units.Watt(tolerance) {
		return fmt.Errorf("%w: variable action %s: reallocation violates [0,%v] at step %d or %d", solveerr.ErrInvalidInput, a.ID, a.MaxPower, i, j)
	}
	return nil
}

// CheckBatteryPerturb verifies that adding delta to battery idx's flow
// at step i and subtracting it at step j keeps every rate within
// [-MaxDischargeRate, MaxChargeRate] and every derived charge level
// within [0, Capacity] from the first perturbed step through the end of
// the horizon (spec.md §4.4: the non-local charge-level constraint).
func CheckBatteryPerturb(s *schedule.State, idx, i, j int, delta units.Watt) error {
	b := s.Batteries[idx]
	n := s.Grid.Steps()
	if i < 0 || i >= n || j < 0 || j >= n {
		return fmt.Errorf("%w: battery %s: step index out of horizon", solveerr.ErrInvalidInput, b.ID)
	}
	if i == j {
		return fmt.Errorf("%w: battery %s: perturbation requires distinct steps", solveerr.ErrInvalidInput, b.ID)
	}
	newI := s.Flow[idx][i] + delta
	newJ := s.Flow[idx][j] - delta
	if !rateInBounds(newI, b.MaxChargeRate, b.MaxDischargeRate) || !rateInBounds(newJ, b.MaxChargeRate, b.MaxDischargeRate) {
		return fmt.Errorf("%w: battery %s: perturbation exceeds rate bounds", solveerr.ErrInvalidInput, b.ID)
	}

	first := i
	if j < first {
		first = j
	}
	q := s.Level[idx][first]
	for step := first; step < n; step++ {
		flow := s.Flow[idx][step]
		switch step {
		case i:
			flow += delta
		case j:
			flow -= delta
		}
		q += flow.Over(s.Grid.Delta())
		if q < -units.WattHour(tolerance) || q > b.Capacity+units.WattHour(tolerance) {
			return fmt.Errorf("%w: battery %s: charge level at step %d out of [0,%v]", solveerr.ErrInvalidInput, b.ID, step+1, b.Capacity)
		}
	}
	return nil
}

func rateInBounds(f units.Watt, maxCharge, maxDischarge units.Watt) bool {
	return f >= -maxDischarge-units.Watt(tolerance) && f <= maxCharge+units.Watt(tolerance)
}
