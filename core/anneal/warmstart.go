package anneal

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/alderwick/gridsched/core/schedule"
	"github.com/alderwick/gridsched/core/units"
)

// lpTolerance bounds how far an LP solution's total energy may drift from
// the action's required TotalEnergy before it is rejected in favor of the
// greedy allocation InitialState already placed.
const lpTolerance = 1e-3

// solveWarmStartLP minimizes price-weighted energy cost over a window,
// subject to a per-step cap and a total-energy equality constraint. It
// mirrors core/dispatch.solveLP's shape: a per-entity score (here, the
// price itself, since lp.Simplex minimizes) capped by a per-entity bound
// and tied together by one equality row.
func solveWarmStartLP(price []units.EuroPerWh, capEnergy []units.WattHour, target units.WattHour) ([]float64, error) {
	n := len(price)
	c := make([]float64, n)
	for i, p := range price {
		c[i] = float64(p)
	}

	g := mat.NewDense(n, n, nil)
	h := make([]float64, n)
	for i, cap := range capEnergy {
		g.Set(i, i, 1)
		h[i] = float64(cap)
	}

	a := mat.NewDense(1, n, nil)
	for i := range capEnergy {
		a.Set(0, i, 1)
	}
	b := []float64{float64(target)}

	cStd, aStd, bStd := lp.Convert(c, g, h, a, b)
	_, sol, err := lp.Simplex(cStd, aStd, bStd, 1e-7, nil)
	if err != nil {
		return nil, err
	}
	return sol[:n], nil
}

// warmStartSolve points to the function used to solve the per-window LP.
// Overridden in tests to simulate solver failures without depending on
// gonum's simplex internals.
var warmStartSolve = solveWarmStartLP

// WarmStart replaces InitialState's uniform-fill allocation for each
// variable action with a price-minimizing allocation found by solving a
// small linear program over that action's window: minimize price-weighted
// energy subject to the per-step power cap and the action's total-energy
// requirement. It is an optional refinement of the starting point the
// annealer searches from, per spec.md §9's warm-start design note; it
// never changes feasibility, since the LP's constraints are the same ones
// InitialState already satisfied.
//
// A window whose LP is infeasible or errors keeps InitialState's greedy
// allocation for that action untouched, mirroring how the teacher's
// LPDispatcher falls back to SmartDispatcher on solver failure.
func WarmStart(s *schedule.State) error {
	delta := s.Grid.Delta()
	deltaHours := delta.Hours()
	if deltaHours <= 0 {
		return nil
	}

	for idx, a := range s.VariableActions {
		w := s.Windows[idx]
		n := w.EndStep - w.StartStep
		if n <= 0 {
			continue
		}
		price := s.Price[w.StartStep:w.EndStep]
		capEnergy := make([]units.WattHour, n)
		for i := range capEnergy {
			capEnergy[i] = a.MaxPower.Over(delta)
		}

		sol, err := warmStartSolve(price, capEnergy, a.TotalEnergy)
		if err != nil {
			continue
		}

		var sum float64
		for _, e := range sol {
			if e < 0 {
				e = 0
			}
			sum += e
		}
		if math.Abs(sum-float64(a.TotalEnergy)) > lpTolerance {
			continue
		}

		for i, e := range sol {
			if e < 0 {
				e = 0
			}
			s.SetVariableAlloc(idx, i, units.Watt(e/deltaHours))
		}
	}
	return nil
}
