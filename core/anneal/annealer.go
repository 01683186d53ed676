package anneal

import (
	"context"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/alderwick/gridsched/core/cost"
	"github.com/alderwick/gridsched/core/feasibility"
	"github.com/alderwick/gridsched/core/schedule"
	"github.com/alderwick/gridsched/core/units"
	"github.com/alderwick/gridsched/internal/eventbus"
)

// Config holds the tunable parameters of the cooling schedule, per
// spec.md §4.7 and §6.
type Config struct {
	Seed         int64
	Alpha        float64 // cooling factor, typical 0.995
	T0Multiplier float64 // multiple of stddev(|ΔJ|) used to seed T0, typical 2
	T0Samples    int     // M0, number of probe moves used to estimate T0
	CoolEvery    int     // L, iterations between cooling steps
	TMin         float64
	StallLimit   int // L_stall
	IterationCap int
	AuditEvery   int // K, accepted moves between full-recompute audits

	// Weights overrides the default equal-probability-per-category move
	// selection (spec.md §6's "per-category move probabilities"). Nil
	// keeps the default.
	Weights map[Kind]float64

	// WarmStart enables the LP-based variable-action warm start (see
	// warmstart.go) in place of InitialState's plain uniform fill.
	WarmStart bool
}

// DefaultConfig returns the typical parameter values named in spec.md §4.7.
func DefaultConfig() Config {
	return Config{
		Alpha:        0.995,
		T0Multiplier: 2,
		T0Samples:    64,
		CoolEvery:    1,
		TMin:         1e-6,
		StallLimit:   2000,
		IterationCap: 100000,
		AuditEvery:   500,
		WarmStart:    true,
	}
}

// Progress is published on Bus as the loop runs, for callers that want
// to observe convergence without blocking the solve.
type Progress struct {
	Iteration int
	Temp      float64
	Accepted  bool
	Cost      units.Euro
	BestCost  units.Euro
}

// Result is the outcome of a Run call: the best-seen feasible state, its
// cost, the number of iterations executed and whether the loop was
// cancelled before a natural termination condition was reached.
type Result struct {
	Best       *schedule.State
	BestCost   units.Euro
	Iterations int
	Cancelled  bool
}

// Annealer runs the Metropolis loop described in spec.md §4.7 over a
// schedule.State, driving Generator and the feasibility/cost packages.
type Annealer struct {
	Config Config
	Bus    *eventbus.TypedBus[Progress] // optional; nil disables publishing
}

// Run executes the annealing loop starting from the feasible state s
// (typically produced by InitialState) and returns the best state found.
// s is mutated in place during the search; callers that need the
// starting state preserved should Clone it first.
func (an *Annealer) Run(ctx context.Context, s *schedule.State) (Result, error) {
	cfg := an.Config
	rng := rand.New(rand.NewSource(cfg.Seed))
	gen := &Generator{Rng: rng, Weights: cfg.Weights}

	t0, err := estimateT0(s, gen, cfg)
	if err != nil {
		return Result{}, err
	}

	auditor := cost.NewAuditor(s, cfg.AuditEvery)
	best := s.Clone()
	bestCost := auditor.Total()

	temp := t0
	sinceAccepted := 0
	iterations := 0

	for iterations < cfg.IterationCap {
		select {
		case <-ctx.Done():
			s.CopyFrom(best)
			return Result{Best: best, BestCost: cost.Evaluate(best), Iterations: iterations, Cancelled: true}, nil
		default:
		}

		if temp < cfg.TMin || sinceAccepted >= cfg.StallLimit {
			break
		}

		move, ok := gen.Propose(s)
		if !ok {
			break
		}

		iterations++
		if cfg.CoolEvery > 0 && iterations%cfg.CoolEvery == 0 {
			temp *= cfg.Alpha
		}

		if !checkFeasible(s, move) {
			sinceAccepted++
			an.publish(Progress{Iteration: iterations, Temp: temp, Accepted: false, Cost: auditor.Total(), BestCost: bestCost})
			continue
		}

		touched, before := Apply(s, move)
		dj := cost.Delta(s, touched, before)

		accept := dj <= 0 || rng.Float64() < math.Exp(-float64(dj)/temp)
		if !accept {
			Revert(s, move)
			sinceAccepted++
			an.publish(Progress{Iteration: iterations, Temp: temp, Accepted: false, Cost: auditor.Total(), BestCost: bestCost})
			continue
		}

		if err := auditor.Apply(s, dj); err != nil {
			return Result{}, err
		}
		sinceAccepted = 0

		if auditor.Total() < bestCost {
			bestCost = auditor.Total()
			best.CopyFrom(s)
		}

		an.publish(Progress{Iteration: iterations, Temp: temp, Accepted: true, Cost: auditor.Total(), BestCost: bestCost})
	}

	return Result{Best: best, BestCost: cost.Evaluate(best), Iterations: iterations}, nil
}

func (an *Annealer) publish(p Progress) {
	if an.Bus != nil {
		an.Bus.Publish(p)
	}
}

// checkFeasible dispatches a proposed move to the matching
// feasibility.Check* function.
func checkFeasible(s *schedule.State, m Move) bool {
	var err error
	switch m.Kind {
	case ShiftConstant:
		err = feasibility.CheckConstantShift(s, m.Index, m.NewStart)
	case ReallocateVariable:
		err = feasibility.CheckVariableReallocate(s, m.Index, m.StepI, m.StepJ, m.Delta)
	case PerturbBattery:
		err = feasibility.CheckBatteryPerturb(s, m.Index, m.StepI, m.StepJ, m.Delta)
	}
	return err == nil
}

// estimateT0 samples Config.T0Samples feasible probe moves from s
// (reverting each before the next is drawn) and returns T0Multiplier
// times the standard deviation of the sampled |ΔJ|, per spec.md §4.7. A
// flat or move-less instance yields no usable variance; TMin is used as
// the floor in that case rather than treated as an error.
func estimateT0(s *schedule.State, gen *Generator, cfg Config) (float64, error) {
	samples := make([]float64, 0, cfg.T0Samples)
	probes := cfg.T0Samples * 4
	for len(samples) < cfg.T0Samples && probes > 0 {
		probes--
		move, ok := gen.Propose(s)
		if !ok {
			break
		}
		if !checkFeasible(s, move) {
			continue
		}
		touched, before := Apply(s, move)
		dj := cost.Delta(s, touched, before)
		Revert(s, move)
		samples = append(samples, math.Abs(float64(dj)))
	}
	if len(samples) < 2 {
		return cfg.TMin, nil
	}
	t0 := cfg.T0Multiplier * stat.StdDev(samples, nil)
	if t0 < cfg.TMin {
		t0 = cfg.TMin
	}
	return t0, nil
}
