// Package app wires the grid, sampler, schedule state, annealer and
// result materializer into a single Solve call, mirroring the shape of
// the teacher's app.Service orchestration.
package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/alderwick/gridsched/config"
	"github.com/alderwick/gridsched/core/anneal"
	"github.com/alderwick/gridsched/core/grid"
	corelogger "github.com/alderwick/gridsched/core/logger"
	"github.com/alderwick/gridsched/core/prognosis"
	"github.com/alderwick/gridsched/core/result"
	"github.com/alderwick/gridsched/core/schedule"
	"github.com/alderwick/gridsched/core/solvectx"
	"github.com/alderwick/gridsched/core/units"
	infralogger "github.com/alderwick/gridsched/infra/logger"
	"github.com/alderwick/gridsched/internal/eventbus"
	"github.com/alderwick/gridsched/metrics"
)

// Result is the external outcome of a Solve call: the total cost of the
// returned schedule, the materialized schedule itself, and metadata
// about the run.
type Result struct {
	RunID      string
	TotalCost  units.Euro
	Schedule   result.Schedule
	Iterations int
	Cancelled  bool
}

// Service holds the long-lived collaborators shared across solves: the
// logger, the progress event bus and, if enabled, the Prometheus sink.
type Service struct {
	log      corelogger.Logger
	bus      *eventbus.TypedBus[anneal.Progress]
	promSink *metrics.PromSink
}

// New creates a Service from the loaded configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := infralogger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	infralogger.SetFormat(cfg.Logging.Format)
	logg := infralogger.New("solver")
	bus := eventbus.NewTyped[anneal.Progress]()

	svc := &Service{log: logg, bus: bus}
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(nil)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		svc.promSink = sink
	}
	return svc, nil
}

// Bus exposes the progress event bus for callers that want to observe
// convergence (e.g. the metrics collector or a CLI progress bar).
func (s *Service) Bus() *eventbus.TypedBus[anneal.Progress] { return s.bus }

// Solve runs a single batch optimization over sc and returns the best
// feasible schedule found, per spec.md §1's single-batch-solve contract.
func (s *Service) Solve(ctx context.Context, sc solvectx.Context) (Result, error) {
	runID := uuid.NewString()
	log := s.log

	g, err := grid.NewCovering(sc.Start, sc.End, sc.Delta)
	if err != nil {
		return Result{}, fmt.Errorf("build grid: %w", err)
	}

	sampler := prognosis.Sampler{Price: sc.Price, Generation: sc.Generation}
	sampled, err := sampler.Sample(ctx, g)
	if err != nil {
		return Result{}, fmt.Errorf("sample prognosis: %w", err)
	}

	st, err := schedule.New(g, sc.ConstantActions, sc.VariableActions, sc.Batteries, sc.PastActions, sampled)
	if err != nil {
		return Result{}, fmt.Errorf("build schedule: %w", err)
	}
	if err := anneal.InitialState(st); err != nil {
		return Result{}, fmt.Errorf("initial state: %w", err)
	}
	if sc.Annealer.WarmStart {
		if err := anneal.WarmStart(st); err != nil {
			return Result{}, fmt.Errorf("warm start: %w", err)
		}
	}

	an := &anneal.Annealer{Config: sc.Annealer, Bus: s.bus}
	if s.promSink != nil {
		collectorCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		metrics.StartProgressCollector(collectorCtx, s.bus, s.promSink)
	}

	log.Infof("solve %s: starting, horizon=%d steps", runID, g.Steps())
	res, err := an.Run(ctx, st)
	if err != nil {
		return Result{}, fmt.Errorf("anneal: %w", err)
	}
	log.Infof("solve %s: finished after %d iterations, cost=%v, cancelled=%v", runID, res.Iterations, res.BestCost, res.Cancelled)

	return Result{
		RunID:      runID,
		TotalCost:  res.BestCost,
		Schedule:   result.Materialize(res.Best),
		Iterations: res.Iterations,
		Cancelled:  res.Cancelled,
	}, nil
}
