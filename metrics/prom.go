// Package metrics exposes solve-run observability via Prometheus,
// grounded on the teacher's metrics/prom.go collector-reuse pattern.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/alderwick/gridsched/core/anneal"
)

// PromSink records per-iteration annealer progress as Prometheus metrics.
type PromSink struct {
	iterations *prometheus.CounterVec
	accepted   *prometheus.CounterVec
	temp       prometheus.Gauge
	cost       prometheus.Gauge
	bestCost   prometheus.Gauge
}

// NewPromSink registers solve metrics on reg. If reg is nil, the default
// registerer is used. Collectors already registered (e.g. by an earlier
// solve in the same process) are reused rather than erroring.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	iterations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gridsched_iterations_total",
		Help: "Total number of annealer iterations, by acceptance outcome",
	}, []string{"accepted"})
	accepted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gridsched_moves_total",
		Help: "Total number of proposed moves, by acceptance outcome",
	}, []string{"accepted"})
	temp := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gridsched_temperature",
		Help: "Current annealer temperature",
	})
	cost := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gridsched_cost_current",
		Help: "Cost of the current working state",
	})
	bestCost := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gridsched_cost_best",
		Help: "Cost of the best state seen so far",
	})

	var err error
	iterations, err = registerCounterVec(reg, iterations)
	if err != nil {
		return nil, err
	}
	accepted, err = registerCounterVec(reg, accepted)
	if err != nil {
		return nil, err
	}
	temp, err = registerGauge(reg, temp)
	if err != nil {
		return nil, err
	}
	cost, err = registerGauge(reg, cost)
	if err != nil {
		return nil, err
	}
	bestCost, err = registerGauge(reg, bestCost)
	if err != nil {
		return nil, err
	}

	return &PromSink{iterations: iterations, accepted: accepted, temp: temp, cost: cost, bestCost: bestCost}, nil
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec), nil
		}
		return nil, err
	}
	return c, nil
}

func registerGauge(reg prometheus.Registerer, g prometheus.Gauge) (prometheus.Gauge, error) {
	if err := reg.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Gauge), nil
		}
		return nil, err
	}
	return g, nil
}

// Observe records one anneal.Progress event.
func (s *PromSink) Observe(p anneal.Progress) {
	label := "false"
	if p.Accepted {
		label = "true"
	}
	s.iterations.WithLabelValues(label).Inc()
	s.accepted.WithLabelValues(label).Inc()
	s.temp.Set(p.Temp)
	s.cost.Set(float64(p.Cost))
	s.bestCost.Set(float64(p.BestCost))
}
