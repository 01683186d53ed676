package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/alderwick/gridsched/core/anneal"
)

func TestPromSinkObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSink(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	sink.Observe(anneal.Progress{Iteration: 1, Temp: 12.5, Accepted: true, Cost: 100, BestCost: 100})
	sink.Observe(anneal.Progress{Iteration: 2, Temp: 12.4, Accepted: false, Cost: 110, BestCost: 100})

	if c := testutil.CollectAndCount(sink.iterations); c != 2 {
		t.Fatalf("iterations series count = %d, want 2", c)
	}
	if got := testutil.ToFloat64(sink.bestCost); got != 100 {
		t.Fatalf("bestCost = %v, want 100", got)
	}
	if got := testutil.ToFloat64(sink.cost); got != 110 {
		t.Fatalf("cost = %v, want 110", got)
	}
}

func TestNewPromSinkReusesAlreadyRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSink(reg); err != nil {
		t.Fatalf("first sink: %v", err)
	}
	if _, err := NewPromSink(reg); err != nil {
		t.Fatalf("second sink should reuse existing collectors, got error: %v", err)
	}
}
