package result

import (
	"testing"
	"time"

	"github.com/alderwick/gridsched/core/grid"
	"github.com/alderwick/gridsched/core/model"
	"github.com/alderwick/gridsched/core/prognosis"
	"github.com/alderwick/gridsched/core/schedule"
	"github.com/alderwick/gridsched/core/units"
)

func buildMaterializedState(t *testing.T) *schedule.State {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g, err := grid.New(base, 4, time.Hour)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	constants := []model.ConstantAction{{
		ID:        "dishwasher",
		StartFrom: base,
		EndBefore: base.Add(4 * time.Hour),
		Duration:  time.Hour,
		Power:     units.Watt(1000),
	}}
	variables := []model.VariableAction{{
		ID:          "ev",
		Start:       base,
		End:         base.Add(4 * time.Hour),
		TotalEnergy: units.WattHour(2000),
		MaxPower:    units.Watt(1000),
	}}
	batteries := []model.Battery{{
		ID:               "house",
		Capacity:         units.WattHour(2000),
		MaxChargeRate:    units.Watt(1000),
		MaxDischargeRate: units.Watt(1000),
		InitialCharge:    units.WattHour(500),
	}}
	s, err := schedule.New(g, constants, variables, batteries, nil, prognosis.Sampled{
		Price:      make([]units.EuroPerWh, 4),
		Generation: make([]units.WattHour, 4),
	})
	if err != nil {
		t.Fatalf("new state: %v", err)
	}
	s.StartStep[0] = 2
	s.SetVariableAlloc(0, 0, units.Watt(500))
	s.SetVariableAlloc(0, 1, units.Watt(500))
	s.SetBatteryFlow(0, 0, units.Watt(500))
	s.RecomputeBatteryLevel(0)
	s.RecomputeAll()
	return s
}

func TestMaterializeConstantAssignment(t *testing.T) {
	s := buildMaterializedState(t)
	sched := Materialize(s)
	a, ok := sched.Constant("dishwasher")
	if !ok {
		t.Fatalf("expected dishwasher to be present")
	}
	wantStart := s.Grid.TimeOf(2)
	if !a.Start.Equal(wantStart) {
		t.Fatalf("start = %v, want %v", a.Start, wantStart)
	}
	if !a.End.Equal(wantStart.Add(time.Hour)) {
		t.Fatalf("end = %v, want %v", a.End, wantStart.Add(time.Hour))
	}
	if _, ok := sched.Constant("unknown"); ok {
		t.Fatalf("expected unknown id to be absent")
	}
}

func TestMaterializeVariableAssignmentQueryByTimestamp(t *testing.T) {
	s := buildMaterializedState(t)
	sched := Materialize(s)
	v, ok := sched.Variable("ev")
	if !ok {
		t.Fatalf("expected ev to be present")
	}
	if got := v.PowerAt(s.Grid.TimeOf(0)); got != units.Watt(500) {
		t.Fatalf("power at step 0 = %v, want 500", got)
	}
	if got := v.PowerAt(s.Grid.TimeOf(3)); got != 0 {
		t.Fatalf("power at step 3 = %v, want 0", got)
	}
	beforeWindow := s.Grid.Start().Add(-time.Hour)
	if got := v.PowerAt(beforeWindow); got != 0 {
		t.Fatalf("power before window = %v, want 0", got)
	}
}

func TestMaterializeBatteryAssignmentQueryByTimestamp(t *testing.T) {
	s := buildMaterializedState(t)
	sched := Materialize(s)
	b, ok := sched.Battery("house")
	if !ok {
		t.Fatalf("expected house battery to be present")
	}
	if got := b.FlowAt(s.Grid.TimeOf(0)); got != units.Watt(500) {
		t.Fatalf("flow at step 0 = %v, want 500", got)
	}
	if got := b.LevelAt(s.Grid.TimeOf(0)); got != units.WattHour(500) {
		t.Fatalf("level at step 0 = %v, want 500", got)
	}
	if got := b.LevelAt(s.Grid.TimeOf(1)); got != units.WattHour(1000) {
		t.Fatalf("level at step 1 = %v, want 1000", got)
	}
}

func TestMaterializeIsIdempotent(t *testing.T) {
	s := buildMaterializedState(t)
	a := Materialize(s)
	b := Materialize(s)
	ca, _ := a.Constant("dishwasher")
	cb, _ := b.Constant("dishwasher")
	if ca != cb {
		t.Fatalf("repeated materialization produced different constant assignments: %+v vs %+v", ca, cb)
	}
}
