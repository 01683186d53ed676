// Package result converts a frozen schedule.State into the external
// Schedule view exposed to callers, per spec.md §4.8.
package result

import (
	"time"

	"github.com/alderwick/gridsched/core/schedule"
	"github.com/alderwick/gridsched/core/units"
)

// ConstantAssignment is the materialized view of an assigned constant
// action: its chosen start step translated to wall-clock bounds.
type ConstantAssignment struct {
	ID    string
	Start time.Time
	End   time.Time
	Power units.Watt
}

// VariableAssignment is the materialized view of an assigned variable
// action, queryable by timestamp.
type VariableAssignment struct {
	ID          string
	WindowStart time.Time
	WindowEnd   time.Time

	grid  schedule.VariableWindow
	alloc []units.Watt
	g     timeIndexer
}

// PowerAt returns the allocated power at instant t, zero outside the
// window.
func (v VariableAssignment) PowerAt(t time.Time) units.Watt {
	i := v.g.StepOf(t)
	if i < v.grid.StartStep || i >= v.grid.EndStep {
		return 0
	}
	return v.alloc[i-v.grid.StartStep]
}

// BatteryAssignment is the materialized view of an assigned battery,
// queryable by timestamp for charge level and average flow.
type BatteryAssignment struct {
	ID string

	level []units.WattHour
	flow  []units.Watt
	g     timeIndexer
}

// LevelAt returns the charge level at the start of the step enclosing t.
func (b BatteryAssignment) LevelAt(t time.Time) units.WattHour {
	i := clampStep(b.g.StepOf(t), len(b.flow))
	return b.level[i]
}

// FlowAt returns the average signed flow over the step enclosing t.
func (b BatteryAssignment) FlowAt(t time.Time) units.Watt {
	i := clampStep(b.g.StepOf(t), len(b.flow))
	return b.flow[i]
}

func clampStep(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// timeIndexer is the subset of grid.Grid the materialized views need;
// declared locally so this package does not re-export grid.Grid's full
// surface.
type timeIndexer interface {
	StepOf(t time.Time) int
	TimeOf(i int) time.Time
}

// Schedule is the external, identifier-keyed view of a solved state.
// Lookup by an unknown identifier returns the zero value and ok=false.
type Schedule struct {
	constants map[string]ConstantAssignment
	variables map[string]VariableAssignment
	batteries map[string]BatteryAssignment
}

// Constant looks up the assigned constant action by identifier.
func (s Schedule) Constant(id string) (ConstantAssignment, bool) {
	a, ok := s.constants[id]
	return a, ok
}

// Variable looks up the assigned variable action by identifier.
func (s Schedule) Variable(id string) (VariableAssignment, bool) {
	a, ok := s.variables[id]
	return a, ok
}

// Battery looks up the assigned battery by identifier.
func (s Schedule) Battery(id string) (BatteryAssignment, bool) {
	a, ok := s.batteries[id]
	return a, ok
}

// Materialize builds the external Schedule view of s. It is a pure
// read-only projection; calling it twice on the same state yields two
// Schedule values that compare as equal assignment-by-assignment.
func Materialize(s *schedule.State) Schedule {
	out := Schedule{
		constants: make(map[string]ConstantAssignment, len(s.ConstantActions)),
		variables: make(map[string]VariableAssignment, len(s.VariableActions)),
		batteries: make(map[string]BatteryAssignment, len(s.Batteries)),
	}
	for i, a := range s.ConstantActions {
		start := s.Grid.TimeOf(s.StartStep[i])
		out.constants[a.ID] = ConstantAssignment{
			ID:    a.ID,
			Start: start,
			End:   start.Add(a.Duration),
			Power: a.Power,
		}
	}
	for i, a := range s.VariableActions {
		out.variables[a.ID] = VariableAssignment{
			ID:          a.ID,
			WindowStart: a.Start,
			WindowEnd:   a.End,
			grid:        s.Windows[i],
			alloc:       append([]units.Watt(nil), s.Alloc[i]...),
			g:           s.Grid,
		}
	}
	for i, b := range s.Batteries {
		flow := append([]units.Watt(nil), s.Flow[i]...)
		level := make([]units.WattHour, len(flow))
		copy(level, s.Level[i][:len(flow)])
		out.batteries[b.ID] = BatteryAssignment{
			ID:    b.ID,
			level: level,
			flow:  flow,
			g:     s.Grid,
		}
	}
	return out
}
