package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/alderwick/gridsched/core/grid"
	"github.com/alderwick/gridsched/core/model"
	"github.com/alderwick/gridsched/core/prognosis"
	"github.com/alderwick/gridsched/core/result"
	"github.com/alderwick/gridsched/core/schedule"
	"github.com/alderwick/gridsched/core/units"
)

func buildSchedule(t *testing.T) (result.Schedule, []model.ConstantAction) {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	constants := []model.ConstantAction{{
		ID:        "dishwasher",
		StartFrom: base,
		EndBefore: base.Add(4 * time.Hour),
		Duration:  time.Hour,
		Power:     units.Watt(1000),
	}}
	g, err := grid.New(base, 4, time.Hour)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	s, err := schedule.New(g, constants, nil, nil, nil, prognosis.Sampled{
		Price:      make([]units.EuroPerWh, 4),
		Generation: make([]units.WattHour, 4),
	})
	if err != nil {
		t.Fatalf("new state: %v", err)
	}
	s.StartStep[0] = 1
	return result.Materialize(s), constants
}

func TestWriteCSVWritesHeaderAndRow(t *testing.T) {
	sched, constants := buildSchedule(t)
	var buf bytes.Buffer
	if err := WriteAllCSV(&buf, sched, constants); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "id,start,end,power_watt\n") {
		t.Fatalf("missing header, got %q", out)
	}
	if !strings.Contains(out, "dishwasher") {
		t.Fatalf("missing dishwasher row, got %q", out)
	}
}

func TestWriteJSONSkipsUnknownIDs(t *testing.T) {
	sched, _ := buildSchedule(t)
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sched, []string{"dishwasher", "nonexistent"}); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if !strings.Contains(buf.String(), "dishwasher") {
		t.Fatalf("expected dishwasher in output, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "nonexistent") {
		t.Fatalf("unknown id should not appear in output")
	}
}
