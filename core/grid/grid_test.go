package grid

import (
	"errors"
	"testing"
	"time"

	"github.com/alderwick/gridsched/core/solveerr"
)

func TestNewRejectsNonPositiveDeltaOrSteps(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := New(base, 4, 0); !errors.Is(err, solveerr.ErrInvalidHorizon) {
		t.Fatalf("zero delta: got %v, want ErrInvalidHorizon", err)
	}
	if _, err := New(base, 0, time.Hour); !errors.Is(err, solveerr.ErrInvalidHorizon) {
		t.Fatalf("zero steps: got %v, want ErrInvalidHorizon", err)
	}
}

func TestNewCoveringRoundsUpPartialSteps(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g, err := NewCovering(base, base.Add(90*time.Minute), time.Hour)
	if err != nil {
		t.Fatalf("NewCovering: %v", err)
	}
	if g.Steps() != 2 {
		t.Fatalf("Steps() = %d, want 2 (90min needs 2 one-hour steps)", g.Steps())
	}
	if !g.End().After(base.Add(90 * time.Minute)) {
		t.Fatalf("End() = %v, should extend past the requested end", g.End())
	}
}

func TestNewCoveringRejectsNonPositiveSpan(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := NewCovering(base, base, time.Hour); !errors.Is(err, solveerr.ErrInvalidHorizon) {
		t.Fatalf("zero span: got %v, want ErrInvalidHorizon", err)
	}
	if _, err := NewCovering(base, base.Add(-time.Hour), time.Hour); !errors.Is(err, solveerr.ErrInvalidHorizon) {
		t.Fatalf("negative span: got %v, want ErrInvalidHorizon", err)
	}
}

func TestTimeOfAndStepOfAreInverses(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g, err := New(base, 4, 15*time.Minute)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < g.Steps(); i++ {
		if got := g.StepOf(g.TimeOf(i)); got != i {
			t.Fatalf("StepOf(TimeOf(%d)) = %d, want %d", i, got, i)
		}
	}
	if got := g.StepOf(base.Add(20 * time.Minute)); got != 1 {
		t.Fatalf("StepOf(base+20m) = %d, want 1 (floors to the step edge)", got)
	}
}

func TestStepsForRejectsNegativeOrMisalignedDurations(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g, err := New(base, 4, 30*time.Minute)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if n, err := g.StepsFor(90 * time.Minute); err != nil || n != 3 {
		t.Fatalf("StepsFor(90m) = (%d, %v), want (3, nil)", n, err)
	}
	if _, err := g.StepsFor(-time.Minute); !errors.Is(err, solveerr.ErrInvalidInput) {
		t.Fatalf("negative duration: got %v, want ErrInvalidInput", err)
	}
	if _, err := g.StepsFor(20 * time.Minute); !errors.Is(err, solveerr.ErrInvalidInput) {
		t.Fatalf("misaligned duration: got %v, want ErrInvalidInput", err)
	}
}

func TestInBounds(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g, err := New(base, 3, time.Hour)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !g.InBounds(0) || !g.InBounds(2) {
		t.Fatalf("expected steps 0 and 2 to be in bounds")
	}
	if g.InBounds(-1) || g.InBounds(3) {
		t.Fatalf("expected step -1 and 3 to be out of bounds")
	}
}
