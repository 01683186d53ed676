package model

import (
	"errors"
	"testing"
	"time"

	"github.com/alderwick/gridsched/core/solveerr"
	"github.com/alderwick/gridsched/core/units"
)

func TestConstantActionValidate(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := ConstantAction{
		ID:        "dishwasher",
		StartFrom: base,
		EndBefore: base.Add(24 * time.Hour),
		Duration:  time.Hour,
		Power:     units.Watt(1000),
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("expected valid action, got %v", err)
	}
}

func TestConstantActionValidateNoPlacement(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := ConstantAction{
		ID:        "dishwasher",
		StartFrom: base,
		EndBefore: base.Add(time.Hour),
		Duration:  2 * time.Hour,
		Power:     units.Watt(1000),
	}
	if err := a.Validate(); !errors.Is(err, solveerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestConstantActionValidateTooLong(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := ConstantAction{
		ID:        "dishwasher",
		StartFrom: base,
		EndBefore: base.Add(48 * time.Hour),
		Duration:  25 * time.Hour,
		Power:     units.Watt(1000),
	}
	if err := a.Validate(); !errors.Is(err, solveerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestVariableActionValidate(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := VariableAction{
		ID:          "ev-charger",
		Start:       base,
		End:         base.Add(4 * time.Hour),
		TotalEnergy: units.WattHour(2000),
		MaxPower:    units.Watt(1000),
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("expected valid action, got %v", err)
	}
}

func TestVariableActionValidateEmptyWindow(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := VariableAction{ID: "x", Start: base, End: base}
	if err := a.Validate(); !errors.Is(err, solveerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPastConstantActionEndTime(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := PastConstantAction{ID: "fridge", StartTime: base, Duration: time.Hour, Power: units.Watt(150)}
	if err := a.Validate(); err != nil {
		t.Fatalf("expected valid action, got %v", err)
	}
	if !a.EndTime().Equal(base.Add(time.Hour)) {
		t.Fatalf("unexpected end time %v", a.EndTime())
	}
}
