package model

import (
	"fmt"

	"github.com/alderwick/gridsched/core/solveerr"
	"github.com/alderwick/gridsched/core/units"
)

// Battery is a storage element with capacity and rate limits. Round-trip
// efficiency is not modeled; see DESIGN.md Open Question (b).
type Battery struct {
	ID               string         `json:"id"`
	Capacity         units.WattHour `json:"capacity"`
	MaxChargeRate    units.Watt     `json:"max_charge_rate"`
	MaxDischargeRate units.Watt     `json:"max_discharge_rate"`
	InitialCharge    units.WattHour `json:"initial_charge"`
}

// Validate checks the invariants of spec.md §3: a non-empty ID, positive
// capacity, non-negative rates, and an initial charge within [0, Capacity].
func (b Battery) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("%w: battery id must not be empty", solveerr.ErrInvalidInput)
	}
	if b.Capacity <= 0 {
		return fmt.Errorf("%w: battery %s: capacity must be positive", solveerr.ErrInvalidInput, b.ID)
	}
	if b.MaxChargeRate < 0 || b.MaxDischargeRate < 0 {
		return fmt.Errorf("%w: battery %s: rates must be non-negative", solveerr.ErrInvalidInput, b.ID)
	}
	if b.InitialCharge < 0 || b.InitialCharge > b.Capacity {
		return fmt.Errorf("%w: battery %s: initial charge out of [0, capacity]", solveerr.ErrInvalidInput, b.ID)
	}
	return nil
}
