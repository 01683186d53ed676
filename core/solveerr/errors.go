// Package solveerr defines the sentinel error kinds returned by the
// scheduling core. Callers should inspect them with errors.Is.
package solveerr

import "errors"

var (
	// ErrInvalidInput marks malformed input: durations not a multiple of
	// the timestep, windows outside the horizon, negative rates or
	// capacities, an initial charge outside [0, C].
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidHorizon marks an empty or unrepresentable horizon.
	ErrInvalidHorizon = errors.New("invalid horizon")

	// ErrInfeasibleInstance marks an instance for which no feasible
	// initial state could be constructed.
	ErrInfeasibleInstance = errors.New("infeasible instance")

	// ErrPrognosisUnavailable marks a price or generation provider
	// failure.
	ErrPrognosisUnavailable = errors.New("prognosis unavailable")

	// ErrCancelled names cooperative cancellation of a running solve.
	// The solve path does not return it: a cancelled anneal.Annealer.Run
	// reports cancellation through Result.Cancelled with a nil error,
	// alongside the best-so-far state.
	ErrCancelled = errors.New("solve cancelled")

	// ErrNumerical marks detected drift between incremental and
	// full-horizon cost beyond tolerance during a periodic audit.
	ErrNumerical = errors.New("numerical drift detected")
)
