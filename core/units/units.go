// Package units defines dimensional scalar types for the scheduling
// domain, so that power, energy, price and cost cannot be mixed up at
// compile time. Internally each type is a plain float64; the dimensional
// rules live in the conversion methods below.
package units

import "time"

// Watt is a power quantity.
type Watt float64

// WattHour is an energy quantity.
type WattHour float64

// EuroPerWh is a price-per-energy quantity.
type EuroPerWh float64

// Euro is a monetary cost quantity.
type Euro float64

// Over converts a constant power held for d into the energy delivered.
func (w Watt) Over(d time.Duration) WattHour {
	return WattHour(float64(w) * d.Hours())
}

// At converts an energy quantity into its cost at the given price.
func (e WattHour) At(p EuroPerWh) Euro {
	return Euro(float64(e) * float64(p))
}

// Abs returns the absolute value of w.
func (w Watt) Abs() Watt {
	if w < 0 {
		return -w
	}
	return w
}

// Abs returns the absolute value of e.
func (e WattHour) Abs() WattHour {
	if e < 0 {
		return -e
	}
	return e
}

// Abs returns the absolute value of c.
func (c Euro) Abs() Euro {
	if c < 0 {
		return -c
	}
	return c
}

// MaxWatt returns the greater of two Watt values.
func MaxWatt(a, b Watt) Watt {
	if a > b {
		return a
	}
	return b
}

// MinWatt returns the lesser of two Watt values.
func MinWatt(a, b Watt) Watt {
	if a < b {
		return a
	}
	return b
}
