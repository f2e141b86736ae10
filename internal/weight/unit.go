// Package weight converts item weights between units and aggregates them
// into totals in a bag owner's preferred unit.
package weight

import "packtrail/internal/models"

// Unit identifies a weight unit. The zero value is not a valid unit;
// use Normalize to resolve an item's effective unit.
type Unit string

const (
	Pound    Unit = models.UnitPound
	Kilogram Unit = models.UnitKilogram
	Gram     Unit = models.UnitGram
	Ounce    Unit = models.UnitOunce
)

// rate holds multiplicative conversion factors: rate[from][to].
var rate = map[Unit]map[Unit]float64{
	Pound: {
		Pound:    1,
		Kilogram: 0.453592,
		Gram:     453.592,
		Ounce:    16,
	},
	Kilogram: {
		Pound:    2.20462,
		Kilogram: 1,
		Gram:     1000,
		Ounce:    35.274,
	},
	Gram: {
		Pound:    0.00220462,
		Kilogram: 0.001,
		Gram:     1,
		Ounce:    0.035274,
	},
	Ounce: {
		Pound:    0.0625,
		Kilogram: 0.0283495,
		Gram:     28.3495,
		Ounce:    1,
	},
}

// Valid reports whether u is one of the four supported units.
func Valid(u Unit) bool {
	_, ok := rate[u]
	return ok
}

// Rate returns the multiplicative factor converting from one unit to another.
// Unknown units convert with factor 1: the source system left this case
// undefined, so an unresolvable unit is treated as already being in the
// target unit rather than producing NaN totals.
func Rate(from, to Unit) float64 {
	row, ok := rate[from]
	if !ok {
		return 1
	}
	f, ok := row[to]
	if !ok {
		return 1
	}
	return f
}

// Convert converts a weight magnitude between units.
func Convert(w float64, from, to Unit) float64 {
	return w * Rate(from, to)
}

// Normalize resolves an item's effective unit: the item's own unit when set
// and valid, otherwise the owner's preferred unit.
func Normalize(itemUnit string, ownerUnit Unit) Unit {
	if u := Unit(itemUnit); Valid(u) {
		return u
	}
	return ownerUnit
}
