package units

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odyssey-erp/costbook/internal/shared"
)

// Unit is a purchasing unit of measure.
type Unit string

const (
	// Kilogram is the canonical mass unit.
	Kilogram Unit = "kg"
	// Gram is a mass unit.
	Gram Unit = "g"
	// Liter is a volume unit converted through LiquidDensityKgPerLiter.
	Liter Unit = "l"
	// Milliliter is a volume unit converted through LiquidDensityKgPerLiter.
	Milliliter Unit = "ml"
	// Piece counts discrete goods and has no mass equivalent.
	Piece Unit = "pcs"
)

// Canonical is the unit every cost and weight figure is normalised to.
const Canonical = Kilogram

// Kind groups units by physical dimension.
type Kind string

const (
	KindMass   Kind = "mass"
	KindVolume Kind = "volume"
	KindCount  Kind = "count"
)

// ErrUnknownUnit indicates a unit outside the supported set.
var ErrUnknownUnit = shared.Validation("units: unknown unit")

// All lists supported units in display order.
func All() []Unit {
	return []Unit{Kilogram, Gram, Liter, Milliliter, Piece}
}

// Parse normalises a unit code such as "KG" or " ml ".
func Parse(raw string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(raw)))
	if !u.Valid() {
		return "", fmt.Errorf("%w %q", ErrUnknownUnit, raw)
	}
	return u, nil
}

// Valid reports whether u is one of the supported units.
func (u Unit) Valid() bool {
	_, ok := u.kind()
	return ok
}

// Kind returns the dimension of u. Unknown units report an empty kind.
func (u Unit) Kind() Kind {
	k, _ := u.kind()
	return k
}

func (u Unit) kind() (Kind, bool) {
	switch u {
	case Kilogram, Gram:
		return KindMass, true
	case Liter, Milliliter:
		return KindVolume, true
	case Piece:
		return KindCount, true
	default:
		return "", false
	}
}

// IsUnknown reports whether err was caused by an unsupported unit.
func IsUnknown(err error) bool {
	return errors.Is(err, ErrUnknownUnit)
}
