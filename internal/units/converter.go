package units

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LiquidDensityKgPerLiter is the density assumed for every volume unit.
//
// It is an approximation, not a physical constant. Recorded historical costs
// were computed with it.
var LiquidDensityKgPerLiter = decimal.NewFromInt(1)

// Warning is a non-fatal signal attached to a conversion.
type Warning string

// WarningNotWeighable is raised for piece-counted goods, which pass through unconverted.
const WarningNotWeighable Warning = "piece-counted goods cannot be weighed; quantity left unconverted"

// Conversion is the result of converting a quantity.
type Conversion struct {
	Quantity decimal.Decimal
	Warning  Warning
}

var thousandth = decimal.New(1, -3)

// factor returns how many canonical kilograms one u is worth.
func factor(u Unit) (decimal.Decimal, bool, error) {
	switch u {
	case Kilogram:
		return decimal.NewFromInt(1), true, nil
	case Gram:
		return thousandth, true, nil
	case Liter:
		return LiquidDensityKgPerLiter, true, nil
	case Milliliter:
		return thousandth.Mul(LiquidDensityKgPerLiter), true, nil
	case Piece:
		return decimal.Zero, false, nil
	default:
		return decimal.Zero, false, fmt.Errorf("%w %q", ErrUnknownUnit, string(u))
	}
}

// ToCanonical converts qty expressed in u to kilograms.
func ToCanonical(qty decimal.Decimal, u Unit) (Conversion, error) {
	f, ok, err := factor(u)
	if err != nil {
		return Conversion{}, err
	}
	if !ok {
		return Conversion{Quantity: qty, Warning: WarningNotWeighable}, nil
	}
	return Conversion{Quantity: qty.Mul(f)}, nil
}

// FromCanonical converts a kilogram quantity back into u.
func FromCanonical(qty decimal.Decimal, u Unit) (Conversion, error) {
	f, ok, err := factor(u)
	if err != nil {
		return Conversion{}, err
	}
	if !ok {
		return Conversion{Quantity: qty, Warning: WarningNotWeighable}, nil
	}
	return Conversion{Quantity: qty.DivRound(f, 12)}, nil
}
