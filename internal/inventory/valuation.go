package inventory

import "github.com/shopspring/decimal"

// DefaultCapacityMultiplier scales the minimum level into a display ceiling
// for items without a maximum level.
const DefaultCapacityMultiplier = 2

var hundred = decimal.NewFromInt(100)

// StatusFor derives stock status from quantity and thresholds. A quantity
// equal to either threshold is in stock.
func StatusFor(qty, minLevel decimal.Decimal, maxLevel *decimal.Decimal) Status {
	switch {
	case !qty.IsPositive():
		return StatusOutOfStock
	case qty.LessThan(minLevel):
		return StatusLowStock
	case maxLevel != nil && qty.GreaterThan(*maxLevel):
		return StatusOverstock
	default:
		return StatusInStock
	}
}

// StockValue is the pre-tax value of a quantity.
func StockValue(qty, unitPrice decimal.Decimal) decimal.Decimal {
	return qty.Mul(unitPrice)
}

// PercentageOfCapacity is a progress-bar heuristic, not a financial figure.
// The ceiling is maxLevel, or minLevel*multiplier when no maximum is set.
// The result is clamped to [0, 100].
func PercentageOfCapacity(qty, minLevel decimal.Decimal, maxLevel *decimal.Decimal, multiplier decimal.Decimal) decimal.Decimal {
	ceiling := minLevel.Mul(multiplier)
	if maxLevel != nil {
		ceiling = *maxLevel
	}
	if !ceiling.IsPositive() {
		return decimal.Zero
	}
	pct := qty.Div(ceiling).Mul(hundred)
	switch {
	case pct.IsNegative():
		return decimal.Zero
	case pct.GreaterThan(hundred):
		return hundred
	}
	return pct
}

func valuate(item Item, qty, unitPrice, multiplier decimal.Decimal) Valuation {
	return Valuation{
		ItemID:               item.ID,
		Name:                 item.Name,
		Unit:                 item.Unit,
		Quantity:             qty,
		UnitPrice:            unitPrice,
		Value:                StockValue(qty, unitPrice),
		Status:               StatusFor(qty, item.MinLevel, item.MaxLevel),
		PercentageOfCapacity: PercentageOfCapacity(qty, item.MinLevel, item.MaxLevel, multiplier),
	}
}
