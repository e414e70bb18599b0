package costing

import "github.com/odyssey-erp/costbook/internal/catalog"

// EffectivePrice returns the locked snapshot when present, otherwise the
// entry's live price.
func EffectivePrice(ing Ingredient, entry catalog.Entry) Price {
	if ing.Locked != nil {
		return Price{UnitPrice: ing.Locked.UnitPrice, Tax: ing.Locked.Tax}
	}
	return Price{UnitPrice: entry.UnitPrice, Tax: entry.Tax}
}

// priceDrifted reports whether a locked snapshot no longer matches the live entry.
func priceDrifted(ing Ingredient, entry catalog.Entry) bool {
	if ing.Locked == nil {
		return false
	}
	return !ing.Locked.UnitPrice.Equal(entry.UnitPrice) || !ing.Locked.Tax.Equal(entry.Tax)
}
