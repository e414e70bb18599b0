package alerts

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/costbook/internal/costing"
	"github.com/odyssey-erp/costbook/internal/inventory"
)

// Scan returns the alerts that should be raised for items and analyses and
// are not already represented by an unresolved alert in existing. Archived
// items are ignored. Scan never modifies existing alerts.
func Scan(items []inventory.Item, analyses []costing.Analysis, existing []Alert, now time.Time) []Alert {
	open := make(map[conditionKey]struct{}, len(existing))
	for _, a := range existing {
		if !a.Resolved {
			open[a.condition()] = struct{}{}
		}
	}
	var raised []Alert
	raise := func(a Alert) {
		if _, ok := open[a.condition()]; ok {
			return
		}
		a.ID = uuid.NewString()
		a.CreatedAt = now
		open[a.condition()] = struct{}{}
		raised = append(raised, a)
	}

	for _, item := range items {
		if item.Archived {
			continue
		}
		if a, ok := stockAlert(item); ok {
			raise(a)
		}
	}
	for _, an := range analyses {
		if !an.HasPriceChanges {
			continue
		}
		raise(Alert{
			Kind:       KindPriceDrift,
			Severity:   SeverityWarning,
			Category:   CategoryRecipe,
			SourceID:   an.RecipeID,
			SourceName: an.RecipeName,
			Message:    fmt.Sprintf("Ingredient prices for %s changed since they were locked", an.RecipeName),
		})
	}
	return raised
}

func stockAlert(item inventory.Item) (Alert, bool) {
	a := Alert{Category: CategoryInventory, SourceID: item.ID, SourceName: item.Name}
	switch inventory.StatusFor(item.Quantity, item.MinLevel, item.MaxLevel) {
	case inventory.StatusOutOfStock:
		a.Kind = KindOutOfStock
		a.Severity = SeverityCritical
		a.Message = fmt.Sprintf("%s is out of stock", item.Name)
	case inventory.StatusLowStock:
		a.Kind = KindLowStock
		a.Severity = SeverityWarning
		a.Message = fmt.Sprintf("%s is low on stock (%s %s, minimum %s)", item.Name, item.Quantity, item.Unit, item.MinLevel)
	default:
		return Alert{}, false
	}
	return a, true
}
