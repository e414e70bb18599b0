package costing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/costbook/internal/catalog"
	"github.com/odyssey-erp/costbook/internal/units"
)

var hundred = decimal.NewFromInt(100)

// CostOfIngredient prices one ingredient. The quantity is converted to the
// canonical unit using the entry's unit, not any unit the ingredient states.
func CostOfIngredient(ing Ingredient, entries catalog.Entries) (IngredientCost, error) {
	if !ing.Quantity.IsPositive() {
		return IngredientCost{}, fmt.Errorf("%w: ingredient %q", ErrInvalidQuantity, ing.ID)
	}
	entry, ok := entries[ing.EntryID]
	if !ok {
		return IngredientCost{}, fmt.Errorf("%w: %q", catalog.ErrEntryNotFound, ing.EntryID)
	}
	conv, err := units.ToCanonical(ing.Quantity, entry.Unit)
	if err != nil {
		return IngredientCost{}, err
	}
	price := EffectivePrice(ing, entry)
	cost := price.UnitPrice.Mul(conv.Quantity)
	name := entry.ItemName
	if name == "" {
		name = entry.ItemID
	}
	return IngredientCost{
		IngredientID:      ing.ID,
		EntryID:           entry.ID,
		Name:              name,
		CanonicalQuantity: conv.Quantity,
		Price:             price,
		Locked:            ing.Locked != nil,
		Cost:              cost,
		CostWithTax:       withTax(cost, price.Tax),
		Warning:           conv.Warning,
	}, nil
}

// TotalCost sums every resolvable ingredient. Lines that cannot be priced
// are left out of the totals.
func TotalCost(ings []Ingredient, entries catalog.Entries) Totals {
	lines, _ := priceLines(ings, entries)
	return sumLines(lines)
}

// Analyze builds the cost report for a recipe. Identical inputs always
// produce identical reports.
func Analyze(recipeID, recipeName string, ings []Ingredient, entries catalog.Entries) Analysis {
	lines, warnings := priceLines(ings, entries)
	totals := sumLines(lines)

	breakdown := make([]BreakdownLine, len(lines))
	for i, line := range lines {
		pct := decimal.Zero
		if totals.TotalCost.IsPositive() {
			pct = line.Cost.Div(totals.TotalCost).Mul(hundred)
		}
		breakdown[i] = BreakdownLine{IngredientCost: line, Percentage: pct}
	}
	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Cost.GreaterThan(breakdown[j].Cost)
	})

	drivers := make([]string, 0, topDrivers)
	for i := 0; i < len(breakdown) && i < topDrivers; i++ {
		drivers = append(drivers, breakdown[i].Name)
	}

	changed := false
	for _, ing := range ings {
		if entry, ok := entries[ing.EntryID]; ok && priceDrifted(ing, entry) {
			changed = true
			break
		}
	}

	return Analysis{
		RecipeID:        recipeID,
		RecipeName:      recipeName,
		Totals:          totals,
		Breakdown:       breakdown,
		TopCostDrivers:  drivers,
		HasPriceChanges: changed,
		Warnings:        warnings,
	}
}

// FindCheaperAlternatives lists entries for the same good as currentID that
// are strictly cheaper, cheapest first. A max of zero or less means
// DefaultMaxAlternatives.
func FindCheaperAlternatives(currentID string, all []catalog.Entry, max int) ([]catalog.Entry, error) {
	if max <= 0 {
		max = DefaultMaxAlternatives
	}
	var current *catalog.Entry
	for i := range all {
		if all[i].ID == currentID {
			current = &all[i]
			break
		}
	}
	if current == nil {
		return nil, fmt.Errorf("%w: %q", catalog.ErrEntryNotFound, currentID)
	}
	out := make([]catalog.Entry, 0, max)
	for _, e := range all {
		if e.ID == current.ID || e.ItemID != current.ItemID || e.ItemKind != current.ItemKind {
			continue
		}
		if e.UnitPrice.LessThan(current.UnitPrice) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].UnitPrice.Equal(out[j].UnitPrice) {
			return out[i].UnitPrice.LessThan(out[j].UnitPrice)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > max {
		out = out[:max]
	}
	return out, nil
}

// SwitchingSavings compares the taxed cost of ing under its current entry
// with the same quantity bought from alternative at live prices.
func SwitchingSavings(ing Ingredient, current, alternative catalog.Entry) (Savings, error) {
	ing.EntryID = current.ID
	now, err := CostOfIngredient(ing, catalog.Entries{current.ID: current})
	if err != nil {
		return Savings{}, err
	}
	hypothetical := Ingredient{ID: ing.ID, EntryID: alternative.ID, Quantity: ing.Quantity}
	alt, err := CostOfIngredient(hypothetical, catalog.Entries{alternative.ID: alternative})
	if err != nil {
		return Savings{}, err
	}
	amount := now.CostWithTax.Sub(alt.CostWithTax)
	pct := decimal.Zero
	if !now.CostWithTax.IsZero() {
		pct = amount.Div(now.CostWithTax).Mul(hundred)
	}
	return Savings{
		CurrentCostWithTax:     now.CostWithTax,
		AlternativeCostWithTax: alt.CostWithTax,
		Amount:                 amount,
		Percentage:             pct,
	}, nil
}

func priceLines(ings []Ingredient, entries catalog.Entries) ([]IngredientCost, []string) {
	lines := make([]IngredientCost, 0, len(ings))
	warnings := []string{}
	for _, ing := range ings {
		line, err := CostOfIngredient(ing, entries)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("ingredient %q skipped: %v", ing.ID, err))
			continue
		}
		if line.Warning == units.WarningNotWeighable {
			warnings = append(warnings, fmt.Sprintf("ingredient %q is counted in pieces; its weight is approximate", ing.ID))
		}
		lines = append(lines, line)
	}
	return lines, warnings
}

func sumLines(lines []IngredientCost) Totals {
	t := Totals{
		TotalCost:        decimal.Zero,
		TotalCostWithTax: decimal.Zero,
		TotalWeight:      decimal.Zero,
		CostPerKg:        decimal.Zero,
		CostPerKgWithTax: decimal.Zero,
	}
	for _, line := range lines {
		t.TotalCost = t.TotalCost.Add(line.Cost)
		t.TotalCostWithTax = t.TotalCostWithTax.Add(line.CostWithTax)
		t.TotalWeight = t.TotalWeight.Add(line.CanonicalQuantity)
	}
	if t.TotalWeight.IsPositive() {
		t.CostPerKg = t.TotalCost.Div(t.TotalWeight)
		t.CostPerKgWithTax = t.TotalCostWithTax.Div(t.TotalWeight)
	}
	return t
}

func withTax(cost, tax decimal.Decimal) decimal.Decimal {
	return cost.Mul(decimal.NewFromInt(1).Add(tax.Div(hundred)))
}
