// Package costing prices recipes against the supplier catalog.
package costing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/costbook/internal/shared"
	"github.com/odyssey-erp/costbook/internal/units"
)

// DefaultMaxAlternatives bounds FindCheaperAlternatives when no limit is given.
const DefaultMaxAlternatives = 3

// topDrivers is the number of breakdown lines reported as cost drivers.
const topDrivers = 3

var (
	// ErrInvalidQuantity indicates an ingredient quantity that is zero or negative.
	ErrInvalidQuantity = shared.Validation("costing: ingredient quantity must be positive")
	// ErrRecipeNotFound indicates a missing recipe.
	ErrRecipeNotFound = shared.NotFound("costing: recipe not found")
	// ErrInvalidRecipe indicates a recipe failed validation.
	ErrInvalidRecipe = shared.Validation("costing: invalid recipe")
	// ErrIngredientNotFound indicates a recipe has no such ingredient line.
	ErrIngredientNotFound = shared.NotFound("costing: ingredient not found")
)

// LockedPricing is a price snapshot frozen onto an ingredient.
type LockedPricing struct {
	UnitPrice decimal.Decimal `json:"unit_price"`
	Tax       decimal.Decimal `json:"tax"`
	LockedAt  time.Time       `json:"locked_at"`
}

// Ingredient is one line of a recipe. Quantity is expressed in the unit of
// the referenced catalog entry.
type Ingredient struct {
	ID       string          `json:"id"`
	EntryID  string          `json:"entry_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Locked   *LockedPricing  `json:"locked_pricing,omitempty"`
}

// Recipe groups ingredient lines under a name.
type Recipe struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Ingredients []Ingredient `json:"ingredients"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Price is the unit price and tax percentage used for a calculation.
type Price struct {
	UnitPrice decimal.Decimal `json:"unit_price"`
	Tax       decimal.Decimal `json:"tax"`
}

// IngredientCost is the priced result for one ingredient.
type IngredientCost struct {
	IngredientID      string          `json:"ingredient_id"`
	EntryID           string          `json:"entry_id"`
	Name              string          `json:"name"`
	CanonicalQuantity decimal.Decimal `json:"canonical_quantity"`
	Price             Price           `json:"price"`
	Locked            bool            `json:"locked"`
	Cost              decimal.Decimal `json:"cost"`
	CostWithTax       decimal.Decimal `json:"cost_with_tax"`
	Warning           units.Warning   `json:"warning,omitempty"`
}

// Totals aggregates ingredient costs for a recipe.
type Totals struct {
	TotalCost        decimal.Decimal `json:"total_cost"`
	TotalCostWithTax decimal.Decimal `json:"total_cost_with_tax"`
	TotalWeight      decimal.Decimal `json:"total_weight"`
	CostPerKg        decimal.Decimal `json:"cost_per_kg"`
	CostPerKgWithTax decimal.Decimal `json:"cost_per_kg_with_tax"`
}

// BreakdownLine is an ingredient cost with its share of the recipe total.
type BreakdownLine struct {
	IngredientCost
	Percentage decimal.Decimal `json:"percentage"`
}

// Analysis is the derived cost report for one recipe.
type Analysis struct {
	RecipeID        string          `json:"recipe_id"`
	RecipeName      string          `json:"recipe_name"`
	Totals          Totals          `json:"totals"`
	Breakdown       []BreakdownLine `json:"breakdown"`
	TopCostDrivers  []string        `json:"top_cost_drivers"`
	HasPriceChanges bool            `json:"has_price_changes"`
	Warnings        []string        `json:"warnings"`
}

// Savings is the effect of switching one ingredient to another entry.
type Savings struct {
	CurrentCostWithTax     decimal.Decimal `json:"current_cost_with_tax"`
	AlternativeCostWithTax decimal.Decimal `json:"alternative_cost_with_tax"`
	Amount                 decimal.Decimal `json:"amount"`
	Percentage             decimal.Decimal `json:"percentage"`
}
