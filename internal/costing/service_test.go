package costing

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/costbook/internal/catalog"
	"github.com/odyssey-erp/costbook/internal/shared"
	"github.com/odyssey-erp/costbook/internal/units"
)

type memoryRecipes struct {
	recipes map[string]Recipe
	saves   int
}

func (m *memoryRecipes) GetRecipe(ctx context.Context, id string) (Recipe, error) {
	rec, ok := m.recipes[id]
	if !ok {
		return Recipe{}, ErrRecipeNotFound
	}
	rec.Ingredients = append([]Ingredient(nil), rec.Ingredients...)
	return rec, nil
}

func (m *memoryRecipes) ListRecipes(ctx context.Context) ([]Recipe, error) {
	out := make([]Recipe, 0, len(m.recipes))
	for _, rec := range m.recipes {
		out = append(out, rec)
	}
	return out, nil
}

func (m *memoryRecipes) SaveRecipe(ctx context.Context, rec Recipe) error {
	m.saves++
	m.recipes[rec.ID] = rec
	return nil
}

type staticLookup struct {
	entries []catalog.Entry
}

func (s *staticLookup) GetEntry(ctx context.Context, id string) (catalog.Entry, error) {
	for _, e := range s.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return catalog.Entry{}, catalog.ErrEntryNotFound
}

func (s *staticLookup) ListEntriesForItem(ctx context.Context, itemID string) ([]catalog.Entry, error) {
	var out []catalog.Entry
	for _, e := range s.entries {
		if e.ItemID == itemID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *staticLookup) ListEntries(ctx context.Context, ids []string) ([]catalog.Entry, error) {
	var out []catalog.Entry
	for _, id := range ids {
		if e, err := s.GetEntry(ctx, id); err == nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func newTestService() (*Service, *memoryRecipes, *staticLookup) {
	recipes := &memoryRecipes{recipes: map[string]Recipe{
		"cake": {
			ID:   "cake",
			Name: "Cake",
			Ingredients: []Ingredient{
				{ID: "i1", EntryID: "flour-a", Quantity: dec("2")},
				{ID: "i2", EntryID: "cocoa-a", Quantity: dec("0.5")},
			},
		},
	}}
	lookup := &staticLookup{entries: []catalog.Entry{
		entry("flour-a", "flour", "10", "5", units.Kilogram),
		entry("flour-b", "flour", "8", "5", units.Kilogram),
		entry("cocoa-a", "cocoa", "40", "0", units.Kilogram),
		entry("sand-a", "sand", "1", "0", units.Kilogram),
	}}
	svc := NewService(recipes, lookup, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return svc, recipes, lookup
}

func TestAnalyzeRecipe(t *testing.T) {
	svc, _, _ := newTestService()
	analysis, err := svc.AnalyzeRecipe(context.Background(), "cake")
	require.NoError(t, err)
	requireDec(t, "41", analysis.Totals.TotalCostWithTax)

	_, err = svc.AnalyzeRecipe(context.Background(), "bread")
	require.ErrorIs(t, err, ErrRecipeNotFound)
}

func TestLockPricesClearsDrift(t *testing.T) {
	svc, recipes, lookup := newTestService()
	ctx := context.Background()

	locked, err := svc.LockPrices(ctx, "cake")
	require.NoError(t, err)
	require.Equal(t, 1, recipes.saves)
	for _, ing := range locked.Ingredients {
		require.NotNil(t, ing.Locked)
	}

	lookup.entries[0].UnitPrice = dec("15")
	analysis, err := svc.AnalyzeRecipe(ctx, "cake")
	require.NoError(t, err)
	require.True(t, analysis.HasPriceChanges)
	requireDec(t, "41", analysis.Totals.TotalCostWithTax)

	_, err = svc.LockPrices(ctx, "cake")
	require.NoError(t, err)
	analysis, err = svc.AnalyzeRecipe(ctx, "cake")
	require.NoError(t, err)
	require.False(t, analysis.HasPriceChanges)
	requireDec(t, "51.5", analysis.Totals.TotalCostWithTax)
}

func TestServiceAlternativesAndSavings(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	alts, err := svc.Alternatives(ctx, "flour-a", 0)
	require.NoError(t, err)
	require.Len(t, alts, 1)
	require.Equal(t, "flour-b", alts[0].ID)

	savings, err := svc.Savings(ctx, "cake", "i1", "flour-b")
	require.NoError(t, err)
	requireDec(t, "4.2", savings.Amount)

	_, err = svc.Savings(ctx, "cake", "i9", "flour-b")
	require.ErrorIs(t, err, ErrIngredientNotFound)

	_, err = svc.Alternatives(ctx, "ghost", 3)
	require.ErrorIs(t, err, catalog.ErrEntryNotFound)
}

func TestSaveRecipeValidation(t *testing.T) {
	svc, recipes, _ := newTestService()
	ctx := context.Background()

	_, err := svc.SaveRecipe(ctx, Recipe{Name: "  "})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.SaveRecipe(ctx, Recipe{Name: "Bread", Ingredients: []Ingredient{{EntryID: "flour-a", Quantity: dec("-1")}}})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	saved, err := svc.SaveRecipe(ctx, Recipe{Name: "Bread", Ingredients: []Ingredient{{EntryID: "flour-a", Quantity: dec("1")}}})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	require.NotEmpty(t, saved.Ingredients[0].ID)
	require.Contains(t, recipes.recipes, saved.ID)
}

func TestAnalyzeAll(t *testing.T) {
	svc, _, _ := newTestService()
	analyses, err := svc.AnalyzeAll(context.Background())
	require.NoError(t, err)
	require.Len(t, analyses, 1)
}
