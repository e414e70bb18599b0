package costing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/costbook/internal/catalog"
)

// RecipeStore abstracts recipe persistence for the service.
type RecipeStore interface {
	GetRecipe(ctx context.Context, id string) (Recipe, error)
	ListRecipes(ctx context.Context) ([]Recipe, error)
	SaveRecipe(ctx context.Context, rec Recipe) error
}

// Service loads recipes and catalog data and runs the cost engine over them.
type Service struct {
	recipes RecipeStore
	catalog catalog.Lookup
	logger  *slog.Logger
	now     func() time.Time
}

// NewService builds Service.
func NewService(recipes RecipeStore, lookup catalog.Lookup, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{recipes: recipes, catalog: lookup, logger: logger, now: time.Now}
}

// SaveRecipe validates and stores a recipe, assigning missing IDs.
func (s *Service) SaveRecipe(ctx context.Context, rec Recipe) (Recipe, error) {
	rec.Name = strings.TrimSpace(rec.Name)
	if rec.Name == "" {
		return Recipe{}, fmt.Errorf("%w: name is required", ErrInvalidRecipe)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	for i := range rec.Ingredients {
		ing := &rec.Ingredients[i]
		if strings.TrimSpace(ing.EntryID) == "" {
			return Recipe{}, fmt.Errorf("%w: ingredient %d has no catalog entry", ErrInvalidRecipe, i+1)
		}
		if !ing.Quantity.IsPositive() {
			return Recipe{}, fmt.Errorf("%w: ingredient %d", ErrInvalidQuantity, i+1)
		}
		if ing.ID == "" {
			ing.ID = uuid.NewString()
		}
	}
	rec.UpdatedAt = s.now().UTC()
	if err := s.recipes.SaveRecipe(ctx, rec); err != nil {
		return Recipe{}, err
	}
	return rec, nil
}

// GetRecipe loads a recipe.
func (s *Service) GetRecipe(ctx context.Context, id string) (Recipe, error) {
	return s.recipes.GetRecipe(ctx, id)
}

// AnalyzeRecipe prices a stored recipe against the live catalog.
func (s *Service) AnalyzeRecipe(ctx context.Context, id string) (Analysis, error) {
	rec, err := s.recipes.GetRecipe(ctx, id)
	if err != nil {
		return Analysis{}, err
	}
	entries, err := s.entriesFor(ctx, rec)
	if err != nil {
		return Analysis{}, err
	}
	analysis := Analyze(rec.ID, rec.Name, rec.Ingredients, entries)
	if len(analysis.Warnings) > 0 {
		s.logger.Warn("recipe analysis has skipped lines",
			slog.String("recipe_id", rec.ID),
			slog.Int("warnings", len(analysis.Warnings)))
	}
	return analysis, nil
}

// AnalyzeAll prices every stored recipe.
func (s *Service) AnalyzeAll(ctx context.Context) ([]Analysis, error) {
	recipes, err := s.recipes.ListRecipes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Analysis, 0, len(recipes))
	for _, rec := range recipes {
		entries, err := s.entriesFor(ctx, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, Analyze(rec.ID, rec.Name, rec.Ingredients, entries))
	}
	return out, nil
}

// LockPrices snapshots the live price of every resolvable ingredient. It is
// the explicit refresh that clears price drift.
func (s *Service) LockPrices(ctx context.Context, id string) (Recipe, error) {
	rec, err := s.recipes.GetRecipe(ctx, id)
	if err != nil {
		return Recipe{}, err
	}
	entries, err := s.entriesFor(ctx, rec)
	if err != nil {
		return Recipe{}, err
	}
	at := s.now().UTC()
	for i := range rec.Ingredients {
		ing := &rec.Ingredients[i]
		entry, ok := entries[ing.EntryID]
		if !ok {
			s.logger.Warn("lock prices skipped missing entry",
				slog.String("recipe_id", rec.ID),
				slog.String("entry_id", ing.EntryID))
			continue
		}
		ing.Locked = &LockedPricing{UnitPrice: entry.UnitPrice, Tax: entry.Tax, LockedAt: at}
	}
	rec.UpdatedAt = at
	if err := s.recipes.SaveRecipe(ctx, rec); err != nil {
		return Recipe{}, err
	}
	s.logger.Info("recipe prices locked", slog.String("recipe_id", rec.ID))
	return rec, nil
}

// Alternatives lists cheaper offers for the same good as entryID.
func (s *Service) Alternatives(ctx context.Context, entryID string, max int) ([]catalog.Entry, error) {
	current, err := s.catalog.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.catalog.ListEntriesForItem(ctx, current.ItemID)
	if err != nil {
		return nil, err
	}
	return FindCheaperAlternatives(current.ID, withEntry(candidates, current), max)
}

// Savings computes the effect of moving one recipe ingredient to alternativeID.
func (s *Service) Savings(ctx context.Context, recipeID, ingredientID, alternativeID string) (Savings, error) {
	rec, err := s.recipes.GetRecipe(ctx, recipeID)
	if err != nil {
		return Savings{}, err
	}
	var ing *Ingredient
	for i := range rec.Ingredients {
		if rec.Ingredients[i].ID == ingredientID {
			ing = &rec.Ingredients[i]
			break
		}
	}
	if ing == nil {
		return Savings{}, fmt.Errorf("%w: %q", ErrIngredientNotFound, ingredientID)
	}
	current, err := s.catalog.GetEntry(ctx, ing.EntryID)
	if err != nil {
		return Savings{}, err
	}
	alternative, err := s.catalog.GetEntry(ctx, alternativeID)
	if err != nil {
		return Savings{}, err
	}
	return SwitchingSavings(*ing, current, alternative)
}

func (s *Service) entriesFor(ctx context.Context, rec Recipe) (catalog.Entries, error) {
	ids := make([]string, 0, len(rec.Ingredients))
	seen := make(map[string]struct{}, len(rec.Ingredients))
	for _, ing := range rec.Ingredients {
		if _, ok := seen[ing.EntryID]; ok {
			continue
		}
		seen[ing.EntryID] = struct{}{}
		ids = append(ids, ing.EntryID)
	}
	list, err := s.catalog.ListEntries(ctx, ids)
	if err != nil {
		return nil, err
	}
	return catalog.Index(list), nil
}

func withEntry(list []catalog.Entry, e catalog.Entry) []catalog.Entry {
	for _, candidate := range list {
		if candidate.ID == e.ID {
			return list
		}
	}
	return append(list, e)
}
