package costing

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/costbook/internal/platform/db"
)

// Repository persists recipes and their ingredient lines in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetRecipe loads a recipe and its ingredients in line order.
func (r *Repository) GetRecipe(ctx context.Context, id string) (Recipe, error) {
	if r == nil {
		return Recipe{}, errors.New("costing repository not initialised")
	}
	var rec Recipe
	err := r.pool.QueryRow(ctx, `SELECT id, name, updated_at FROM recipes WHERE id=$1`, id).
		Scan(&rec.ID, &rec.Name, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Recipe{}, ErrRecipeNotFound
		}
		return Recipe{}, err
	}
	ings, err := r.ingredients(ctx, id)
	if err != nil {
		return Recipe{}, err
	}
	rec.Ingredients = ings
	return rec, nil
}

// ListRecipes returns every recipe with its ingredients.
func (r *Repository) ListRecipes(ctx context.Context) ([]Recipe, error) {
	if r == nil {
		return nil, errors.New("costing repository not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT id, name, updated_at FROM recipes ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	var recipes []Recipe
	for rows.Next() {
		var rec Recipe
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		recipes = append(recipes, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range recipes {
		ings, err := r.ingredients(ctx, recipes[i].ID)
		if err != nil {
			return nil, err
		}
		recipes[i].Ingredients = ings
	}
	return recipes, nil
}

// SaveRecipe upserts the recipe header and replaces its ingredient lines.
func (r *Repository) SaveRecipe(ctx context.Context, rec Recipe) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO recipes (id, name, updated_at) VALUES ($1,$2,$3)
ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, updated_at=EXCLUDED.updated_at`, rec.ID, rec.Name, rec.UpdatedAt)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id=$1`, rec.ID); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for pos, ing := range rec.Ingredients {
			var lockedPrice, lockedTax any
			var lockedAt *time.Time
			if ing.Locked != nil {
				lockedPrice, lockedTax = ing.Locked.UnitPrice, ing.Locked.Tax
				at := ing.Locked.LockedAt
				lockedAt = &at
			}
			batch.Queue(`INSERT INTO recipe_ingredients (id, recipe_id, position, entry_id, quantity, locked_unit_price, locked_tax, locked_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`, ing.ID, rec.ID, pos, ing.EntryID, ing.Quantity, lockedPrice, lockedTax, lockedAt)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (r *Repository) ingredients(ctx context.Context, recipeID string) ([]Ingredient, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, entry_id, quantity, locked_unit_price, locked_tax, locked_at
FROM recipe_ingredients WHERE recipe_id=$1 ORDER BY position`, recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ings := []Ingredient{}
	for rows.Next() {
		var (
			ing         Ingredient
			lockedPrice decimal.NullDecimal
			lockedTax   decimal.NullDecimal
			lockedAt    *time.Time
		)
		if err := rows.Scan(&ing.ID, &ing.EntryID, &ing.Quantity, &lockedPrice, &lockedTax, &lockedAt); err != nil {
			return nil, err
		}
		if lockedPrice.Valid && lockedAt != nil {
			ing.Locked = &LockedPricing{UnitPrice: lockedPrice.Decimal, Tax: lockedTax.Decimal, LockedAt: *lockedAt}
		}
		ings = append(ings, ing)
	}
	return ings, rows.Err()
}
