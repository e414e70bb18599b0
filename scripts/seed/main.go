package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/costbook/internal/app"
	"github.com/odyssey-erp/costbook/internal/catalog"
	"github.com/odyssey-erp/costbook/internal/costing"
	"github.com/odyssey-erp/costbook/internal/inventory"
	"github.com/odyssey-erp/costbook/internal/platform/db"
	"github.com/odyssey-erp/costbook/internal/platform/docstore"
	"github.com/odyssey-erp/costbook/internal/shared"
	"github.com/odyssey-erp/costbook/internal/units"
)

func main() {
	ctx := context.Background()
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()
	docs, err := docstore.Open(cfg.DocstorePath)
	if err != nil {
		log.Fatalf("open docstore: %v", err)
	}
	defer func() { _ = docs.Close() }()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	services := app.NewServices(cfg, pool, nil, docs, logger)

	fmt.Println("→ Seeding catalog...")
	if err := seedCatalog(ctx, services.Catalog); err != nil {
		log.Fatalf("seed catalog: %v", err)
	}
	fmt.Println("→ Seeding recipes...")
	if err := seedRecipes(ctx, services.Costing); err != nil {
		log.Fatalf("seed recipes: %v", err)
	}
	fmt.Println("→ Seeding stock...")
	if err := seedStock(ctx, services.Inventory); err != nil {
		log.Fatalf("seed stock: %v", err)
	}
	fmt.Println("✓ Seed complete")
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedCatalog(ctx context.Context, svc *catalog.Service) error {
	entries := []catalog.Entry{
		{ID: "flour-mill-a", SupplierID: "mill-a", ItemKind: catalog.KindMaterial, ItemID: "flour", ItemName: "Wheat flour", Unit: units.Kilogram, UnitPrice: d("1.20"), Tax: d("0.10")},
		{ID: "flour-mill-b", SupplierID: "mill-b", ItemKind: catalog.KindMaterial, ItemID: "flour", ItemName: "Wheat flour", Unit: units.Kilogram, UnitPrice: d("1.05"), Tax: d("0.09")},
		{ID: "milk-dairy", SupplierID: "dairy", ItemKind: catalog.KindMaterial, ItemID: "milk", ItemName: "Whole milk", Unit: units.Liter, UnitPrice: d("0.95"), Tax: d("0.05")},
		{ID: "sugar-coop", SupplierID: "coop", ItemKind: catalog.KindMaterial, ItemID: "sugar", ItemName: "Cane sugar", Unit: units.Kilogram, UnitPrice: d("0.80"), Tax: d("0.06")},
		{ID: "box-small", SupplierID: "packco", ItemKind: catalog.KindPackaging, ItemID: "box", ItemName: "Small box", Unit: units.Piece, UnitPrice: d("0.15")},
	}
	for _, e := range entries {
		if _, err := svc.CreateEntry(ctx, e); err != nil && !errors.Is(err, shared.ErrConflict) {
			return err
		}
	}
	return nil
}

func seedRecipes(ctx context.Context, svc *costing.Service) error {
	_, err := svc.SaveRecipe(ctx, costing.Recipe{
		ID:   "white-bread",
		Name: "White bread",
		Ingredients: []costing.Ingredient{
			{ID: "flour", EntryID: "flour-mill-a", Quantity: d("500")},
			{ID: "milk", EntryID: "milk-dairy", Quantity: d("300")},
			{ID: "sugar", EntryID: "sugar-coop", Quantity: d("20")},
			{ID: "box", EntryID: "box-small", Quantity: d("1")},
		},
	})
	if err != nil {
		return err
	}
	_, err = svc.LockPrices(ctx, "white-bread")
	return err
}

func seedStock(ctx context.Context, svc *inventory.Service) error {
	maxFlour := d("200")
	items := []struct {
		input inventory.ItemInput
		delta string
	}{
		{inventory.ItemInput{ID: "flour", ItemKind: catalog.KindMaterial, CatalogItemID: "flour", Name: "Wheat flour", Unit: units.Kilogram, MinLevel: d("25"), MaxLevel: &maxFlour}, "120"},
		{inventory.ItemInput{ID: "milk", ItemKind: catalog.KindMaterial, CatalogItemID: "milk", Name: "Whole milk", PriceEntryID: "milk-dairy", Unit: units.Liter, MinLevel: d("20")}, "12"},
		{inventory.ItemInput{ID: "sugar", ItemKind: catalog.KindMaterial, CatalogItemID: "sugar", Name: "Cane sugar", Unit: units.Kilogram, MinLevel: d("5")}, ""},
	}
	for _, it := range items {
		if _, err := svc.CreateItem(ctx, it.input); err != nil {
			if errors.Is(err, shared.ErrConflict) {
				continue
			}
			return err
		}
		if it.delta == "" {
			continue
		}
		if _, err := svc.ApplyDelta(ctx, inventory.DeltaInput{ItemID: it.input.ID, Delta: d(it.delta), Reason: "opening balance", ActorID: "seed"}); err != nil {
			return err
		}
	}
	return nil
}
