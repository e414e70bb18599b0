package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/costbook/internal/catalog"
	"github.com/odyssey-erp/costbook/internal/units"
)

type entryLookup []catalog.Entry

func (l entryLookup) GetEntry(ctx context.Context, id string) (catalog.Entry, error) {
	for _, e := range l {
		if e.ID == id {
			return e, nil
		}
	}
	return catalog.Entry{}, catalog.ErrEntryNotFound
}

func (l entryLookup) ListEntriesForItem(ctx context.Context, itemID string) ([]catalog.Entry, error) {
	var out []catalog.Entry
	for _, e := range l {
		if e.ItemID == itemID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l entryLookup) ListEntries(ctx context.Context, ids []string) ([]catalog.Entry, error) {
	return nil, nil
}

func TestCatalogPrices(t *testing.T) {
	lookup := entryLookup{
		{ID: "a", ItemKind: catalog.KindMaterial, ItemID: "sugar", Unit: units.Kilogram, UnitPrice: dec("4")},
		{ID: "b", ItemKind: catalog.KindMaterial, ItemID: "sugar", Unit: units.Kilogram, UnitPrice: dec("3")},
		{ID: "c", ItemKind: catalog.KindMaterial, ItemID: "sugar", Unit: units.Gram, UnitPrice: dec("0.005")},
		{ID: "jar", ItemKind: catalog.KindPackaging, ItemID: "jar", Unit: units.Piece, UnitPrice: dec("0.4")},
	}
	prices := NewCatalogPrices(lookup)
	ctx := context.Background()

	price, err := prices.UnitPrice(ctx, Item{ItemKind: catalog.KindMaterial, CatalogItemID: "sugar", Unit: units.Kilogram})
	require.NoError(t, err)
	require.True(t, dec("3").Equal(price))

	price, err = prices.UnitPrice(ctx, Item{ItemKind: catalog.KindMaterial, CatalogItemID: "sugar", PriceEntryID: "c", Unit: units.Kilogram})
	require.NoError(t, err)
	require.True(t, dec("5").Equal(price))

	price, err = prices.UnitPrice(ctx, Item{ItemKind: catalog.KindMaterial, CatalogItemID: "sugar", PriceEntryID: "a", Unit: units.Gram})
	require.NoError(t, err)
	require.True(t, dec("0.004").Equal(price))

	_, err = prices.UnitPrice(ctx, Item{ItemKind: catalog.KindMaterial, CatalogItemID: "jar", PriceEntryID: "jar", Unit: units.Kilogram})
	require.ErrorIs(t, err, ErrInvalidItem)

	_, err = prices.UnitPrice(ctx, Item{ItemKind: catalog.KindMaterial, CatalogItemID: "salt", Unit: units.Kilogram})
	require.ErrorIs(t, err, catalog.ErrEntryNotFound)
}

func TestCatalogPricesComparesPerKilogram(t *testing.T) {
	lookup := entryLookup{
		{ID: "bulk", ItemKind: catalog.KindMaterial, ItemID: "flour", Unit: units.Kilogram, UnitPrice: dec("6")},
		{ID: "fine", ItemKind: catalog.KindMaterial, ItemID: "flour", Unit: units.Gram, UnitPrice: dec("0.004")},
		{ID: "sack", ItemKind: catalog.KindMaterial, ItemID: "flour", Unit: units.Piece, UnitPrice: dec("1")},
		{ID: "jar-a", ItemKind: catalog.KindPackaging, ItemID: "jar", Unit: units.Piece, UnitPrice: dec("0.5")},
		{ID: "jar-b", ItemKind: catalog.KindPackaging, ItemID: "jar", Unit: units.Piece, UnitPrice: dec("0.3")},
		{ID: "jar-kg", ItemKind: catalog.KindPackaging, ItemID: "jar", Unit: units.Kilogram, UnitPrice: dec("0.01")},
	}
	prices := NewCatalogPrices(lookup)
	ctx := context.Background()

	price, err := prices.UnitPrice(ctx, Item{ItemKind: catalog.KindMaterial, CatalogItemID: "flour", Unit: units.Kilogram})
	require.NoError(t, err)
	require.True(t, dec("4").Equal(price), "got %s", price)

	price, err = prices.UnitPrice(ctx, Item{ItemKind: catalog.KindMaterial, CatalogItemID: "flour", Unit: units.Gram})
	require.NoError(t, err)
	require.True(t, dec("0.004").Equal(price), "got %s", price)

	price, err = prices.UnitPrice(ctx, Item{ItemKind: catalog.KindPackaging, CatalogItemID: "jar", Unit: units.Piece})
	require.NoError(t, err)
	require.True(t, dec("0.3").Equal(price), "got %s", price)
}
