package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/costbook/internal/catalog"
	"github.com/odyssey-erp/costbook/internal/units"
)

// CatalogPrices prices items from the supplier catalog: the item's own price
// entry when set, otherwise the cheapest entry for the same good.
type CatalogPrices struct {
	lookup catalog.Lookup
}

// NewCatalogPrices builds a PriceSource backed by lookup.
func NewCatalogPrices(lookup catalog.Lookup) *CatalogPrices {
	return &CatalogPrices{lookup: lookup}
}

// UnitPrice implements PriceSource. The entry price is rescaled to the
// item's unit when the two differ.
func (p *CatalogPrices) UnitPrice(ctx context.Context, item Item) (decimal.Decimal, error) {
	entry, err := p.entryFor(ctx, item)
	if err != nil {
		return decimal.Zero, err
	}
	if entry.Unit == item.Unit {
		return entry.UnitPrice, nil
	}
	itemKg, err := units.ToCanonical(decimal.NewFromInt(1), item.Unit)
	if err != nil {
		return decimal.Zero, err
	}
	entryKg, err := units.ToCanonical(decimal.NewFromInt(1), entry.Unit)
	if err != nil {
		return decimal.Zero, err
	}
	if itemKg.Warning != "" || entryKg.Warning != "" {
		return decimal.Zero, fmt.Errorf("%w: cannot price %s stock from a %s entry", ErrInvalidItem, item.Unit, entry.Unit)
	}
	return entry.UnitPrice.Mul(itemKg.Quantity).Div(entryKg.Quantity), nil
}

func (p *CatalogPrices) entryFor(ctx context.Context, item Item) (catalog.Entry, error) {
	if item.PriceEntryID != "" {
		return p.lookup.GetEntry(ctx, item.PriceEntryID)
	}
	entries, err := p.lookup.ListEntriesForItem(ctx, item.CatalogItemID)
	if err != nil {
		return catalog.Entry{}, err
	}
	itemKg, err := units.ToCanonical(decimal.NewFromInt(1), item.Unit)
	if err != nil {
		return catalog.Entry{}, err
	}
	var (
		cheapest *catalog.Entry
		best     decimal.Decimal
	)
	for i := range entries {
		if entries[i].ItemKind != item.ItemKind {
			continue
		}
		price, ok := comparablePrice(entries[i], itemKg.Warning != "")
		if !ok {
			continue
		}
		if cheapest == nil || price.LessThan(best) {
			cheapest = &entries[i]
			best = price
		}
	}
	if cheapest == nil {
		return catalog.Entry{}, fmt.Errorf("%w: no entry for %q", catalog.ErrEntryNotFound, item.CatalogItemID)
	}
	return *cheapest, nil
}

// comparablePrice returns the entry price per canonical kilogram, or the raw
// per-piece price when pieces is set. Entries of the other kind are skipped.
func comparablePrice(e catalog.Entry, pieces bool) (decimal.Decimal, bool) {
	conv, err := units.ToCanonical(decimal.NewFromInt(1), e.Unit)
	if err != nil {
		return decimal.Zero, false
	}
	if conv.Warning != "" {
		return e.UnitPrice, pieces
	}
	if pieces || !conv.Quantity.IsPositive() {
		return decimal.Zero, false
	}
	return e.UnitPrice.Div(conv.Quantity), true
}
