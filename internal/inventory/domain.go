package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/costbook/internal/catalog"
	"github.com/odyssey-erp/costbook/internal/shared"
	"github.com/odyssey-erp/costbook/internal/units"
)

// Status is the threshold-derived stock state of an item.
type Status string

const (
	// StatusOutOfStock means nothing is left.
	StatusOutOfStock Status = "out_of_stock"
	// StatusLowStock means quantity is below the minimum level.
	StatusLowStock Status = "low_stock"
	// StatusInStock means quantity is within thresholds.
	StatusInStock Status = "in_stock"
	// StatusOverstock means quantity exceeds the maximum level.
	StatusOverstock Status = "overstock"
)

// Item is a tracked stock unit. Quantity and Status are a projection of the
// ledger and are only written while applying a delta or reconciling.
type Item struct {
	ID            string           `json:"id"`
	ItemKind      catalog.ItemKind `json:"item_kind"`
	CatalogItemID string           `json:"catalog_item_id"`
	Name          string           `json:"name"`
	PriceEntryID  string           `json:"price_entry_id,omitempty"`
	Unit          units.Unit       `json:"unit"`
	Quantity      decimal.Decimal  `json:"quantity"`
	MinLevel      decimal.Decimal  `json:"min_level"`
	MaxLevel      *decimal.Decimal `json:"max_level,omitempty"`
	Status        Status           `json:"status"`
	Archived      bool             `json:"archived"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Transaction is an immutable ledger entry. Seq orders entries by insertion.
type Transaction struct {
	ID        string          `json:"id"`
	Seq       int64           `json:"seq"`
	ItemID    string          `json:"item_id"`
	Delta     decimal.Decimal `json:"delta"`
	Balance   decimal.Decimal `json:"balance"`
	Reason    string          `json:"reason"`
	Reference string          `json:"reference,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	ActorID   string          `json:"actor_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// DeltaInput describes a request to change stock.
type DeltaInput struct {
	ItemID    string
	Delta     decimal.Decimal
	Reason    string
	Reference string
	Notes     string
	ActorID   string
}

// ItemInput describes a new tracked item.
type ItemInput struct {
	ID            string
	ItemKind      catalog.ItemKind
	CatalogItemID string
	Name          string
	PriceEntryID  string
	Unit          units.Unit
	MinLevel      decimal.Decimal
	MaxLevel      *decimal.Decimal
}

// Thresholds are the configurable stock levels of an item.
type Thresholds struct {
	MinLevel decimal.Decimal
	MaxLevel *decimal.Decimal
}

// ReconcileResult reports a projection check against the ledger.
type ReconcileResult struct {
	ItemID    string          `json:"item_id"`
	Projected decimal.Decimal `json:"projected"`
	Ledger    decimal.Decimal `json:"ledger"`
	Repaired  bool            `json:"repaired"`
}

// Valuation is the monetary and display view of an item's stock.
type Valuation struct {
	ItemID               string          `json:"item_id"`
	Name                 string          `json:"name"`
	Unit                 units.Unit      `json:"unit"`
	Quantity             decimal.Decimal `json:"quantity"`
	UnitPrice            decimal.Decimal `json:"unit_price"`
	Value                decimal.Decimal `json:"value"`
	Status               Status          `json:"status"`
	PercentageOfCapacity decimal.Decimal `json:"percentage_of_capacity"`
}

var (
	// ErrNegativeStock triggered when a delta would drive quantity below zero.
	ErrNegativeStock = shared.Validation("inventory: cannot reduce stock below zero")
	// ErrInvalidQuantity indicates a zero delta or one finer than QuantityScale.
	ErrInvalidQuantity = shared.Validation("inventory: invalid quantity")
	// ErrInvalidThresholds indicates negative or inverted stock levels.
	ErrInvalidThresholds = shared.Validation("inventory: invalid thresholds")
	// ErrInvalidItem indicates an item failed validation.
	ErrInvalidItem = shared.Validation("inventory: invalid item")
	// ErrItemArchived indicates a write against an archived item.
	ErrItemArchived = shared.Validation("inventory: item is archived")
	// ErrDuplicateItem indicates an item ID that is already tracked.
	ErrDuplicateItem = shared.Conflict("inventory: item already exists")
	// ErrItemNotFound indicates a missing item.
	ErrItemNotFound = shared.NotFound("inventory: item not found")
)
