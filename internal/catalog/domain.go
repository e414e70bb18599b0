package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/costbook/internal/shared"
	"github.com/odyssey-erp/costbook/internal/units"
)

// Availability describes whether a supplier can currently deliver an entry.
type Availability string

const (
	AvailabilityAvailable   Availability = "available"
	AvailabilityLimited     Availability = "limited"
	AvailabilityUnavailable Availability = "unavailable"
)

// Entry is one supplier's priced offer for one good.
type Entry struct {
	ID           string           `json:"id"`
	SupplierID   string           `json:"supplier_id"`
	ItemKind     ItemKind         `json:"item_kind"`
	ItemID       string           `json:"item_id"`
	ItemName     string           `json:"item_name"`
	Unit         units.Unit       `json:"unit"`
	UnitPrice    decimal.Decimal  `json:"unit_price"`
	Tax          decimal.Decimal  `json:"tax"`
	BulkPrice    *decimal.Decimal `json:"bulk_price,omitempty"`
	BulkQuantity *decimal.Decimal `json:"bulk_quantity,omitempty"`
	LeadTimeDays int              `json:"lead_time_days"`
	Availability Availability     `json:"availability"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// Item returns the tagged variant for the good this entry offers.
func (e Entry) Item() (Item, error) {
	return NewItem(e.ItemKind, e.ItemID, e.ItemName)
}

// PriceUpdate carries the only mutable fields of an entry.
type PriceUpdate struct {
	UnitPrice    decimal.Decimal
	Tax          decimal.Decimal
	Availability Availability
}

// Entries indexes catalog entries by ID.
type Entries map[string]Entry

// Index builds an Entries map from a slice. Later duplicates win.
func Index(list []Entry) Entries {
	out := make(Entries, len(list))
	for _, e := range list {
		out[e.ID] = e
	}
	return out
}

var (
	// ErrEntryNotFound indicates a reference to a missing catalog entry.
	ErrEntryNotFound = shared.NotFound("catalog: entry not found")
	// ErrDuplicateEntry indicates an entry ID that already exists.
	ErrDuplicateEntry = shared.Conflict("catalog: entry already exists")
	// ErrInvalidEntry indicates an entry failed validation.
	ErrInvalidEntry = shared.Validation("catalog: invalid entry")
)
