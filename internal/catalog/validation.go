package catalog

import (
	"fmt"
	"strings"
)

func validateEntry(e Entry) error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidEntry)
	}
	if strings.TrimSpace(e.ItemID) == "" {
		return fmt.Errorf("%w: item id is required", ErrInvalidEntry)
	}
	if _, err := ParseItemKind(string(e.ItemKind)); err != nil {
		return err
	}
	if !e.Unit.Valid() {
		return fmt.Errorf("%w: unit %q is not supported", ErrInvalidEntry, e.Unit)
	}
	if e.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: unit price must be >= 0", ErrInvalidEntry)
	}
	if e.Tax.IsNegative() {
		return fmt.Errorf("%w: tax must be >= 0", ErrInvalidEntry)
	}
	if (e.BulkPrice == nil) != (e.BulkQuantity == nil) {
		return fmt.Errorf("%w: bulk price and bulk quantity go together", ErrInvalidEntry)
	}
	if e.BulkPrice != nil {
		if e.BulkPrice.IsNegative() {
			return fmt.Errorf("%w: bulk price must be >= 0", ErrInvalidEntry)
		}
		if !e.BulkQuantity.IsPositive() {
			return fmt.Errorf("%w: bulk quantity must be > 0", ErrInvalidEntry)
		}
	}
	if e.LeadTimeDays < 0 {
		return fmt.Errorf("%w: lead time must be >= 0", ErrInvalidEntry)
	}
	return validateAvailability(e.Availability)
}

func validatePriceUpdate(u PriceUpdate) error {
	if u.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: unit price must be >= 0", ErrInvalidEntry)
	}
	if u.Tax.IsNegative() {
		return fmt.Errorf("%w: tax must be >= 0", ErrInvalidEntry)
	}
	return validateAvailability(u.Availability)
}

func validateAvailability(a Availability) error {
	switch a {
	case AvailabilityAvailable, AvailabilityLimited, AvailabilityUnavailable:
		return nil
	}
	return fmt.Errorf("%w: availability %q", ErrInvalidEntry, a)
}
