package catalog

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store is the write side of the catalog.
type Store interface {
	Lookup
	InsertEntry(ctx context.Context, e Entry) error
	UpdatePrice(ctx context.Context, id string, u PriceUpdate, at time.Time) error
}

// Invalidator drops cached catalog reads after a write.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Service coordinates catalog maintenance.
type Service struct {
	store  Store
	lookup Lookup
	cache  Invalidator
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds a Service. Reads go through lookup, which is usually a
// Cache over store; writes always hit store and then invalidate cache.
func NewService(store Store, lookup Lookup, cache Invalidator, logger *slog.Logger) *Service {
	if lookup == nil {
		lookup = store
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, lookup: lookup, cache: cache, logger: logger, now: time.Now}
}

// Lookup exposes the read port used by costing and valuation.
func (s *Service) Lookup() Lookup {
	return s.lookup
}

// CreateEntry validates and stores a new catalog entry.
func (s *Service) CreateEntry(ctx context.Context, e Entry) (Entry, error) {
	e.ID = strings.TrimSpace(e.ID)
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Availability == "" {
		e.Availability = AvailabilityAvailable
	}
	e.UpdatedAt = s.now().UTC()
	if err := validateEntry(e); err != nil {
		return Entry{}, err
	}
	if err := s.store.InsertEntry(ctx, e); err != nil {
		return Entry{}, err
	}
	s.invalidate(ctx)
	s.logger.Info("catalog entry created", slog.String("entry_id", e.ID), slog.String("item_id", e.ItemID))
	return e, nil
}

// UpdatePrice changes the price fields of an entry.
// An empty availability keeps the current one.
func (s *Service) UpdatePrice(ctx context.Context, id string, u PriceUpdate) (Entry, error) {
	if u.Availability == "" {
		current, err := s.store.GetEntry(ctx, id)
		if err != nil {
			return Entry{}, err
		}
		u.Availability = current.Availability
	}
	if err := validatePriceUpdate(u); err != nil {
		return Entry{}, err
	}
	if err := s.store.UpdatePrice(ctx, id, u, s.now().UTC()); err != nil {
		return Entry{}, err
	}
	s.invalidate(ctx)
	s.logger.Info("catalog price updated", slog.String("entry_id", id), slog.String("unit_price", u.UnitPrice.String()))
	return s.store.GetEntry(ctx, id)
}

// GetEntry fetches one entry.
func (s *Service) GetEntry(ctx context.Context, id string) (Entry, error) {
	return s.lookup.GetEntry(ctx, id)
}

// EntriesForItem lists every supplier offer for a good, cheapest first.
func (s *Service) EntriesForItem(ctx context.Context, itemID string) ([]Entry, error) {
	return s.lookup.ListEntriesForItem(ctx, itemID)
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("catalog cache bump failed", slog.Any("error", err))
	}
}
