package inventory

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/costbook/internal/catalog"
	"github.com/odyssey-erp/costbook/internal/shared"
)

// DefaultHistoryPageSize is the number of ledger rows fetched per page.
const DefaultHistoryPageSize = 50

// QuantityScale is the number of decimal places stored for quantities and
// stock levels.
const QuantityScale = 6

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetItem(ctx context.Context, id string) (Item, error)
	ListItems(ctx context.Context, includeArchived bool) ([]Item, error)
	SumDeltas(ctx context.Context, itemID string) (decimal.Decimal, error)
	// ListTransactions returns up to limit entries with Seq below beforeSeq,
	// newest first. A beforeSeq of zero starts at the newest entry.
	ListTransactions(ctx context.Context, itemID string, beforeSeq int64, limit int) ([]Transaction, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// PriceSource resolves the unit price used to value an item.
type PriceSource interface {
	UnitPrice(ctx context.Context, item Item) (decimal.Decimal, error)
}

// Service coordinates inventory operations.
type Service struct {
	repo       RepositoryPort
	audit      AuditPort
	observer   ChangeObserver
	logger     *slog.Logger
	multiplier decimal.Decimal
	pageSize   int
	now        func() time.Time
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	CapacityMultiplier decimal.Decimal
	HistoryPageSize    int
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, cfg ServiceConfig, observer ChangeObserver, logger *slog.Logger) *Service {
	multiplier := cfg.CapacityMultiplier
	if !multiplier.IsPositive() {
		multiplier = decimal.NewFromInt(DefaultCapacityMultiplier)
	}
	pageSize := cfg.HistoryPageSize
	if pageSize <= 0 {
		pageSize = DefaultHistoryPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		audit:      audit,
		observer:   observer,
		logger:     logger,
		multiplier: multiplier,
		pageSize:   pageSize,
		now:        time.Now,
	}
}

// CreateItem registers a new tracked good with an empty ledger.
func (s *Service) CreateItem(ctx context.Context, input ItemInput) (Item, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" || strings.TrimSpace(input.CatalogItemID) == "" {
		return Item{}, fmt.Errorf("%w: name and catalog item are required", ErrInvalidItem)
	}
	if _, err := catalog.ParseItemKind(string(input.ItemKind)); err != nil {
		return Item{}, err
	}
	if !input.Unit.Valid() {
		return Item{}, fmt.Errorf("%w: unit %q is not supported", ErrInvalidItem, input.Unit)
	}
	if err := validateThresholds(input.MinLevel, input.MaxLevel); err != nil {
		return Item{}, err
	}
	now := s.now().UTC()
	item := Item{
		ID:            input.ID,
		ItemKind:      input.ItemKind,
		CatalogItemID: input.CatalogItemID,
		Name:          input.Name,
		PriceEntryID:  input.PriceEntryID,
		Unit:          input.Unit,
		Quantity:      decimal.Zero,
		MinLevel:      input.MinLevel,
		MaxLevel:      input.MaxLevel,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.Status = StatusFor(item.Quantity, item.MinLevel, item.MaxLevel)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.InsertItem(ctx, item)
	})
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

// GetItem loads one item.
func (s *Service) GetItem(ctx context.Context, id string) (Item, error) {
	return s.repo.GetItem(ctx, id)
}

// ListItems lists tracked items.
func (s *Service) ListItems(ctx context.Context, includeArchived bool) ([]Item, error) {
	return s.repo.ListItems(ctx, includeArchived)
}

// ApplyDelta appends one ledger entry. The non-negativity check and the
// append run in the same transaction with the item row locked.
func (s *Service) ApplyDelta(ctx context.Context, input DeltaInput) (Transaction, error) {
	if input.Delta.IsZero() {
		return Transaction{}, fmt.Errorf("%w: delta must be non zero", ErrInvalidQuantity)
	}
	if !fitsScale(input.Delta) {
		return Transaction{}, fmt.Errorf("%w: delta %s has more than %d decimal places", ErrInvalidQuantity, input.Delta, QuantityScale)
	}
	if strings.TrimSpace(input.ItemID) == "" {
		return Transaction{}, fmt.Errorf("%w: item id is required", ErrInvalidItem)
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		reason = "adjustment"
	}
	now := s.now().UTC()
	var (
		record Transaction
		item   Item
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		item, err = tx.GetItemForUpdate(ctx, input.ItemID)
		if err != nil {
			return err
		}
		if item.Archived {
			return ErrItemArchived
		}
		current, err := tx.SumDeltas(ctx, item.ID)
		if err != nil {
			return err
		}
		next := current.Add(input.Delta)
		if next.IsNegative() {
			return fmt.Errorf("%w: %s on hand, change %s", ErrNegativeStock, current, input.Delta)
		}
		record, err = tx.InsertTransaction(ctx, Transaction{
			ID:        uuid.NewString(),
			ItemID:    item.ID,
			Delta:     input.Delta,
			Balance:   next,
			Reason:    reason,
			Reference: input.Reference,
			Notes:     input.Notes,
			ActorID:   input.ActorID,
			CreatedAt: now,
		})
		if err != nil {
			return err
		}
		item.Quantity = next
		item.Status = StatusFor(next, item.MinLevel, item.MaxLevel)
		item.UpdatedAt = now
		return tx.UpdateItem(ctx, item)
	})
	if err != nil {
		return Transaction{}, err
	}
	s.record(ctx, shared.AuditLog{
		ActorID:  input.ActorID,
		Action:   "inventory:delta",
		Entity:   "stock_item",
		EntityID: item.ID,
		Meta: map[string]any{
			"transaction_id": record.ID,
			"delta":          record.Delta.String(),
			"balance":        record.Balance.String(),
			"reason":         record.Reason,
		},
		At: now,
	})
	if s.observer != nil {
		evt := StockChangedEvent{ItemID: item.ID, Delta: record.Delta, Quantity: item.Quantity, Status: item.Status, At: now}
		if err := s.observer.HandleStockChanged(ctx, evt); err != nil {
			s.logger.Warn("stock change observer failed", slog.String("item_id", item.ID), slog.Any("error", err))
		}
	}
	return record, nil
}

// CurrentQuantity replays the ledger. An item without transactions holds zero.
func (s *Service) CurrentQuantity(ctx context.Context, itemID string) (decimal.Decimal, error) {
	if _, err := s.repo.GetItem(ctx, itemID); err != nil {
		return decimal.Zero, err
	}
	return s.repo.SumDeltas(ctx, itemID)
}

// History yields an item's transactions newest first, fetching pages on
// demand. Each range over the sequence starts again from the newest entry.
func (s *Service) History(ctx context.Context, itemID string, pageSize int) iter.Seq2[Transaction, error] {
	return s.HistoryBefore(ctx, itemID, 0, pageSize)
}

// HistoryBefore is History starting below the ledger sequence beforeSeq.
// A beforeSeq of zero starts at the newest entry.
func (s *Service) HistoryBefore(ctx context.Context, itemID string, beforeSeq int64, pageSize int) iter.Seq2[Transaction, error] {
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	return func(yield func(Transaction, error) bool) {
		before := beforeSeq
		for {
			page, err := s.repo.ListTransactions(ctx, itemID, before, pageSize)
			if err != nil {
				yield(Transaction{}, err)
				return
			}
			for _, t := range page {
				if !yield(t, nil) {
					return
				}
			}
			if len(page) < pageSize {
				return
			}
			before = page[len(page)-1].Seq
		}
	}
}

// Reconcile compares the cached quantity with the ledger and rewrites the
// projection when they disagree.
func (s *Service) Reconcile(ctx context.Context, itemID string) (ReconcileResult, error) {
	var result ReconcileResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		item, err := tx.GetItemForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		ledger, err := tx.SumDeltas(ctx, item.ID)
		if err != nil {
			return err
		}
		result = ReconcileResult{ItemID: item.ID, Projected: item.Quantity, Ledger: ledger}
		status := StatusFor(ledger, item.MinLevel, item.MaxLevel)
		if item.Quantity.Equal(ledger) && item.Status == status {
			return nil
		}
		item.Quantity = ledger
		item.Status = status
		item.UpdatedAt = s.now().UTC()
		result.Repaired = true
		return tx.UpdateItem(ctx, item)
	})
	if err != nil {
		return ReconcileResult{}, err
	}
	if result.Repaired {
		s.logger.Warn("stock projection repaired",
			slog.String("item_id", result.ItemID),
			slog.String("projected", result.Projected.String()),
			slog.String("ledger", result.Ledger.String()))
	}
	return result, nil
}

// UpdateThresholds changes stock levels and recomputes status.
func (s *Service) UpdateThresholds(ctx context.Context, itemID string, th Thresholds) (Item, error) {
	if err := validateThresholds(th.MinLevel, th.MaxLevel); err != nil {
		return Item{}, err
	}
	var item Item
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		item, err = tx.GetItemForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		item.MinLevel = th.MinLevel
		item.MaxLevel = th.MaxLevel
		item.Status = StatusFor(item.Quantity, item.MinLevel, item.MaxLevel)
		item.UpdatedAt = s.now().UTC()
		return tx.UpdateItem(ctx, item)
	})
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

// Archive moves an item into the archived soft state. Its ledger is kept.
func (s *Service) Archive(ctx context.Context, itemID, actorID string) (Item, error) {
	var (
		item    Item
		changed bool
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		item, err = tx.GetItemForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		changed = !item.Archived
		if !changed {
			return nil
		}
		item.Archived = true
		item.UpdatedAt = s.now().UTC()
		return tx.UpdateItem(ctx, item)
	})
	if err != nil {
		return Item{}, err
	}
	if !changed {
		return item, nil
	}
	s.record(ctx, shared.AuditLog{ActorID: actorID, Action: "inventory:archive", Entity: "stock_item", EntityID: item.ID})
	return item, nil
}

// Valuate values one item at the given unit price using the ledger quantity.
func (s *Service) Valuate(ctx context.Context, itemID string, unitPrice decimal.Decimal) (Valuation, error) {
	if unitPrice.IsNegative() {
		return Valuation{}, shared.Validation("inventory: unit price must be >= 0")
	}
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return Valuation{}, err
	}
	qty, err := s.repo.SumDeltas(ctx, item.ID)
	if err != nil {
		return Valuation{}, err
	}
	return valuate(item, qty, unitPrice, s.multiplier), nil
}

// Valuations values every active item using prices. Items without a
// resolvable price are skipped and logged.
func (s *Service) Valuations(ctx context.Context, prices PriceSource) ([]Valuation, error) {
	items, err := s.repo.ListItems(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make([]Valuation, 0, len(items))
	for _, item := range items {
		price, err := prices.UnitPrice(ctx, item)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) || errors.Is(err, shared.ErrValidation) {
				s.logger.Warn("valuation skipped item", slog.String("item_id", item.ID), slog.Any("error", err))
				continue
			}
			return nil, err
		}
		qty, err := s.repo.SumDeltas(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, valuate(item, qty, price, s.multiplier))
	}
	return out, nil
}

func (s *Service) record(ctx context.Context, log shared.AuditLog) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, log); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", log.Action), slog.Any("error", err))
	}
}

func fitsScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(QuantityScale))
}

func validateThresholds(minLevel decimal.Decimal, maxLevel *decimal.Decimal) error {
	if !fitsScale(minLevel) || (maxLevel != nil && !fitsScale(*maxLevel)) {
		return fmt.Errorf("%w: levels allow at most %d decimal places", ErrInvalidThresholds, QuantityScale)
	}
	if minLevel.IsNegative() {
		return fmt.Errorf("%w: minimum level must be >= 0", ErrInvalidThresholds)
	}
	if maxLevel != nil && maxLevel.LessThan(minLevel) {
		return fmt.Errorf("%w: maximum level must be >= minimum level", ErrInvalidThresholds)
	}
	return nil
}
