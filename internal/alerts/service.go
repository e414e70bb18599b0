package alerts

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/odyssey-erp/costbook/internal/costing"
	"github.com/odyssey-erp/costbook/internal/inventory"
)

// Repository is the persistence port for alerts.
type Repository interface {
	List(ctx context.Context, includeResolved bool) ([]Alert, error)
	Get(ctx context.Context, id string) (Alert, error)
	Save(ctx context.Context, alerts ...Alert) error
}

// ItemSource provides stock items to scan.
type ItemSource interface {
	GetItem(ctx context.Context, id string) (inventory.Item, error)
	ListItems(ctx context.Context, includeArchived bool) ([]inventory.Item, error)
}

// AnalysisSource provides recipe cost analyses to scan for drift.
type AnalysisSource interface {
	AnalyzeAll(ctx context.Context) ([]costing.Analysis, error)
}

// Service runs scans and applies user actions to alerts.
type Service struct {
	repo     Repository
	items    ItemSource
	analyses AnalysisSource
	logger   *slog.Logger
	now      func() time.Time

	// mu serialises scan-and-save so concurrent scans cannot both raise the
	// same condition.
	mu sync.Mutex
}

// NewService builds a Service. analyses may be nil to scan stock only.
func NewService(repo Repository, items ItemSource, analyses AnalysisSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, items: items, analyses: analyses, logger: logger, now: time.Now}
}

// RunScan evaluates every active item and recipe and stores the new alerts.
func (s *Service) RunScan(ctx context.Context) ([]Alert, error) {
	items, err := s.items.ListItems(ctx, false)
	if err != nil {
		return nil, err
	}
	var analyses []costing.Analysis
	if s.analyses != nil {
		if analyses, err = s.analyses.AnalyzeAll(ctx); err != nil {
			return nil, err
		}
	}
	raised, err := s.scanAndSave(ctx, items, analyses)
	if err != nil {
		return nil, err
	}
	s.logger.Info("alert scan complete",
		slog.Int("items", len(items)),
		slog.Int("recipes", len(analyses)),
		slog.Int("raised", len(raised)),
	)
	return raised, nil
}

// HandleStockChanged scans the changed item right after a ledger write.
// Alerts are never resolved here, even when stock recovers.
func (s *Service) HandleStockChanged(ctx context.Context, evt inventory.StockChangedEvent) error {
	if evt.Status != inventory.StatusLowStock && evt.Status != inventory.StatusOutOfStock {
		return nil
	}
	item, err := s.items.GetItem(ctx, evt.ItemID)
	if err != nil {
		return err
	}
	raised, err := s.scanAndSave(ctx, []inventory.Item{item}, nil)
	if err != nil {
		return err
	}
	for _, a := range raised {
		s.logger.Info("alert raised", slog.String("alert_id", a.ID), slog.String("kind", string(a.Kind)), slog.String("item_id", a.SourceID))
	}
	return nil
}

func (s *Service) scanAndSave(ctx context.Context, items []inventory.Item, analyses []costing.Analysis) ([]Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	open, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	raised := Scan(items, analyses, open, s.now().UTC())
	if len(raised) == 0 {
		return []Alert{}, nil
	}
	if err := s.repo.Save(ctx, raised...); err != nil {
		return nil, err
	}
	return raised, nil
}

// List returns alerts newest first.
func (s *Service) List(ctx context.Context, includeResolved bool) ([]Alert, error) {
	return s.repo.List(ctx, includeResolved)
}

// MarkRead flags an alert as read.
func (s *Service) MarkRead(ctx context.Context, id string) (Alert, error) {
	return s.update(ctx, id, func(a *Alert) {
		a.Read = true
	})
}

// Resolve archives an alert. A later scan may raise the condition again.
func (s *Service) Resolve(ctx context.Context, id string) (Alert, error) {
	return s.update(ctx, id, func(a *Alert) {
		if a.Resolved {
			return
		}
		at := s.now().UTC()
		a.Resolved = true
		a.Read = true
		a.ResolvedAt = &at
	})
}

func (s *Service) update(ctx context.Context, id string, apply func(*Alert)) (Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return Alert{}, err
	}
	apply(&a)
	if err := s.repo.Save(ctx, a); err != nil {
		return Alert{}, err
	}
	return a, nil
}
