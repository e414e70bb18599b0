package inventory

import "context"

// ChangeObserver receives stock changes once they are durable.
type ChangeObserver interface {
	HandleStockChanged(ctx context.Context, evt StockChangedEvent) error
}
