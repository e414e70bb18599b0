package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockChangedEvent is published after a delta has been committed.
type StockChangedEvent struct {
	ItemID   string
	Delta    decimal.Decimal
	Quantity decimal.Decimal
	Status   Status
	At       time.Time
}
