// Package alerts derives stock and price-drift alerts and tracks whether a
// user has read or resolved them.
package alerts

import (
	"time"

	"github.com/odyssey-erp/costbook/internal/shared"
)

// Kind names the condition an alert reports.
type Kind string

const (
	KindLowStock   Kind = "low_stock"
	KindOutOfStock Kind = "out_of_stock"
	KindPriceDrift Kind = "price_drift"
)

// Severity ranks alerts for presentation.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Source categories.
const (
	CategoryInventory = "inventory"
	CategoryRecipe    = "recipe"
)

// ErrAlertNotFound is returned for an unknown alert ID.
var ErrAlertNotFound = shared.NotFound("alerts: alert not found")

// Alert is a derived notification. Only MarkRead and Resolve change it after
// creation.
type Alert struct {
	ID         string     `json:"id" msgpack:"id"`
	Kind       Kind       `json:"kind" msgpack:"kind"`
	Severity   Severity   `json:"severity" msgpack:"severity"`
	Message    string     `json:"message" msgpack:"message"`
	Category   string     `json:"category" msgpack:"category"`
	SourceID   string     `json:"source_id" msgpack:"source_id"`
	SourceName string     `json:"source_name" msgpack:"source_name"`
	Read       bool       `json:"read" msgpack:"read"`
	Resolved   bool       `json:"resolved" msgpack:"resolved"`
	CreatedAt  time.Time  `json:"created_at" msgpack:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty" msgpack:"resolved_at"`
}

type conditionKey struct {
	source string
	kind   Kind
}

func (a Alert) condition() conditionKey {
	return conditionKey{source: a.SourceID, kind: a.Kind}
}
