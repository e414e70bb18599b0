package alerts

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/odyssey-erp/costbook/internal/platform/docstore"
)

const bucket = "alerts"

// Store persists alerts in the local document store.
type Store struct {
	docs *docstore.Store
}

// NewStore wraps an opened document store.
func NewStore(docs *docstore.Store) *Store {
	return &Store{docs: docs}
}

// List returns alerts newest first. Resolved alerts are included only when
// asked for.
func (s *Store) List(ctx context.Context, includeResolved bool) ([]Alert, error) {
	out, err := docstore.Query(ctx, s.docs, bucket, func(a Alert) bool {
		return includeResolved || !a.Resolved
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Get loads one alert.
func (s *Store) Get(ctx context.Context, id string) (Alert, error) {
	var a Alert
	if err := s.docs.Get(ctx, bucket, id, &a); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Alert{}, fmt.Errorf("%w: %s", ErrAlertNotFound, id)
		}
		return Alert{}, err
	}
	return a, nil
}

// Save writes alerts in one transaction.
func (s *Store) Save(ctx context.Context, alerts ...Alert) error {
	docs := make(map[string]any, len(alerts))
	for _, a := range alerts {
		docs[a.ID] = a
	}
	return s.docs.BulkPut(ctx, bucket, docs)
}
