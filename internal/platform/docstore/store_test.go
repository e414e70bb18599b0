package docstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/costbook/internal/shared"
)

type note struct {
	ID      string          `msgpack:"id"`
	Kind    string          `msgpack:"kind"`
	Amount  decimal.Decimal `msgpack:"amount"`
	Created time.Time       `msgpack:"created"`
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "docs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	created := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.Put(ctx, "notes", "a", note{ID: "a", Kind: "x", Amount: decimal.RequireFromString("12.345"), Created: created}))

	var got note
	require.NoError(t, s.Get(ctx, "notes", "a", &got))
	require.Equal(t, "x", got.Kind)
	require.True(t, decimal.RequireFromString("12.345").Equal(got.Amount))
	require.True(t, created.Equal(got.Created))

	err := s.Get(ctx, "notes", "missing", &got)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPutReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "notes", "a", note{ID: "a", Kind: "old"}))
	require.NoError(t, s.Put(ctx, "notes", "a", note{ID: "a", Kind: "new"}))

	all, err := Query[note](ctx, s, "notes", nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "new", all[0].Kind)
}

func TestBulkPutAndQuery(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.BulkPut(ctx, "notes", map[string]any{
		"a": note{ID: "a", Kind: "low"},
		"b": note{ID: "b", Kind: "high"},
		"c": note{ID: "c", Kind: "low"},
	}))
	require.NoError(t, s.Put(ctx, "other", "a", note{ID: "z", Kind: "low"}))

	low, err := Query(ctx, s, "notes", func(n note) bool { return n.Kind == "low" })
	require.NoError(t, err)
	require.Len(t, low, 2)
	require.Equal(t, "a", low[0].ID)
	require.Equal(t, "c", low[1].ID)

	require.NoError(t, s.Delete(ctx, "notes", "a"))
	rest, err := Query[note](ctx, s, "notes", nil)
	require.NoError(t, err)
	require.Len(t, rest, 2)
}

func TestReopenKeepsDocuments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), "notes", "a", note{ID: "a"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	var got note
	require.NoError(t, s.Get(context.Background(), "notes", "a", &got))
	require.Equal(t, "a", got.ID)
}
