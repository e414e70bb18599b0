package blob

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/costbook/internal/shared"
)

func TestFilesystemPutGetList(t *testing.T) {
	store, err := Open(context.Background(), Config{Driver: DriverFilesystem, FSRoot: t.TempDir()})
	require.NoError(t, err)
	require.Equal(t, DriverFilesystem, store.Driver())
	ctx := context.Background()

	info, err := store.Put(ctx, "valuations/2024-01-02.xlsx", strings.NewReader("first"), ContentTypeXLSX)
	require.NoError(t, err)
	require.Equal(t, int64(5), info.Size)
	require.Equal(t, ContentTypeXLSX, info.ContentType)

	_, err = store.Put(ctx, "valuations/2024-01-02.xlsx", strings.NewReader("second"), ContentTypeXLSX)
	require.NoError(t, err)
	_, err = store.Put(ctx, "other/a.txt", strings.NewReader("x"), "text/plain")
	require.NoError(t, err)

	rc, info, err := store.Get(ctx, "valuations/2024-01-02.xlsx")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	require.Equal(t, "second", string(body))
	require.Equal(t, int64(6), info.Size)

	list, err := store.List(ctx, "valuations/")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "valuations/2024-01-02.xlsx", list[0].Key)
}

func TestFilesystemRejectsBadKeys(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "/etc/passwd", "../escape"} {
		_, err := store.Put(ctx, key, strings.NewReader("x"), "")
		require.ErrorIs(t, err, shared.ErrValidation, key)
	}

	_, _, err = store.Get(ctx, "missing.xlsx")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "tape"})
	require.Error(t, err)
}
