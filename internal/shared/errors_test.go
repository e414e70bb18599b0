package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifiedErrors(t *testing.T) {
	notFound := NotFound("alerts: alert not found")
	wrapped := fmt.Errorf("%w: a1", notFound)

	require.ErrorIs(t, wrapped, notFound)
	require.ErrorIs(t, wrapped, ErrNotFound)
	require.False(t, errors.Is(wrapped, ErrValidation))
	require.Equal(t, "alerts: alert not found: a1", wrapped.Error())

	require.ErrorIs(t, Validation("bad"), ErrValidation)
	require.ErrorIs(t, Conflict("dup"), ErrConflict)
}
