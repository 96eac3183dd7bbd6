//go:build !wstp || !cgo

package wstp

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/mathlink-go/internal/errors"
)

func TestNew_Unavailable(t *testing.T) {
	require.False(t, Available)

	lib, err := New(slog.Default())
	require.ErrorIs(t, err, errors.ErrNativeUnavailable)
	require.Nil(t, lib)

	require.Nil(t, (&Library{}).Initialize())
}
