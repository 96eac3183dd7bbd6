//go:build !wstp || !cgo

package wstp

import (
	"log/slog"

	"github.com/wagiedev/mathlink-go/internal/errors"
	"github.com/wagiedev/mathlink-go/internal/native"
)

// Available reports whether the library binding is compiled in.
const Available = false

// Library is unavailable in this build.
type Library struct{}

var _ native.Native = (*Library)(nil)

// New reports that the binding is not compiled in.
func New(_ *slog.Logger) (*Library, error) {
	return nil, errors.ErrNativeUnavailable
}

// Initialize always fails in this build.
func (*Library) Initialize() native.Environment {
	return nil
}
