package link

import (
	"bytes"
	"fmt"

	"github.com/wagiedev/mathlink-go/internal/errors"
)

// Buffer capacities for the launch arguments, terminator included.
const (
	// FlagCapacity bounds the fixed flag and mode arguments.
	FlagCapacity = 64

	// LocationCapacity bounds the kernel location argument.
	LocationCapacity = 4096
)

// Fixed launch argument values.
const (
	FlagLinkName = "-linkname"
	FlagLinkMode = "-linkmode"
	ModeLaunch   = "launch"
)

// argCount is the length of the argument vector including its terminator.
const argCount = 5

// newArgBuffer copies s into a NUL-terminated mutable buffer of the given capacity.
// Arguments that do not fit are rejected rather than truncated.
func newArgBuffer(s string, capacity int) ([]byte, error) {
	if bytes.IndexByte([]byte(s), 0) >= 0 {
		return nil, fmt.Errorf("%w: %q", errors.ErrInvalidArgument, s)
	}

	if len(s)+1 > capacity {
		return nil, fmt.Errorf("%w: %d bytes, capacity %d", errors.ErrArgumentTooLong, len(s), capacity-1)
	}

	buf := make([]byte, capacity)
	copy(buf, s)

	return buf, nil
}

// buildArgv marshals the launch arguments for the given kernel location into
// the vector handed to the native open call: -linkname, location, -linkmode,
// launch, and a nil terminator.
func buildArgv(location string) ([][]byte, error) {
	specs := []struct {
		value    string
		capacity int
	}{
		{FlagLinkName, FlagCapacity},
		{location, LocationCapacity},
		{FlagLinkMode, FlagCapacity},
		{ModeLaunch, FlagCapacity},
	}

	argv := make([][]byte, argCount)

	for i, spec := range specs {
		buf, err := newArgBuffer(spec.value, spec.capacity)
		if err != nil {
			return nil, err
		}

		argv[i] = buf
	}

	return argv, nil
}

// argStrings renders an argument vector for logs and errors.
func argStrings(argv [][]byte) []string {
	out := make([]string, 0, len(argv))

	for _, buf := range argv {
		if buf == nil {
			break
		}

		if i := bytes.IndexByte(buf, 0); i >= 0 {
			buf = buf[:i]
		}

		out = append(out, string(buf))
	}

	return out
}
