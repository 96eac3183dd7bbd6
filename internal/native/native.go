// Package native defines the primitive surface of the kernel link library.
//
// The interfaces here mirror the C entry points of the link library one to one:
// initialize and deinitialize an environment, open and close a link, move between
// packets, put function heads and strings, query the error indicator, and read or
// release string payloads. Return values keep the library's conventions (status
// integers and boolean-like results) so that the protocol layer above stays a
// faithful client of the native call sequence.
//
// Implementations:
//   - internal/wstp binds the vendor C library through cgo (build tag wstp).
//   - internal/subprocess launches the kernel program and frames packets as
//     JSON lines over its standard streams.
//   - internal/nativetest is a scripted packet source for tests.
package native

import (
	"unsafe"

	"github.com/wagiedev/mathlink-go/internal/packet"
)

// Error codes reported by Link.Error. Zero means no error.
const (
	ErrOK          = 0
	ErrDead        = 1
	ErrGetBad      = 2
	ErrGetSequence = 3
	ErrPutSequence = 5
	ErrClosed      = 11
)

// Native creates link environments.
type Native interface {
	// Initialize creates an environment. It returns nil on failure.
	Initialize() Environment
}

// Environment is an initialized runtime context from which links are opened.
type Environment interface {
	// Open launches a link from an argument vector. Each element is a
	// NUL-terminated mutable buffer; a nil element terminates the vector.
	// It returns nil on failure.
	Open(argv [][]byte) Link

	// Deinitialize releases the environment. The environment must not be
	// used afterwards.
	Deinitialize()
}

// Link is an open communication channel to the kernel.
type Link interface {
	// Close releases the link and returns the native status code.
	Close() int

	// NextPacket advances to the head of the next packet and returns its tag.
	// packet.Illegal means no more packets or a link failure.
	NextPacket() packet.Tag

	// NewPacket discards the remainder of the current packet.
	NewPacket() int

	// PutFunction begins a function expression with the given head and arity.
	PutFunction(head string, argc int) bool

	// PutString puts a string argument.
	PutString(s string) bool

	// EndPacket marks the end of the outgoing packet and flushes it.
	EndPacket() bool

	// Error returns the current error indicator.
	Error() int

	// ErrorMessage describes the current error indicator.
	ErrorMessage() string

	// GetString reads the string payload of the current packet. The payload
	// is owned by the link until it is handed back with ReleaseString.
	GetString() (*Payload, bool)

	// ReleaseString returns a payload obtained from GetString.
	ReleaseString(p *Payload)
}

// Payload is a string owned by the link library.
// Data is only valid until the payload is released.
type Payload struct {
	Data   []byte
	Handle unsafe.Pointer
}

// Copy returns the payload contents as a Go string that outlives the payload.
func (p *Payload) Copy() string {
	if p == nil {
		return ""
	}

	return string(p.Data)
}
