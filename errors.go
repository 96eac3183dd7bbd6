package mathlink

import "github.com/wagiedev/mathlink-go/internal/errors"

// Re-export error types from internal package

// MathLinkError is the base interface for all link errors.
type MathLinkError = errors.MathLinkError

// EnvironmentError indicates the link environment could not be initialized.
type EnvironmentError = errors.EnvironmentError

// LinkOpenError indicates the kernel could not be launched.
type LinkOpenError = errors.LinkOpenError

// SendError indicates a step of an outgoing request failed.
type SendError = errors.SendError

// PacketError indicates the link signaled an error while skipping packets.
type PacketError = errors.PacketError

// ReadError indicates the result payload could not be read.
type ReadError = errors.ReadError

// ProcessError indicates the kernel process failed.
type ProcessError = errors.ProcessError

// FrameDecodeError indicates a frame from a subprocess kernel was malformed.
type FrameDecodeError = errors.FrameDecodeError

// Re-export sentinel errors from internal package.
var (
	// ErrLinkNotOpen indicates an operation needs an open link but none is open.
	ErrLinkNotOpen = errors.ErrLinkNotOpen

	// ErrLinkInUse indicates another link is already open in this process.
	ErrLinkInUse = errors.ErrLinkInUse

	// ErrLinkClosed indicates the link has been closed and cannot be reused.
	ErrLinkClosed = errors.ErrLinkClosed

	// ErrArgumentTooLong indicates a launch argument exceeds its buffer.
	ErrArgumentTooLong = errors.ErrArgumentTooLong

	// ErrEndOfStream indicates the kernel ended the packet stream before a result.
	ErrEndOfStream = errors.ErrEndOfStream

	// ErrNativeUnavailable indicates the link library is not compiled in.
	ErrNativeUnavailable = errors.ErrNativeUnavailable
)
