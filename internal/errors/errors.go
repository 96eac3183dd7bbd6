package errors

import (
	"errors"
	"fmt"
	"strings"
)

// MathLinkError is the base interface for all link errors.
type MathLinkError interface {
	error
	IsMathLinkError() bool
}

// Compile-time verification that all error types implement MathLinkError.
var (
	_ MathLinkError = (*EnvironmentError)(nil)
	_ MathLinkError = (*LinkOpenError)(nil)
	_ MathLinkError = (*SendError)(nil)
	_ MathLinkError = (*PacketError)(nil)
	_ MathLinkError = (*ReadError)(nil)
	_ MathLinkError = (*ProcessError)(nil)
	_ MathLinkError = (*FrameDecodeError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrLinkNotOpen indicates an operation needs an open link but none is open.
	ErrLinkNotOpen = errors.New("link not open")

	// ErrLinkInUse indicates another manager in this process already holds the link.
	ErrLinkInUse = errors.New("link already held by another manager in this process")

	// ErrLinkClosed indicates the link has been closed and cannot be reused.
	ErrLinkClosed = errors.New("link closed: links are single-use, create a new one with NewLink()")

	// ErrArgumentTooLong indicates a launch argument does not fit its fixed buffer.
	ErrArgumentTooLong = errors.New("launch argument exceeds buffer capacity")

	// ErrInvalidArgument indicates a launch argument contains a NUL byte.
	ErrInvalidArgument = errors.New("launch argument contains NUL byte")

	// ErrEndOfStream indicates the kernel stopped emitting packets before the result.
	ErrEndOfStream = errors.New("end of packet stream before return packet")

	// ErrNativeUnavailable indicates the native link library was not compiled in.
	ErrNativeUnavailable = errors.New("native link library unavailable (build with -tags wstp)")

	// ErrUnsupportedLinkMode indicates the argument vector asks for a mode other than launch.
	ErrUnsupportedLinkMode = errors.New("unsupported link mode")

	// ErrUnsupportedNative indicates an unknown native backend name.
	ErrUnsupportedNative = errors.New("unsupported native backend")
)

// EnvironmentError indicates the link environment could not be initialized.
type EnvironmentError struct {
	Err error
}

func (e *EnvironmentError) Error() string {
	if e.Err == nil {
		return "initialize link environment failed"
	}

	return fmt.Sprintf("initialize link environment: %v", e.Err)
}

func (e *EnvironmentError) Unwrap() error {
	return e.Err
}

// IsMathLinkError implements MathLinkError.
func (e *EnvironmentError) IsMathLinkError() bool { return true }

// LinkOpenError indicates the link to the kernel could not be opened.
type LinkOpenError struct {
	Args []string
	Err  error
}

func (e *LinkOpenError) Error() string {
	args := strings.Join(e.Args, " ")

	if e.Err == nil {
		return fmt.Sprintf("open link [%s] failed", args)
	}

	return fmt.Sprintf("open link [%s]: %v", args, e.Err)
}

func (e *LinkOpenError) Unwrap() error {
	return e.Err
}

// IsMathLinkError implements MathLinkError.
func (e *LinkOpenError) IsMathLinkError() bool { return true }

// SendError indicates one of the outgoing protocol steps failed.
// Step names the first step that returned failure.
type SendError struct {
	Step    string
	Command string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send %q: %s failed", e.Command, e.Step)
}

// IsMathLinkError implements MathLinkError.
func (e *SendError) IsMathLinkError() bool { return true }

// PacketError indicates the link signaled an error while skipping packets.
type PacketError struct {
	Tag     int
	Code    int
	Message string
}

func (e *PacketError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("link error %d after packet %d: %s", e.Code, e.Tag, e.Message)
	}

	return fmt.Sprintf("link error %d after packet %d", e.Code, e.Tag)
}

// IsMathLinkError implements MathLinkError.
func (e *PacketError) IsMathLinkError() bool { return true }

// ReadError indicates the return packet's payload could not be read.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	if e.Err == nil {
		return "read response failed"
	}

	return fmt.Sprintf("read response: %v", e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// IsMathLinkError implements MathLinkError.
func (e *ReadError) IsMathLinkError() bool { return true }

// ProcessError indicates the kernel process failed.
type ProcessError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("kernel process failed (exit %d): %v", e.ExitCode, e.Err)
	}

	return fmt.Sprintf("kernel process failed (exit %d): %s", e.ExitCode, e.Stderr)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// IsMathLinkError implements MathLinkError.
func (e *ProcessError) IsMathLinkError() bool { return true }

// FrameDecodeError indicates a frame from the kernel could not be decoded.
// This error preserves the original raw data that failed to parse.
type FrameDecodeError struct {
	RawData string
	Err     error
}

func (e *FrameDecodeError) Error() string {
	return fmt.Sprintf("failed to decode frame from kernel: %v", e.Err)
}

func (e *FrameDecodeError) Unwrap() error {
	return e.Err
}

// IsMathLinkError implements MathLinkError.
func (e *FrameDecodeError) IsMathLinkError() bool { return true }
