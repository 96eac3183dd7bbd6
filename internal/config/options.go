// Package config provides configuration types for the kernel link.
package config

import (
	"log/slog"
	"time"

	"github.com/wagiedev/mathlink-go/internal/link"
	"github.com/wagiedev/mathlink-go/internal/native"
)

const (
	// DefaultMaxFrameSize is the default maximum size of one frame read from
	// a subprocess kernel.
	DefaultMaxFrameSize = 1024 * 1024 // 1MB

	// DefaultCloseTimeout is how long a subprocess kernel gets to exit after
	// its input is closed before it is killed.
	DefaultCloseTimeout = 5 * time.Second
)

// Options configures a link to the kernel.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// KernelPath is the kernel location passed as the -linkname argument.
	// If empty, DefaultKernelPath() is used.
	KernelPath string

	// Native provides the link primitives.
	// If nil, the WSTP library is used when compiled in, and the subprocess
	// transport otherwise.
	Native native.Native `json:"-"`

	// Manager, when set, is shared instead of creating a manager per link.
	// Native is then ignored and an empty KernelPath selects the manager's default.
	Manager *link.Manager `json:"-"`

	// Env provides additional environment variables for a subprocess kernel.
	Env map[string]string

	// Stderr is a callback receiving each stderr line of a subprocess kernel.
	Stderr func(string) `json:"-"`

	// MaxFrameSize bounds a single frame read from a subprocess kernel.
	// If zero, DefaultMaxFrameSize is used.
	MaxFrameSize int

	// CloseTimeout bounds how long closing waits for a subprocess kernel to exit.
	// If zero, DefaultCloseTimeout is used.
	CloseTimeout time.Duration
}

// ResolvedKernelPath returns the configured kernel location or the default.
func (o *Options) ResolvedKernelPath() string {
	if o == nil || o.KernelPath == "" {
		return DefaultKernelPath()
	}

	return o.KernelPath
}

// ResolvedMaxFrameSize returns the configured frame limit or the default.
func (o *Options) ResolvedMaxFrameSize() int {
	if o == nil || o.MaxFrameSize <= 0 {
		return DefaultMaxFrameSize
	}

	return o.MaxFrameSize
}

// ResolvedCloseTimeout returns the configured close timeout or the default.
func (o *Options) ResolvedCloseTimeout() time.Duration {
	if o == nil || o.CloseTimeout <= 0 {
		return DefaultCloseTimeout
	}

	return o.CloseTimeout
}
