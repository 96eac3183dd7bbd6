package mathlink

import (
	"log/slog"
	"time"

	"github.com/wagiedev/mathlink-go/internal/config"
	"github.com/wagiedev/mathlink-go/internal/native"
)

// Options configures a Link.
type Options = config.Options

// Native provides the link primitives a Link is built on.
type Native = native.Native

// Option configures Options using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options to an Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// DefaultKernelPath returns the kernel location used when none is configured.
func DefaultKernelPath() string {
	return config.DefaultKernelPath()
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithKernelPath sets the kernel location passed as the -linkname argument,
// e.g. `"C:\Program Files\Wolfram Research\Mathematica\12.1\MathKernel.exe"`.
// Quote the program when its path contains spaces.
func WithKernelPath(path string) Option {
	return func(o *Options) {
		o.KernelPath = path
	}
}

// WithNative sets the link primitives, overriding the default transport.
func WithNative(n Native) Option {
	return func(o *Options) {
		o.Native = n
	}
}

// WithManager shares an existing manager between links. Links sharing a
// manager share one kernel; closing any of them closes it.
func WithManager(m *Manager) Option {
	return func(o *Options) {
		o.Manager = m
	}
}

// WithEnv adds environment variables for a subprocess kernel.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		o.Env = env
	}
}

// WithStderr sets a callback receiving each stderr line of a subprocess kernel.
func WithStderr(handler func(string)) Option {
	return func(o *Options) {
		o.Stderr = handler
	}
}

// WithMaxFrameSize bounds a single frame read from a subprocess kernel.
func WithMaxFrameSize(size int) Option {
	return func(o *Options) {
		o.MaxFrameSize = size
	}
}

// WithCloseTimeout bounds how long closing waits for a subprocess kernel to
// exit before killing it.
func WithCloseTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.CloseTimeout = timeout
	}
}
