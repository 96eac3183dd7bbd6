package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/wagiedev/mathlink-go/internal/config"
	"github.com/wagiedev/mathlink-go/internal/errors"
	"github.com/wagiedev/mathlink-go/internal/link"
	"github.com/wagiedev/mathlink-go/internal/native"
	"github.com/wagiedev/mathlink-go/internal/protocol"
	"github.com/wagiedev/mathlink-go/internal/subprocess"
	"github.com/wagiedev/mathlink-go/internal/wstp"
)

// Link is an open conversation with the kernel.
type Link struct {
	log     *slog.Logger
	manager *link.Manager
	channel *protocol.Channel

	mu     sync.Mutex
	closed bool
}

func loggerFor(options *config.Options) *slog.Logger {
	if options == nil || options.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return options.Logger
}

// ResolveNative returns the link primitives for options: the configured
// Native, else the vendor library when compiled in, else the subprocess
// transport.
func ResolveNative(options *config.Options) native.Native {
	log := loggerFor(options)

	if options != nil && options.Native != nil {
		return options.Native
	}

	if wstp.Available {
		lib, err := wstp.New(log)
		if err == nil {
			return lib
		}

		log.Warn("Link library unavailable, using subprocess transport", "error", err)
	}

	return subprocess.New(log, options)
}

// NativeFor maps a configured backend name to link primitives. Auto returns
// nil so ResolveNative picks the default; naming a backend that is not built
// in is an error rather than a silent fallback.
func NativeFor(backend string, options *config.Options) (native.Native, error) {
	log := loggerFor(options)

	switch backend {
	case config.NativeAuto, "":
		return nil, nil
	case config.NativeWSTP:
		lib, err := wstp.New(log)
		if err != nil {
			return nil, fmt.Errorf("native backend %q: %w", backend, err)
		}

		return lib, nil
	case config.NativeSubprocess:
		return subprocess.New(log, options), nil
	default:
		return nil, fmt.Errorf("native backend %q: %w", backend, errors.ErrUnsupportedNative)
	}
}

// NewManager creates a closed manager configured from options.
func NewManager(options *config.Options) *link.Manager {
	return link.NewManager(loggerFor(options), ResolveNative(options), options.ResolvedKernelPath())
}

// New opens a link. The manager from options is used when set; otherwise a
// new one is created. When opening fails the manager is left closed and the
// error is returned.
func New(options *config.Options) (*Link, error) {
	if options == nil {
		options = &config.Options{}
	}

	log := loggerFor(options).With("component", "client")

	manager := options.Manager
	if manager == nil {
		manager = NewManager(options)
	}

	if err := manager.Open(options.KernelPath); err != nil {
		return nil, fmt.Errorf("open link: %w", err)
	}

	return &Link{
		log:     log,
		manager: manager,
		channel: protocol.NewChannel(loggerFor(options), manager),
	}, nil
}

// IsValid reports whether the link is open and usable.
func (l *Link) IsValid() bool {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()

	return !closed && l.manager.IsOpen()
}

func (l *Link) send(ctx context.Context, command string, capture bool) (string, error) {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()

	if closed {
		return "", errors.ErrLinkClosed
	}

	return l.channel.Send(ctx, command, capture)
}

// Evaluate sends command and returns the kernel's result.
func (l *Link) Evaluate(ctx context.Context, command string) (string, error) {
	return l.send(ctx, command, true)
}

// Execute sends command with its result suppressed.
func (l *Link) Execute(ctx context.Context, command string) error {
	_, err := l.send(ctx, command, false)

	return err
}

// SendCommand sends command and reports success as a boolean. With capture
// set the result is returned; otherwise the result is suppressed and the
// returned string is empty. Failures are logged, never returned.
func (l *Link) SendCommand(command string, capture bool) (string, bool) {
	response, err := l.send(context.Background(), command, capture)
	if err != nil {
		l.log.Debug("Command failed", "error", err)

		return "", false
	}

	return response, true
}

// Close releases the link. Calling Close more than once is a no-op.
func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true

	if l.manager.Close() {
		l.log.Debug("Link released")
	}

	return nil
}
