package mathlink

import (
	"context"

	"github.com/wagiedev/mathlink-go/internal/client"
	"github.com/wagiedev/mathlink-go/internal/link"
)

// Link is an open conversation with the kernel.
//
// Lifecycle: the kernel is launched by NewLink and released by Close. Links
// are single-use; after Close, create a new one with NewLink.
//
// All methods are safe to call from several goroutines; calls are serialized.
type Link interface {
	// Evaluate sends command and returns the text of its result.
	Evaluate(ctx context.Context, command string) (string, error)

	// Execute sends command with its result suppressed: a statement
	// terminator is appended and the kernel's reply is discarded.
	Execute(ctx context.Context, command string) error

	// SendCommand sends command and reports success as a boolean instead of
	// an error. With capture set the result text is returned.
	SendCommand(command string, capture bool) (string, bool)

	// IsValid reports whether the link is open.
	IsValid() bool

	// Close releases the link. It is safe to call more than once.
	Close() error
}

// Compile-time check that *client.Link implements the Link interface.
var _ Link = (*client.Link)(nil)

// NewLink launches the kernel and returns an open link.
//
// Returns *LinkOpenError if the kernel cannot be launched, *EnvironmentError
// if the link environment cannot be initialized, and ErrLinkInUse if another
// link is already open in this process.
func NewLink(opts ...Option) (Link, error) {
	l, err := client.New(applyOptions(opts))
	if err != nil {
		return nil, err
	}

	return l, nil
}

// Manager owns the environment and link handles of a kernel conversation.
// It can be shared between links with WithManager.
type Manager = link.Manager

// NewManager creates a closed manager using the native and kernel path
// options. Links created with WithManager open it on first use.
func NewManager(opts ...Option) *Manager {
	return client.NewManager(applyOptions(opts))
}
