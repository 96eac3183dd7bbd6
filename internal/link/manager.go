package link

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/wagiedev/mathlink-go/internal/errors"
	"github.com/wagiedev/mathlink-go/internal/native"
)

// held is set while some Manager in this process owns an open link.
var held atomic.Bool

// Manager owns the environment and link handles for one kernel conversation.
type Manager struct {
	log             *slog.Logger
	native          native.Native
	defaultLocation string

	mu   sync.Mutex
	env  native.Environment
	link native.Link
	// claimed records whether this manager holds the process-wide claim.
	claimed bool
}

// NewManager creates a closed manager. The default location is used by Open
// when no override is given.
func NewManager(log *slog.Logger, nat native.Native, defaultLocation string) *Manager {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Manager{
		log:             log.With("component", "link_manager"),
		native:          nat,
		defaultLocation: defaultLocation,
	}
}

// Open establishes the link, launching the kernel at location (or the default
// location when empty). If the link is already open it returns nil without
// relaunching. On failure the manager is left fully closed.
func (m *Manager) Open(location string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isOpenLocked() {
		m.log.Debug("Link already open")

		return nil
	}

	if m.native == nil {
		return errors.ErrNativeUnavailable
	}

	if location == "" {
		location = m.defaultLocation
	}

	// Marshal before touching any handle so an oversized location fails cleanly.
	argv, err := buildArgv(location)
	if err != nil {
		m.log.Error("Invalid launch arguments", "error", err)

		return &errors.LinkOpenError{Args: []string{FlagLinkName, FlagLinkMode, ModeLaunch}, Err: err}
	}

	if !held.CompareAndSwap(false, true) {
		return errors.ErrLinkInUse
	}

	m.claimed = true

	m.log.Debug("Initializing link environment")

	m.env = m.native.Initialize()
	if m.env == nil {
		m.log.Error("Failed to initialize link environment")
		m.releaseClaimLocked()

		return &errors.EnvironmentError{}
	}

	args := argStrings(argv)
	m.log.Info("Launching kernel", "args", args)

	m.link = m.env.Open(argv)
	if m.link == nil {
		m.log.Error("Failed to open link", "args", args)

		m.env.Deinitialize()
		m.env = nil
		m.releaseClaimLocked()

		return &errors.LinkOpenError{Args: args}
	}

	m.log.Info("Link open")

	return nil
}

// Close tears down the link and the environment. It reports whether the link
// was open before the call and is safe to call any number of times.
func (m *Manager) Close() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	wasOpen := m.isOpenLocked()

	if m.link != nil {
		if status := m.link.Close(); status != 0 {
			m.log.Warn("Link close reported failure", "status", status)
		}

		m.link = nil
	}

	if m.env != nil {
		m.env.Deinitialize()
		m.env = nil
	}

	m.releaseClaimLocked()

	if wasOpen {
		m.log.Info("Link closed")
	}

	return wasOpen
}

// IsOpen reports whether both handles are held.
func (m *Manager) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.isOpenLocked()
}

// Do runs fn with exclusive use of the open link.
// It returns ErrLinkNotOpen if the manager is closed.
func (m *Manager) Do(fn func(native.Link) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.isOpenLocked() {
		return errors.ErrLinkNotOpen
	}

	return fn(m.link)
}

func (m *Manager) isOpenLocked() bool {
	return m.env != nil && m.link != nil
}

func (m *Manager) releaseClaimLocked() {
	if m.claimed {
		m.claimed = false
		held.Store(false)
	}
}
