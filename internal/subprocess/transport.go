package subprocess

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/mathlink-go/internal/cli"
	"github.com/wagiedev/mathlink-go/internal/config"
	"github.com/wagiedev/mathlink-go/internal/errors"
	"github.com/wagiedev/mathlink-go/internal/native"
	"github.com/wagiedev/mathlink-go/internal/packet"
	"github.com/wagiedev/mathlink-go/internal/wire"
)

// maxStderrBufferSize caps the stderr kept for error reporting. The callback
// still receives every line.
const maxStderrBufferSize = 64 * 1024

// Transport creates environments whose links are kernel subprocesses.
type Transport struct {
	log     *slog.Logger
	options *config.Options
}

// Compile-time verification that the transport implements the native surface.
var (
	_ native.Native      = (*Transport)(nil)
	_ native.Environment = (*environment)(nil)
	_ native.Link        = (*Link)(nil)
)

// New creates a subprocess transport. Options may be nil.
func New(log *slog.Logger, options *config.Options) *Transport {
	if options == nil {
		options = &config.Options{}
	}

	return &Transport{
		log:     log.With("component", "subprocess"),
		options: options,
	}
}

// Initialize returns a new environment. It never fails.
func (t *Transport) Initialize() native.Environment {
	return &environment{transport: t}
}

type environment struct {
	transport *Transport
	released  bool
}

// Open launches the kernel named by the -linkname argument.
func (e *environment) Open(argv [][]byte) native.Link {
	log := e.transport.log

	if e.released {
		log.Error("Open called on a released environment")

		return nil
	}

	spec, err := cli.ParseLinkArgs(argv)
	if err != nil {
		log.Error("Invalid link arguments", "error", err)

		return nil
	}

	l, err := start(log, spec, e.transport.options)
	if err != nil {
		log.Error("Failed to launch kernel", "program", spec.Program, "error", err)

		return nil
	}

	return l
}

func (e *environment) Deinitialize() {
	e.released = true
}

// Link is a running kernel subprocess.
type Link struct {
	log          *slog.Logger
	cmd          *exec.Cmd
	stdin        io.WriteCloser
	scanner      *bufio.Scanner
	stderrFn     func(string)
	closeTimeout time.Duration
	group        errgroup.Group

	builder wire.Builder
	current *wire.Packet
	errCode int
	errMsg  string

	stderrMu  sync.Mutex
	stderrBuf strings.Builder

	closed bool
}

func start(log *slog.Logger, spec *cli.LaunchSpec, options *config.Options) (*Link, error) {
	//nolint:gosec // G204: the kernel location is caller configuration
	cmd := exec.Command(spec.Program, spec.Args...)
	cmd.Env = cli.BuildEnvironment(options.Env)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start process: %w", err)
	}

	maxFrame := options.ResolvedMaxFrameSize()
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, min(maxFrame, 64*1024)), maxFrame)

	l := &Link{
		log:          log.With("pid", cmd.Process.Pid),
		cmd:          cmd,
		stdin:        stdin,
		scanner:      scanner,
		stderrFn:     options.Stderr,
		closeTimeout: options.ResolvedCloseTimeout(),
	}

	// Stderr must be fully read before cmd.Wait, see exec.Cmd.StderrPipe.
	l.group.Go(func() error {
		l.drainStderr(stderr)

		return nil
	})

	l.log.Info("Kernel subprocess started", "program", spec.Program)

	return l, nil
}

func (l *Link) drainStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := scanner.Text()

		l.stderrMu.Lock()

		if l.stderrBuf.Len() < maxStderrBufferSize {
			if l.stderrBuf.Len() > 0 {
				l.stderrBuf.WriteString("\n")
			}

			l.stderrBuf.WriteString(line)
		}

		l.stderrMu.Unlock()

		if l.stderrFn != nil {
			l.stderrFn(line)
		}
	}

	if err := scanner.Err(); err != nil {
		l.log.Debug("Stderr scanner error", "error", err)
	}
}

// Stderr returns the buffered stderr output of the kernel.
func (l *Link) Stderr() string {
	l.stderrMu.Lock()
	defer l.stderrMu.Unlock()

	return l.stderrBuf.String()
}

func (l *Link) fail(code int, format string, args ...any) {
	l.errCode = code
	l.errMsg = fmt.Sprintf(format, args...)
}

// NextPacket reads the next packet frame. An unread payload of the current
// packet is discarded.
func (l *Link) NextPacket() packet.Tag {
	l.current = nil

	if l.closed {
		l.fail(native.ErrClosed, "link is closed")

		return packet.Illegal
	}

	for l.scanner.Scan() {
		line := l.scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		p, err := wire.DecodePacket(line)
		if err != nil {
			decodeErr := &errors.FrameDecodeError{RawData: string(line), Err: err}
			l.log.Debug("Failed to decode packet frame", "error", decodeErr)
			l.fail(native.ErrGetBad, "%s", decodeErr.Error())

			return packet.Illegal
		}

		l.log.Debug("Received packet", "request_id", p.ID, "tag", packet.Tag(p.Tag))
		l.current = p

		return packet.Tag(p.Tag)
	}

	if err := l.scanner.Err(); err != nil {
		l.fail(native.ErrGetBad, "read packet: %v", err)

		return packet.Illegal
	}

	if stderr := l.Stderr(); stderr != "" {
		l.fail(native.ErrDead, "kernel closed the link: %s", lastLine(stderr))
	} else {
		l.fail(native.ErrDead, "kernel closed the link")
	}

	return packet.Illegal
}

// NewPacket discards the current packet.
func (l *Link) NewPacket() int {
	l.current = nil

	return 1
}

// PutFunction begins a function expression in the outgoing request.
func (l *Link) PutFunction(head string, argc int) bool {
	if err := l.builder.Function(head, argc); err != nil {
		l.fail(native.ErrPutSequence, "put %s: %v", head, err)

		return false
	}

	return true
}

// PutString puts a string argument in the outgoing request.
func (l *Link) PutString(s string) bool {
	if err := l.builder.String(s); err != nil {
		l.fail(native.ErrPutSequence, "put string: %v", err)

		return false
	}

	return true
}

// EndPacket writes the completed request frame to the kernel.
func (l *Link) EndPacket() bool {
	defer l.builder.Reset()

	if l.closed {
		l.fail(native.ErrClosed, "link is closed")

		return false
	}

	expr, err := l.builder.Complete()
	if err != nil {
		l.fail(native.ErrPutSequence, "end packet: %v", err)

		return false
	}

	req := &wire.Request{ID: ulid.Make().String(), Expr: expr}

	data, err := wire.Encode(req)
	if err != nil {
		l.fail(native.ErrPutSequence, "end packet: %v", err)

		return false
	}

	if _, err := l.stdin.Write(data); err != nil {
		l.fail(native.ErrDead, "write request: %v", err)

		return false
	}

	l.log.Debug("Sent request", "request_id", req.ID, "data_len", len(data))

	return true
}

// Error returns the current error indicator.
func (l *Link) Error() int {
	return l.errCode
}

// ErrorMessage describes the current error indicator.
func (l *Link) ErrorMessage() string {
	if l.errCode == native.ErrOK {
		return ""
	}

	return l.errMsg
}

// GetString returns the payload of the current packet. The payload can be
// read once.
func (l *Link) GetString() (*native.Payload, bool) {
	if l.current == nil || l.current.Payload == nil {
		l.fail(native.ErrGetSequence, "no string payload in current packet")

		return nil, false
	}

	data := []byte(l.current.Payload.Text)
	l.current.Payload = nil

	return &native.Payload{Data: data}, true
}

// ReleaseString clears a payload returned by GetString.
func (l *Link) ReleaseString(p *native.Payload) {
	if p == nil {
		return
	}

	clear(p.Data)
	p.Data = nil
}

// Close ends the kernel's input and waits for it to exit. A kernel that is
// still running after the close timeout is killed. Close returns 0 when the
// kernel exited cleanly.
func (l *Link) Close() int {
	if l.closed {
		return 0
	}

	l.closed = true

	if err := l.stdin.Close(); err != nil {
		l.log.Debug("Closing stdin", "error", err)
	}

	done := make(chan error, 1)

	go func() {
		_ = l.group.Wait()
		done <- l.cmd.Wait()
	}()

	var (
		err    error
		killed bool
	)

	select {
	case err = <-done:
	case <-time.After(l.closeTimeout):
		l.log.Warn("Kernel did not exit after input closed, killing", "timeout", l.closeTimeout)

		if killErr := l.cmd.Process.Kill(); killErr != nil {
			l.log.Debug("Kill failed", "error", killErr)
		}

		killed = true
		err = <-done
	}

	if err == nil {
		l.log.Info("Kernel subprocess exited")

		return 0
	}

	if killed {
		return 1
	}

	exitCode := -1
	if exitErr, ok := stderrors.AsType[*exec.ExitError](err); ok {
		exitCode = exitErr.ExitCode()
	}

	procErr := &errors.ProcessError{ExitCode: exitCode, Stderr: l.Stderr(), Err: err}
	l.log.Warn("Kernel subprocess exited with error", "error", procErr)

	return 1
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}

	return s
}
