package protocol

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/wagiedev/mathlink-go/internal/errors"
	"github.com/wagiedev/mathlink-go/internal/native"
	"github.com/wagiedev/mathlink-go/internal/packet"
)

// Outgoing step names reported in SendError.Step.
const (
	StepEvaluate     = packet.EvaluateHead
	StepToExpression = packet.ToExpressionHead
	StepPutString    = "PutString"
	StepEndPacket    = "EndPacket"
)

// LinkRunner grants exclusive use of an open link.
//
// This interface is satisfied by link.Manager but allows for testing
// with a bare native link.
type LinkRunner interface {
	Do(fn func(native.Link) error) error
}

// Channel sends commands over a link and decodes their results.
type Channel struct {
	log   *slog.Logger
	links LinkRunner

	// onTransition, when set, observes every state change of an exchange.
	onTransition func(from, to State)
}

// NewChannel creates a channel that borrows links from the runner.
func NewChannel(log *slog.Logger, links LinkRunner) *Channel {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Channel{
		log:   log.With("component", "channel"),
		links: links,
	}
}

// PrepareCommand returns the text actually transmitted for command. When the
// result is not captured a statement terminator is appended so the kernel
// evaluates to Null instead of echoing the result.
func PrepareCommand(command string, capture bool) string {
	if capture {
		return command
	}

	return command + packet.StatementTerminator
}

// Send evaluates command on the kernel. With capture set it returns the
// decoded result; otherwise it returns an empty string once the request has
// been delivered and the kernel's reply skipped.
//
// Send blocks until the exchange finishes. The context is checked between
// packets; a native call that is already blocked is not interrupted.
func (c *Channel) Send(ctx context.Context, command string, capture bool) (string, error) {
	var response string

	err := c.links.Do(func(l native.Link) error {
		x := &exchange{
			log:          c.log.With("request_id", ulid.Make().String()),
			link:         l,
			command:      command,
			capture:      capture,
			onTransition: c.onTransition,
		}

		var err error

		response, err = x.run(ctx)

		return err
	})
	if err != nil {
		return "", err
	}

	return response, nil
}

// exchange is the state of a single Send call.
type exchange struct {
	log          *slog.Logger
	link         native.Link
	command      string
	capture      bool
	state        State
	onTransition func(from, to State)
}

func (x *exchange) transition(to State) {
	from := x.state
	x.state = to

	if x.onTransition != nil {
		x.onTransition(from, to)
	}
}

func (x *exchange) fail(err error) (string, error) {
	x.transition(StateFailed)
	x.log.Debug("Exchange failed", "error", err)

	return "", err
}

func (x *exchange) run(ctx context.Context) (string, error) {
	x.transition(StateSending)

	payload := PrepareCommand(x.command, x.capture)
	x.log.Debug("Sending command", "command", payload, "capture", x.capture)

	if step, ok := x.send(payload); !ok {
		return x.fail(&errors.SendError{Step: step, Command: payload})
	}

	x.transition(StateAwaitingPacket)

	tag, err := x.skipToReturn(ctx)
	if err != nil {
		return x.fail(err)
	}

	if !x.capture {
		if tag.IsTerminal() {
			// Drop the unread result so the next request starts on a packet boundary.
			x.link.NewPacket()
		}

		x.transition(StateDone)

		return "", nil
	}

	if tag.IsEndOfStream() {
		return x.fail(&errors.ReadError{Err: errors.ErrEndOfStream})
	}

	x.transition(StateAwaitingResult)

	response, err := x.read()
	if err != nil {
		return x.fail(err)
	}

	x.transition(StateDone)
	x.log.Debug("Received response", "response_len", len(response))

	return response, nil
}

// send writes the request packet, stopping at the first failing step.
func (x *exchange) send(payload string) (string, bool) {
	steps := []struct {
		name string
		put  func() bool
	}{
		{StepEvaluate, func() bool { return x.link.PutFunction(packet.EvaluateHead, 1) }},
		{StepToExpression, func() bool { return x.link.PutFunction(packet.ToExpressionHead, 1) }},
		{StepPutString, func() bool { return x.link.PutString(payload) }},
		{StepEndPacket, x.link.EndPacket},
	}

	for _, step := range steps {
		if !step.put() {
			return step.name, false
		}
	}

	return "", true
}

// skipToReturn discards packets until the return packet or the end of the
// stream. It returns the tag it stopped at.
func (x *exchange) skipToReturn(ctx context.Context) (packet.Tag, error) {
	for {
		if err := ctx.Err(); err != nil {
			return packet.Illegal, err
		}

		tag := x.link.NextPacket()

		if tag.IsEndOfStream() {
			x.log.Debug("Packet stream ended")

			return tag, nil
		}

		if tag.IsTerminal() {
			return tag, nil
		}

		x.log.Debug("Skipping packet", "packet", tag.String())

		x.link.NewPacket()

		if code := x.link.Error(); code != native.ErrOK {
			return tag, &errors.PacketError{
				Tag:     int(tag),
				Code:    code,
				Message: x.link.ErrorMessage(),
			}
		}
	}
}

// read copies the return packet's string payload and releases the native buffer.
func (x *exchange) read() (string, error) {
	p, ok := x.link.GetString()
	if p != nil {
		defer x.link.ReleaseString(p)
	}

	if !ok {
		return "", &errors.ReadError{
			Err: fmt.Errorf("get string: link error %d: %s", x.link.Error(), x.link.ErrorMessage()),
		}
	}

	return p.Copy(), nil
}
