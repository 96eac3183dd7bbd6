package kernelstub

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/wagiedev/mathlink-go/internal/packet"
	"github.com/wagiedev/mathlink-go/internal/wire"
)

// maxRequestSize bounds one request line.
const maxRequestSize = 1024 * 1024

// Serve answers request frames read from r with packet frames written to w
// until r is exhausted or the context is cancelled.
func Serve(ctx context.Context, log *slog.Logger, r io.Reader, w io.Writer) error {
	log = log.With("component", "kernelstub")

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxRequestSize)

	out := bufio.NewWriter(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		packets, id := respond(line)
		log.Debug("Answering request", "request_id", id, "packets", len(packets))

		for _, p := range packets {
			p.ID = id

			data, err := wire.Encode(&p)
			if err != nil {
				return err
			}

			if _, err := out.Write(data); err != nil {
				return fmt.Errorf("write packet: %w", err)
			}
		}

		if err := out.Flush(); err != nil {
			return fmt.Errorf("flush packets: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read request: %w", err)
	}

	log.Debug("Input closed, stopping")

	return nil
}

func respond(line []byte) ([]wire.Packet, string) {
	req, err := wire.DecodeRequest(line)
	if err != nil {
		return failure("Malformed request: " + err.Error()), ""
	}

	command, ok := req.Expr.Unwrap(packet.EvaluateHead, packet.ToExpressionHead)
	if !ok {
		return failure("Only EvaluatePacket[ToExpression[string]] requests are supported."), req.ID
	}

	return Evaluate(command), req.ID
}

func failure(text string) []wire.Packet {
	ev := &evaluator{}
	ev.message("General", "stub", text)

	return ev.finish(symFailed)
}
