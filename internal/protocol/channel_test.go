package protocol

import (
	"context"
	stderrors "errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/mathlink-go/internal/errors"
	"github.com/wagiedev/mathlink-go/internal/native"
	"github.com/wagiedev/mathlink-go/internal/nativetest"
	"github.com/wagiedev/mathlink-go/internal/packet"
)

// directRunner hands out one fake link without lifecycle management.
type directRunner struct {
	link native.Link
}

func (r *directRunner) Do(fn func(native.Link) error) error {
	return fn(r.link)
}

func newTestChannel(t *testing.T, fake *nativetest.Fake) (*Channel, *[]State) {
	t.Helper()

	env := fake.Initialize()
	require.NotNil(t, env)

	l := env.Open([][]byte{[]byte("-linkname\x00"), nil})
	require.NotNil(t, l)

	states := &[]State{}
	ch := NewChannel(slog.Default(), &directRunner{link: l})
	ch.onTransition = func(_, to State) {
		*states = append(*states, to)
	}

	return ch, states
}

func TestPrepareCommand(t *testing.T) {
	require.Equal(t, "PrimeQ[17]", PrepareCommand("PrimeQ[17]", true))
	require.Equal(t, "x = 5;", PrepareCommand("x = 5", false))
	require.Equal(t, "x = 5;;", PrepareCommand("x = 5;", false), "exactly one terminator is appended")
}

func TestSend_FramesRequest(t *testing.T) {
	fake := &nativetest.Fake{Respond: nativetest.Returning(nativetest.PrimeOracle)}
	ch, _ := newTestChannel(t, fake)

	_, err := ch.Send(context.Background(), "PrimeQ[17]", true)
	require.NoError(t, err)

	req, ok := fake.LastRequest()
	require.True(t, ok)
	require.Equal(t, []string{"EvaluatePacket", "ToExpression"}, req.Heads)
	require.Equal(t, []string{"PrimeQ[17]"}, req.Strings)
	require.Equal(t, []string{
		"PutFunction(EvaluatePacket)",
		"PutFunction(ToExpression)",
		"PutString",
		"EndPacket",
	}, fake.Trace[:4])
}

func TestSend_PrimeScenarios(t *testing.T) {
	tests := []struct {
		command string
		want    string
	}{
		{"PrimeQ[17]", "True"},
		{"PrimeQ[18]", "False"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			fake := &nativetest.Fake{Respond: nativetest.Returning(nativetest.PrimeOracle)}
			ch, states := newTestChannel(t, fake)

			got, err := ch.Send(context.Background(), tt.command, true)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)

			require.Equal(t, []State{StateSending, StateAwaitingPacket, StateAwaitingResult, StateDone}, *states)
			require.Zero(t, fake.Outstanding(), "payload must be released after copying")
		})
	}
}

func TestSend_WithoutCaptureAppendsTerminator(t *testing.T) {
	fake := &nativetest.Fake{
		Respond: func(string) []nativetest.Packet {
			return []nativetest.Packet{{Tag: packet.Return, Payload: "Null"}}
		},
	}
	ch, states := newTestChannel(t, fake)

	got, err := ch.Send(context.Background(), "x = 5", false)
	require.NoError(t, err)
	require.Empty(t, got)

	req, _ := fake.LastRequest()
	require.Equal(t, "x = 5;", req.Command())

	require.Zero(t, fake.Reads, "no read when the response is not captured")
	require.Equal(t, 1, fake.Skips, "unread return packet is discarded")
	require.Equal(t, []State{StateSending, StateAwaitingPacket, StateDone}, *states)
}

func TestSend_SkipsIntermediatePackets(t *testing.T) {
	fake := &nativetest.Fake{
		Script: []nativetest.Packet{
			{Tag: packet.Call},
			{Tag: packet.Call},
			{Tag: packet.Return, Payload: "42"},
		},
	}
	ch, _ := newTestChannel(t, fake)

	got, err := ch.Send(context.Background(), "6*7", true)
	require.NoError(t, err)
	require.Equal(t, "42", got)

	require.Equal(t, 2, fake.Skips)
	require.Equal(t, 1, fake.Reads)
	require.Equal(t, []string{
		"NextPacket=CallPacket",
		"NewPacket",
		"NextPacket=CallPacket",
		"NewPacket",
		"NextPacket=ReturnPacket",
		"GetString",
		"ReleaseString",
	}, fake.Trace[4:])
}

func TestSend_ErrorDuringSkip(t *testing.T) {
	fake := &nativetest.Fake{
		Script: []nativetest.Packet{
			{Tag: packet.Call, ErrorOnSkip: native.ErrDead},
			{Tag: packet.Return, Payload: "never read"},
		},
	}
	ch, states := newTestChannel(t, fake)

	got, err := ch.Send(context.Background(), "PrimeQ[17]", true)
	require.Error(t, err)
	require.Empty(t, got)

	pktErr, ok := stderrors.AsType[*errors.PacketError](err)
	require.True(t, ok, "expected PacketError, got %v", err)
	require.Equal(t, int(packet.Call), pktErr.Tag)
	require.Equal(t, native.ErrDead, pktErr.Code)

	require.Zero(t, fake.Reads, "no read after a link error")
	require.Equal(t, StateFailed, (*states)[len(*states)-1])
}

func TestSend_EndOfStream(t *testing.T) {
	t.Run("with capture", func(t *testing.T) {
		fake := &nativetest.Fake{Script: []nativetest.Packet{{Tag: packet.Text}}}
		ch, states := newTestChannel(t, fake)

		_, err := ch.Send(context.Background(), "Print[1]", true)
		require.ErrorIs(t, err, errors.ErrEndOfStream)
		require.Zero(t, fake.Reads)
		require.Equal(t, StateFailed, (*states)[len(*states)-1])
	})

	t.Run("without capture", func(t *testing.T) {
		fake := &nativetest.Fake{}
		ch, states := newTestChannel(t, fake)

		_, err := ch.Send(context.Background(), "Print[1]", false)
		require.NoError(t, err, "end of stream is not an error on its own")
		require.Equal(t, StateDone, (*states)[len(*states)-1])
	})
}

func TestSend_StepFailuresShortCircuit(t *testing.T) {
	tests := []struct {
		failStep  string
		wantStep  string
		wantTrace []string
	}{
		{
			failStep:  "EvaluatePacket",
			wantStep:  StepEvaluate,
			wantTrace: []string{"PutFunction(EvaluatePacket)"},
		},
		{
			failStep:  "ToExpression",
			wantStep:  StepToExpression,
			wantTrace: []string{"PutFunction(EvaluatePacket)", "PutFunction(ToExpression)"},
		},
		{
			failStep:  nativetest.StepPutString,
			wantStep:  StepPutString,
			wantTrace: []string{"PutFunction(EvaluatePacket)", "PutFunction(ToExpression)", "PutString"},
		},
		{
			failStep: nativetest.StepEndPacket,
			wantStep: StepEndPacket,
			wantTrace: []string{
				"PutFunction(EvaluatePacket)", "PutFunction(ToExpression)", "PutString", "EndPacket",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.failStep, func(t *testing.T) {
			fake := &nativetest.Fake{
				FailStep: tt.failStep,
				Script:   []nativetest.Packet{{Tag: packet.Return, Payload: "True"}},
			}
			ch, states := newTestChannel(t, fake)

			got, err := ch.Send(context.Background(), "PrimeQ[17]", true)
			require.Empty(t, got)

			sendErr, ok := stderrors.AsType[*errors.SendError](err)
			require.True(t, ok, "expected SendError, got %v", err)
			require.Equal(t, tt.wantStep, sendErr.Step)
			require.Equal(t, "PrimeQ[17]", sendErr.Command)

			require.Equal(t, tt.wantTrace, fake.Trace, "no further step or read after a failure")
			require.Equal(t, []State{StateSending, StateFailed}, *states)
		})
	}
}

func TestSend_ReadFailure(t *testing.T) {
	fake := &nativetest.Fake{
		FailGetString: true,
		Script:        []nativetest.Packet{{Tag: packet.Return, Payload: "True"}},
	}
	ch, states := newTestChannel(t, fake)

	got, err := ch.Send(context.Background(), "PrimeQ[17]", true)
	require.Empty(t, got)

	_, ok := stderrors.AsType[*errors.ReadError](err)
	require.True(t, ok, "expected ReadError, got %v", err)
	require.Equal(t, []State{StateSending, StateAwaitingPacket, StateAwaitingResult, StateFailed}, *states)
	require.Zero(t, fake.Outstanding())
}

func TestSend_ReadFailureReleasesPartialPayload(t *testing.T) {
	fake := &nativetest.Fake{
		PartialGetString: true,
		Script:           []nativetest.Packet{{Tag: packet.Return, Payload: "True"}},
	}
	ch, _ := newTestChannel(t, fake)

	got, err := ch.Send(context.Background(), "PrimeQ[17]", true)
	require.Empty(t, got)

	_, ok := stderrors.AsType[*errors.ReadError](err)
	require.True(t, ok, "expected ReadError, got %v", err)

	require.Equal(t, 1, fake.Reads)
	require.Equal(t, 1, fake.Releases)
	require.Zero(t, fake.Outstanding())
	require.Contains(t, fake.Trace, "ReleaseString")
}

func TestSend_SingleReturnPacketOnly(t *testing.T) {
	// A result spread over two return packets resolves to the first one and
	// leaves the second in the stream for the next request.
	fake := &nativetest.Fake{
		Script: []nativetest.Packet{
			{Tag: packet.Return, Payload: "first"},
			{Tag: packet.Return, Payload: "second"},
		},
	}
	ch, _ := newTestChannel(t, fake)

	got, err := ch.Send(context.Background(), "Sequence[first, second]", true)
	require.NoError(t, err)
	require.Equal(t, "first", got)

	got, err = ch.Send(context.Background(), "1+1", true)
	require.NoError(t, err)
	require.Equal(t, "second", got)
}

func TestSend_ContextCancelled(t *testing.T) {
	fake := &nativetest.Fake{Script: []nativetest.Packet{{Tag: packet.Return, Payload: "True"}}}
	ch, _ := newTestChannel(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ch.Send(ctx, "PrimeQ[17]", true)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, fake.Reads)
}

func TestSend_RunnerError(t *testing.T) {
	ch := NewChannel(nil, runnerFunc(func(func(native.Link) error) error {
		return errors.ErrLinkNotOpen
	}))

	_, err := ch.Send(context.Background(), "PrimeQ[17]", true)
	require.ErrorIs(t, err, errors.ErrLinkNotOpen)
}

type runnerFunc func(fn func(native.Link) error) error

func (f runnerFunc) Do(fn func(native.Link) error) error { return f(fn) }

func TestState_String(t *testing.T) {
	require.Equal(t, "awaiting_packet", StateAwaitingPacket.String())
	require.Equal(t, "unknown", State(42).String())
	require.True(t, StateDone.Terminal())
	require.True(t, StateFailed.Terminal())
	require.False(t, StateAwaitingResult.Terminal())
}
