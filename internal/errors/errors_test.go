package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvironmentError(t *testing.T) {
	root := errors.New("no memory")
	err := &EnvironmentError{Err: root}

	require.Equal(t, "initialize link environment: no memory", err.Error())
	require.ErrorIs(t, err, root)
	require.True(t, err.IsMathLinkError())

	bare := &EnvironmentError{}
	require.Equal(t, "initialize link environment failed", bare.Error())
	require.NoError(t, bare.Unwrap())
}

func TestLinkOpenError(t *testing.T) {
	err := &LinkOpenError{
		Args: []string{"-linkname", "math", "-linkmode", "launch"},
		Err:  ErrUnsupportedLinkMode,
	}

	require.Equal(t, "open link [-linkname math -linkmode launch]: unsupported link mode", err.Error())
	require.ErrorIs(t, err, ErrUnsupportedLinkMode)
	require.True(t, err.IsMathLinkError())
}

func TestLinkOpenError_WithoutCause(t *testing.T) {
	err := &LinkOpenError{Args: []string{"-linkname", "math"}}

	require.Equal(t, "open link [-linkname math] failed", err.Error())
}

func TestSendError(t *testing.T) {
	err := &SendError{Step: "EndPacket", Command: "PrimeQ[17]"}

	require.Equal(t, `send "PrimeQ[17]": EndPacket failed`, err.Error())
	require.True(t, err.IsMathLinkError())
}

func TestPacketError(t *testing.T) {
	err := &PacketError{Tag: 7, Code: 1, Message: "link died"}
	require.Equal(t, "link error 1 after packet 7: link died", err.Error())

	err = &PacketError{Tag: 7, Code: 3}
	require.Equal(t, "link error 3 after packet 7", err.Error())
	require.True(t, err.IsMathLinkError())
}

func TestReadError(t *testing.T) {
	err := &ReadError{Err: ErrEndOfStream}

	require.Equal(t, "read response: end of packet stream before return packet", err.Error())
	require.ErrorIs(t, err, ErrEndOfStream)
	require.True(t, err.IsMathLinkError())
}

func TestProcessError_WithUnderlyingError(t *testing.T) {
	root := errors.New("process terminated")
	err := &ProcessError{
		ExitCode: 9,
		Stderr:   "ignored when Err is set",
		Err:      root,
	}

	require.Equal(t, "kernel process failed (exit 9): process terminated", err.Error())
	require.ErrorIs(t, err, root)
	require.True(t, err.IsMathLinkError())
}

func TestProcessError_WithStderrOnly(t *testing.T) {
	err := &ProcessError{
		ExitCode: 2,
		Stderr:   "license expired",
	}

	require.Equal(t, "kernel process failed (exit 2): license expired", err.Error())
	require.NoError(t, err.Unwrap())
}

func TestFrameDecodeError(t *testing.T) {
	root := errors.New("unexpected token")
	err := &FrameDecodeError{
		RawData: `{"tag":3,`,
		Err:     root,
	}

	require.Equal(t, "failed to decode frame from kernel: unexpected token", err.Error())
	require.ErrorIs(t, err, root)
	require.True(t, err.IsMathLinkError())
}

func TestAsType(t *testing.T) {
	var err error = &SendError{Step: "PutString", Command: "x"}

	sendErr, ok := errors.AsType[*SendError](err)
	require.True(t, ok)
	require.Equal(t, "PutString", sendErr.Step)

	_, ok = errors.AsType[*ReadError](err)
	require.False(t, ok)
}
