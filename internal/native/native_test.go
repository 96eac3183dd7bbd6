package native

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPayload_Copy(t *testing.T) {
	buf := []byte("True")
	p := &Payload{Data: buf}

	s := p.Copy()
	require.Equal(t, "True", s)

	// The copy must not alias the link-owned buffer.
	buf[0] = 'X'
	require.Equal(t, "True", s)
}

func TestPayload_CopyNil(t *testing.T) {
	var p *Payload

	require.Empty(t, p.Copy())
}
