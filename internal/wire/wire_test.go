package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilder_EvaluateRequest(t *testing.T) {
	var b Builder

	require.NoError(t, b.Function("EvaluatePacket", 1))
	require.NoError(t, b.Function("ToExpression", 1))
	require.NoError(t, b.String("PrimeQ[17]"))

	expr, err := b.Complete()
	require.NoError(t, err)

	cmd, ok := expr.Unwrap("EvaluatePacket", "ToExpression")
	require.True(t, ok)
	require.Equal(t, "PrimeQ[17]", cmd)
}

func TestBuilder_Incomplete(t *testing.T) {
	var b Builder

	_, err := b.Complete()
	require.ErrorIs(t, err, ErrIncomplete)

	require.NoError(t, b.Function("EvaluatePacket", 1))
	require.NoError(t, b.Function("ToExpression", 1))

	_, err = b.Complete()
	require.ErrorIs(t, err, ErrIncomplete)
}

func TestBuilder_Overfull(t *testing.T) {
	var b Builder

	require.NoError(t, b.String("a"))
	require.ErrorIs(t, b.String("b"), ErrOverfull)
}

func TestBuilder_MultipleArguments(t *testing.T) {
	var b Builder

	require.NoError(t, b.Function("GCD", 2))
	require.NoError(t, b.String("12"))
	require.NoError(t, b.Function("F", 0))

	expr, err := b.Complete()
	require.NoError(t, err)
	require.Equal(t, "GCD", expr.Head)
	require.Len(t, expr.Args, 2)
	require.Equal(t, "F", expr.Args[1].Head)

	_, ok := expr.Unwrap("GCD")
	require.False(t, ok, "Unwrap requires a single argument per level")
}

func TestEncodeDecode(t *testing.T) {
	data, err := Encode(&Request{
		ID:   "01HZ",
		Expr: Function("EvaluatePacket", Function("ToExpression", String("PrimeQ[18]"))),
	})
	require.NoError(t, err)
	require.Equal(t, byte('\n'), data[len(data)-1])

	req, err := DecodeRequest(data)
	require.NoError(t, err)
	require.Equal(t, "01HZ", req.ID)

	cmd, ok := req.Expr.Unwrap("EvaluatePacket", "ToExpression")
	require.True(t, ok)
	require.Equal(t, "PrimeQ[18]", cmd)

	pkt, err := DecodePacket([]byte(`{"id":"01HZ","tag":3,"payload":{"kind":"symbol","text":"False"}}`))
	require.NoError(t, err)
	require.Equal(t, 3, pkt.Tag)
	require.Equal(t, &Atom{Kind: KindSymbol, Text: "False"}, pkt.Payload)
}

func TestDecode_Errors(t *testing.T) {
	_, err := DecodePacket([]byte(`{"tag":`))
	require.Error(t, err)

	_, err = DecodeRequest([]byte(`{"id":"x"}`))
	require.Error(t, err)
}
