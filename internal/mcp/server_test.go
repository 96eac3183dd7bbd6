package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	mcpgo "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// fakeEvaluator answers from a fixed table.
type fakeEvaluator struct {
	results  map[string]string
	err      error
	valid    bool
	executed []string
}

func (f *fakeEvaluator) Evaluate(_ context.Context, command string) (string, error) {
	if f.err != nil {
		return "", f.err
	}

	return f.results[command], nil
}

func (f *fakeEvaluator) Execute(_ context.Context, command string) error {
	if f.err != nil {
		return f.err
	}

	f.executed = append(f.executed, command)

	return nil
}

func (f *fakeEvaluator) IsValid() bool {
	return f.valid
}

func newLinkServer(ev Evaluator) *Server {
	s := NewServer(nil, "mathlink", "1.0.0")
	RegisterLinkTools(s, ev)

	return s
}

func TestServerMetadata(t *testing.T) {
	s := NewServer(nil, "demo", "1.2.3")

	require.Equal(t, "demo", s.Name())
	require.Equal(t, "1.2.3", s.Version())
	require.Empty(t, s.ListTools())
}

func TestListTools(t *testing.T) {
	s := newLinkServer(&fakeEvaluator{})

	tools := s.ListTools()
	require.Len(t, tools, 2)
	require.Equal(t, ToolEvaluate, tools[0].Name)
	require.Equal(t, ToolLinkStatus, tools[1].Name)
	require.Equal(t, []string{"expression"}, EvaluateSchema().Required)
}

func TestEvaluateTool(t *testing.T) {
	ev := &fakeEvaluator{results: map[string]string{"PrimeQ[17]": "True"}}
	s := newLinkServer(ev)

	result := s.CallTool(context.Background(), ToolEvaluate, map[string]any{"expression": "PrimeQ[17]"})
	require.False(t, result.IsError)
	require.Equal(t, "True", ResultText(result))
}

func TestEvaluateTool_SuppressOutput(t *testing.T) {
	ev := &fakeEvaluator{}
	s := newLinkServer(ev)

	result := s.CallTool(context.Background(), ToolEvaluate, map[string]any{
		"expression":      "x = 5",
		"suppress_output": true,
	})
	require.False(t, result.IsError)
	require.Equal(t, "Null", ResultText(result))
	require.Equal(t, []string{"x = 5"}, ev.executed)
}

func TestEvaluateTool_Errors(t *testing.T) {
	s := newLinkServer(&fakeEvaluator{err: errors.New("link not open")})

	result := s.CallTool(context.Background(), ToolEvaluate, map[string]any{"expression": "PrimeQ[17]"})
	require.True(t, result.IsError)
	require.Contains(t, ResultText(result), "link not open")

	result = s.CallTool(context.Background(), ToolEvaluate, map[string]any{})
	require.True(t, result.IsError)
	require.Equal(t, "expression is required", ResultText(result))
}

func TestLinkStatusTool(t *testing.T) {
	ev := &fakeEvaluator{valid: true}
	s := newLinkServer(ev)

	require.Equal(t, "open", ResultText(s.CallTool(context.Background(), ToolLinkStatus, nil)))

	ev.valid = false
	require.Equal(t, "closed", ResultText(s.CallTool(context.Background(), ToolLinkStatus, nil)))
}

func TestCallTool_Unknown(t *testing.T) {
	s := newLinkServer(&fakeEvaluator{})

	result := s.CallTool(context.Background(), "unknown", nil)
	require.True(t, result.IsError)
	require.Equal(t, "Tool not found: unknown", ResultText(result))
}

func TestCallTool_HandlerError(t *testing.T) {
	s := NewServer(nil, "demo", "1.0.0")
	s.AddTool(
		NewTool("fails", "always fails", &jsonschema.Schema{Type: "object"}),
		func(_ context.Context, _ *mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
			return nil, errors.New("boom")
		},
	)

	result := s.CallTool(context.Background(), "fails", nil)
	require.True(t, result.IsError)
	require.Contains(t, ResultText(result), "boom")
}

func TestParseArguments(t *testing.T) {
	args, err := ParseArguments(nil)
	require.NoError(t, err)
	require.Empty(t, args)

	args, err = ParseArguments(&mcpgo.CallToolRequest{
		Params: &mcpgo.CallToolParamsRaw{Arguments: []byte(`{"expression":"GCD[4, 6]"}`)},
	})
	require.NoError(t, err)
	require.Equal(t, "GCD[4, 6]", args["expression"])

	_, err = ParseArguments(&mcpgo.CallToolRequest{
		Params: &mcpgo.CallToolParamsRaw{Arguments: []byte(`{`)},
	})
	require.Error(t, err)
}

func TestRun_InMemory(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s := newLinkServer(&fakeEvaluator{results: map[string]string{"GCD[12, 18]": "6"}})

	serverTransport, clientTransport := mcpgo.NewInMemoryTransports()

	errCh := make(chan error, 1)

	go func() { errCh <- s.Run(ctx, serverTransport) }()

	client := mcpgo.NewClient(&mcpgo.Implementation{Name: "test", Version: "1.0.0"}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	result, err := session.CallTool(ctx, &mcpgo.CallToolParams{
		Name:      ToolEvaluate,
		Arguments: map[string]any{"expression": "GCD[12, 18]"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Equal(t, "6", ResultText(result))

	require.NoError(t, session.Close())

	select {
	case <-errCh:
	case <-ctx.Done():
		t.Fatal("server did not stop after the client disconnected")
	}
}
