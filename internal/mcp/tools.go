package mcp

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool names registered by RegisterLinkTools.
const (
	ToolEvaluate   = "evaluate"
	ToolLinkStatus = "link_status"
)

// Evaluator is the part of a kernel link the tools use.
type Evaluator interface {
	Evaluate(ctx context.Context, command string) (string, error)
	Execute(ctx context.Context, command string) error
	IsValid() bool
}

// EvaluateSchema is the input schema of the evaluate tool.
func EvaluateSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"expression": {
				Type:        "string",
				Description: "Expression in kernel input form, e.g. PrimeQ[17]",
			},
			"suppress_output": {
				Type:        "boolean",
				Description: "Evaluate for side effects only and return no result",
			},
		},
		Required: []string{"expression"},
	}
}

// RegisterLinkTools adds the evaluate and link_status tools backed by ev.
func RegisterLinkTools(s *Server, ev Evaluator) {
	s.AddTool(
		NewTool(ToolEvaluate, "Evaluate an expression on the kernel and return its result", EvaluateSchema()),
		evaluateHandler(s, ev),
	)

	s.AddTool(
		NewTool(ToolLinkStatus, "Report whether the kernel link is open", &jsonschema.Schema{Type: "object"}),
		func(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if ev.IsValid() {
				return TextResult("open"), nil
			}

			return TextResult("closed"), nil
		},
	)
}

func evaluateHandler(s *Server, ev Evaluator) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := ParseArguments(req)
		if err != nil {
			return ErrorResult(err.Error()), nil
		}

		expression, _ := args["expression"].(string)
		if expression == "" {
			return ErrorResult("expression is required"), nil
		}

		suppress, _ := args["suppress_output"].(bool)

		s.log.Debug("Evaluating expression", "expression", expression, "suppress_output", suppress)

		if suppress {
			if err := ev.Execute(ctx, expression); err != nil {
				return ErrorResult(fmt.Sprintf("evaluation failed: %v", err)), nil
			}

			return TextResult("Null"), nil
		}

		result, err := ev.Evaluate(ctx, expression)
		if err != nil {
			return ErrorResult(fmt.Sprintf("evaluation failed: %v", err)), nil
		}

		return TextResult(result), nil
	}
}
