// Package llm abstracts the structured-completion service. The pipeline
// treats the model as an untrusted function: it forces a tool call matching
// a fixed JSON schema and validates the returned arguments at the boundary.
package llm

import (
	"context"
	"encoding/json"
)

// ToolSpec is the JSON-schema contract the model's reply must satisfy.
type ToolSpec struct {
	Name        string
	Description string
	// Parameters is a JSON-schema object describing the tool arguments.
	Parameters map[string]any
}

// Client calls a chat-completion service with a forced tool choice and
// returns the raw tool-call arguments for the caller to validate.
type Client interface {
	CallTool(ctx context.Context, system, user string, tool ToolSpec) (json.RawMessage, error)
}
