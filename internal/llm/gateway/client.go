// Package gateway implements llm.Client against an OpenAI-compatible
// chat-completions endpoint.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"jobscout/internal/errors"
	"jobscout/internal/llm"
	"jobscout/internal/telemetry"

	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobscout/llm")

type Client struct {
	apiKey  string
	baseURL string
	model   string
	logger  *zap.Logger
	httpDo  *http.Client
}

func New(apiKey, baseURL, model string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		logger:  logger,
		httpDo: &http.Client{
			Timeout: timeout,
		},
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type toolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters"`
}

type tool struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type toolChoice struct {
	Type     string `json:"type"`
	Function struct {
		Name string `json:"name"`
	} `json:"function"`
}

type chatCompletionsRequest struct {
	Model      string     `json:"model"`
	Messages   []message  `json:"messages"`
	Tools      []tool     `json:"tools"`
	ToolChoice toolChoice `json:"tool_choice"`
}

type chatCompletionsResponse struct {
	Choices []struct {
		Message struct {
			Role      string `json:"role"`
			Content   string `json:"content"`
			ToolCalls []struct {
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

// CallTool sends system+user prompts with a forced tool choice and returns
// the first tool call's raw arguments. The response shape is validated here;
// semantic validation against the schema belongs to the caller.
func (c *Client) CallTool(ctx context.Context, system, user string, spec llm.ToolSpec) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "CallTool")
	defer span.End()
	span.SetAttributes(telemetry.String("llm.tool", spec.Name))

	if c.apiKey == "" {
		return nil, errors.InvalidInput("completion api key is not configured", nil)
	}

	reqBody := chatCompletionsRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Tools: []tool{{
			Type: "function",
			Function: toolFunction{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  spec.Parameters,
			},
		}},
	}
	reqBody.ToolChoice.Type = "function"
	reqBody.ToolChoice.Function.Name = spec.Name

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.Internal("marshaling completion request", err)
	}

	endpoint := fmt.Sprintf("%s/chat/completions", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, errors.Internal("creating completion request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpDo.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Unavailable("executing completion request", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	span.SetAttributes(telemetry.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errors.RateLimit("completion provider rate limit", nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errMap map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errMap)
		return nil, errors.Unavailable(fmt.Sprintf("completion http %d: %v", resp.StatusCode, errMap), nil)
	}

	var out chatCompletionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		span.RecordError(err)
		return nil, errors.Internal("decoding completion response", err)
	}
	if len(out.Choices) == 0 || len(out.Choices[0].Message.ToolCalls) == 0 {
		return nil, errors.Internal("no tool call in completion response", nil)
	}

	call := out.Choices[0].Message.ToolCalls[0]
	if call.Function.Name != spec.Name {
		c.logger.Warn("model answered with unexpected tool",
			zap.String("want", spec.Name),
			zap.String("got", call.Function.Name))
	}

	return json.RawMessage(call.Function.Arguments), nil
}
