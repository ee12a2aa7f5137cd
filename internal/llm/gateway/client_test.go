package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobscout/internal/errors"
	"jobscout/internal/llm"
)

var testTool = llm.ToolSpec{
	Name:        "extract_jobs",
	Description: "Extract structured job listings",
	Parameters: map[string]any{
		"type":       "object",
		"properties": map[string]any{"jobs": map[string]any{"type": "array"}},
	},
}

func TestCallToolReturnsArguments(t *testing.T) {
	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","tool_calls":[
			{"function":{"name":"extract_jobs","arguments":"{\"jobs\":[]}"}}
		]}}]}`))
	}))
	defer srv.Close()

	c := New("test-key", srv.URL, "test-model", time.Second, zap.NewNop())

	raw, err := c.CallTool(context.Background(), "system", "user", testTool)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jobs":[]}`, string(raw))

	// tool choice must be forced to the requested tool
	choice := gotReq["tool_choice"].(map[string]any)
	assert.Equal(t, "function", choice["type"])
	assert.Equal(t, "extract_jobs", choice["function"].(map[string]any)["name"])
}

func TestCallToolRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New("test-key", srv.URL, "test-model", time.Second, zap.NewNop())

	_, err := c.CallTool(context.Background(), "system", "user", testTool)
	require.Error(t, err)
	assert.Equal(t, errors.ErrTypeRateLimit, errors.TypeOf(err))
}

func TestCallToolNoToolCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"plain text"}}]}`))
	}))
	defer srv.Close()

	c := New("test-key", srv.URL, "test-model", time.Second, zap.NewNop())

	_, err := c.CallTool(context.Background(), "system", "user", testTool)
	require.Error(t, err)
}

func TestCallToolMissingAPIKey(t *testing.T) {
	c := New("", "http://unused", "test-model", time.Second, zap.NewNop())

	_, err := c.CallTool(context.Background(), "system", "user", testTool)
	require.Error(t, err)
	assert.Equal(t, errors.ErrTypeInvalidInput, errors.TypeOf(err))
}
