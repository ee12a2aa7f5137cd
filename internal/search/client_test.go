package search

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

	"jobscout/internal/config"
	"jobscout/internal/errors"
)

// testConfig points at the given provider URL and at a dead Redis address;
// cache failures are soft, so searches must still work without one.
func testConfig(baseURL string) *config.Config {
	return &config.Config{
		SearchAPIBaseURL: baseURL,
		SearchAPIKey:     "test-key",
		SearchAPITimeout: time.Second,
		SearchPageLimit:  20,
		RedisAddr:        "127.0.0.1:1",
		CacheTTL:         time.Minute,
	}
}

func TestSearchParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/search", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "platform engineer berlin", req["query"])
		assert.EqualValues(t, 20, req["limit"])

		_, _ = w.Write([]byte(`{"success":true,"data":[
			{"url":"https://jobs.example.com/1","title":"Platform Engineer","markdown":"Globex is hiring."}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(zap.NewNop(), testConfig(srv.URL))

	results, err := c.Search(context.Background(), "platform engineer berlin")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Platform Engineer", results[0].Title)
	assert.Equal(t, "Globex is hiring.", results[0].Markdown)
}

func TestSearchRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(zap.NewNop(), testConfig(srv.URL))

	_, err := c.Search(context.Background(), "anything")
	require.Error(t, err)
	assert.Equal(t, errors.ErrTypeRateLimit, errors.TypeOf(err))
}

func TestSearchProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"quota exceeded"}`))
	}))
	defer srv.Close()

	c := NewClient(zap.NewNop(), testConfig(srv.URL))

	_, err := c.Search(context.Background(), "anything")
	require.Error(t, err)
	assert.Equal(t, errors.ErrTypeUnavailable, errors.TypeOf(err))
}

func TestSearchMissingAPIKey(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.SearchAPIKey = ""
	c := NewClient(zap.NewNop(), cfg)

	_, err := c.Search(context.Background(), "anything")
	require.Error(t, err)
	assert.Equal(t, errors.ErrTypeInvalidInput, errors.TypeOf(err))
}
