// Package search wraps the external web-search/scrape provider behind a
// narrow interface so the pipeline never assumes a specific vendor.
package search

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"jobscout/internal/cache"
	cacheredis "jobscout/internal/cache/redis"
	"jobscout/internal/config"
	"jobscout/internal/errors"
	"jobscout/internal/models"
	"jobscout/internal/telemetry"

	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobscout/search")

// Client issues one provider request per query and returns ranked raw
// results with optional page markdown.
type Client interface {
	Search(ctx context.Context, query string) ([]models.RawSearchResult, error)
}

type webSearchClient struct {
	client *http.Client
	logger *zap.Logger
	config *config.Config
	cache  cache.Cache
}

func NewClient(logger *zap.Logger, config *config.Config) Client {
	cacheOpts := cache.Options{
		RedisAddr:     config.RedisAddr,
		RedisPassword: config.RedisPassword,
		RedisDB:       config.RedisDB,
		DefaultTTL:    config.CacheTTL,
	}

	return &webSearchClient{
		client: &http.Client{
			Timeout: config.SearchAPITimeout,
		},
		logger: logger,
		config: config,
		cache:  cacheredis.New(cacheOpts),
	}
}

type searchRequest struct {
	Query         string        `json:"query"`
	Limit         int           `json:"limit"`
	ScrapeOptions scrapeOptions `json:"scrapeOptions"`
}

type scrapeOptions struct {
	Formats []string `json:"formats"`
}

type searchResponse struct {
	Success bool                     `json:"success"`
	Data    []models.RawSearchResult `json:"data"`
	Error   string                   `json:"error"`
}

func (c *webSearchClient) Search(ctx context.Context, query string) ([]models.RawSearchResult, error) {
	ctx, span := tracer.Start(ctx, "Search")
	defer span.End()
	span.SetAttributes(telemetry.String("search.query", query))

	if c.config.SearchAPIKey == "" {
		return nil, errors.InvalidInput("search api key is not configured", nil)
	}

	cacheKey := cacheKeyFor(query)
	var cached models.SearchResultSet
	err := c.cache.Get(ctx, cacheKey, &cached)
	if err == nil {
		span.SetAttributes(telemetry.String("cache.result", "hit"))
		c.logger.Debug("cache hit for search query", zap.String("query", query))
		return cached, nil
	} else if err != cache.ErrNotFound {
		span.SetAttributes(telemetry.String("cache.result", "error"))
		span.RecordError(err)
		c.logger.Warn("cache error for search query", zap.Error(err))
	} else {
		span.SetAttributes(telemetry.String("cache.result", "miss"))
	}

	body, err := json.Marshal(searchRequest{
		Query:         query,
		Limit:         c.config.SearchPageLimit,
		ScrapeOptions: scrapeOptions{Formats: []string{"markdown"}},
	})
	if err != nil {
		return nil, errors.Internal("marshaling search request", err)
	}

	url := fmt.Sprintf("%s/v1/search", c.config.SearchAPIBaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		return nil, errors.Internal("creating request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.SearchAPIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		c.logger.Error("failed to execute search request", zap.String("query", query), zap.Error(err))
		return nil, errors.Unavailable("executing search request", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	span.SetAttributes(telemetry.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errors.RateLimit("search provider rate limit", nil)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("unexpected search status code",
			zap.String("query", query),
			zap.Int("status_code", resp.StatusCode))
		return nil, errors.Unavailable(fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		span.RecordError(err)
		return nil, errors.Internal("decoding search response", err)
	}
	if !out.Success {
		return nil, errors.Unavailable(fmt.Sprintf("search provider error: %s", out.Error), nil)
	}

	c.logger.Debug("search query completed",
		zap.String("query", query),
		zap.Int("results", len(out.Data)))

	if err := c.cache.Set(ctx, cacheKey, models.SearchResultSet(out.Data), c.config.CacheTTL); err != nil {
		c.logger.Warn("failed to cache search results", zap.String("query", query), zap.Error(err))
	}

	return out.Data, nil
}

func cacheKeyFor(query string) string {
	sum := sha1.Sum([]byte(query))
	return "search:q:" + hex.EncodeToString(sum[:])
}
