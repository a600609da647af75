// Package boardgamegeek implements a BoardGameGeek XML API2 client.
// This package handles all communication with boardgamegeek.com, fetching
// board game details and search results for the group catalog sync.
package boardgamegeek

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// maxIDsPerRequest is the number of thing ids the API accepts per request.
const maxIDsPerRequest = 20

// ClientConfig contains configuration for the BoardGameGeek API client.
type ClientConfig struct {
	// BaseURL is the XML API base URL (https://boardgamegeek.com/xmlapi2)
	BaseURL string

	// Timeout is the HTTP request timeout
	Timeout time.Duration

	// RateLimiterConfig for API rate limiting
	RateLimiterConfig RateLimiterConfig

	// CircuitBreakerConfig for fault tolerance
	CircuitBreakerConfig CircuitBreakerConfig

	// RetryConfig for retry behavior
	RetryConfig RetryConfig

	// Logger for structured logging
	Logger *slog.Logger

	// Debug enables debug logging
	Debug bool
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:              baseURL,
		Timeout:              30 * time.Second,
		RateLimiterConfig:    DefaultRateLimiterConfig(),
		CircuitBreakerConfig: DefaultCircuitBreakerConfig(),
		RetryConfig:          DefaultRetryConfig(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the BoardGameGeek XML API2 client.
type Client struct {
	config         ClientConfig
	httpClient     *http.Client
	logger         *slog.Logger
	rateLimiter    *RateLimiter
	circuitBreaker *CircuitBreaker
	mapper         *Mapper
}

// NewClient creates a new BoardGameGeek API client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:         config.Logger,
		rateLimiter:    NewRateLimiter(config.RateLimiterConfig),
		circuitBreaker: NewCircuitBreaker(config.CircuitBreakerConfig),
		mapper:         NewMapper(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// THING OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetThing fetches a single board game by its BoardGameGeek id.
// Returns ErrThingNotFound when the id is unknown.
func (c *Client) GetThing(ctx context.Context, externalID int64) (*ThingDetails, error) {
	things, err := c.GetThings(ctx, []int64{externalID})
	if err != nil {
		return nil, err
	}

	if len(things) == 0 {
		return nil, ErrThingNotFound
	}

	return things[0], nil
}

// GetThings fetches several board games in batched requests.
// The API accepts up to 20 ids per call; ids beyond that are chunked.
func (c *Client) GetThings(ctx context.Context, externalIDs []int64) ([]*ThingDetails, error) {
	if len(externalIDs) == 0 {
		return nil, nil
	}

	var things []*ThingDetails
	for start := 0; start < len(externalIDs); start += maxIDsPerRequest {
		end := start + maxIDsPerRequest
		if end > len(externalIDs) {
			end = len(externalIDs)
		}

		batch, err := c.getThingsBatch(ctx, externalIDs[start:end])
		if err != nil {
			return nil, err
		}
		things = append(things, batch...)
	}

	return things, nil
}

// getThingsBatch fetches one chunk of thing ids.
func (c *Client) getThingsBatch(ctx context.Context, externalIDs []int64) ([]*ThingDetails, error) {
	ids := make([]string, len(externalIDs))
	for i, id := range externalIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}

	params := url.Values{}
	params.Set("id", strings.Join(ids, ","))
	params.Set("type", "boardgame,boardgameexpansion")
	params.Set("stats", "1")

	var response ThingItemsDTO
	if err := c.doRequest(ctx, "/thing?"+params.Encode(), &response); err != nil {
		return nil, fmt.Errorf("get things: %w", err)
	}

	things := make([]*ThingDetails, 0, len(response.Items))
	for i := range response.Items {
		details, err := c.mapper.ThingFromDTO(&response.Items[i])
		if err != nil {
			continue
		}
		things = append(things, details)
	}

	return things, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SEARCH OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// Search searches the BoardGameGeek catalog by name.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("type", "boardgame")

	var response SearchItemsDTO
	if err := c.doRequest(ctx, "/search?"+params.Encode(), &response); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	return c.mapper.SearchResultsFromDTO(&response), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// doRequest performs an HTTP request with rate limiting, circuit breaking, and retries.
func (c *Client) doRequest(ctx context.Context, path string, result interface{}) error {
	// Check circuit breaker
	if err := c.circuitBreaker.Allow(); err != nil {
		return fmt.Errorf("circuit breaker: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.RetryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.config.RetryConfig.CalculateBackoff(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		// Wait for rate limiter
		if err := c.rateLimiter.Allow(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		err := c.doSingleRequest(ctx, path, result)
		if err == nil {
			c.circuitBreaker.RecordSuccess()
			return nil
		}

		lastErr = err

		// Check if error is retryable
		if !c.isRetryable(err) {
			c.circuitBreaker.RecordFailure()
			return err
		}

		// Handle rate limit response
		var rateLimitErr *RateLimitError
		if errors.As(err, &rateLimitErr) {
			c.rateLimiter.RecordRateLimitHit(rateLimitErr.RetryAfter)
		}
	}

	c.circuitBreaker.RecordFailure()
	return fmt.Errorf("request failed after %d retries: %w", c.config.RetryConfig.MaxRetries, lastErr)
}

// doSingleRequest performs a single HTTP request and decodes the XML body.
func (c *Client) doSingleRequest(ctx context.Context, path string, result interface{}) error {
	fullURL := c.config.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/xml")

	if c.config.Debug {
		c.logger.Debug("bgg api request", "path", path)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	// The API queues heavy requests and asks the client to come back.
	if resp.StatusCode == http.StatusAccepted {
		return ErrQueued
	}

	// Handle rate limiting
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := 60 * time.Second
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if seconds, err := strconv.Atoi(ra); err == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return &RateLimitError{
			RetryAfter: retryAfter,
			Message:    "rate limit exceeded",
		}
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrThingNotFound
	}

	if resp.StatusCode >= 400 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(respBody)),
		}
	}

	if result != nil && len(respBody) > 0 {
		if err := xml.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

// isRetryable checks if an error is retryable.
func (c *Client) isRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Queued responses resolve themselves on a later attempt
	if errors.Is(err, ErrQueued) {
		return true
	}

	// Rate limit errors are retryable
	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return true
	}

	// Server errors are retryable
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}

	// Network errors are generally retryable
	errStr := err.Error()
	return containsAny(errStr, []string{"timeout", "connection refused", "temporary", "reset", "EOF"})
}

// containsAny checks if s contains any of the substrings.
func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH AND STATUS
// ══════════════════════════════════════════════════════════════════════════════

// IsHealthy checks if the BoardGameGeek API is reachable.
// Thing id 13 (Catan) is stable enough to probe with.
func (c *Client) IsHealthy(ctx context.Context) bool {
	var response ThingItemsDTO
	err := c.doSingleRequest(ctx, "/thing?id=13", &response)
	return err == nil && len(response.Items) > 0
}

// ClientStatus is the current status of the client.
type ClientStatus struct {
	RateLimiter    RateLimiterStatus
	CircuitBreaker CircuitBreakerStatus
	IsHealthy      bool
}

// Status returns the current status of the client.
func (c *Client) Status(ctx context.Context) ClientStatus {
	return ClientStatus{
		RateLimiter:    c.rateLimiter.Status(),
		CircuitBreaker: c.circuitBreaker.Status(),
		IsHealthy:      c.IsHealthy(ctx),
	}
}

// Reset resets the rate limiter and circuit breaker.
func (c *Client) Reset() {
	c.rateLimiter.Reset()
	c.circuitBreaker.Reset()
}
