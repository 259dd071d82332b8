// Package gateway talks to the customer-service backend API. Reads degrade to
// empty results; only interaction saves report errors.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	dashboard "github.com/goliatone/go-csdash/components/dashboard"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// DefaultTimeout bounds every backend call unless HTTPConfig.Timeout says otherwise.
const DefaultTimeout = 10 * time.Second

// Backend API paths.
const (
	PathAnalytics       = "/api/analytics"
	PathRecommendations = "/api/recommendations/"
	PathSaveInteraction = "/api/save_interaction"
)

// HTTPConfig configures the HTTP gateway client.
type HTTPConfig struct {
	BaseURL string
	APIKey  string
	// Timeout applies when HTTPClient is nil. Zero uses DefaultTimeout, a
	// negative value disables the timeout.
	Timeout    time.Duration
	HTTPClient *http.Client
	// Breaker enables a circuit breaker that fails reads fast while the
	// backend keeps failing. Calls are never retried.
	Breaker bool
	Logger  *zerolog.Logger
}

// HTTPClient implements dashboard.Gateway against the backend REST API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
	schema  *snapshotSchema
}

var _ dashboard.Gateway = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the backend at cfg.BaseURL.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("gateway: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		switch {
		case timeout == 0:
			timeout = DefaultTimeout
		case timeout < 0:
			timeout = 0
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	schema, err := newSnapshotSchema()
	if err != nil {
		return nil, err
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	c := &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  httpClient,
		log:     log.With().Str("component", "gateway").Logger(),
		schema:  schema,
	}
	if cfg.Breaker {
		c.breaker = newBreaker(c.log)
	}
	return c, nil
}

// FetchAnalytics loads the aggregate snapshot. Any failure, including a body
// that does not match the snapshot schema, is logged and yields nil.
func (c *HTTPClient) FetchAnalytics(ctx context.Context) *dashboard.AnalyticsSnapshot {
	body, err := c.read(ctx, PathAnalytics)
	if err != nil {
		c.log.Error().Err(err).Str("path", PathAnalytics).Msg("error fetching analytics")
		return nil
	}
	if err := c.schema.Validate(body); err != nil {
		c.log.Error().Err(err).Str("path", PathAnalytics).Msg("analytics payload rejected")
		return nil
	}
	var snapshot dashboard.AnalyticsSnapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		c.log.Error().Err(err).Str("path", PathAnalytics).Msg("error decoding analytics")
		return nil
	}
	return &snapshot
}

// FetchRecommendations loads recommendations in server order. Non-positive
// ids return an empty list without a request; failures return an empty list.
func (c *HTTPClient) FetchRecommendations(ctx context.Context, customerID int) []dashboard.Recommendation {
	recs := []dashboard.Recommendation{}
	if customerID <= 0 {
		return recs
	}
	path := PathRecommendations + strconv.Itoa(customerID)
	body, err := c.read(ctx, path)
	if err != nil {
		c.log.Error().Err(err).Int("customer_id", customerID).Msg("error fetching recommendations")
		return recs
	}
	if err := json.Unmarshal(body, &recs); err != nil {
		c.log.Error().Err(err).Int("customer_id", customerID).Msg("error decoding recommendations")
		return []dashboard.Recommendation{}
	}
	if recs == nil {
		recs = []dashboard.Recommendation{}
	}
	return recs
}

// SaveInteraction posts the draft. Transport failures, non-2xx statuses and
// undecodable bodies are returned wrapped.
func (c *HTTPClient) SaveInteraction(ctx context.Context, draft dashboard.InteractionDraft) (dashboard.SaveResult, error) {
	body, err := c.do(ctx, http.MethodPost, PathSaveInteraction, draft)
	if err != nil {
		return dashboard.SaveResult{}, fmt.Errorf("gateway: save interaction: %w", err)
	}
	var result dashboard.SaveResult
	if err := json.Unmarshal(body, &result); err != nil {
		return dashboard.SaveResult{}, fmt.Errorf("gateway: save interaction: decode response: %w", err)
	}
	return result, nil
}

// read performs a GET, going through the breaker when one is configured.
func (c *HTTPClient) read(ctx context.Context, path string) ([]byte, error) {
	if c.breaker == nil {
		return c.do(ctx, http.MethodGet, path, nil)
	}
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, http.MethodGet, path, nil)
	})
	if err != nil {
		return nil, err
	}
	return out.([]byte), nil
}

// StatusError is returned for non-2xx backend responses.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d %s", e.Status, strings.TrimSpace(e.Body))
}

// IsStatus reports whether err carries the given backend status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
