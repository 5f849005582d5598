package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/denkido/catalogimport/internal/config"
	apperrors "github.com/denkido/catalogimport/pkg/errors"
)

const maxBackoff = 30 * time.Second

type Client struct {
	baseURL     string
	accessToken string
	maxRetries  int
	retryDelay  time.Duration
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient creates a new Shopify Admin API client (REST + GraphQL)
func NewClient(cfg config.ShopifyConfig, logger *zap.Logger) *Client {
	// Normalize shop domain - remove https://, http://, and trailing slashes
	shopDomain := cfg.ShopDomain
	shopDomain = strings.TrimPrefix(shopDomain, "https://")
	shopDomain = strings.TrimPrefix(shopDomain, "http://")
	shopDomain = strings.TrimSuffix(shopDomain, "/")

	return &Client{
		baseURL:     fmt.Sprintf("https://%s/admin/api/%s", shopDomain, cfg.APIVersion),
		accessToken: cfg.AccessToken,
		maxRetries:  cfg.MaxRetries,
		retryDelay:  time.Duration(cfg.RetryDelayMS) * time.Millisecond,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: logger,
	}
}

// GraphQLRequest represents a GraphQL request
type GraphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// GraphQLResponse represents a GraphQL response
type GraphQLResponse struct {
	Data       json.RawMessage `json:"data"`
	Errors     []GraphQLError  `json:"errors,omitempty"`
	Extensions *Extensions     `json:"extensions,omitempty"`
}

// GraphQLError represents a GraphQL error
type GraphQLError struct {
	Message    string           `json:"message"`
	Path       []string         `json:"path,omitempty"`
	Extensions *ErrorExtensions `json:"extensions,omitempty"`
}

// ErrorExtensions carries the machine-readable error code (e.g. THROTTLED)
type ErrorExtensions struct {
	Code string `json:"code,omitempty"`
}

// Extensions carries query cost reporting for throttle handling
type Extensions struct {
	Cost *QueryCost `json:"cost,omitempty"`
}

type QueryCost struct {
	RequestedQueryCost int            `json:"requestedQueryCost"`
	ActualQueryCost    int            `json:"actualQueryCost"`
	ThrottleStatus     ThrottleStatus `json:"throttleStatus"`
}

type ThrottleStatus struct {
	MaximumAvailable   float64 `json:"maximumAvailable"`
	CurrentlyAvailable float64 `json:"currentlyAvailable"`
	RestoreRate        float64 `json:"restoreRate"`
}

// Execute executes a GraphQL query/mutation. HTTP-level 429/5xx and
// GraphQL-level THROTTLED answers are retried up to the configured limit;
// other errors are returned as-is.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]interface{}) (*GraphQLResponse, error) {
	reqBody := GraphQLRequest{
		Query:     query,
		Variables: variables,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	for attempt := 0; ; attempt++ {
		status, _, body, err := c.do(ctx, http.MethodPost, c.baseURL+"/graphql.json", jsonData, attempt)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("shopify API error: status %d, body: %s", status, string(body))
		}

		var graphQLResp GraphQLResponse
		if err := json.Unmarshal(body, &graphQLResp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}

		if len(graphQLResp.Errors) == 0 {
			return &graphQLResp, nil
		}

		if isThrottled(graphQLResp.Errors) {
			if attempt >= c.maxRetries {
				return nil, &apperrors.ErrRateLimited{}
			}
			wait := throttleWait(&graphQLResp, c.backoff(attempt))
			c.logger.Warn("shopify query throttled, retrying",
				zap.Duration("wait", wait),
				zap.Int("attempt", attempt+1))
			if err := sleepCtx(ctx, wait); err != nil {
				return nil, err
			}
			continue
		}

		msgs := make([]string, 0, len(graphQLResp.Errors))
		for _, gqlErr := range graphQLResp.Errors {
			msgs = append(msgs, gqlErr.Message)
		}
		return nil, fmt.Errorf("graphQL errors: %s", strings.Join(msgs, "; "))
	}
}

// do sends one HTTP request, retrying 429 (honoring Retry-After) and 5xx
// answers. Other statuses are returned to the caller untouched. The attempt
// counter is shared with Execute so GraphQL throttle retries and transport
// retries draw from the same budget.
func (c *Client) do(ctx context.Context, method, rawURL string, body []byte, attempt int) (int, http.Header, []byte, error) {
	for ; ; attempt++ {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
		if err != nil {
			return 0, nil, nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Shopify-Access-Token", c.accessToken)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return 0, nil, nil, fmt.Errorf("failed to execute request: %w", err)
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return 0, nil, nil, fmt.Errorf("failed to read response: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			wait := retryAfter(resp.Header, c.backoff(attempt))
			if attempt >= c.maxRetries {
				return 0, nil, nil, &apperrors.ErrRateLimited{RetryAfter: wait}
			}
			c.logger.Warn("shopify rate limit hit, retrying",
				zap.Duration("wait", wait),
				zap.Int("attempt", attempt+1))
			if err := sleepCtx(ctx, wait); err != nil {
				return 0, nil, nil, err
			}
			continue
		case resp.StatusCode >= http.StatusInternalServerError:
			if attempt >= c.maxRetries {
				return resp.StatusCode, resp.Header, respBody, nil
			}
			wait := c.backoff(attempt)
			c.logger.Warn("shopify server error, retrying",
				zap.Int("status", resp.StatusCode),
				zap.Duration("wait", wait),
				zap.Int("attempt", attempt+1))
			if err := sleepCtx(ctx, wait); err != nil {
				return 0, nil, nil, err
			}
			continue
		}

		return resp.StatusCode, resp.Header, respBody, nil
	}
}

// restJSON performs one REST call and decodes the answer into out.
// 404, 401/403 and 422 map onto the shared error types.
func (c *Client) restJSON(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	_, err := c.restJSONHeader(ctx, method, path, query, body, out)
	return err
}

func (c *Client) restJSONHeader(ctx context.Context, method, path string, query url.Values, body, out interface{}) (http.Header, error) {
	rawURL := c.baseURL + "/" + path
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}

	var jsonData []byte
	if body != nil {
		var err error
		jsonData, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	status, header, respBody, err := c.do(ctx, method, rawURL, jsonData, 0)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusOK || status == http.StatusCreated:
		if out != nil {
			if err := json.Unmarshal(respBody, out); err != nil {
				return nil, fmt.Errorf("failed to unmarshal response: %w", err)
			}
		}
		return header, nil
	case status == http.StatusNotFound:
		return nil, &apperrors.ErrNotFound{Resource: "shopify resource", Key: path}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, &apperrors.ErrUnauthorized{Message: fmt.Sprintf("shopify rejected credentials: status %d", status)}
	case status == http.StatusUnprocessableEntity:
		return nil, &apperrors.ErrUserErrors{
			Operation: fmt.Sprintf("%s %s", method, path),
			Errors:    parseRESTErrors(respBody),
		}
	default:
		return nil, fmt.Errorf("shopify API error: status %d, body: %s", status, string(respBody))
	}
}

// parseRESTErrors flattens the REST error body shapes into user errors.
// Shopify answers 422 with {"errors": {"field": ["msg"]}} or {"errors": "msg"}.
func parseRESTErrors(body []byte) []apperrors.UserError {
	var withMap struct {
		Errors map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &withMap); err == nil && len(withMap.Errors) > 0 {
		var out []apperrors.UserError
		for field, msgs := range withMap.Errors {
			for _, msg := range msgs {
				out = append(out, apperrors.UserError{Field: []string{field}, Message: msg})
			}
		}
		return out
	}

	var withString struct {
		Errors string `json:"errors"`
	}
	if err := json.Unmarshal(body, &withString); err == nil && withString.Errors != "" {
		return []apperrors.UserError{{Message: withString.Errors}}
	}

	return []apperrors.UserError{{Message: string(body)}}
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.retryDelay << uint(attempt)
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}

// retryAfter reads the Retry-After header (fractional seconds) with a
// small buffer, falling back to the supplied delay
func retryAfter(header http.Header, fallback time.Duration) time.Duration {
	raw := header.Get("Retry-After")
	if raw == "" {
		return fallback
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil || seconds < 0 {
		return fallback
	}
	return time.Duration(seconds*float64(time.Second)) + 500*time.Millisecond
}

func isThrottled(errs []GraphQLError) bool {
	for _, e := range errs {
		if e.Extensions != nil && e.Extensions.Code == "THROTTLED" {
			return true
		}
	}
	return false
}

// throttleWait estimates how long until enough query cost is restored,
// falling back to the supplied delay when cost data is missing
func throttleWait(resp *GraphQLResponse, fallback time.Duration) time.Duration {
	if resp.Extensions == nil || resp.Extensions.Cost == nil {
		return fallback
	}
	cost := resp.Extensions.Cost
	if cost.ThrottleStatus.RestoreRate <= 0 {
		return fallback
	}
	deficit := float64(cost.RequestedQueryCost) - cost.ThrottleStatus.CurrentlyAvailable
	if deficit <= 0 {
		return fallback
	}
	wait := time.Duration(deficit / cost.ThrottleStatus.RestoreRate * float64(time.Second))
	return wait + 500*time.Millisecond
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
