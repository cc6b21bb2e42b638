package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jafarshop/gradeoverlay/internal/config"
	apperrors "github.com/jafarshop/gradeoverlay/pkg/errors"
)

const (
	retryMax       = 5
	retryBaseDelay = 500 * time.Millisecond
	retryMaxDelay  = 10 * time.Second
)

type Client struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates a new Shopify Admin GraphQL client
func NewClient(cfg config.ShopifyConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		// Normalize shop domain - remove https://, http://, and trailing slashes
		shopDomain := cfg.ShopDomain
		shopDomain = strings.TrimPrefix(shopDomain, "https://")
		shopDomain = strings.TrimPrefix(shopDomain, "http://")
		shopDomain = strings.TrimSuffix(shopDomain, "/")
		endpoint = fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shopDomain, cfg.APIVersion)
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		endpoint:    endpoint,
		accessToken: cfg.AccessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(limit, 4),
		logger:  logger,
	}
}

// GraphQLRequest represents a GraphQL request
type GraphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// GraphQLResponse represents a GraphQL response
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLError represents a GraphQL error
type GraphQLError struct {
	Message    string                 `json:"message"`
	Path       []interface{}          `json:"path,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

type httpStatusError struct {
	statusCode int
	body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("shopify API error: status %d, body: %s", e.statusCode, e.body)
}

// Execute runs a query or mutation. Throttled responses and transient HTTP failures are retried with
// exponential backoff; any remaining GraphQL error array is returned as *errors.ErrCatalog.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]interface{}) (*GraphQLResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= retryMax; attempt++ {
		if attempt > 0 {
			if err := sleepWithContext(ctx, retryDelay(attempt-1)); err != nil {
				return nil, err
			}
		}

		resp, err := c.do(ctx, query, variables)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !isRetryable(err) {
			return nil, err
		}
		c.logger.Warn("Shopify request throttled, retrying", zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, query string, variables map[string]interface{}) (*GraphQLResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(GraphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &httpStatusError{statusCode: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	var graphQLResp GraphQLResponse
	if err := json.Unmarshal(body, &graphQLResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}

	if len(graphQLResp.Errors) > 0 {
		catalogErr := &apperrors.ErrCatalog{}
		for _, e := range graphQLResp.Errors {
			catalogErr.Messages = append(catalogErr.Messages, e.Message)
			if code, ok := e.Extensions["code"].(string); ok {
				catalogErr.Codes = append(catalogErr.Codes, code)
			}
		}
		return nil, catalogErr
	}

	return &graphQLResp, nil
}

func isRetryable(err error) bool {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.statusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	var catalogErr *apperrors.ErrCatalog
	if errors.As(err, &catalogErr) {
		return catalogErr.Throttled()
	}
	return false
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		return 0
	}
	delay := retryBaseDelay << attempt
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
