package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"twscraper/pkg/config"
	"twscraper/pkg/errors"
	"twscraper/pkg/logger"
	"twscraper/pkg/ratelimit"
)

// Client is the feed client for the Twitter REST API. It owns provider auth,
// in-client retry for transient failures, and the advisory throttle the
// paginator invokes between pages.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	pageSize   int
	limiter    ratelimit.Limiter
	retryCfg   config.RetryConfig
	logger     logger.Logger
}

// NewClient creates a new feed client from the given configuration
func NewClient(cfg *config.Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	headers := map[string]string{
		"User-Agent": cfg.Twitter.UserAgent,
		"Accept":     "application/json",
	}
	if cfg.Twitter.BearerToken != "" {
		headers["Authorization"] = "Bearer " + cfg.Twitter.BearerToken
	}

	rpm := cfg.RateLimit.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Twitter.RequestTimeout,
		},
		headers:  headers,
		baseURL:  cfg.Twitter.BaseURL,
		pageSize: cfg.Twitter.PageSize,
		limiter:  ratelimit.NewTokenBucket(rpm, time.Minute),
		retryCfg: cfg.Retry,
		logger:   log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// FetchProfile fetches a single point-in-time profile snapshot
func (c *Client) FetchProfile(ctx context.Context, handle string) (*ProfileSnapshot, error) {
	endpoint := ProfileURL(c.baseURL, handle)

	var snapshot ProfileSnapshot
	if err := c.getJSON(ctx, endpoint, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return &snapshot, nil
}

// FetchPage fetches one timeline page. cursorID is the last entry ID of the
// previous page, empty for the first page. An empty slice means the timeline
// is exhausted.
func (c *Client) FetchPage(ctx context.Context, handle, cursorID string) ([]FeedEntry, error) {
	endpoint := TimelineURL(c.baseURL, handle, cursorID, c.pageSize)

	var entries []FeedEntry
	if err := c.getJSON(ctx, endpoint, &entries); err != nil {
		return nil, fmt.Errorf("failed to fetch timeline page: %w", err)
	}

	c.logger.DebugWithFields("timeline page fetched", map[string]interface{}{
		"handle":  handle,
		"cursor":  cursorID,
		"entries": len(entries),
	})

	return entries, nil
}

// Throttle blocks until the provider rate limit allows another request.
// Invoked by the paginator after every page.
func (c *Client) Throttle() {
	if c.limiter.Allow() {
		return
	}
	c.logger.Warn("rate limit reached, waiting for quota")
	c.limiter.Wait()
}

// getJSON performs a GET request with retry and decodes the JSON response
func (c *Client) getJSON(ctx context.Context, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
			Code:    0,
		}
	}

	maxRetries := 0
	if c.retryCfg.Enabled {
		maxRetries = c.retryCfg.MaxAttempts
	}

	resp, err := c.doRequestWithRetry(req, maxRetries)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return nil
}

// doRequest performs a single HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
			Code:    0,
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// doRequestWithRetry performs an HTTP request, retrying transient failures
func (c *Client) doRequestWithRetry(req *http.Request, maxRetries int) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.WarnWithFields("retrying HTTP request", map[string]interface{}{
				"method":  req.Method,
				"url":     req.URL.String(),
				"attempt": attempt,
				"error":   lastErr.Error(),
			})

			delay := c.retryCfg.BaseDelay * time.Duration(attempt)
			if c.retryCfg.MaxDelay > 0 && delay > c.retryCfg.MaxDelay {
				delay = c.retryCfg.MaxDelay
			}
			select {
			case <-time.After(delay):
			case <-req.Context().Done():
				return nil, req.Context().Err()
			}
		}

		resp, err := c.doRequest(req)
		if err != nil {
			lastErr = err
			if apiErr, ok := err.(*errors.Error); ok && apiErr.Type == errors.ErrorTypeNetwork {
				continue
			}
			return nil, err
		}

		if errors.IsRetryableStatusCode(resp.StatusCode) && resp.StatusCode != 0 {
			lastErr = &errors.Error{
				Type:    errors.ErrorTypeServerError,
				Message: fmt.Sprintf("server returned status %d", resp.StatusCode),
				Code:    resp.StatusCode,
			}
			resp.Body.Close()
			continue
		}

		return resp, nil
	}

	c.logger.ErrorWithFields("max retries exceeded", map[string]interface{}{
		"method":      req.Method,
		"url":         req.URL.String(),
		"max_retries": maxRetries,
		"last_error":  lastErr.Error(),
	})

	return nil, lastErr
}

// checkResponseStatus maps HTTP status codes to typed errors
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &errors.Error{
			Type:    errors.ErrorTypeAuth,
			Message: "authentication required",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode == http.StatusNotFound:
		return &errors.Error{
			Type:    errors.ErrorTypeNotFound,
			Message: "resource not found",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &errors.Error{
			Type:    errors.ErrorTypeRateLimit,
			Message: "rate limited by provider",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode >= 500:
		return &errors.Error{
			Type:    errors.ErrorTypeServerError,
			Message: fmt.Sprintf("server error: %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	default:
		return &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("unexpected status: %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}
}
