package extapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	domainsync "qualisync/internal/domain/sync"
	"qualisync/internal/errs"
)

// Config carries the per-platform connection settings. One Config (and
// so one limiter) exists per platform+credential pair.
type Config struct {
	BaseURL         string
	Token           string
	PageSize        int
	RetryAttempts   int
	BackoffInitial  time.Duration
	BackoffMax      time.Duration
	RateLimitQuota  int
	RateLimitWindow time.Duration

	// HTTPClient overrides the default transport, mainly for tests.
	HTTPClient *http.Client
}

// client is the HTTP layer shared by both platform clients. It does
// authentication, JSON decoding and status classification; retry and
// pagination live in the pager.
type client struct {
	http    *http.Client
	baseURL string
	token   string
	limiter *Limiter

	pageSize       int
	retryAttempts  int
	backoffInitial time.Duration
	backoffMax     time.Duration
}

func newClient(cfg Config) *client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	retryAttempts := cfg.RetryAttempts
	if retryAttempts <= 0 {
		retryAttempts = 3
	}
	return &client{
		http:           httpClient,
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		token:          cfg.Token,
		limiter:        NewLimiter(cfg.RateLimitQuota, cfg.RateLimitWindow, cfg.BackoffInitial, cfg.BackoffMax),
		pageSize:       pageSize,
		retryAttempts:  retryAttempts,
		backoffInitial: cfg.BackoffInitial,
		backoffMax:     cfg.BackoffMax,
	}
}

// endpoint joins a path onto the configured base URL. Absolute URLs pass
// through untouched so "next page" links from the platform keep working.
func (c *client) endpoint(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// getJSON performs one authenticated GET and decodes the body into out.
// Failures are classified into the retry taxonomy: connection problems
// and 5xx become transient, 429 becomes a rate-limit signal carrying the
// suggested retry-after, and any other 4xx becomes a terminal APIError.
func (c *client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return errs.Wrapf(err, "build request for %s", rawURL)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &domainsync.TransientError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		io.Copy(io.Discard, resp.Body)
		return &domainsync.RateLimitError{RetryAfter: retryAfter(resp)}
	case resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body)
		return &domainsync.TransientError{Err: fmt.Errorf("server error %d from %s", resp.StatusCode, rawURL)}
	case resp.StatusCode >= 400:
		return &domainsync.APIError{
			StatusCode: resp.StatusCode,
			URL:        rawURL,
			Message:    bodySnippet(resp.Body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// Truncated or garbled bodies usually mean an unhealthy
		// upstream, so give the retry loop a chance.
		return &domainsync.TransientError{Err: fmt.Errorf("decode response from %s: %w", rawURL, err)}
	}
	return nil
}

func retryAfter(resp *http.Response) time.Duration {
	header := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

func bodySnippet(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 512))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}
