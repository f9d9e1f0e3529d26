// Package infra provides shared infrastructure components used across
// the application: HTTP utilities, rate limiting, and logger construction.
package infra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// --- HTTP ---

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "finchart/1.0 (+https://github.com/seenimoa/finchart)"

// HTTPClient is a pre-configured HTTP client with reasonable timeouts.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// DoGet performs a GET request with the given URL and headers, returning the response body.
// Responses with status >= 400 are returned as *ErrHTTP.
// The caller is responsible for closing the returned ReadCloser.
func DoGet(ctx context.Context, client *http.Client, url string, headers map[string]string) (io.ReadCloser, int, error) {
	if client == nil {
		client = HTTPClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json")

	// Override/add custom headers.
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP GET %s: %w", url, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, resp.StatusCode, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	return resp.Body, resp.StatusCode, nil
}

// ReadAllLimited reads at most limit bytes from r and fails if more remain.
func ReadAllLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("response exceeds %d bytes", limit)
	}
	return data, nil
}

// --- Rate limiter ---

// RateLimiter paces outbound source calls against a per-window quota. The
// full budget is available at start and one call is earned back every
// window/calls. A nil *RateLimiter never blocks.
type RateLimiter struct {
	lim *rate.Limiter
}

// NewRateLimiter allows calls requests per window. Non-positive arguments
// return nil, which disables limiting.
func NewRateLimiter(calls int, window time.Duration) *RateLimiter {
	if calls <= 0 || window <= 0 {
		return nil
	}
	return &RateLimiter{lim: rate.NewLimiter(rate.Every(window/time.Duration(calls)), calls)}
}

// Wait takes one call, sleeping until it is earned. If ctx ends first the
// call is handed back and ctx.Err() is returned.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil {
		return nil
	}
	now := time.Now()
	r := rl.lim.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	if delay == 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Remaining reports the calls available without waiting, or -1 when
// limiting is disabled.
func (rl *RateLimiter) Remaining() int {
	if rl == nil {
		return -1
	}
	return int(rl.lim.Tokens())
}
