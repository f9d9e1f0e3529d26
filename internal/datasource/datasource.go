// Package datasource fetches the income statement and price history payloads
// a metric batch is derived from, and decodes them into raw records.
package datasource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/seenimoa/finchart/internal/config"
	"github.com/seenimoa/finchart/internal/infra"
)

// Fetcher returns the raw payload of one source for a symbol.
type Fetcher interface {
	// Name returns the human-readable name of this source.
	Name() string

	// Fetch returns the payload body for the given symbol.
	Fetch(ctx context.Context, symbol string) ([]byte, error)
}

// --- HTTP ---

// HTTPFetcher reads a payload from an HTTP endpoint built from a URL
// template. The template may contain {symbol} and {apikey}.
type HTTPFetcher struct {
	name     string
	template string
	apiKey   string
	client   *http.Client
	limiter  *infra.RateLimiter
	maxBytes int64
}

// NewHTTPFetcher creates an HTTP fetcher. A nil limiter disables rate
// limiting; a nil client means infra.HTTPClient.
func NewHTTPFetcher(name, template, apiKey string, client *http.Client, limiter *infra.RateLimiter, maxBytes int64) *HTTPFetcher {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &HTTPFetcher{
		name:     name,
		template: template,
		apiKey:   apiKey,
		client:   client,
		limiter:  limiter,
		maxBytes: maxBytes,
	}
}

// Name returns the source name.
func (f *HTTPFetcher) Name() string { return f.name }

// URL expands the template for symbol.
func (f *HTTPFetcher) URL(symbol string) string {
	return strings.NewReplacer(
		"{symbol}", url.QueryEscape(symbol),
		"{apikey}", url.QueryEscape(f.apiKey),
	).Replace(f.template)
}

// Fetch performs the GET request. Status >= 400 is returned as *infra.ErrHTTP.
func (f *HTTPFetcher) Fetch(ctx context.Context, symbol string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: rate limit wait: %w", f.name, err)
	}

	body, _, err := infra.DoGet(ctx, f.client, f.URL(symbol), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.name, err)
	}
	defer body.Close()

	data, err := infra.ReadAllLimited(body, f.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", f.name, err)
	}
	return data, nil
}

// --- Files ---

// FileFetcher reads a payload from a local file. The symbol is ignored.
type FileFetcher struct {
	Path string
}

// Name returns the file path.
func (f FileFetcher) Name() string { return f.Path }

// Fetch reads the file.
func (f FileFetcher) Fetch(ctx context.Context, _ string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}
	return data, nil
}

// --- Construction from config ---

// NewHTTPFetchers builds the income and price fetchers described by cfg.
// Both share one rate limiter.
func NewHTTPFetchers(cfg config.SourcesConfig) (income, prices *HTTPFetcher) {
	client := &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second}

	limiter := infra.NewRateLimiter(cfg.RateLimit, time.Duration(cfg.RateWindowSec)*time.Second)

	income = NewHTTPFetcher("income", cfg.IncomeURL, cfg.APIKey, client, limiter, cfg.MaxBodyBytes)
	prices = NewHTTPFetcher("price", cfg.PriceURL, cfg.APIKey, client, limiter, cfg.MaxBodyBytes)
	return income, prices
}
