package engine

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxBodyBytes caps how much of an upstream response is read.
const maxBodyBytes = 4 * 1024 * 1024

// newFetchClient creates an HTTP client with proper settings for web scraping.
func newFetchClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     60 * time.Second,
			TLSHandshakeTimeout: 15 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}
			return nil
		},
	}
}

// Client performs upstream GETs with the configured User-Agent and per-call timeout.
// It is safe for concurrent use.
type Client struct {
	cfg Config
}

// NewClient returns a Client for c, filling unset fields with defaults.
func NewClient(c Config) *Client {
	return &Client{cfg: c.withDefaults()}
}

// Config returns the effective configuration.
func (c *Client) Config() Config { return c.cfg }

// Get fetches rawURL and returns the body and status code.
// A non-2xx status is not an error; callers decide what it means.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, int, error) {
	metrics.FetchRequests.Add(1)

	h := c.headers(headers)
	if c.cfg.BrowserClient != nil {
		data, _, status, err := c.cfg.BrowserClient.Do(http.MethodGet, rawURL, h, nil)
		if err != nil {
			metrics.FetchErrors.Add(1)
			return nil, 0, fmt.Errorf("browser get: %w", err)
		}
		return data, status, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	for k, v := range h {
		req.Header.Set(k, v)
	}

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		metrics.FetchErrors.Add(1)
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := readResponseBody(resp)
	if err != nil {
		metrics.FetchErrors.Add(1)
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return data, resp.StatusCode, nil
}

// headers merges per-call headers over the browser defaults.
func (c *Client) headers(extra map[string]string) map[string]string {
	h := map[string]string{
		"accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"accept-language": "en-US,en;q=0.9",
		"accept-encoding": "gzip",
		"user-agent":      c.cfg.UserAgent,
	}
	for k, v := range extra {
		h[k] = v
	}
	return h
}

// readResponseBody reads the response body, handling gzip decompression if needed.
func readResponseBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(io.LimitReader(r, maxBodyBytes))
}
