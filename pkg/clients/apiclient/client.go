package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// DefaultTimeout applies when Options.Timeout is zero
const DefaultTimeout = 30 * time.Second

// Options configures a Client
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	// Tokens persists the token pair between runs. May be nil.
	Tokens TokenStore
	Logger *zap.Logger
	// Transport overrides http.DefaultTransport as the innermost round tripper
	Transport http.RoundTripper
}

// Client talks to the GymFlex REST API.
// Authenticated calls go through an oauth2.Transport that attaches the bearer token
// and refreshes it when the JWT has expired.
type Client struct {
	baseURL *url.URL
	anon    *http.Client
	authed  *http.Client
	tokens  *tokenSource
	logger  *zap.Logger
}

// NewClient creates a new API client
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q: scheme and host are required", opts.BaseURL)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	transport = newThrottledTransport(transport, opts.RequestsPerSecond)
	transport = &requestIDTransport{base: transport}

	c := &Client{
		baseURL: base,
		anon:    &http.Client{Timeout: timeout, Transport: transport},
		logger:  logger,
	}
	c.tokens = newTokenSource(c, opts.Tokens, logger)
	c.authed = &http.Client{
		Timeout:   timeout,
		Transport: &oauth2.Transport{Source: c.tokens, Base: transport},
	}

	return c, nil
}

// BaseURL returns the API root this client calls
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.ResolveReference(&url.URL{Path: strings.TrimLeft(path, "/")}).String()
}

// do sends a JSON request and decodes a JSON response into out (if non-nil)
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", path, err)
	}

	c.logger.Debug("API call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Message:    errorMessage(data),
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}

	return nil
}
