package libre

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const defaultUserAgent = "rustlator"

// Client wraps a LibreTranslate-compatible HTTP API. Calls carry no
// timeout of their own and are never retried.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	logger    *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient constructs an API client. Trailing slashes on baseURL are
// dropped so every endpoint is joined the same way.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	cleaned := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if cleaned == "" {
		return nil, errors.New("base URL required")
	}

	client := &Client{
		baseURL:   cleaned,
		userAgent: defaultUserAgent,
		http:      &http.Client{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Language is one entry of the /languages listing.
type Language struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type translateResponse struct {
	TranslatedText *string `json:"translatedText"`
}

// ProbeResult describes the outcome of a liveness check.
type ProbeResult struct {
	Reachable  bool
	StatusCode int
	Status     string
	Err        error
}

// OK reports whether the service answered with a 2xx status.
func (r ProbeResult) OK() bool {
	return r.Reachable && r.StatusCode >= 200 && r.StatusCode < 300
}

// Probe issues a GET against the base URL. Failures are reported in the
// result rather than returned.
func (c *Client) Probe(ctx context.Context) ProbeResult {
	var result ProbeResult

	resp, err := c.send(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		result.Err = err
		return result
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	result.Reachable = true
	result.StatusCode = resp.StatusCode
	result.Status = resp.Status
	return result
}

// Languages lists the languages the service supports.
func (c *Client) Languages(ctx context.Context) ([]Language, error) {
	var langs []Language
	if err := c.call(ctx, http.MethodGet, "/languages", nil, &langs); err != nil {
		return nil, err
	}
	return langs, nil
}

// Translate sends text for translation and returns the service's text as is.
func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	payload := translateRequest{Q: text, Source: source, Target: target}

	var resp translateResponse
	if err := c.call(ctx, http.MethodPost, "/translate", payload, &resp); err != nil {
		return "", err
	}
	if resp.TranslatedText == nil {
		return "", &DecodeError{Op: "translate", Err: errors.New(`response has no "translatedText" field`)}
	}
	return *resp.TranslatedText, nil
}

// call performs a request against path and decodes the JSON response into dest.
func (c *Client) call(ctx context.Context, method, path string, body, dest any) error {
	op := strings.TrimPrefix(path, "/")
	endpoint := c.baseURL + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	resp, err := c.send(ctx, method, endpoint, reader)
	if err != nil {
		return &TransportError{Op: op, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, URL: endpoint, Err: err}
	}

	if resp.StatusCode >= 400 {
		return newAPIError(op, resp, data)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return &DecodeError{Op: op, Err: err}
	}
	return nil
}

// send performs a single HTTP request.
func (c *Client) send(ctx context.Context, method, endpoint string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("sending request", "method", method, "url", endpoint)
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "url", endpoint, "error", err)
		return nil, err
	}
	c.logger.Debug("received response", "url", endpoint, "status", resp.StatusCode)
	return resp, nil
}
