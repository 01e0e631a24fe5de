package pulumiapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RemoteCallError is returned for every non-2xx response except 409.
type RemoteCallError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("failed to call %s (%d): %s", e.Path, e.StatusCode, e.Body)
}

// authTransport attaches credentials and JSON headers to every request.
type authTransport struct {
	scheme string
	token  string
	base   http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", t.scheme+" "+t.token)
	return t.base.RoundTrip(req)
}

type Client struct {
	baseURL    string
	org        string
	stack      string
	httpClient *http.Client
	log        *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the pooled default client. Its transport is still
// wrapped with auth and tracing.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

func WithLogger(lg *slog.Logger) Option {
	return func(c *Client) {
		if lg != nil {
			c.log = lg
		}
	}
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.SetDefaults()
	if _, err := url.ParseRequestURI(cfg.BackendURL); err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	if cfg.AccessToken == "" {
		return nil, errors.New("access token is required")
	}

	pooled := cleanhttp.DefaultPooledClient()
	pooled.Timeout = cfg.Timeout
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BackendURL, "/"),
		org:        cfg.Org,
		stack:      cfg.Stack,
		httpClient: pooled,
		log:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}

	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped := *c.httpClient
	wrapped.Transport = otelhttp.NewTransport(&authTransport{
		scheme: cfg.AuthScheme,
		token:  cfg.AccessToken,
		base:   base,
	})
	c.httpClient = &wrapped

	return c, nil
}

func (c *Client) Org() string {
	return c.org
}

func (c *Client) Stack() string {
	return c.stack
}

func (c *Client) endpoint(path string, query url.Values) string {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint
}

// Call performs one request. found is false, with a nil error, when the
// service answers 409: the data is not available yet.
func (c *Client) Call(
	ctx context.Context,
	method, path string,
	query url.Values,
	body, out any,
) (bool, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.log.DebugContext(ctx, "pulumi api call",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
	)

	if resp.StatusCode == http.StatusConflict {
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, nil
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var text string
		if data, readErr := io.ReadAll(resp.Body); readErr == nil {
			text = strings.TrimSpace(string(data))
		}
		return false, &RemoteCallError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       text,
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return true, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to decode response of %s: %w", path, err)
	}
	return true, nil
}
