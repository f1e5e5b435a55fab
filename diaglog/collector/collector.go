// Package collector forwards log entries to an external collection endpoint
// over HTTP. It is a write-only sink: read operations report absence of
// capability rather than failing, and every store is a single best-effort
// POST with no retry, queueing, or backoff. Losing a diagnostic entry is
// acceptable; blocking or duplicating application logging calls is not.
package collector

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

	"github.com/google/uuid"

	"github.com/vocalis/voicekit/diaglog"
)

// DefaultTimeout bounds each forwarding attempt.
const DefaultTimeout = 10 * time.Second

// defaultService identifies this process in the collector's ingest payload.
const defaultService = "client"

// StatusError reports a non-2xx response from the collector endpoint.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("collector: unexpected status %d", e.StatusCode)
}

// Client is a diaglog.Sink that forwards entries to <baseURL>/log.
type Client struct {
	baseURL    string
	service    string
	httpClient *http.Client
}

var _ diaglog.Sink = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Intended for tests and
// callers that need custom transports.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithService overrides the service name sent with each payload.
func WithService(service string) Option {
	return func(c *Client) { c.service = service }
}

// New creates a collector client for baseURL. The URL is fixed for the life
// of the client; an empty URL is a configuration error (callers disable the
// collector by never constructing one).
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("collector: base URL is required")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		service:    defaultService,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// payload is the collector's ingest format. Details are omitted entirely,
// not sent as null, when the entry carries none.
type payload struct {
	Service string `json:"service"`
	Level   string `json:"level"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Store forwards one entry. On success the returned entry carries a locally
// generated ID, since the collector does not echo one back.
func (c *Client) Store(ctx context.Context, e diaglog.Entry) (diaglog.Entry, error) {
	body, err := json.Marshal(payload{
		Service: c.service,
		Level:   string(e.Category),
		Message: e.Message,
		Details: e.Details,
	})
	if err != nil {
		return diaglog.Entry{}, fmt.Errorf("collector: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/log", bytes.NewReader(body))
	if err != nil {
		return diaglog.Entry{}, fmt.Errorf("collector: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return diaglog.Entry{}, fmt.Errorf("collector: post: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return diaglog.Entry{}, &StatusError{StatusCode: resp.StatusCode}
	}

	e.ID = uuid.NewString()
	return e, nil
}

// All is unsupported on the write-only collector and returns no entries.
func (c *Client) All(context.Context) ([]diaglog.Entry, error) { return nil, nil }

// ByCategory is unsupported on the write-only collector and returns no
// entries.
func (c *Client) ByCategory(context.Context, diaglog.Category) ([]diaglog.Entry, error) {
	return nil, nil
}

// Clear is a no-op on the write-only collector.
func (c *Client) Clear(context.Context) error { return nil }

// Count always returns zero on the write-only collector.
func (c *Client) Count(context.Context) (int, error) { return 0, nil }
