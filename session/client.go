// Package session talks to the remote agent session API: starting and
// stopping the voice agent for a room, and probing its status and health.
// Unlike diagnostic logging, these calls are business critical: failures
// propagate to the caller as errors carrying the server's detail message
// when one is available.
package session

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

	"github.com/vocalis/voicekit/diaglog"
)

// DefaultTimeout bounds each agent API call.
const DefaultTimeout = 30 * time.Second

// APIError reports a non-2xx agent API response. Detail carries the JSON
// `detail` field from the response body when the server provided one.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("agent API request failed with status %d", e.StatusCode)
}

// StartRequest is the body of POST /api/start-session.
type StartRequest struct {
	Instructions string `json:"instructions"`
	RoomName     string `json:"room_name"`
}

// Client calls the agent session API. The zero value is not usable; create
// one with New.
type Client struct {
	baseURL    string
	httpClient *http.Client
	diag       *diaglog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithDiagnostics routes session lifecycle events into the diagnostic log,
// so the log panel shows agent start/stop alongside everything else.
func WithDiagnostics(diag *diaglog.Logger) Option {
	return func(c *Client) { c.diag = diag }
}

// New creates a session client for the agent API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("session: agent API base URL is required")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Start asks the agent to join roomName with the given instructions.
func (c *Client) Start(ctx context.Context, instructions, roomName string) error {
	body, err := json.Marshal(StartRequest{Instructions: instructions, RoomName: roomName})
	if err != nil {
		return fmt.Errorf("session: encode start request: %w", err)
	}
	if err := c.post(ctx, "/api/start-session", body); err != nil {
		c.logError("agent session start failed", err, roomName)
		return err
	}
	c.logSuccess("agent session started", roomName)
	return nil
}

// Stop asks the agent to leave its current room.
func (c *Client) Stop(ctx context.Context) error {
	if err := c.post(ctx, "/api/stop-session", nil); err != nil {
		c.logError("agent session stop failed", err, "")
		return err
	}
	c.logSuccess("agent session stopped", "")
	return nil
}

// Status returns the agent's reported session state.
func (c *Client) Status(ctx context.Context) (map[string]any, error) {
	body, err := c.get(ctx, "/api/status")
	if err != nil {
		return nil, err
	}
	var status map[string]any
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("session: decode status: %w", err)
	}
	return status, nil
}

// Health probes the agent server; a nil return means healthy.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.get(ctx, "/health")
	return err
}

func (c *Client) post(ctx context.Context, path string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("session: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	_, err = c.do(req)
	return err
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("session: build request: %w", err)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("session: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Detail: extractDetail(body)}
	}
	return body, nil
}

// extractDetail pulls the optional `detail` field out of an error response
// body. Anything unparseable yields an empty detail, which APIError replaces
// with a generic message.
func extractDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Detail
}

func (c *Client) logSuccess(msg, room string) {
	if c.diag == nil {
		return
	}
	if room != "" {
		c.diag.Success(context.Background(), msg, map[string]any{"room": room})
		return
	}
	c.diag.Success(context.Background(), msg)
}

func (c *Client) logError(msg string, err error, room string) {
	if c.diag == nil {
		return
	}
	details := map[string]any{"error": err.Error()}
	if room != "" {
		details["room"] = room
	}
	c.diag.Error(context.Background(), msg, details)
}
