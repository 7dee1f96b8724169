// Package botapi is the thin HTTP client for the bot-hosting API. Every call
// is a single attempt with a bearer credential; callers decide how to degrade
// when a call fails.
package botapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/guildpulse/dashboard/internal/metrics"
)

const callTimeout = 10 * time.Second

// UpstreamError reports a failed bot API call: the endpoint, the HTTP status
// (0 on transport failure), and the underlying cause.
type UpstreamError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("bot api %s returned status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("bot api %s failed: %v", e.Endpoint, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Client calls the bot API with a fixed base URL and bearer key.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: callTimeout},
	}
}

// Call performs one request against the bot API and returns the raw response
// body. body is forwarded as-is when non-nil. Non-2xx responses and transport
// failures produce an *UpstreamError; there are no retries.
func (c *Client) Call(ctx context.Context, method, path string, body []byte) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &UpstreamError{Endpoint: path, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpc.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(path, "error").Inc()
		slog.Error("Bot API request failed", "endpoint", path, "error", err)
		return nil, &UpstreamError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	metrics.UpstreamRequestsTotal.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("Bot API response read failed", "endpoint", path, "error", err)
		return nil, &UpstreamError{Endpoint: path, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Error("Bot API returned error status", "endpoint", path, "status", resp.StatusCode)
		return nil, &UpstreamError{Endpoint: path, Status: resp.StatusCode}
	}

	return raw, nil
}

// BotGuildIDs fetches the set of guild IDs the bot currently resides in.
func (c *Client) BotGuildIDs(ctx context.Context) (map[string]struct{}, error) {
	raw, err := c.Call(ctx, http.MethodGet, "/api/bot/guilds", nil)
	if err != nil {
		return nil, err
	}

	var guilds []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &guilds); err != nil {
		return nil, &UpstreamError{Endpoint: "/api/bot/guilds", Err: fmt.Errorf("failed to decode guild list: %w", err)}
	}

	ids := make(map[string]struct{}, len(guilds))
	for _, g := range guilds {
		ids[g.ID] = struct{}{}
	}
	return ids, nil
}
