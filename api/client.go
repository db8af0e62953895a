package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DefaultBaseURL is where the scheduler daemon listens unless overridden.
const DefaultBaseURL = "http://127.0.0.1:8750"

// Client talks to the scheduler daemon's JSON API. A zero timeout is
// deliberate for the polling paths: a hung poll is superseded by the next
// tick rather than raced against a deadline, and cancellation for the
// search path comes in through the request context.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// BaseURL reports the resolved daemon address.
func (c *Client) BaseURL() string { return c.baseURL }

// StatusError is a non-2xx response, kept as a logical failure so callers
// can surface the body text instead of aborting.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Code, e.Body)
}

// Message extracts the server-provided error or message field, falling
// back to the raw body.
func (e *StatusError) Message() string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(e.Body), &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return e.Body
}

func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, "/api/ping", nil)
}

func (c *Client) Status(ctx context.Context) (*StatusSnapshot, error) {
	var snap StatusSnapshot
	if err := c.get(ctx, "/api/status", &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) Logs(ctx context.Context, since float64) (*LogBatch, error) {
	var batch LogBatch
	path := "/api/logs?since=" + strconv.FormatFloat(since, 'f', -1, 64)
	if err := c.get(ctx, path, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

func (c *Client) Search(ctx context.Context, term string) ([]SearchResult, error) {
	var payload struct {
		Results []SearchResult `json:"results"`
	}
	path := "/api/steam/search?q=" + url.QueryEscape(term)
	if err := c.get(ctx, path, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

func (c *Client) AppMeta(ctx context.Context, ids []string) (map[string]AppMeta, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var payload struct {
		Apps map[string]AppMeta `json:"apps"`
	}
	path := "/api/steam/apps?ids=" + url.QueryEscape(strings.Join(ids, ","))
	if err := c.get(ctx, path, &payload); err != nil {
		return nil, err
	}
	return payload.Apps, nil
}

// SaveConfig persists the edit buffer. The daemon echoes the full status
// payload with the saved config inside.
func (c *Client) SaveConfig(ctx context.Context, cfg Config) (*StatusSnapshot, error) {
	var snap StatusSnapshot
	if err := c.post(ctx, "/api/config", cfg, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) Run(ctx context.Context) error {
	return c.post(ctx, "/api/run", nil, nil)
}

func (c *Client) Stop(ctx context.Context) error {
	return c.post(ctx, "/api/stop", nil, nil)
}

// SwitchAccount asks the daemon to rotate to the named account. Only valid
// while the daemon is in the "waiting" state; the returned string is the
// server's confirmation message.
func (c *Client) SwitchAccount(ctx context.Context, account string) (string, error) {
	payload := map[string]string{"account": account}
	var out struct {
		Message string `json:"message"`
	}
	if err := c.post(ctx, "/api/switch-account", payload, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	return c.do(ctx, http.MethodPost, path, payload, out)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
