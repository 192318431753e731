// Package api implements the REST client for the Kindra platform endpoints
// the Community Hub consumes. The server is the single source of truth; this
// client only observes and submits, it never caches.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kindralabs/khub/internal/logging"
	"github.com/kindralabs/khub/internal/models"
)

const defaultTimeout = 15 * time.Second

// TokenSource supplies the session token attached to each request.
type TokenSource func() (string, error)

// StaticToken returns a TokenSource that always yields the given token.
func StaticToken(token string) TokenSource {
	return func() (string, error) { return token, nil }
}

// Config contains client construction options.
type Config struct {
	// BaseURL is the API root, e.g. https://kindra.example.org/api.
	BaseURL string

	// Token supplies the session token. Optional; unauthenticated requests
	// are sent without an Authorization header.
	Token TokenSource

	// Timeout bounds each request. Defaults to 15s.
	Timeout time.Duration

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to the platform REST API.
type Client struct {
	baseURL string
	token   TokenSource
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient creates a Client for the given configuration.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("api base URL required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: base,
		token:   cfg.Token,
		http:    httpClient,
		logger:  logging.Component("api-client"),
	}, nil
}

// StatusError reports a non-2xx API response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api: unexpected status %d", e.Status)
	}
	return fmt.Sprintf("api: unexpected status %d: %s", e.Status, e.Body)
}

// SendMessageRequest is the payload for posting a chat message.
type SendMessageRequest struct {
	Content   string `json:"content"`
	Recipient string `json:"recipient,omitempty"`
	IsPrivate bool   `json:"is_private,omitempty"`
}

// ListMessages pulls the full chat snapshot. The endpoint has no incremental
// query; every poll returns the entire visible list.
func (c *Client) ListMessages(ctx context.Context) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	if err := c.getList(ctx, "/chat/messages/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendMessage posts a new chat message and returns the created entry.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (models.ChatMessage, error) {
	var created models.ChatMessage
	if err := c.do(ctx, http.MethodPost, "/chat/messages/", req, &created); err != nil {
		return models.ChatMessage{}, err
	}
	return created, nil
}

// DeleteMessage removes a chat message by id.
func (c *Client) DeleteMessage(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/chat/messages/%d/", id), nil, nil)
}

// ListRecipients returns the users addressable by a private message. Entries
// without an id are dropped.
func (c *Client) ListRecipients(ctx context.Context) ([]models.UserRef, error) {
	var raw []models.UserRef
	if err := c.getList(ctx, "/chat/messages/users/", &raw); err != nil {
		return nil, err
	}
	users := raw[:0]
	for _, u := range raw {
		if strings.TrimSpace(u.ID) == "" {
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

// ListNotifications pulls the full notification snapshot with categories
// folded onto the closed set.
func (c *Client) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	var raw []models.Notification
	if err := c.getList(ctx, "/accounts/notifications/", &raw); err != nil {
		return nil, err
	}
	for i := range raw {
		raw[i] = raw[i].Normalize()
	}
	return raw, nil
}

// MarkNotificationsRead marks the given notification ids as read server-side.
func (c *Client) MarkNotificationsRead(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	payload := struct {
		NotificationIDs []string `json:"notification_ids"`
	}{NotificationIDs: ids}
	return c.do(ctx, http.MethodPost, "/accounts/notifications/", payload, nil)
}

// getList decodes an endpoint that returns either a bare array or a
// paginated {"results": [...]} envelope.
func (c *Client) getList(ctx context.Context, path string, out any) error {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, out)
	}

	var envelope struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return fmt.Errorf("decode list envelope: %w", err)
	}
	if len(envelope.Results) == 0 {
		return nil
	}
	return json.Unmarshal(envelope.Results, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		token, err := c.token()
		if err != nil {
			return err
		}
		if token != "" {
			req.Header.Set("Authorization", "Token "+token)
		}
	}

	c.logger.Trace().
		Str("method", method).
		Str("path", path).
		Interface("headers", logging.RedactHeaders(req.Header)).
		Msg("sending request")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request complete")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Status: resp.StatusCode, Body: logging.Redact(strings.TrimSpace(string(snippet)))}
	}

	if out == nil {
		return nil
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
