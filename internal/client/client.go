// Package client provides an HTTP client for the chatbot server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Client talks to the chatbot server's REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the given base URL. If baseURL is empty,
// uses the CHATBOT_SERVER_URL env var or defaults to localhost:8000.
// Timeout can be configured via CHATBOT_CLIENT_TIMEOUT (default 5m,
// generation on CPU-only hosts can be slow).
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("CHATBOT_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	timeout := 5 * time.Minute
	if t := os.Getenv("CHATBOT_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ChatResult is the server's answer to one query.
type ChatResult struct {
	Answer     string `json:"answer"`
	Intent     string `json:"intent"`
	ChunksUsed int    `json:"chunks_used"`
	SessionID  string `json:"session_id"`
}

type chatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

type clearRequest struct {
	SessionID string `json:"session_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Chat sends one query for the given session and returns the answer.
func (c *Client) Chat(ctx context.Context, query, sessionID string) (ChatResult, error) {
	var result ChatResult
	err := c.post(ctx, "/v1/chat", chatRequest{Query: query, SessionID: sessionID}, &result)
	return result, err
}

// ClearHistory drops the stored conversation for a session.
func (c *Client) ClearHistory(ctx context.Context, sessionID string) error {
	return c.post(ctx, "/v1/chat/clear", clearRequest{SessionID: sessionID}, nil)
}

// Health checks the server's liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: %s", resp.Status)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr errorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server error: %s - %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("server error: %s", resp.Status)
	}

	if result != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
