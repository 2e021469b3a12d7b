// Package dirclient is the HTTP client for the directory service, used by the
// host router for discovery and by specialists for heartbeat registration.
package dirclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/a2amesh/agent-mesh/pkg/directory"
)

const logPrefix = "dirclient:client"

// Client talks to a directory service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a directory client. A nil httpClient falls back to a
// default with a 10s timeout; callers bound individual calls via ctx.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// ListAgents fetches the live specialist directory.
func (c *Client) ListAgents(ctx context.Context) (directory.ListOutput, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/list_agents", nil)
	if err != nil {
		return nil, fmt.Errorf("%s - build list request: %w", logPrefix, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s - list_agents request failed: %w", logPrefix, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s - list_agents returned status %d", logPrefix, resp.StatusCode)
	}
	var out directory.ListOutput
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%s - decode list_agents response: %w", logPrefix, err)
	}
	return out, nil
}

// Register creates or renews a specialist registration (heartbeat).
func (c *Client) Register(ctx context.Context, input *directory.RegisterInput) (*directory.RegisterOutput, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("%s - encode register input: %w", logPrefix, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/register", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s - build register request: %w", logPrefix, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s - register request failed: %w", logPrefix, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%s - register returned status %d: %s", logPrefix, resp.StatusCode, string(b))
	}
	var out directory.RegisterOutput
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%s - decode register response: %w", logPrefix, err)
	}
	return &out, nil
}

// Deregister removes a specialist registration.
func (c *Client) Deregister(ctx context.Context, agentID string) error {
	body, err := json.Marshal(directory.DeregisterInput{AgentID: agentID})
	if err != nil {
		return fmt.Errorf("%s - encode deregister input: %w", logPrefix, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/deregister", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s - build deregister request: %w", logPrefix, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s - deregister request failed: %w", logPrefix, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s - deregister returned status %d", logPrefix, resp.StatusCode)
	}
	return nil
}
