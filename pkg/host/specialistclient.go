package host

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const specialistLogPrefix = "host:specialistclient"

// SpecialistResult is the raw answer a specialist returns from its execute
// endpoint. Fields beyond Result are passed through untyped; their shape is
// the specialist's business.
type SpecialistResult struct {
	Result            string      `json:"result"`
	Sources           interface{} `json:"sources,omitempty"`
	ChosenTemperature interface{} `json:"chosen_temperature,omitempty"`
	Similarity        interface{} `json:"similarity,omitempty"`
}

// UpstreamError reports a specialist responding with a non-2xx status.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s - specialist returned status %d: %s", specialistLogPrefix, e.Status, e.Body)
}

// SpecialistClient talks to specialist agents: health probes before
// delegation and the authenticated execute call itself.
type SpecialistClient struct {
	http *http.Client
}

// NewSpecialistClient creates a specialist client. Timeouts are applied per
// call through ctx, so the underlying client carries none.
func NewSpecialistClient(httpClient *http.Client) *SpecialistClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &SpecialistClient{http: httpClient}
}

// Probe checks a specialist's health endpoint. Any transport error or non-2xx
// status means the specialist is unavailable.
func (c *SpecialistClient) Probe(ctx context.Context, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("%s - build probe request: %w", specialistLogPrefix, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s - health probe failed: %w", specialistLogPrefix, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s - health probe returned status %d", specialistLogPrefix, resp.StatusCode)
	}
	return nil
}

// Execute posts the envelope to the specialist with bearer authentication and
// decodes its result. Non-2xx responses surface as *UpstreamError with the
// upstream status and body preserved.
func (c *SpecialistClient) Execute(ctx context.Context, executeURL, secretToken string, env *Envelope) (*SpecialistResult, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("%s - encode envelope: %w", specialistLogPrefix, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, executeURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s - build execute request: %w", specialistLogPrefix, err)
	}
	req.Header.Set("Authorization", "Bearer "+secretToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s - execute request failed: %w", specialistLogPrefix, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(b)}
	}

	var result SpecialistResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%s - decode specialist response: %w", specialistLogPrefix, err)
	}
	return &result, nil
}
