// Package capi is a minimal client for the Meta Conversions API, covering
// the single server-side events call the gateway makes.
package capi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client sends conversion events to one datasource.
type Client interface {
	SendEvent(ctx context.Context, event Event) (*EventResponse, error)
}

// ClientConfig configures a Conversions API client.
type ClientConfig struct {
	BaseURL      string
	AccessToken  string
	DatasourceID string
	Timeout      time.Duration
}

type capiClient struct {
	baseURL      string
	accessToken  string
	datasourceID string
	client       *http.Client
}

func NewClient(cfg ClientConfig) Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &capiClient{
		baseURL:      cfg.BaseURL,
		accessToken:  cfg.AccessToken,
		datasourceID: cfg.DatasourceID,
		client:       &http.Client{Timeout: timeout},
	}
}

// SendEvent posts a single event to the datasource's events edge. The call
// is best-effort: no retries, one bounded-timeout request.
func (c *capiClient) SendEvent(ctx context.Context, event Event) (*EventResponse, error) {
	request := EventRequest{Data: []Event{event}}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/events?access_token=%s",
		c.baseURL, url.PathEscape(c.datasourceID), url.QueryEscape(c.accessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send event request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr APIError
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("events request failed with status %d: %s (code %d, trace %s)",
				resp.StatusCode, apiErr.Error.Message, apiErr.Error.Code, apiErr.Error.FBTraceID)
		}
		return nil, fmt.Errorf("events request failed with status %d", resp.StatusCode)
	}

	var result EventResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}
