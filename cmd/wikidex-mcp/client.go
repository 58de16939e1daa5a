package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// apiResponse mirrors the wikidex API envelope.
type apiResponse struct {
	Success     bool            `json:"success"`
	Data        json.RawMessage `json:"data"`
	CacheStatus string          `json:"cache_status"`
	FetchedAt   *time.Time      `json:"fetched_at"`
	Error       *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// client calls the local wikidex API.
type client struct {
	http   *http.Client
	apiURL string
	apiKey string
}

func newClient(apiURL, apiKey string) *client {
	// Cache misses render in a browser; leave room for the render timeout.
	return &client{
		http:   &http.Client{Timeout: 120 * time.Second},
		apiURL: apiURL,
		apiKey: apiKey,
	}
}

// do sends a request and decodes the envelope. A non-success envelope is
// returned as an error carrying its code.
func (c *client) do(ctx context.Context, method, path string, query url.Values) (*apiResponse, error) {
	u := c.apiURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var out apiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("parse response (HTTP %d): %w", resp.StatusCode, err)
	}
	if !out.Success {
		if out.Error != nil {
			return nil, fmt.Errorf("[%s] %s", out.Error.Code, out.Error.Message)
		}
		return nil, fmt.Errorf("request failed with HTTP %d", resp.StatusCode)
	}
	return &out, nil
}
