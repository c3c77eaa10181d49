// Package coincap talks to the CoinCap v2 REST API.
package coincap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"cryptowallet/internal/domain"
	"cryptowallet/internal/domain/errs"
)

const DefaultBaseURL = "https://api.coincap.io/v2"

type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limiter domain.RateLimiterService
}

// NewClient builds a client. A nil limiter sends requests unthrottled.
func NewClient(client *http.Client, baseURL string, apiKey string, limiter domain.RateLimiterService) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		limiter: limiter,
	}
}

// Get fetches baseURL/endpoint with params and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrRateLimited, err)
		}
	}

	u := fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(endpoint, "/"))
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrNetwork, err)
	}

	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", errs.ErrNetwork, endpoint, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		statusErr := &errs.StatusError{Code: resp.StatusCode, Body: string(body)}
		if resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %w", errs.ErrRateLimited, statusErr)
		}
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: GET %s: %v", errs.ErrDecode, endpoint, err)
	}

	return nil
}
