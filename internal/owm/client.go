// Package owm talks to the OpenWeather One Call 3.0 API and projects its
// payload into the flat record the renderer consumes.
package owm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	appLog "epdweather/internal/log"
)

const maxResponseBody = 1 << 20 // 1 MiB guard

// Client issues the single forecast request of a run. It is deliberately not
// resilient: no retries, no backoff. The external scheduler owns resilience.
type Client struct {
	baseURL string
	apiKey  string
	lat     float64
	lon     float64
	units   string
	http    *http.Client
}

// Option mutates the client during construction.
type Option func(*Client)

// WithBaseURL overrides the One Call endpoint (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient installs a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds the outbound request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// NewClient builds a client for a fixed coordinate pair and unit system.
func NewClient(apiKey string, lat, lon float64, units string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("owm: API key is required")
	}
	c := &Client{
		baseURL: "https://api.openweathermap.org/data/3.0/onecall",
		apiKey:  apiKey,
		lat:     lat,
		lon:     lon,
		units:   units,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Fetch performs one GET against the One Call endpoint and decodes the body.
// Transport errors and non-2xx statuses are logged and returned as-is.
func (c *Client) Fetch(ctx context.Context) (*OneCallResponse, error) {
	reqURL, err := c.buildURL()
	if err != nil {
		return nil, fmt.Errorf("owm: build URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("owm: build request: %w", err)
	}

	appLog.Info("weather fetch start", "url", redactURL(reqURL))

	resp, err := c.http.Do(req)
	if err != nil {
		appLog.Error("weather fetch failed", err, "url", redactURL(reqURL))
		return nil, fmt.Errorf("owm: fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		appLog.Error("weather response read failed", err)
		return nil, fmt.Errorf("owm: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: excerpt(body)}
		appLog.Error("weather fetch rejected", apiErr, "status", resp.StatusCode)
		return nil, apiErr
	}

	var out OneCallResponse
	if err := json.Unmarshal(body, &out); err != nil {
		appLog.Error("weather response decode failed", err)
		return nil, fmt.Errorf("owm: decode body: %w", err)
	}

	appLog.Info("weather data fetched", "status", resp.StatusCode, "bytes", len(body))
	return &out, nil
}

func (c *Client) buildURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("lat", strconv.FormatFloat(c.lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(c.lon, 'f', -1, 64))
	q.Set("units", c.units)
	q.Set("exclude", "minutely,hourly,alerts")
	q.Set("appid", c.apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// redactURL hides the API credential before a URL reaches the log file.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "(unparsable url)"
	}
	q := u.Query()
	if q.Has("appid") {
		q.Set("appid", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func excerpt(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
