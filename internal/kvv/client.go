// Package kvv is a client for the KVV EFA stop finder and departure monitor.
//
// The client is stateless: it issues one GET per call, validates the response
// and maps it into models types. It never caches or retries.
package kvv

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultStopFinderURL = "https://www.kvv.de/tunnelEfaDirect.php"
	DefaultDepartureURL  = "https://projekte.kvv-efa.de/sl3-alone/XSLT_DM_REQUEST"
	DefaultTimeout       = 15 * time.Second

	coordFormat  = "WGS84[dd.ddddd]"
	previewBytes = 150
)

// Client talks to the KVV EFA endpoints
type Client struct {
	httpClient    *http.Client
	stopFinderURL string
	departureURL  string
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its Timeout is left untouched.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithStopFinderURL overrides the station search endpoint
func WithStopFinderURL(u string) Option {
	return func(c *Client) { c.stopFinderURL = u }
}

// WithDepartureURL overrides the departure monitor endpoint
func WithDepartureURL(u string) Option {
	return func(c *Client) { c.departureURL = u }
}

// NewClient creates a client whose requests time out after timeout
func NewClient(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		httpClient:    &http.Client{Timeout: timeout},
		stopFinderURL: DefaultStopFinderURL,
		departureURL:  DefaultDepartureURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getJSON performs the GET and decodes the body into out
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: building request: %w", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: requesting %s: %w", ErrTransport, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP %d from %s", ErrProtocol, resp.StatusCode, endpoint)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %w", ErrTransport, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "json") {
		return fmt.Errorf("%w: unexpected content type %q from %s: %s",
			ErrProtocol, contentType, endpoint, preview(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: parsing response: %w", ErrParse, err)
	}
	return nil
}

func preview(body []byte) string {
	if len(body) > previewBytes {
		body = body[:previewBytes]
	}
	return string(body)
}

// departureParams builds the departure monitor query shared by departures and serving lines
func departureParams(stationID string, limit int) url.Values {
	params := url.Values{}
	params.Set("outputFormat", "JSON")
	params.Set("coordOutputFormat", coordFormat)
	params.Set("depType", "stopEvents")
	params.Set("locationServerActive", "1")
	params.Set("mode", "direct")
	params.Set("name_dm", stationID)
	params.Set("type_dm", "stop")
	params.Set("useOnlyStops", "1")
	params.Set("useRealtime", "1")
	params.Set("limit", fmt.Sprintf("%d", limit))
	return params
}
