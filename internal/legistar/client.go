package legistar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Client performs the HTTP requests of the Legistar sources. Every request
// carries the configured User-Agent and is bounded by timeout.
type Client struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

func NewClient(httpClient *http.Client, userAgent string, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

// WithTimeout returns a copy of c whose requests are bounded by timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	return NewClient(c.httpClient, c.userAgent, timeout)
}

func (c *Client) fetch(ctx context.Context, method, url, accept string) ([]byte, int, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, method, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if method == http.MethodHead {
		return nil, resp.StatusCode, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, resp.StatusCode, nil
}

// Get returns the body of a successful GET request.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	data, _, err := c.fetch(ctx, http.MethodGet, url, "")
	return data, err
}

// GetJSON decodes the JSON body at url into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	data, _, err := c.fetch(ctx, http.MethodGet, url, "application/json")
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode JSON from %s: %w", url, err)
	}
	return nil
}

// Document parses the HTML page at url.
func (c *Client) Document(ctx context.Context, url string) (*goquery.Document, error) {
	data, _, err := c.fetch(ctx, http.MethodGet, url, "text/html")
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", url, err)
	}
	return doc, nil
}

// Exists reports whether a HEAD request for url answers 200. Transport
// errors count as absence.
func (c *Client) Exists(ctx context.Context, url string) bool {
	_, status, err := c.fetch(ctx, http.MethodHead, url, "")
	if err != nil {
		slog.Debug("Existence check failed", "url", url, "error", err)
		return false
	}
	return status == http.StatusOK
}
