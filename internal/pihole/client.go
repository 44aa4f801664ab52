// Package pihole talks to the Pi-hole admin interface: password login and
// the custom DNS record endpoint.
package pihole

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/grocky/dhcp-dns-sync/internal/transport"
)

const (
	LoginPath     = "/admin/index.php"
	CustomDNSPath = "/admin/scripts/pi-hole/php/customdns.php"
)

// Config holds client configuration.
type Config struct {
	BaseURL  string
	Password string
	Timeout  time.Duration
	// Insecure disables TLS certificate verification.
	Insecure bool
}

// Client is a Pi-hole admin API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	password   string
	logger     *slog.Logger
}

// New creates a new Pi-hole client.
func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: transport.NewHTTPClient(cfg.Timeout, cfg.Insecure),
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		password:   cfg.Password,
		logger:     logger,
	}
}

// postForm sends a form-encoded POST to path. The session cookie is attached
// when cookie is non-empty.
func (c *Client) postForm(ctx context.Context, path string, form url.Values, cookie string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", transport.UserAgent)
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}
