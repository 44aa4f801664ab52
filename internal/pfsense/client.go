// Package pfsense reads DHCP static mappings from the pfSense REST API.
package pfsense

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/grocky/dhcp-dns-sync/internal/domain"
	"github.com/grocky/dhcp-dns-sync/internal/transport"
)

const (
	StaticMappingPath = "/api/v1/services/dhcpd/static_mapping"
	DefaultInterface  = "lan"

	// SourceName identifies pfSense in fetch errors.
	SourceName = "pfsense"
)

// Config holds client configuration.
type Config struct {
	BaseURL     string
	ClientID    string
	ClientToken string
	// Interface scopes the static mappings to a single DHCP interface.
	Interface string
	// Domain is appended to every reservation hostname.
	Domain   string
	Timeout  time.Duration
	Insecure bool
}

// Client is a pfSense API client.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	clientID    string
	clientToken string
	iface       string
	domain      string
	logger      *slog.Logger
}

// New creates a new pfSense API client.
func New(cfg Config, logger *slog.Logger) *Client {
	iface := cfg.Interface
	if iface == "" {
		iface = DefaultInterface
	}

	return &Client{
		httpClient:  transport.NewHTTPClient(cfg.Timeout, cfg.Insecure),
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		clientID:    cfg.ClientID,
		clientToken: cfg.ClientToken,
		iface:       iface,
		domain:      domain.NormalizeDomain(cfg.Domain),
		logger:      logger,
	}
}

// FetchReservations returns the static DHCP reservations of the configured
// interface keyed by FQDN. Reservations without a hostname or IP are skipped.
func (c *Client) FetchReservations(ctx context.Context) (domain.Mapping, error) {
	reservations, err := c.staticMappings(ctx)
	if err != nil {
		return nil, err
	}

	mapping := make(domain.Mapping, len(reservations))
	for _, r := range reservations {
		if !r.Valid() {
			c.logger.Debug("skipping incomplete reservation",
				"hostname", r.Hostname,
				"ip", r.IPAddr,
			)
			continue
		}
		mapping[r.FQDN(c.domain)] = r.IPAddr
	}

	c.logger.Debug("fetched dhcp reservations",
		"interface", c.iface,
		"total", len(reservations),
		"usable", len(mapping),
	)
	return mapping, nil
}

func (c *Client) staticMappings(ctx context.Context) ([]domain.Reservation, error) {
	query := url.Values{}
	query.Set("interface", c.iface)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+StaticMappingPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, &domain.FetchError{Source: SourceName, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Authorization", c.clientID+" "+c.clientToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", transport.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Source: SourceName, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.FetchError{Source: SourceName, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.FetchError{Source: SourceName, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	data, err := transport.UnwrapData(body)
	if err != nil {
		return nil, &domain.FetchError{Source: SourceName, StatusCode: resp.StatusCode, Err: err}
	}

	var reservations []domain.Reservation
	if err := json.Unmarshal(data, &reservations); err != nil {
		return nil, &domain.FetchError{Source: SourceName, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to parse reservations: %w", err)}
	}
	return reservations, nil
}
