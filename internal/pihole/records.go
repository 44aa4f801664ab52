package pihole

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/grocky/dhcp-dns-sync/internal/domain"
	"github.com/grocky/dhcp-dns-sync/internal/transport"
)

// SourceName identifies Pi-hole in fetch errors.
const SourceName = "pihole"

// MutationResponse is the body returned by add and delete requests.
type MutationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// FetchRecords returns the custom DNS records currently held by Pi-hole.
func (c *Client) FetchRecords(ctx context.Context, sess domain.Session) (domain.Mapping, error) {
	form := url.Values{}
	form.Set("action", "get")
	form.Set("token", sess.Token)

	resp, err := c.postForm(ctx, CustomDNSPath, form, sess.Cookie)
	if err != nil {
		return nil, &domain.FetchError{Source: SourceName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.FetchError{Source: SourceName, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.FetchError{Source: SourceName, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	mapping, err := c.parseRecords(body)
	if err != nil {
		return nil, &domain.FetchError{Source: SourceName, StatusCode: resp.StatusCode, Err: err}
	}
	return mapping, nil
}

func (c *Client) parseRecords(body []byte) (domain.Mapping, error) {
	data, err := transport.UnwrapData(body)
	if err != nil {
		return nil, err
	}

	var pairs [][]string
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}

	mapping := make(domain.Mapping, len(pairs))
	for _, pair := range pairs {
		if len(pair) < 2 {
			c.logger.Debug("skipping malformed record", "record", pair)
			continue
		}
		mapping[pair[0]] = pair[1]
	}
	return mapping, nil
}

// AddRecord creates a custom DNS record. The returned status is the HTTP
// status of the response; an error is only returned for transport failures.
func (c *Client) AddRecord(ctx context.Context, sess domain.Session, fqdn, ip string) (int, error) {
	return c.mutate(ctx, sess, "add", "+", fqdn, ip)
}

// DeleteRecord removes the custom DNS record matching fqdn and ip.
func (c *Client) DeleteRecord(ctx context.Context, sess domain.Session, fqdn, ip string) (int, error) {
	return c.mutate(ctx, sess, "delete", "-", fqdn, ip)
}

func (c *Client) mutate(ctx context.Context, sess domain.Session, action, marker, fqdn, ip string) (int, error) {
	form := url.Values{}
	form.Set("action", action)
	form.Set("ip", ip)
	form.Set("domain", fqdn)
	form.Set("token", sess.Token)

	resp, err := c.postForm(ctx, CustomDNSPath, form, sess.Cookie)
	if err != nil {
		c.logger.Error(fmt.Sprintf("%s %s -> %s", marker, ip, fqdn), "error", err)
		return 0, err
	}
	defer resp.Body.Close()

	c.logger.Info(fmt.Sprintf("%s %s -> %s", marker, ip, fqdn), "status", resp.StatusCode)

	var result MutationResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && !result.Success {
		c.logger.Warn("pihole rejected change",
			"action", action,
			"domain", fqdn,
			"ip", ip,
			"message", result.Message,
		)
	}

	return resp.StatusCode, nil
}
