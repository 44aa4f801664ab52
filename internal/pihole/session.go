package pihole

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/grocky/dhcp-dns-sync/internal/domain"
)

// Authenticate logs in with the configured password and returns the token
// and cookie pair required by the custom DNS endpoint.
func (c *Client) Authenticate(ctx context.Context) (domain.Session, error) {
	form := url.Values{}
	form.Set("pw", c.password)

	resp, err := c.postForm(ctx, LoginPath+"?login", form, "")
	if err != nil {
		return domain.Session{}, &domain.AuthError{Reason: "login request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Session{}, &domain.AuthError{Reason: "unexpected status", StatusCode: resp.StatusCode}
	}

	cookie := cookieHeader(resp.Cookies())
	if cookie == "" {
		return domain.Session{}, &domain.AuthError{Reason: "no session cookie in response"}
	}

	token, err := ExtractElementText(resp.Body, TokenElementID)
	if err != nil {
		return domain.Session{}, &domain.AuthError{Reason: "token not found", Err: err}
	}
	if token == "" {
		return domain.Session{}, &domain.AuthError{Reason: "token element is empty"}
	}

	c.logger.Debug("authenticated with pihole", "cookies", strings.Count(cookie, ";")+1)
	return domain.Session{Token: token, Cookie: cookie}, nil
}

// cookieHeader joins every cookie into a single Cookie header value.
func cookieHeader(cookies []*http.Cookie) string {
	parts := make([]string, 0, len(cookies))
	for _, ck := range cookies {
		if ck.Name == "" {
			continue
		}
		parts = append(parts, ck.Name+"="+ck.Value)
	}
	return strings.Join(parts, "; ")
}
