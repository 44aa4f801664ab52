// Package verify resolves applied records against a DNS server to confirm
// they answer with the expected address.
package verify

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/miekg/dns"

	"github.com/grocky/dhcp-dns-sync/internal/domain"
)

// DefaultTimeout bounds a single DNS query.
const DefaultTimeout = 2 * time.Second

// Exchanger sends a DNS message to a server.
type Exchanger interface {
	ExchangeContext(ctx context.Context, m *dns.Msg, address string) (*dns.Msg, time.Duration, error)
}

// Resolver checks A records against a single DNS server.
type Resolver struct {
	client Exchanger
	server string
	logger *slog.Logger
}

// New creates a resolver for server. A server without a port gets port 53.
func New(server string, timeout time.Duration, logger *slog.Logger) *Resolver {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		client: &dns.Client{Net: "udp", Timeout: timeout},
		server: withDefaultPort(server),
		logger: logger,
	}
}

func withDefaultPort(server string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(server, "53")
}

// Verify queries every domain in expected and returns the ones whose answer
// does not contain the expected IP. Query failures are reported as a
// mismatch with no addresses, so one unreachable name does not hide the rest.
func (r *Resolver) Verify(ctx context.Context, expected domain.Mapping) ([]domain.Mismatch, error) {
	var mismatches []domain.Mismatch
	for _, fqdn := range expected.Domains() {
		if err := ctx.Err(); err != nil {
			return mismatches, err
		}

		want := expected[fqdn]
		got, err := r.lookupA(ctx, fqdn)
		if err != nil {
			r.logger.Debug("dns query failed", "domain", fqdn, "server", r.server, "error", err)
		}
		if !contains(got, want) {
			mismatches = append(mismatches, domain.Mismatch{Domain: fqdn, Expected: want, Got: got})
			continue
		}
		r.logger.Debug("record verified", "domain", fqdn, "ip", want)
	}
	return mismatches, nil
}

func (r *Resolver) lookupA(ctx context.Context, fqdn string) ([]string, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(fqdn), dns.TypeA)
	m.RecursionDesired = true

	resp, _, err := r.client.ExchangeContext(ctx, m, r.server)
	if err != nil {
		return nil, fmt.Errorf("query for %s failed: %w", fqdn, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("query for %s returned %s", fqdn, dns.RcodeToString[resp.Rcode])
	}

	var ips []string
	for _, ans := range resp.Answer {
		if a, ok := ans.(*dns.A); ok {
			ips = append(ips, a.A.String())
		}
	}
	return ips, nil
}

func contains(ips []string, ip string) bool {
	for _, candidate := range ips {
		if candidate == ip {
			return true
		}
	}
	return false
}
