package domain

import (
	"sort"
	"strings"
)

// Reservation is a DHCP static IP-to-hostname binding.
type Reservation struct {
	Hostname string `json:"hostname"`
	IPAddr   string `json:"ipaddr"`
}

// FQDN joins the trimmed reservation hostname with the given domain suffix.
func (r Reservation) FQDN(domain string) string {
	return strings.TrimSpace(r.Hostname) + "." + NormalizeDomain(domain)
}

// Valid reports whether the reservation carries both a hostname and an IP.
func (r Reservation) Valid() bool {
	return strings.TrimSpace(r.Hostname) != "" && strings.TrimSpace(r.IPAddr) != ""
}

// NormalizeDomain strips a single leading dot from a configured domain suffix.
func NormalizeDomain(domain string) string {
	return strings.TrimPrefix(domain, ".")
}

// Mapping maps a fully-qualified domain name to an IP address.
type Mapping map[string]string

// Domains returns the mapping keys in sorted order.
func (m Mapping) Domains() []string {
	domains := make([]string, 0, len(m))
	for d := range m {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains
}

// Session is the authenticated token and cookie pair required by every
// custom DNS request.
type Session struct {
	Token string
	// Cookie is the full Cookie header value replayed on each request.
	Cookie string
}

// Valid reports whether both halves of the session are populated.
func (s Session) Valid() bool {
	return s.Token != "" && s.Cookie != ""
}
