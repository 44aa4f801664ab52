// Package reconcile computes and applies the changes that bring the DNS
// record store in line with the DHCP reservations.
package reconcile

import "github.com/grocky/dhcp-dns-sync/internal/domain"

// Diff returns the actions that make target agree with source. Domains are
// visited in sorted order, so the result is deterministic. Domains present
// only in target are never touched.
func Diff(source, target domain.Mapping) []domain.Action {
	var actions []domain.Action
	for _, fqdn := range source.Domains() {
		ip := source[fqdn]

		current, ok := target[fqdn]
		switch {
		case !ok:
			actions = append(actions, domain.Action{
				Kind:   domain.ActionAdd,
				Domain: fqdn,
				IP:     ip,
			})
		case current != ip:
			actions = append(actions, domain.Action{
				Kind:       domain.ActionUpdate,
				Domain:     fqdn,
				IP:         ip,
				PreviousIP: current,
			})
		}
	}
	return actions
}
