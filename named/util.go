/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

import (
	"strings"

	"github.com/miekg/dns"
)

func normalizeKeyword(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CanonicalizeName lowercases and FQDN-ifies a zone or owner name, the
// single canonicalization point referenced throughout §3/§4.
func CanonicalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errf(SyntaxError, "empty name")
	}
	if !dns.IsFqdn(name) {
		name = dns.Fqdn(name)
	}
	if _, ok := dns.IsDomainName(name); !ok {
		return "", errf(SyntaxError, "invalid domain name: %q", name)
	}
	return strings.ToLower(name), nil
}

// IsSubdomainOf reports whether child is a (possibly equal) subdomain
// of parent. Both names must already be canonical FQDNs.
func IsSubdomainOf(child, parent string) bool {
	return dns.IsSubDomain(parent, child)
}

// isStrictSubdomainOf reports whether child is a proper subdomain of
// parent (child != parent).
func isStrictSubdomainOf(child, parent string) bool {
	return child != parent && dns.IsSubDomain(parent, child)
}
