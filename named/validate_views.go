/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

import "net"

var validDNS64PrefixLengths = map[int]bool{
	32: true, 40: true, 48: true, 56: true, 64: true, 96: true,
}

// ValidateView is §4.1 step 6: dns64 entries, rate-limit/
// fetch-quota-params, the recursion/allow-recursion sanity cross-check,
// and the view's own options block. The view-level ACL clauses
// (match-clients, match-destinations, allow-proxy, allow-query[-on],
// allow-query-cache[-on], blackhole) are not checked here.
func ValidateView(sink *ErrorSink, category string, v *ViewConf) {
	for _, d := range v.DNS64 {
		validateDNS64(sink, category, v.Name, d, v.Loc)
	}
	if v.RateLimit != nil && v.RateLimit.ResponsesPerSecond < 0 {
		sink.Add(category, RangeError, v.Loc, "view %q: rate-limit responses-per-second must be >= 0", v.Name)
	}
	if v.FetchQuotaParams != nil {
		validateFetchQuota(sink, category, v.FetchQuotaParams, v.Loc)
	}
	if v.Recursion != nil && !*v.Recursion && v.AllowRecursion != nil && normalizeKeyword(*v.AllowRecursion) != "none" {
		sink.Warn(category, v.Loc, "view %q: recursion no but allow-recursion is not none; allow-recursion has no effect", v.Name)
	}
	ValidateGlobalOptions(sink, category, &v.Options, v.Loc)
}

func validateDNS64(sink *ErrorSink, category, viewName string, d DNS64Conf, loc SourceLoc) {
	ip, ipnet, err := net.ParseCIDR(d.Prefix)
	if err != nil || ip.To4() != nil {
		sink.Add(category, SyntaxError, loc, "view %q: dns64 prefix %q is not a valid IPv6 prefix", viewName, d.Prefix)
		return
	}
	ones, bits := ipnet.Mask.Size()
	if bits != 128 {
		sink.Add(category, SyntaxError, loc, "view %q: dns64 prefix %q is not IPv6", viewName, d.Prefix)
		return
	}
	if !validDNS64PrefixLengths[ones] {
		sink.Add(category, RangeError, loc, "view %q: dns64 prefix length /%d must be one of 32,40,48,56,64,96", viewName, ones)
	}
	// bits [64..71] (the ninth octet, 0-indexed byte 8) must be zero
	// regardless of prefix length, per RFC 6052 / §4.1 step 6.
	raw := ipnet.IP.To16()
	if raw != nil && raw[8] != 0 {
		sink.Add(category, SemanticConflictError, loc, "view %q: dns64 prefix %q has non-zero bits in the reserved [64..71] range", viewName, d.Prefix)
	}
	if d.Suffix != "" {
		sip := net.ParseIP(d.Suffix)
		if sip == nil {
			sink.Add(category, SyntaxError, loc, "view %q: dns64 suffix %q is not a valid address", viewName, d.Suffix)
			return
		}
		s16 := sip.To16()
		lowerBytesStart := ones / 8
		for i := lowerBytesStart; i < 16 && i < 16-2; i++ {
			if s16[i] != 0 {
				sink.Add(category, SemanticConflictError, loc, "view %q: dns64 suffix %q has non-zero lower bytes", viewName, d.Suffix)
				break
			}
		}
	}
}
