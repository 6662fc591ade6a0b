/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

import "time"

// ValidateGlobalOptions is §4.1 step 1: range/interval and syntactic
// checks shared by the global and per-view options blocks (Validate
// calls it for cfg.Options, ValidateView for each view's Options).
func ValidateGlobalOptions(sink *ErrorSink, category string, o *GlobalOptions, loc SourceLoc) {
	if o.MaxRSAExponent != 0 && (o.MaxRSAExponent < 35 || o.MaxRSAExponent > 4096) {
		sink.Add(category, RangeError, loc, "max-rsa-exponent %d must be 0 or in [35,4096]", o.MaxRSAExponent)
	}
	if o.NTALifetime != 0 && o.NTALifetime > 7*24*time.Hour {
		sink.Add(category, RangeError, loc, "nta-lifetime %s exceeds the 7-day ceiling", o.NTALifetime)
	}
	if o.LmdbMapSize != 0 && (o.LmdbMapSize < 1<<20 || o.LmdbMapSize > 1<<40) {
		sink.Add(category, RangeError, loc, "lmdb-mapsize %d out of range [1MiB,1TiB]", o.LmdbMapSize)
	}
	if o.ServerID != "" && !isPrintableASCII(o.ServerID) {
		sink.Add(category, SyntaxError, loc, "server-id %q is not a valid identifier", o.ServerID)
	}
	if o.EmptyServer != "" && !isPrintableASCII(o.EmptyServer) {
		sink.Add(category, SyntaxError, loc, "empty-server %q is not a valid identifier", o.EmptyServer)
	}
	for _, z := range o.DisableEmptyZone {
		if _, err := CanonicalizeName(z); err != nil {
			sink.Add(category, SyntaxError, loc, "disable-empty-zone %q: %v", z, err)
		}
	}
	for _, l := range o.Listeners {
		if l.Port < 0 || l.Port > 65535 {
			sink.Add(category, RangeError, l.Loc, "listen-on port %d out of range", l.Port)
		}
	}
	if o.FetchQuotaParams != nil {
		validateFetchQuota(sink, category, o.FetchQuotaParams, loc)
	}
	for role, policy := range o.CheckNames {
		if _, ok := ParseCheckNamesPolicy(policy); !ok {
			sink.Add(category, SyntaxError, loc, "check-names %s %q is not ignore|warn|fail", role, policy)
		}
	}
}

func validateFetchQuota(sink *ErrorSink, category string, f *FetchQuotaParams, loc SourceLoc) {
	for name, v := range map[string]float64{"low": f.Low, "high": f.High, "discount": f.Discount} {
		if v < 0 || v > 1 {
			sink.Add(category, RangeError, loc, "fetch-quota-params %s=%v must be in [0,1]", name, v)
		}
	}
}

func isPrintableASCII(s string) bool {
	for _, r := range s {
		if r < 0x20 || r > 0x7e {
			return false
		}
	}
	return true
}

// LogChannelValidate is the "exactly one of file/syslog/null/stderr"
// structural check from §4.1 step 1.
func LogChannelValidate(sink *ErrorSink, category string, ch LogChannelConf) {
	n := ch.outputCount()
	if n != 1 {
		sink.Add(category, SemanticConflictError, ch.Loc,
			"log channel %q must set exactly one of file/syslog/null/stderr, got %d", ch.Name, n)
	}
}
