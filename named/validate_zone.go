/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

import (
	"net"
	"strings"
)

// zoneClauseLegality is the per-clause bitmask of §4.1's "enforce that
// every clause present is legal for the type" rule, expressed as a set
// of permitted ZoneTypes per named clause (P1). Only clauses that are
// meaningfully type-restricted are listed; anything not listed here is
// legal everywhere (e.g. zone-statistics).
var zoneClauseLegality = map[string]map[ZoneType]bool{
	"primaries": {ZoneSecondary: true, ZoneStub: true, ZoneMirror: true},
	"allow-update": {ZonePrimary: true},
	"update-policy": {ZonePrimary: true},
	"forward": {ZoneForward: true, ZoneInView: true},
	"forwarders": {ZoneForward: true, ZoneInView: true},
	"server-names": {ZoneStaticStub: true},
	"server-addresses": {ZoneStaticStub: true},
	"in-view": {ZoneInView: true},
	"dnssec-policy": {ZonePrimary: true, ZoneSecondary: true, ZoneMirror: true},
}

// ValidateZone is the per-zone validator of §4.1 ("Per-zone
// validator"). It reports problems to sink and returns the canonical
// zone name (empty on unrecoverable syntax failure) so the caller can
// still register what it could for later passes.
func ValidateZone(sink *ErrorSink, symtabs *ValidatorSymtabs, z *ZoneConf, view *ViewConf, cfg *Config) string {
	category := "zone"

	name, err := CanonicalizeName(z.Name)
	if err != nil {
		sink.Add(category, SyntaxError, z.Loc, "zone: %v", err)
		return ""
	}

	zt, ok := ParseZoneType(z.Type)
	if !ok {
		sink.Add(category, SyntaxError, z.Loc, "zone %q: unknown type %q", name, z.Type)
		return name
	}

	if zt == ZoneRedirect && name != "." {
		sink.Add(category, SemanticConflictError, z.Loc, "zone %q: redirect zones must be named \".\"", name)
	}
	if zt == ZoneInView {
		if z.InView == "" {
			sink.Add(category, SyntaxError, z.Loc, "zone %q: in-view requires a target zone name", name)
		}
		if z.File != "" || z.Primaries != nil || z.AllowUpdate != nil {
			sink.Add(category, SemanticConflictError, z.Loc, "zone %q: in-view takes no options beyond forward/forwarders", name)
		}
	}

	checkClauseLegality(sink, category, name, zt, z)

	viewClass := ""
	if view != nil {
		viewClass = view.Class
	}
	if z.Class != "" && viewClass != "" && !strings.EqualFold(z.Class, viewClass) {
		sink.Add(category, SemanticConflictError, z.Loc, "zone %q: class %q disagrees with view class %q", name, z.Class, viewClass)
	}

	// P2: name uniqueness, scoped per ZoneScopeKey.
	viewKey := "global"
	if view != nil {
		viewKey = "view:" + normalizeKeyword(view.Name)
	}
	scopeKey := viewKey + "/" + ZoneScopeKey(zt) + "/" + name
	if _, inserted := symtabs.ZoneNames.Define(scopeKey, *z); !inserted {
		sink.Add(category, DuplicateError, z.Loc, "zone %q: duplicate zone in this view/class/scope", name)
	}

	if len(z.Primaries) > 0 && len(z.Masters) > 0 {
		sink.Add(category, SemanticConflictError, z.Loc, "zone %q: both primaries and masters set, use only one", name)
	}

	switch zt {
	case ZoneSecondary, ZoneStub:
		if len(z.effectivePrimaries()) == 0 {
			sink.Add(category, FatalAssemblyError, z.Loc, "zone %q: %s zone requires a non-empty primaries list", name, ZoneTypeToString[zt])
		}
	case ZoneMirror:
		if name != "." && len(z.effectivePrimaries()) == 0 {
			sink.Add(category, FatalAssemblyError, z.Loc, "zone %q: mirror zone requires a non-empty primaries list", name)
		}
		notify := normalizeKeyword(z.Notify)
		if notify != "" && notify != "no" && notify != "explicit" {
			sink.Add(category, SemanticConflictError, z.Loc, "zone %q: mirror zones can only be used with notify no or notify explicit", name)
		}
		if view != nil && view.Recursion != nil && !*view.Recursion {
			sink.Warn(category, z.Loc, "zone %q: mirror zone in a view with recursion disabled", name)
		}
	case ZonePrimary:
		if z.AllowUpdate != nil && z.UpdatePolicy != nil {
			sink.Add(category, SemanticConflictError, z.Loc, "zone %q: primary zone forbids both allow-update and update-policy", name)
		}
		validateUpdatePolicyGrammar(sink, category, name, z.UpdatePolicy)
	}

	validateDnssecCoherence(sink, category, name, z, cfg)
	validateFilePresence(sink, symtabs, category, name, zt, z)
	validateKeyDirectory(sink, symtabs, category, name, z, cfg)
	validateForwardZone(sink, category, name, zt, z)
	validateReportChannels(sink, category, name, z)
	validateZoneMisc(sink, category, name, z)

	return name
}

func checkClauseLegality(sink *ErrorSink, category, name string, zt ZoneType, z *ZoneConf) {
	used := map[string]bool{
		"primaries":        len(z.effectivePrimaries()) > 0,
		"allow-update":     z.AllowUpdate != nil,
		"update-policy":    z.UpdatePolicy != nil,
		"forward":          z.Forward != "",
		"forwarders":       len(z.Forwarders) > 0,
		"server-names":     len(z.ServerNames) > 0,
		"server-addresses": len(z.ServerAddresses) > 0,
		"in-view":          z.InView != "",
		"dnssec-policy":    z.DnssecPolicy != "" && normalizeKeyword(z.DnssecPolicy) != "none",
	}
	for clause, isUsed := range used {
		if !isUsed {
			continue
		}
		allowed, restricted := zoneClauseLegality[clause]
		if !restricted {
			continue
		}
		if !allowed[zt] {
			sink.Add(category, SemanticConflictError, z.Loc, "zone %q: clause %q is not legal for type %s", name, clause, ZoneTypeToString[zt])
		}
	}
}

// validateUpdatePolicyGrammar reuses BuildSSUTable's parsing, discarding
// the result; it exists as its own step so the per-zone validator's
// sink entries read as "update-policy" problems distinct from the
// assembler's own invocation of the same builder.
func validateUpdatePolicyGrammar(sink *ErrorSink, category, name string, up *UpdatePolicyConf) {
	if up == nil {
		return
	}
	tmp := NewErrorSink(sink.RunID)
	BuildSSUTable(tmp, name, up, &InternalConf{})
	for _, e := range tmp.All() {
		sink.Add(category, e.Type, e.Loc, "%s", e.Msg)
	}
}

func validateDnssecCoherence(sink *ErrorSink, category, name string, z *ZoneConf, cfg *Config) {
	policy := normalizeKeyword(z.DnssecPolicy)
	if policy == "" || policy == "none" {
		return
	}
	if policy != "default" && policy != "insecure" {
		if _, ok := cfg.DnssecPolicies[policy]; !ok {
			sink.Add(category, MissingReferenceError, z.Loc, "zone %q: dnssec-policy %q is not defined", name, policy)
			return
		}
	}
	inline := z.InlineSigning != nil && *z.InlineSigning
	if !inline {
		if p, ok := cfg.DnssecPolicies[policy]; ok && p.InlineSigning {
			inline = true
		}
	}
	acceptsUpdates := z.AllowUpdate != nil || z.UpdatePolicy != nil
	if !inline && !acceptsUpdates {
		sink.Add(category, SemanticConflictError, z.Loc,
			"zone %q: dnssec-policy %q requires dynamic DNS or inline-signing", name, policy)
	}
	if z.MaxZoneTTL != 0 {
		sink.Add(category, SemanticConflictError, z.Loc, "zone %q: max-zone-ttl must not coexist with a dnssec-policy", name)
	}
}

func validateFilePresence(sink *ErrorSink, symtabs *ValidatorSymtabs, category, name string, zt ZoneType, z *ZoneConf) {
	isDefaultDB := z.DatabaseArgs == "" || normalizeKeyword(z.DatabaseArgs) == "native"
	needsFile := isDefaultDB && (zt == ZonePrimary || zt == ZoneHint ||
		(zt == ZoneSecondary && z.InlineSigning != nil && *z.InlineSigning))
	if needsFile && z.File == "" {
		sink.Add(category, FatalAssemblyError, z.Loc, "zone %q: type %s with the default database requires a file", name, ZoneTypeToString[zt])
	}
	if z.File == "" {
		return
	}
	mode := FileReadOnly
	if zt == ZonePrimary || zt == ZoneHint {
		mode = FileWritable
	}
	existing, inserted := symtabs.Files.Define(z.File, mode)
	if inserted {
		return
	}
	if existing == FileWritable || mode == FileWritable {
		sink.Add(category, DuplicateError, z.Loc, "zone %q: writable file %q: already in use", name, z.File)
	}
	// Two read-only uses of the same path are fine (P3).
}

func validateKeyDirectory(sink *ErrorSink, symtabs *ValidatorSymtabs, category, name string, z *ZoneConf, cfg *Config) {
	policy := normalizeKeyword(z.DnssecPolicy)
	if policy == "" || policy == "none" {
		return
	}
	dir := z.KeyDirectory
	if dir == "" && z.KeyStore != "" {
		if ks, ok := cfg.KeyStores[z.KeyStore]; ok {
			dir = ks.Directory
		}
	}
	if dir == "" {
		dir = cfg.Options.KeyDirectory
	}
	if dir == "" {
		return
	}
	symtabs.KeyDirs.Bind(sink, category, dir, policy, name, z.Loc)
}

var rfc1918Nets = mustParseCIDRs("10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16")

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	out := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err == nil {
			out = append(out, n)
		}
	}
	return out
}

func isPrivateReverseZone(name string) bool {
	if !strings.HasSuffix(name, "in-addr.arpa.") && !strings.HasSuffix(name, "ip6.arpa.") {
		return false
	}
	labels := strings.Split(strings.TrimSuffix(name, "."), ".")
	// reverse-zone labels are octets/nibbles in reverse order; a cheap
	// approximation reassembles the leading octets and tests membership.
	if len(labels) < 3 {
		return false
	}
	probe := net.ParseIP(labels[2] + "." + labels[1] + "." + labels[0] + ".0")
	if probe == nil {
		return false
	}
	for _, n := range rfc1918Nets {
		if n.Contains(probe) {
			return true
		}
	}
	return false
}

func validateForwardZone(sink *ErrorSink, category, name string, zt ZoneType, z *ZoneConf) {
	if zt != ZoneForward {
		return
	}
	if isPrivateReverseZone(name) {
		if z.Forward == "" {
			sink.Add(category, SemanticConflictError, z.Loc, "zone %q: forward zone in RFC1918/ULA space requires an explicit forward mode", name)
		}
	} else if normalizeKeyword(z.Forward) != "only" {
		sink.Warn(category, z.Loc, "zone %q: consider forward only for this forward zone", name)
	}
}

func validateReportChannels(sink *ErrorSink, category, name string, z *ZoneConf) {
	if z.SendReportChannel != "" {
		target, err := CanonicalizeName(z.SendReportChannel)
		if err != nil {
			sink.Add(category, SyntaxError, z.Loc, "zone %q: send-report-channel: %v", name, err)
		} else if target == name || isStrictSubdomainOf(target, name) {
			sink.Add(category, SemanticConflictError, z.Loc, "zone %q: send-report-channel target must not be the zone origin or a subdomain of it", name)
		}
	}
	if z.LogReportChannel != "" && name == "." {
		sink.Add(category, SemanticConflictError, z.Loc, "zone %q: log-report-channel must not be set for the root zone", name)
	}
}

const maxJournalFormatSize = 1 << 32 // documented ceiling for the journal format used here

func validateZoneMisc(sink *ErrorSink, category, name string, z *ZoneConf) {
	if z.SerialUpdateMethod != "" {
		switch normalizeKeyword(z.SerialUpdateMethod) {
		case "increment", "unixtime", "date":
		default:
			sink.Add(category, SyntaxError, z.Loc, "zone %q: unknown serial-update-method %q", name, z.SerialUpdateMethod)
		}
	}
	for _, pair := range []struct{ field, val string }{
		{"check-dup-records", z.CheckDupRecords},
		{"check-mx", z.CheckMX},
	} {
		if pair.val == "" {
			continue
		}
		if _, ok := ParseCheckNamesPolicy(pair.val); !ok {
			sink.Add(category, SyntaxError, z.Loc, "zone %q: %s %q is not ignore|warn|fail", name, pair.field, pair.val)
		}
	}
	if z.CheckNames != "" {
		if _, ok := ParseCheckNamesPolicy(z.CheckNames); !ok {
			sink.Add(category, SyntaxError, z.Loc, "zone %q: check-names %q is not ignore|warn|fail", name, z.CheckNames)
		}
	}
	if z.MasterfileStyle != "" && normalizeKeyword(z.MasterfileFormat) != "" && normalizeKeyword(z.MasterfileFormat) != "text" {
		sink.Add(category, SemanticConflictError, z.Loc, "zone %q: masterfile-style is only meaningful with masterfile-format text", name)
	}
	if z.MaxJournalSize < 0 || z.MaxJournalSize > maxJournalFormatSize {
		sink.Add(category, RangeError, z.Loc, "zone %q: max-journal-size out of range", name)
	}
	if z.MinTransferRateBytes != 0 && z.MinTransferRateBytes <= 0 {
		sink.Add(category, RangeError, z.Loc, "zone %q: min-transfer-rate-in bytes must be > 0", name)
	}
	if z.MinTransferRateMins != 0 && (z.MinTransferRateMins < 1 || z.MinTransferRateMins > 28*24*60) {
		sink.Add(category, RangeError, z.Loc, "zone %q: min-transfer-rate-in minutes out of range [1,%d]", name, 28*24*60)
	}
}
