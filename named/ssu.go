/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

import (
	"github.com/miekg/dns"
)

// BuildSSUTable turns an UpdatePolicyConf into the runtime SSUTable used
// by the serving layer (§3 "SSU table"). The `local` literal expands to
// a single grant rule keyed on a generated TSIG session key (S4); every
// other shape is a verbatim rule-by-rule translation with match-type
// validation.
func BuildSSUTable(sink *ErrorSink, zoneName string, up *UpdatePolicyConf, internal *InternalConf) *SSUTable {
	if up == nil {
		return nil
	}
	if up.Local {
		return buildLocalSSU(zoneName, internal)
	}
	tbl := &SSUTable{}
	for _, r := range up.Rules {
		mt, ok := ParseMatchType(r.MatchType)
		if !ok {
			sink.Add("update-policy", SyntaxError, r.Loc, "zone %q: unknown match-type %q", zoneName, r.MatchType)
			continue
		}
		if mt.needsTargetName() && r.Target == "" {
			sink.Add("update-policy", SyntaxError, r.Loc, "zone %q: match-type %q requires a target name", zoneName, r.MatchType)
			continue
		}
		if r.Target != "" {
			if _, err := CanonicalizeName(r.Target); err != nil {
				sink.Add("update-policy", SyntaxError, r.Loc, "zone %q: update-policy target %q: %v", zoneName, r.Target, err)
				continue
			}
		}
		types := make(map[uint16]int, len(r.Types))
		for _, t := range r.Types {
			rrtype, ok := dns.StringToType[normalizeKeyword(t.RRtype)]
			if !ok {
				sink.Add("update-policy", SyntaxError, r.Loc, "zone %q: unknown rrtype %q in update-policy", zoneName, t.RRtype)
				continue
			}
			if t.MaxCount < 0 || t.MaxCount > 65535 {
				sink.Add("update-policy", RangeError, r.Loc, "zone %q: update-policy max-count %d out of range for %s", zoneName, t.MaxCount, t.RRtype)
				continue
			}
			types[rrtype] = t.MaxCount
		}
		tbl.Rules = append(tbl.Rules, SSURule{
			Grant:     r.Grant,
			Identity:  r.Identity,
			MatchType: mt,
			Target:    r.Target,
			Types:     types,
		})
	}
	return tbl
}

// buildLocalSSU is the `update-policy local;` shorthand (S4): it grants
// the server's session key update rights to any record in the zone via
// "grant <session-key> local <origin> ANY". The session key itself is
// never minted here — `local` requires the server to already have one
// (§3); if none exists, buildLocalSSU returns nil and the assembler is
// the one that turns that into a "not found" failure for the zone
// (validate_zone.go's grammar check has no InternalConf of its own and
// so only ever sees the syntactically-valid `local` keyword).
func buildLocalSSU(zoneName string, internal *InternalConf) *SSUTable {
	if internal.SessionKeyName == "" {
		return nil
	}
	return &SSUTable{
		Rules: []SSURule{
			{
				Grant:     true,
				Identity:  internal.SessionKeyName,
				MatchType: MatchLocal,
				Target:    zoneName,
				Types:     nil, // nil == unrestricted rrtype set
			},
		},
	}
}
