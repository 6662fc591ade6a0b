/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

import (
	"time"

	"github.com/miekg/dns"
)

// builtinPolicies mirrors BIND's two always-available KASP bundles: the
// zero-touch "default" (single CSK, ECDSAP256SHA256) and "insecure" (DNSSEC
// turned off entirely). Neither may be redefined by the user; the
// validator pass for dnssec-policy rejects any attempt to do so.
var builtinPolicies = map[string]*DnssecPolicy{
	"default": {
		Name:              "default",
		Algorithm:         dns.ECDSAP256SHA256,
		InlineSigning:     true,
		SignatureValidity: 14 * 24 * time.Hour,
		SignatureRefresh:  5 * 24 * time.Hour,
		Jitter:            12 * time.Hour,
		CSK:               KeyLifetime{Lifetime: 0, SigValidity: 14 * 24 * 60 * 60},
		MaxZoneTTL:        24 * time.Hour,
	},
	"insecure": {
		Name:          "insecure",
		InlineSigning: false,
	},
}

// ResolveDnssecPolicy turns the configuration-time DnssecPolicyConf name
// referenced by a zone into a runtime DnssecPolicy, applying the
// built-in fallback rule from §4.2 step 5: an empty dnssec-policy on a
// zone whose view/global has dnssec-validation or trust anchors
// configured is not an error, it simply means "no policy" (nil), while
// an explicit "none" always means nil regardless of ambient DNSSEC
// configuration.
func ResolveDnssecPolicy(sink *ErrorSink, zoneName string, policyName string, defined map[string]DnssecPolicyConf, loc SourceLoc) *DnssecPolicy {
	name := normalizeKeyword(policyName)
	if name == "" {
		return nil
	}
	if name == "none" {
		return nil
	}
	if b, ok := builtinPolicies[name]; ok {
		return b
	}
	conf, ok := defined[name]
	if !ok {
		sink.Add("dnssec-policy", MissingReferenceError, loc, "zone %q: dnssec-policy %q is not defined", zoneName, name)
		return nil
	}
	return compilePolicy(sink, zoneName, conf)
}

// ValidateDnssecPolicyDefinitions rejects user redefinition of the two
// built-in policy names, part of the C5 options/global validation pass.
func ValidateDnssecPolicyDefinitions(sink *ErrorSink, defined map[string]DnssecPolicyConf) {
	for name, conf := range defined {
		if _, ok := builtinPolicies[normalizeKeyword(name)]; ok {
			sink.Add("dnssec-policy", SemanticConflictError, conf.Loc, "dnssec-policy %q redefines a built-in policy name", name)
		}
	}
}

func compilePolicy(sink *ErrorSink, zoneName string, c DnssecPolicyConf) *DnssecPolicy {
	algo, ok := dns.StringToAlgorithm[normalizeAlgo(c.Algorithm)]
	if !ok {
		sink.Add("dnssec-policy", SyntaxError, c.Loc, "zone %q: dnssec-policy %q: unknown algorithm %q", zoneName, c.Name, c.Algorithm)
	}
	p := &DnssecPolicy{
		Name:              c.Name,
		Algorithm:         algo,
		InlineSigning:     c.InlineSigning,
		SignatureValidity: c.SignatureValidity,
		SignatureRefresh:  c.SignatureRefresh,
		Jitter:            c.Jitter,
		MaxZoneTTL:        c.MaxZoneTTL,
	}
	if c.NSEC3 != nil {
		p.NSEC3 = c.NSEC3
	}
	p.KSK = compileKeyTiming(sink, zoneName, "ksk", c.KSK)
	p.ZSK = compileKeyTiming(sink, zoneName, "zsk", c.ZSK)
	p.CSK = compileKeyTiming(sink, zoneName, "csk", c.CSK)
	// KASP coherence, P5: a CSK bundle and a split KSK/ZSK bundle are
	// mutually exclusive roles for the same key-signing responsibility.
	if (c.CSK.Lifetime != "" || c.CSK.SigValidity != "") &&
		(c.KSK.Lifetime != "" || c.ZSK.Lifetime != "") {
		sink.Add("dnssec-policy", SemanticConflictError, c.Loc,
			"zone %q: dnssec-policy %q defines both a csk and a ksk/zsk split", zoneName, c.Name)
	}
	return p
}

func compileKeyTiming(sink *ErrorSink, zoneName, role string, t KeyTiming) KeyLifetime {
	var out KeyLifetime
	if t.Lifetime != "" {
		d, err := time.ParseDuration(t.Lifetime)
		if err != nil {
			sink.Add("dnssec-policy", SyntaxError, SourceLoc{}, "zone %q: %s lifetime %q: %v", zoneName, role, t.Lifetime, err)
		} else {
			out.Lifetime = uint32(d.Seconds())
		}
	}
	if t.SigValidity != "" {
		d, err := time.ParseDuration(t.SigValidity)
		if err != nil {
			sink.Add("dnssec-policy", SyntaxError, SourceLoc{}, "zone %q: %s sig-validity %q: %v", zoneName, role, t.SigValidity, err)
		} else {
			out.SigValidity = uint32(d.Seconds())
		}
	}
	return out
}

func normalizeAlgo(s string) string {
	switch normalizeKeyword(s) {
	case "ecdsap256sha256", "ecdsa256", "":
		return "ECDSAP256SHA256"
	case "ecdsap384sha384", "ecdsa384":
		return "ECDSAP384SHA384"
	case "ed25519":
		return "ED25519"
	case "ed448":
		return "ED448"
	case "rsasha256":
		return "RSASHA256"
	case "rsasha1":
		return "RSASHA1"
	default:
		return s
	}
}
