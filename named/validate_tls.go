/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

// reservedProfileNames are never legal user-chosen http/tls profile
// names; "ephemeral" and "none" are the two sentinel values a listener
// may reference directly instead of a named profile (§4.1 step 4).
var reservedProfileNames = map[string]bool{
	"ephemeral": true,
	"none":      true,
}

// recognizedTLSProtocols mirrors the set BIND's TLS provider accepts;
// anything outside it is a configuration error rather than silently
// ignored.
var recognizedTLSProtocols = map[string]bool{
	"tlsv1.2": true,
	"tlsv1.3": true,
}

// ValidateHTTPProfiles is half of §4.1 step 4.
func ValidateHTTPProfiles(sink *ErrorSink, category string, profiles map[string]HTTPConf) {
	names := NewSymbolTable[HTTPConf]()
	for key, p := range profiles {
		norm := normalizeKeyword(p.Name)
		if norm == "" {
			norm = normalizeKeyword(key)
		}
		if reservedProfileNames[norm] {
			sink.Add(category, SemanticConflictError, p.Loc, "http profile name %q is reserved", norm)
			continue
		}
		if _, inserted := names.Define(norm, p); !inserted {
			sink.Add(category, DuplicateError, p.Loc, "http profile %q is defined more than once", norm)
		}
	}
}

// ValidateTLSProfiles is the other half of §4.1 step 4.
func ValidateTLSProfiles(sink *ErrorSink, category string, profiles map[string]TLSConf) {
	names := NewSymbolTable[TLSConf]()
	for key, t := range profiles {
		norm := normalizeKeyword(t.Name)
		if norm == "" {
			norm = normalizeKeyword(key)
		}
		if reservedProfileNames[norm] {
			sink.Add(category, SemanticConflictError, t.Loc, "tls profile name %q is reserved", norm)
			continue
		}
		if _, inserted := names.Define(norm, t); !inserted {
			sink.Add(category, DuplicateError, t.Loc, "tls profile %q is defined more than once", norm)
		}
		if (t.KeyFile == "") != (t.CertFile == "") {
			sink.Add(category, SemanticConflictError, t.Loc,
				"tls profile %q: key-file and cert-file must both be present or both absent", norm)
		}
		for _, p := range t.Protocols {
			if !recognizedTLSProtocols[normalizeKeyword(p)] {
				sink.Add(category, NotSupportedError, t.Loc, "tls profile %q: unrecognized protocol %q", norm, p)
			}
		}
		for _, c := range t.Ciphers {
			if c == "" {
				sink.Add(category, SyntaxError, t.Loc, "tls profile %q: empty cipher entry", norm)
			}
		}
	}
}
