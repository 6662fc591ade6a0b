/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

// ZoneType is the closed sum type for §3's tagged zone-type variant.
// Modeled as a string-backed enum parsed once at the validator boundary
// (§9 "string-based tagged unions") rather than compared by raw string
// in the zone-serving hot path.
type ZoneType uint8

const (
	ZoneTypeUnknown ZoneType = iota
	ZonePrimary
	ZoneSecondary
	ZoneMirror
	ZoneStub
	ZoneStaticStub
	ZoneHint
	ZoneForward
	ZoneRedirect
	ZoneDLZ
	ZoneInView
)

var zoneTypeStrings = map[string]ZoneType{
	"primary":     ZonePrimary,
	"master":      ZonePrimary, // legacy synonym, §9
	"secondary":   ZoneSecondary,
	"slave":       ZoneSecondary, // legacy synonym, §9
	"mirror":      ZoneMirror,
	"stub":        ZoneStub,
	"static-stub": ZoneStaticStub,
	"hint":        ZoneHint,
	"forward":     ZoneForward,
	"redirect":    ZoneRedirect,
	"dlz":         ZoneDLZ,
	"in-view":     ZoneInView,
}

var ZoneTypeToString = map[ZoneType]string{
	ZonePrimary:    "primary",
	ZoneSecondary:  "secondary",
	ZoneMirror:     "mirror",
	ZoneStub:       "stub",
	ZoneStaticStub: "static-stub",
	ZoneHint:       "hint",
	ZoneForward:    "forward",
	ZoneRedirect:   "redirect",
	ZoneDLZ:        "dlz",
	ZoneInView:     "in-view",
}

// ParseZoneType normalizes the two legacy synonym pairs (master/primary,
// slave/secondary) and returns the canonical closed-union value.
func ParseZoneType(s string) (ZoneType, bool) {
	zt, ok := zoneTypeStrings[normalizeKeyword(s)]
	return zt, ok
}

// CheckNamesPolicy is the tri-state (ignore|warn|fail) used for
// check-names, mapped by the assembler onto two zone bits (check,
// check-fail) per §4.2 step 8.
type CheckNamesPolicy uint8

const (
	CheckNamesIgnore CheckNamesPolicy = iota
	CheckNamesWarn
	CheckNamesFail
)

func ParseCheckNamesPolicy(s string) (CheckNamesPolicy, bool) {
	switch normalizeKeyword(s) {
	case "ignore":
		return CheckNamesIgnore, true
	case "warn":
		return CheckNamesWarn, true
	case "fail":
		return CheckNamesFail, true
	default:
		return CheckNamesIgnore, false
	}
}

// MatchType enumerates the SSU update-policy match types from §3.
type MatchType uint8

const (
	MatchUnknown MatchType = iota
	MatchName
	MatchSubdomain
	MatchWildcard
	MatchSelf
	MatchSelfSub
	MatchSelfWild
	MatchSelfKrb5
	MatchSelfSubKrb5
	MatchSelfMs
	MatchSelfSubMs
	MatchSubDomainMs
	MatchSubDomainKrb5
	MatchSubDomainSelfMsRhs
	MatchSubDomainSelfKrb5Rhs
	MatchExternal
	MatchTcpSelf
	Match6To4Self
	MatchLocal
	MatchZoneSub
)

var matchTypeStrings = map[string]MatchType{
	"name":                          MatchName,
	"subdomain":                     MatchSubdomain,
	"wildcard":                      MatchWildcard,
	"self":                          MatchSelf,
	"self-sub":                      MatchSelfSub,
	"self-wild":                     MatchSelfWild,
	"self-krb5":                     MatchSelfKrb5,
	"self-sub-krb5":                 MatchSelfSubKrb5,
	"self-ms":                       MatchSelfMs,
	"self-sub-ms":                   MatchSelfSubMs,
	"sub-domain-ms":                 MatchSubDomainMs,
	"sub-domain-krb5":               MatchSubDomainKrb5,
	"sub-domain-self-ms-rhs":        MatchSubDomainSelfMsRhs,
	"sub-domain-self-krb5-rhs":      MatchSubDomainSelfKrb5Rhs,
	"external":                      MatchExternal,
	"tcp-self":                      MatchTcpSelf,
	"6to4-self":                     Match6To4Self,
	"local":                         MatchLocal,
	"zonesub":                       MatchZoneSub,
}

func ParseMatchType(s string) (MatchType, bool) {
	mt, ok := matchTypeStrings[normalizeKeyword(s)]
	return mt, ok
}

// needsTargetName reports whether a match-type requires an accompanying
// target/placeholder name (§3: "target name (or zone origin when
// match-type is zonesub)").
func (mt MatchType) needsTargetName() bool {
	switch mt {
	case MatchName, MatchSubdomain, MatchWildcard, MatchZoneSub,
		MatchSubDomainMs, MatchSubDomainKrb5,
		MatchSubDomainSelfMsRhs, MatchSubDomainSelfKrb5Rhs:
		return true
	default:
		return false
	}
}

// FileAccessMode is used by the writable-file symbol table (P3).
type FileAccessMode uint8

const (
	FileReadOnly FileAccessMode = iota
	FileWritable
)

// TrustAnchorKind is §3's {static-dnskey, initial-dnskey, static-ds,
// initial-ds}.
type TrustAnchorKind uint8

const (
	TAUnknown TrustAnchorKind = iota
	TAStaticKey
	TAInitialKey
	TAStaticDS
	TAInitialDS
)

var trustAnchorKindStrings = map[string]TrustAnchorKind{
	"static-key":  TAStaticKey,
	"initial-key": TAInitialKey,
	"static-ds":   TAStaticDS,
	"initial-ds":  TAInitialDS,
}

func ParseTrustAnchorKind(s string) (TrustAnchorKind, bool) {
	k, ok := trustAnchorKindStrings[normalizeKeyword(s)]
	return k, ok
}

func (k TrustAnchorKind) IsStatic() bool {
	return k == TAStaticKey || k == TAStaticDS
}

func (k TrustAnchorKind) IsInitial() bool {
	return k == TAInitialKey || k == TAInitialDS
}

func (k TrustAnchorKind) IsDS() bool {
	return k == TAStaticDS || k == TAInitialDS
}

// ACLKind enumerates the clauses configure_zone_acl resolves (§4.2.1).
type ACLKind uint8

const (
	ACLAllowQuery ACLKind = iota
	ACLAllowQueryOn
	ACLAllowTransfer
	ACLAllowNotify
	ACLAllowUpdate
	ACLAllowUpdateForwarding
)

var aclKindDefault = map[ACLKind]string{
	ACLAllowQuery:            "any",
	ACLAllowQueryOn:          "any",
	ACLAllowTransfer:         "none",
	ACLAllowNotify:           "none",
	ACLAllowUpdate:           "none",
	ACLAllowUpdateForwarding: "none",
}

// Transport is used by allow-transfer's optional port/transport prefix
// (§3, §4.1 step 4).
type Transport uint8

const (
	TransportAny Transport = iota
	TransportTCP
	TransportTLS
)

func ParseTransport(s string) (Transport, bool) {
	switch normalizeKeyword(s) {
	case "tcp":
		return TransportTCP, true
	case "tls":
		return TransportTLS, true
	default:
		return TransportAny, false
	}
}

// ErrorType is the error taxonomy of §7, kept distinguishable to
// callers without being a panic/error-string mess.
type ErrorType uint8

const (
	NoError ErrorType = iota
	SyntaxError
	RangeError
	SemanticConflictError
	DuplicateError
	MissingReferenceError
	NotSupportedError
	FatalAssemblyError
)

var ErrorTypeToString = map[ErrorType]string{
	SyntaxError:           "syntax",
	RangeError:            "range",
	SemanticConflictError: "semantic-conflict",
	DuplicateError:        "duplicate",
	MissingReferenceError: "missing-reference",
	NotSupportedError:     "not-supported",
	FatalAssemblyError:    "fatal-assembly",
}
