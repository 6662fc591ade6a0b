/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
)

// TrustAnchorChecker is C8: it cross-validates the static vs
// initializing (RFC 5011) trust anchors collected from every view,
// enforces the numeric bounds and dichotomy invariant of §4.4, and
// flags the two well-known IANA root KSKs.
type TrustAnchorChecker struct {
	static   *SymbolTable[TrustAnchorConf]
	initial  *SymbolTable[TrustAnchorConf]
	Has2010  bool
	Has2017  bool
}

func NewTrustAnchorChecker() *TrustAnchorChecker {
	return &TrustAnchorChecker{
		static:  NewSymbolTable[TrustAnchorConf](),
		initial: NewSymbolTable[TrustAnchorConf](),
	}
}

// rootKSK2010Prefix / rootKSK2017Prefix hold the leading public-key
// bytes (flags/protocol/algo elided) of the two IANA root zone KSKs
// (§4.4 step 4). Detection is a prefix match: a decoded root anchor
// whose bytes start with one of these prefixes sets the matching flag.
// The rest of the key is not compared, and DS-form root anchors are
// checked against the same key prefixes, not against the KSKs' digests.
var (
	rootKSK2010Prefix = mustHex("AwEAAagAIKlVZrpC6Ia7gEzahOR+9W29euxhJhVVLOyQbSEW0O8gcCjF")
	rootKSK2017Prefix = mustHex("AwEAAaz/tAm8yTn4Mfeh5eyI96WSVexTBAvkMgJzkKTOiW1vkIbzxeF3")
)

func mustHex(b64 string) []byte {
	d, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil
	}
	return d
}

// CollectAnchors runs the §4.4 checks over a batch of trust anchors,
// such as the global list or one view's list. A batch may hold anchors
// for any number of owners and, during an RFC 5011 rollover, more than
// one initializing anchor for the same owner.
func (c *TrustAnchorChecker) CollectAnchors(sink *ErrorSink, category string, anchors []TrustAnchorConf) {
	for _, a := range anchors {
		kind, ok := ParseTrustAnchorKind(a.Kind)
		if !ok {
			sink.Add(category, SyntaxError, a.Loc, "trust-anchor %q: unknown kind %q", a.Owner, a.Kind)
			continue
		}
		owner, err := CanonicalizeName(a.Owner)
		if err != nil {
			sink.Add(category, SyntaxError, a.Loc, "trust-anchor: %v", err)
			continue
		}
		c.checkBounds(sink, category, owner, kind, a)
		decoded := c.decode(sink, category, owner, kind, a)

		// P4: static and initializing anchors for the same owner are
		// mutually exclusive, checked both within this call (self("." a =
		// static then initial in the same batch) and across calls via
		// the two symbol tables.
		if kind.IsStatic() {
			if _, found := c.initial.Lookup(owner); found {
				sink.Add(category, SemanticConflictError, a.Loc,
					"static and initializing keys cannot be used for the same domain: %q", owner)
				continue
			}
			if _, inserted := c.static.Define(owner, a); !inserted {
				sink.Add(category, DuplicateError, a.Loc, "trust-anchor: duplicate static anchor for %q", owner)
			}
		} else {
			if _, found := c.static.Lookup(owner); found {
				sink.Add(category, SemanticConflictError, a.Loc,
					"static and initializing keys cannot be used for the same domain: %q", owner)
				continue
			}
			// Multiple initializing anchors for the same owner are
			// legitimate during rollover, so no Define/duplicate check here.
		}

		if owner == "." && decoded != nil {
			c.detectIANARootKSK(decoded)
		}
		if kind == TAStaticKey && a.I3 == 5 /* RSASHA1 */ && len(decoded) >= 2 {
			if decoded[0] == 1 && decoded[1] == 3 {
				sink.Warn(category, a.Loc, "trust-anchor %q: RSASHA1 key exponent looks weak (first byte 1, second byte 3)", owner)
			}
		}
	}
}

// FinalizeRootWarnings emits the "2010 configured without 2017" warning.
// The "no static root anchor together with dnssec-validation auto" rule
// is enforced separately by RejectStaticRootWithAuto, since it needs
// dnssec-validation from GlobalOptions/ViewConf.
func (c *TrustAnchorChecker) FinalizeRootWarnings(sink *ErrorSink, category string) {
	if c.Has2010 && !c.Has2017 {
		sink.Warn(category, SourceLoc{}, "root trust anchor: 2010 IANA KSK configured without the 2017 successor key")
	}
}

// RejectStaticRootWithAuto is the other half of §4.4 step 1.
func RejectStaticRootWithAuto(sink *ErrorSink, category string, hasStaticRoot bool, dnssecValidation string, loc SourceLoc) {
	if hasStaticRoot && normalizeKeyword(dnssecValidation) == "auto" {
		sink.Add(category, SemanticConflictError, loc,
			"a static root trust anchor cannot be combined with dnssec-validation auto")
	}
}

func (c *TrustAnchorChecker) checkBounds(sink *ErrorSink, category, owner string, kind TrustAnchorKind, a TrustAnchorConf) {
	if kind.IsDS() {
		if a.I1 < 0 || a.I1 > 65535 {
			sink.Add(category, RangeError, a.Loc, "trust-anchor %q: keytag %d out of range", owner, a.I1)
		}
		if a.I2 < 0 || a.I2 > 255 {
			sink.Add(category, RangeError, a.Loc, "trust-anchor %q: algorithm %d out of range", owner, a.I2)
		}
		if a.I3 < 0 || a.I3 > 255 {
			sink.Add(category, RangeError, a.Loc, "trust-anchor %q: digest-type %d out of range", owner, a.I3)
		}
		return
	}
	if a.I1 < 0 || a.I1 > 65535 {
		sink.Add(category, RangeError, a.Loc, "trust-anchor %q: flags %d out of range", owner, a.I1)
	}
	if a.I2 < 0 || a.I2 > 255 {
		sink.Add(category, RangeError, a.Loc, "trust-anchor %q: protocol %d out of range", owner, a.I2)
	}
	if a.I3 < 0 || a.I3 > 255 {
		sink.Add(category, RangeError, a.Loc, "trust-anchor %q: algorithm %d out of range", owner, a.I3)
	}
}

// decode returns the raw key/digest bytes, base64 for DNSKEY-form kinds
// and hex for DS-form kinds (§4.4 step 3).
func (c *TrustAnchorChecker) decode(sink *ErrorSink, category, owner string, kind TrustAnchorKind, a TrustAnchorConf) []byte {
	if kind.IsDS() {
		d, err := hex.DecodeString(a.Data)
		if err != nil {
			sink.Add(category, SyntaxError, a.Loc, "trust-anchor %q: invalid hex digest: %v", owner, err)
			return nil
		}
		return d
	}
	d, err := base64.StdEncoding.DecodeString(a.Data)
	if err != nil {
		sink.Add(category, SyntaxError, a.Loc, "trust-anchor %q: invalid base64 key data: %v", owner, err)
		return nil
	}
	return d
}

func (c *TrustAnchorChecker) detectIANARootKSK(decoded []byte) {
	if rootKSK2010Prefix != nil && bytes.HasPrefix(decoded, rootKSK2010Prefix) {
		c.Has2010 = true
	}
	if rootKSK2017Prefix != nil && bytes.HasPrefix(decoded, rootKSK2017Prefix) {
		c.Has2017 = true
	}
}
