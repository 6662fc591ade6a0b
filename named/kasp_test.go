/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

import "testing"

func TestResolveDnssecPolicyBuiltinDefault(t *testing.T) {
	sink := NewErrorSink("test")
	p := ResolveDnssecPolicy(sink, "example.com", "default", nil, SourceLoc{})
	if !sink.OK() {
		t.Fatalf("unexpected errors: %v", sink.Errors())
	}
	if p == nil || !p.InlineSigning {
		t.Fatalf("the built-in default policy should always imply inline-signing, got %+v", p)
	}
}

func TestResolveDnssecPolicyNoneIsNil(t *testing.T) {
	sink := NewErrorSink("test")
	p := ResolveDnssecPolicy(sink, "example.com", "none", nil, SourceLoc{})
	if p != nil {
		t.Errorf("dnssec-policy none should resolve to nil, got %+v", p)
	}
	if !sink.OK() {
		t.Errorf("dnssec-policy none should never be an error, got %v", sink.Errors())
	}
}

func TestResolveDnssecPolicyMissingReference(t *testing.T) {
	sink := NewErrorSink("test")
	p := ResolveDnssecPolicy(sink, "example.com", "custom", nil, SourceLoc{})
	if p != nil {
		t.Error("an undefined dnssec-policy should resolve to nil")
	}
	if sink.OK() {
		t.Fatal("expected a missing-reference error for an undefined dnssec-policy")
	}
}

func TestResolveDnssecPolicyCustomCompiles(t *testing.T) {
	sink := NewErrorSink("test")
	defined := map[string]DnssecPolicyConf{
		"custom": {
			Name:          "custom",
			Algorithm:     "rsasha256",
			InlineSigning: true,
			CSK:           KeyTiming{Lifetime: "2160h", SigValidity: "336h"},
		},
	}
	p := ResolveDnssecPolicy(sink, "example.com", "custom", defined, SourceLoc{})
	if !sink.OK() {
		t.Fatalf("unexpected errors: %v", sink.Errors())
	}
	if p == nil {
		t.Fatal("expected a compiled policy")
	}
	if p.CSK.Lifetime == 0 {
		t.Error("csk lifetime should have been parsed into seconds")
	}
}

// TestResolveDnssecPolicyRejectsCskAndSplit exercises P5: a csk bundle
// and a ksk/zsk split are mutually exclusive.
func TestResolveDnssecPolicyRejectsCskAndSplit(t *testing.T) {
	sink := NewErrorSink("test")
	defined := map[string]DnssecPolicyConf{
		"bad": {
			Name:      "bad",
			Algorithm: "rsasha256",
			CSK:       KeyTiming{Lifetime: "2160h"},
			KSK:       KeyTiming{Lifetime: "8760h"},
			ZSK:       KeyTiming{Lifetime: "720h"},
		},
	}
	ResolveDnssecPolicy(sink, "example.com", "bad", defined, SourceLoc{})
	if sink.OK() {
		t.Fatal("expected a semantic-conflict error for a csk combined with a ksk/zsk split")
	}
}

func TestResolveDnssecPolicyRejectsUnknownAlgorithm(t *testing.T) {
	sink := NewErrorSink("test")
	defined := map[string]DnssecPolicyConf{
		"bad": {Name: "bad", Algorithm: "not-a-real-algorithm"},
	}
	ResolveDnssecPolicy(sink, "example.com", "bad", defined, SourceLoc{})
	if sink.OK() {
		t.Fatal("expected a syntax error for an unknown algorithm")
	}
}

func TestValidateDnssecPolicyDefinitionsRejectsBuiltinRedefinition(t *testing.T) {
	sink := NewErrorSink("test")
	defined := map[string]DnssecPolicyConf{
		"default": {Name: "default"},
	}
	ValidateDnssecPolicyDefinitions(sink, defined)
	if sink.OK() {
		t.Fatal("redefining the built-in \"default\" policy should be rejected")
	}
}

func TestValidateDnssecPolicyDefinitionsAllowsCustomNames(t *testing.T) {
	sink := NewErrorSink("test")
	defined := map[string]DnssecPolicyConf{
		"custom": {Name: "custom"},
	}
	ValidateDnssecPolicyDefinitions(sink, defined)
	if !sink.OK() {
		t.Errorf("a non-built-in name should be accepted, got %v", sink.Errors())
	}
}
