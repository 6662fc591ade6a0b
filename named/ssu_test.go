/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

import "testing"

func TestBuildSSUTableLocalWithExistingSessionKey(t *testing.T) {
	sink := NewErrorSink("test")
	internal := &InternalConf{SessionKeyName: "local-ddns-deadbeef"}

	tbl := BuildSSUTable(sink, "example.com.", &UpdatePolicyConf{Local: true}, internal)
	if !sink.OK() {
		t.Fatalf("unexpected errors: %v", sink.Errors())
	}
	if len(tbl.Rules) != 1 {
		t.Fatalf("expected exactly one rule, got %d", len(tbl.Rules))
	}
	r := tbl.Rules[0]
	if !r.Grant || r.Identity != internal.SessionKeyName || r.MatchType != MatchLocal {
		t.Errorf("unexpected local rule: %+v", r)
	}

	// A second zone reusing the same InternalConf must reuse the key.
	tbl2 := BuildSSUTable(sink, "other.example.", &UpdatePolicyConf{Local: true}, internal)
	if tbl2.Rules[0].Identity != internal.SessionKeyName {
		t.Error("local session key should be reused across zones, not regenerated")
	}
}

// TestBuildSSUTableLocalWithoutSessionKeyYieldsNoTable exercises S4:
// BuildSSUTable itself never mints a session key. Without one already
// recorded on InternalConf it returns a nil table; the grammar is
// still syntactically valid, so no error is added here (the assembler
// is what turns this into a "not found" failure for the zone).
func TestBuildSSUTableLocalWithoutSessionKeyYieldsNoTable(t *testing.T) {
	sink := NewErrorSink("test")
	internal := &InternalConf{}

	tbl := BuildSSUTable(sink, "example.com.", &UpdatePolicyConf{Local: true}, internal)
	if !sink.OK() {
		t.Fatalf("update-policy local; is syntactically valid on its own, got: %v", sink.Errors())
	}
	if tbl != nil {
		t.Fatalf("expected a nil SSU table when no session key exists, got %+v", tbl)
	}
	if internal.SessionKeyName != "" {
		t.Error("BuildSSUTable must never mint a session key itself")
	}
}

func TestBuildSSUTableOrdinaryRule(t *testing.T) {
	sink := NewErrorSink("test")
	up := &UpdatePolicyConf{
		Rules: []UpdatePolicyRule{
			{
				Grant:     true,
				Identity:  "ddns-key",
				MatchType: "name",
				Target:    "host1.example.com.",
				Types: []UpdateTypeLimit{
					{RRtype: "A", MaxCount: 1},
					{RRtype: "AAAA", MaxCount: 1},
				},
			},
		},
	}
	tbl := BuildSSUTable(sink, "example.com.", up, &InternalConf{})
	if !sink.OK() {
		t.Fatalf("unexpected errors: %v", sink.Errors())
	}
	if len(tbl.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(tbl.Rules))
	}
	if len(tbl.Rules[0].Types) != 2 {
		t.Errorf("expected 2 rrtype limits, got %d", len(tbl.Rules[0].Types))
	}
}

func TestBuildSSUTableRejectsUnknownMatchType(t *testing.T) {
	sink := NewErrorSink("test")
	up := &UpdatePolicyConf{
		Rules: []UpdatePolicyRule{
			{Grant: true, Identity: "k", MatchType: "bogus-type", Target: "x"},
		},
	}
	BuildSSUTable(sink, "example.com.", up, &InternalConf{})
	if sink.OK() {
		t.Fatal("expected a syntax error for an unknown match-type")
	}
}

func TestBuildSSUTableRequiresTargetName(t *testing.T) {
	sink := NewErrorSink("test")
	up := &UpdatePolicyConf{
		Rules: []UpdatePolicyRule{
			{Grant: true, Identity: "k", MatchType: "name"}, // no Target
		},
	}
	BuildSSUTable(sink, "example.com.", up, &InternalConf{})
	if sink.OK() {
		t.Fatal("match-type name without a target name should be rejected")
	}
}

func TestBuildSSUTableRejectsBadMaxCount(t *testing.T) {
	sink := NewErrorSink("test")
	up := &UpdatePolicyConf{
		Rules: []UpdatePolicyRule{
			{
				Grant: true, Identity: "k", MatchType: "self",
				Types: []UpdateTypeLimit{{RRtype: "TXT", MaxCount: -1}},
			},
		},
	}
	BuildSSUTable(sink, "example.com.", up, &InternalConf{})
	if sink.OK() {
		t.Fatal("expected a range error for a negative max-count")
	}
}
