/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

import "testing"

// TestAssembleStaticStubSynthesizesApex exercises S1/P6: a static-stub
// zone's apex NS/A/AAAA set is synthesized from server-names and
// server-addresses rather than loaded from a zone file.
func TestAssembleStaticStubSynthesizesApex(t *testing.T) {
	cfg := &Config{}
	z := &ZoneConf{
		Name:            "stub.example.com",
		Type:            "static-stub",
		ServerNames:     []string{"ns1.example.net"},
		ServerAddresses: []string{"192.0.2.53", "2001:db8::53"},
	}
	res := Assemble(cfg, nil, z, &InternalConf{RunID: "test"}, AssembleFresh, nil)
	if res.Error != nil {
		t.Fatalf("unexpected assemble error: %v", res.Error)
	}
	if len(res.Zone.ApexNS) != 2 {
		t.Fatalf("expected 2 synthesized NS records (the zone name and ns1.example.net), got %d", len(res.Zone.ApexNS))
	}
	if len(res.Zone.ApexA) != 1 {
		t.Errorf("expected 1 synthesized A record, got %d", len(res.Zone.ApexA))
	}
	if len(res.Zone.ApexAAAA) != 1 {
		t.Errorf("expected 1 synthesized AAAA record, got %d", len(res.Zone.ApexAAAA))
	}
}

func TestAssembleStaticStubRejectsSubdomainServerName(t *testing.T) {
	cfg := &Config{}
	z := &ZoneConf{
		Name:        "stub.example.com",
		Type:        "static-stub",
		ServerNames: []string{"ns1.stub.example.com"},
	}
	res := Assemble(cfg, nil, z, &InternalConf{RunID: "test"}, AssembleFresh, nil)
	if res.Error == nil {
		t.Fatal("expected an error: server-name must not be a subdomain of the stub zone")
	}
}

func TestAssembleStaticStubRequiresSomeNS(t *testing.T) {
	cfg := &Config{}
	z := &ZoneConf{Name: "stub.example.com", Type: "static-stub"}
	res := Assemble(cfg, nil, z, &InternalConf{RunID: "test"}, AssembleFresh, nil)
	if res.Error == nil {
		t.Fatal("expected a fatal-assembly error: static-stub with no server-names/server-addresses")
	}
}

// TestAssembleUpdatePolicyLocalWithExistingSessionKey exercises the
// happy path of S4: a primary zone with `update-policy local;` is
// granted update rights under whatever session key the server already
// generated, recorded on the shared InternalConf.
func TestAssembleUpdatePolicyLocalWithExistingSessionKey(t *testing.T) {
	cfg := &Config{}
	internal := &InternalConf{RunID: "test", SessionKeyName: "local-ddns-deadbeef"}
	z := &ZoneConf{
		Name:         "example.com",
		Type:         "primary",
		File:         "db.example.com",
		UpdatePolicy: &UpdatePolicyConf{Local: true},
	}
	res := Assemble(cfg, nil, z, internal, AssembleFresh, nil)
	if res.Error != nil {
		t.Fatalf("unexpected assemble error: %v", res.Error)
	}
	if res.Zone.UpdatePolicy == nil || len(res.Zone.UpdatePolicy.Rules) != 1 {
		t.Fatalf("expected a single synthesized update-policy rule, got %+v", res.Zone.UpdatePolicy)
	}
	if res.Zone.UpdatePolicy.Rules[0].Identity != internal.SessionKeyName {
		t.Error("the assembled SSU rule should grant the server's existing session-key identity")
	}
	if res.Zone.UpdatePolicy.Rules[0].MatchType != MatchLocal {
		t.Error("update-policy local should expand to match-type local")
	}
}

// TestAssembleUpdatePolicyLocalWithoutSessionKeyFails exercises the
// literal S4 scenario: a primary zone with `update-policy local;` but
// no server session key. Assembly must fail with a not-found error for
// the zone; the grammar itself is still syntactically valid.
func TestAssembleUpdatePolicyLocalWithoutSessionKeyFails(t *testing.T) {
	cfg := &Config{}
	internal := &InternalConf{RunID: "test"}
	z := &ZoneConf{
		Name:         "example.com",
		Type:         "primary",
		File:         "db.example.com",
		UpdatePolicy: &UpdatePolicyConf{Local: true},
	}
	res := Assemble(cfg, nil, z, internal, AssembleFresh, nil)
	if res.Error == nil {
		t.Fatal("expected assembly to fail when update-policy local has no server session key")
	}
	if res.Zone != nil {
		t.Error("a failed assembly must not return a partial zone")
	}
}

func TestAssembleInlineSigningSplitsRawAndSigned(t *testing.T) {
	cfg := &Config{}
	inline := true
	z := &ZoneConf{
		Name:          "example.com",
		Type:          "primary",
		File:          "db.example.com",
		InlineSigning: &inline,
	}
	res := Assemble(cfg, nil, z, &InternalConf{RunID: "test"}, AssembleFresh, nil)
	if res.Error != nil {
		t.Fatalf("unexpected assemble error: %v", res.Error)
	}
	if res.Zone.RawZone == nil || res.Zone.SignedZone == nil {
		t.Fatal("inline-signing should produce both a raw and a signed companion zone")
	}
	if res.Zone.RawZone.File != "db.example.com" {
		t.Errorf("raw zone file = %q, want db.example.com", res.Zone.RawZone.File)
	}
	if res.Zone.SignedZone.File != "db.example.com.signed" {
		t.Errorf("signed zone file = %q, want db.example.com.signed", res.Zone.SignedZone.File)
	}
}

func TestAssembleRootMirrorFallsBackToIANAHints(t *testing.T) {
	cfg := &Config{}
	z := &ZoneConf{Name: ".", Type: "mirror"}
	res := Assemble(cfg, nil, z, &InternalConf{RunID: "test"}, AssembleFresh, nil)
	if res.Error != nil {
		t.Fatalf("unexpected assemble error: %v", res.Error)
	}
	if res.Zone.Primaries.Len() == 0 {
		t.Fatal("a root mirror zone with no explicit primaries should fall back to the compiled-in IANA root hints")
	}
}

func TestAssembleUnknownDlzHandleIsFatal(t *testing.T) {
	cfg := &Config{}
	z := &ZoneConf{
		Name:         "example.com",
		Type:         "primary",
		DatabaseArgs: "dlz nosuchhandle extra-arg",
	}
	res := Assemble(cfg, nil, z, &InternalConf{RunID: "test"}, AssembleFresh, nil)
	if res.Error == nil {
		t.Fatal("expected a missing-reference error for an undefined dlz handle")
	}
}
