/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package acl

import "testing"

func TestParseBuiltinsAndAddresses(t *testing.T) {
	elems, err := Parse([]string{"any", "!192.0.2.1", "10.0.0.0/8"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elems) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(elems))
	}
	if elems[0].Builtin != "any" {
		t.Errorf("elems[0].Builtin = %q, want any", elems[0].Builtin)
	}
	if !elems[1].Negate || elems[1].Prefix == nil {
		t.Errorf("elems[1] should be a negated /32 prefix, got %+v", elems[1])
	}
	if elems[2].Prefix == nil || elems[2].Prefix.String() != "10.0.0.0/8" {
		t.Errorf("elems[2] = %+v, want 10.0.0.0/8", elems[2])
	}
}

func TestParseBareAddressBecomesHostPrefix(t *testing.T) {
	elems, _ := Parse([]string{"2001:db8::1"})
	if elems[0].Prefix == nil || elems[0].Prefix.String() != "2001:db8::1/128" {
		t.Errorf("bare IPv6 address = %+v, want 2001:db8::1/128", elems[0])
	}
}

func TestParseUnrecognizedTokenIsNamedACL(t *testing.T) {
	elems, _ := Parse([]string{"trusted-hosts"})
	if elems[0].NamedACL != "trusted-hosts" {
		t.Errorf("expected a named-ACL reference, got %+v", elems[0])
	}
}

func TestResolveEntryPointExpandsNestedReferences(t *testing.T) {
	table := map[string][]string{
		"inner": {"192.0.2.0/24"},
		"outer": {"inner", "localhost"},
	}
	elems, err := ResolveEntryPoint("outer", table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elems) != 2 {
		t.Fatalf("expected the nested reference to expand to 2 elements, got %d", len(elems))
	}
}

func TestResolveEntryPointRejectsCycle(t *testing.T) {
	table := map[string][]string{
		"a": {"b"},
		"b": {"a"},
	}
	if _, err := ResolveEntryPoint("a", table); err == nil {
		t.Fatal("expected a cycle-detection error")
	}
}

func TestResolveEntryPointNegatesNestedReference(t *testing.T) {
	table := map[string][]string{
		"inner": {"192.0.2.0/24"},
		"outer": {"!inner"},
	}
	elems, err := ResolveEntryPoint("outer", table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elems) != 1 || !elems[0].Negate {
		t.Errorf("negating a named-ACL reference should negate its expansion, got %+v", elems)
	}
}

func TestValidateDefinitionRejectsBuiltinNames(t *testing.T) {
	if err := ValidateDefinition("any"); err == nil {
		t.Fatal("redefining the builtin \"any\" should be rejected")
	}
	if err := ValidateDefinition("trusted-hosts"); err != nil {
		t.Errorf("a non-builtin name should be accepted, got %v", err)
	}
}
