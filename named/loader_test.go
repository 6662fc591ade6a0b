/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeLegacySynonyms(t *testing.T) {
	doc := `
zone:
  - name: example.com
    type: master
    masters: ["192.0.2.1", "192.0.2.2"]
`
	cfg, err := unmarshalYAMLInclude(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Zones) != 1 {
		t.Fatalf("expected 1 zone, got %d", len(cfg.Zones))
	}
	z := cfg.Zones[0]
	if z.Type != "primary" {
		t.Errorf("type = %q, want primary (master should normalize)", z.Type)
	}
	if len(z.Primaries) != 2 || len(z.Masters) != 0 {
		t.Errorf("masters should have moved into primaries, got primaries=%v masters=%v", z.Primaries, z.Masters)
	}
}

func TestNormalizeLegacySynonymsSlave(t *testing.T) {
	doc := `
zone:
  - name: example.com
    type: slave
    primaries: ["192.0.2.1"]
`
	cfg, err := unmarshalYAMLInclude(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Zones[0].Type != "secondary" {
		t.Errorf("type = %q, want secondary", cfg.Zones[0].Type)
	}
}

func TestExpandTemplateChainAppliesOverlay(t *testing.T) {
	templates := map[string]TemplateConf{
		"base": {ZoneConf: ZoneConf{Name: "base", Type: "secondary", Primaries: []string{"192.0.2.1"}}},
	}
	z := &ZoneConf{Name: "example.com", Template: "base"}
	out, err := ExpandTemplateChain(z, templates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Type != "secondary" {
		t.Errorf("Type = %q, want secondary inherited from template", out.Type)
	}
	if len(out.Primaries) != 1 || out.Primaries[0] != "192.0.2.1" {
		t.Errorf("Primaries = %v, want inherited [192.0.2.1]", out.Primaries)
	}
	if out.Name != "example.com" {
		t.Errorf("Name should stay the zone's own value, got %q", out.Name)
	}
}

func TestExpandTemplateChainZoneValueWins(t *testing.T) {
	templates := map[string]TemplateConf{
		"base": {ZoneConf: ZoneConf{Name: "base", Type: "secondary"}},
	}
	z := &ZoneConf{Name: "example.com", Type: "primary", Template: "base"}
	out, err := ExpandTemplateChain(z, templates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Type != "primary" {
		t.Errorf("an explicit zone value should win over the template, got %q", out.Type)
	}
}

func TestExpandTemplateChainDetectsCycle(t *testing.T) {
	templates := map[string]TemplateConf{
		"a": {ZoneConf: ZoneConf{Name: "a", Template: "b"}},
		"b": {ZoneConf: ZoneConf{Name: "b", Template: "a"}},
	}
	z := &ZoneConf{Name: "example.com", Template: "a"}
	if _, err := ExpandTemplateChain(z, templates); err == nil {
		t.Fatal("expected a cyclic-template-reference error")
	}
}

func TestExpandTemplateChainMultiLevel(t *testing.T) {
	templates := map[string]TemplateConf{
		"grandparent": {ZoneConf: ZoneConf{Name: "gp", MasterfileFormat: "text"}},
		"parent":      {ZoneConf: ZoneConf{Name: "p", Template: "grandparent", CheckNames: "warn"}},
	}
	z := &ZoneConf{Name: "example.com", Template: "parent"}
	out, err := ExpandTemplateChain(z, templates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.MasterfileFormat != "text" {
		t.Errorf("grandparent field should propagate through the chain, got %q", out.MasterfileFormat)
	}
	if out.CheckNames != "warn" {
		t.Errorf("parent field should apply, got %q", out.CheckNames)
	}
}

func TestLoadConfigResolvesIncludes(t *testing.T) {
	dir := t.TempDir()
	childPath := filepath.Join(dir, "zones.conf")
	if err := os.WriteFile(childPath, []byte("zone:\n  - name: example.com\n    type: primary\n    file: db.example.com\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	parentPath := filepath.Join(dir, "named.conf")
	parentContent := "options:\n  directory: /var/named\ninclude: \"zones.conf\"\n"
	if err := os.WriteFile(parentPath, []byte(parentContent), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := LoadConfig(parentPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Zones) != 1 || cfg.Zones[0].Name != "example.com" {
		t.Fatalf("expected the included zone to be spliced in, got %+v", cfg.Zones)
	}
}

func TestLoadConfigDetectsIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.conf")
	bPath := filepath.Join(dir, "b.conf")
	if err := os.WriteFile(aPath, []byte("include: \"b.conf\"\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if err := os.WriteFile(bPath, []byte("include: \"a.conf\"\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if _, err := LoadConfig(aPath); err == nil {
		t.Fatal("expected an include-cycle error")
	}
}
