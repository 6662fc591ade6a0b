/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

import "testing"

func TestValidateMinimalConfigIsOK(t *testing.T) {
	cfg := &Config{
		Zones: []ZoneConf{
			{Name: "example.com", Type: "primary", File: "db.example.com"},
		},
	}
	ok, sink := Validate(cfg, ValidateFlags{}, "test")
	if !ok {
		t.Fatalf("expected a minimal single-zone config to validate cleanly, got: %v", sink.Errors())
	}
}

func TestValidateAccumulatesMultiplePassErrors(t *testing.T) {
	cfg := &Config{
		Controls: []ControlConf{
			{SocketAddress: "127.0.0.1:953"},
			{SocketAddress: "127.0.0.1:953"},
		},
		Zones: []ZoneConf{
			{Name: "example.com", Type: "mirror", Notify: "yes", Primaries: []string{"192.0.2.1"}},
			{Name: "example.com", Type: "mirror", Notify: "yes", Primaries: []string{"192.0.2.1"}},
		},
	}
	ok, sink := Validate(cfg, ValidateFlags{}, "test")
	if ok {
		t.Fatal("expected failures from both the controls pass and the zone pass")
	}
	// Duplicate control sockets (pass 2) and duplicate zone name +
	// mirror-notify violation (pass 7) should all be present, not just
	// the first error encountered.
	if len(sink.Errors()) < 3 {
		t.Errorf("expected validation to accumulate errors across passes rather than stop early, got %d: %v",
			len(sink.Errors()), sink.Errors())
	}
}

func TestValidatePluginsPassOnlyWhenRequested(t *testing.T) {
	cfg := &Config{
		Plugins: []PluginConf{{Name: "geoip"}},
	}
	ok, _ := Validate(cfg, ValidateFlags{}, "test")
	if !ok {
		t.Fatal("plugin path checking should be skipped unless CheckPlugins is set")
	}
	ok, sink := Validate(cfg, ValidateFlags{CheckPlugins: true}, "test")
	if ok {
		t.Fatal("expected a missing-reference error for a plugin with no path, once CheckPlugins is set")
	}
	if len(sink.Errors()) != 1 {
		t.Errorf("expected exactly 1 plugin error, got %d", len(sink.Errors()))
	}
}

func TestValidateStaticRootAnchorWithDnssecValidationAuto(t *testing.T) {
	cfg := &Config{
		Options: GlobalOptions{DnssecValidation: "auto"},
		TrustAnchors: []TrustAnchorConf{
			{
				Owner: ".", Kind: "static-key",
				I1: 257, I2: 3, I3: 8,
				Data: "AwEAAagAIKlVZrpC6Ia7gEzahOR+9W29euxhJhVVLOyQbSEW0O8gcCjF",
			},
		},
	}
	ok, sink := Validate(cfg, ValidateFlags{}, "test")
	if ok {
		t.Fatal("expected a semantic-conflict error: static root anchor combined with dnssec-validation auto")
	}
}
