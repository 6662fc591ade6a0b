/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

// ValidateFlags enumerates the optional check-plugins / check-dnssec-
// algorithms flags from §4.1's public contract.
type ValidateFlags struct {
	CheckPlugins          bool
	CheckDnssecAlgorithms bool
}

// ValidatorSymtabs bundles the symbol tables that live only for the
// duration of one validate() call (§5 "Shared-resource policy": owned
// by the validator stack frame, destroyed on return).
type ValidatorSymtabs struct {
	ZoneNames *SymbolTable[ZoneConf]
	Files     *SymbolTable[FileAccessMode]
	KeyDirs   *KeyDirectoryRegistry
	TrustAnchors *TrustAnchorChecker
}

func NewValidatorSymtabs() *ValidatorSymtabs {
	return &ValidatorSymtabs{
		ZoneNames:    NewSymbolTable[ZoneConf](),
		Files:        NewSymbolTable[FileAccessMode](),
		KeyDirs:      NewKeyDirectoryRegistry(),
		TrustAnchors: NewTrustAnchorChecker(),
	}
}

// Validate is C5's single public entry point: validate(config, flags)
// -> OK | FAILURE, implemented here as (ok bool, sink *ErrorSink) so
// callers can inspect every accumulated problem, not just the verdict.
func Validate(cfg *Config, flags ValidateFlags, runID string) (bool, *ErrorSink) {
	sink := NewErrorSink(runID)
	symtabs := NewValidatorSymtabs()

	// 1. Options pass.
	ValidateGlobalOptions(sink, "options", &cfg.Options, SourceLoc{})
	for _, ch := range cfg.Logging.Channels {
		LogChannelValidate(sink, "logging", ch)
	}
	ValidateDnssecPolicyDefinitions(sink, cfg.DnssecPolicies)

	// 2. Controls pass.
	ValidateControls(sink, "controls", cfg.Controls, cfg.Keys)

	// 3. Remote-server lists.
	ValidateRemoteServerLists(sink, "remote-servers", cfg.RemoteServers)

	// 4. HTTP and TLS profiles.
	ValidateHTTPProfiles(sink, "http", cfg.HTTP)
	ValidateTLSProfiles(sink, "tls", cfg.TLS)

	// 5. Listener pass.
	ValidateListeners(sink, "listen-on", cfg.Options.Listeners, cfg.TLS, cfg.HTTP)

	// 6. Views pass.
	for i := range cfg.Views {
		ValidateView(sink, "view", &cfg.Views[i])
	}

	// 7. Zones pass: top-level zones belong to the implicit global view,
	// then each view's own zones.
	for i := range cfg.Zones {
		ValidateZone(sink, symtabs, &cfg.Zones[i], nil, cfg)
	}
	for vi := range cfg.Views {
		v := &cfg.Views[vi]
		for zi := range v.Zones {
			ValidateZone(sink, symtabs, &v.Zones[zi], v, cfg)
		}
	}

	// 8. Trust-anchor pass.
	var hasStaticRoot bool
	collectTrustAnchors := func(category string, anchors []TrustAnchorConf, dnssecValidation string, loc SourceLoc) {
		symtabs.TrustAnchors.CollectAnchors(sink, category, anchors)
		for _, a := range anchors {
			if normalizeKeyword(a.Owner) == "." {
				if kind, ok := ParseTrustAnchorKind(a.Kind); ok && kind.IsStatic() {
					hasStaticRoot = true
				}
			}
		}
		RejectStaticRootWithAuto(sink, category, hasStaticRoot, dnssecValidation, loc)
	}
	collectTrustAnchors("trust-anchors", cfg.TrustAnchors, cfg.Options.DnssecValidation, SourceLoc{})
	for i := range cfg.Views {
		v := &cfg.Views[i]
		collectTrustAnchors("trust-anchors", v.TrustAnchors, v.Options.DnssecValidation, v.Loc)
	}
	symtabs.TrustAnchors.FinalizeRootWarnings(sink, "trust-anchors")

	// 9. Plugins pass.
	if flags.CheckPlugins {
		for _, p := range cfg.Plugins {
			if p.Path == "" {
				sink.Add("plugin", MissingReferenceError, SourceLoc{}, "plugin %q has no path configured", p.Name)
			}
		}
	}

	return sink.OK(), sink
}
