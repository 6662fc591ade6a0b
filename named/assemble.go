/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

import (
	"fmt"
	"net"
	"strings"

	"github.com/miekg/dns"
)

// ianaRootServers is the compiled-in root hints fallback used by
// §4.2 step 10 when a root-zone mirror has no explicit primaries.
var ianaRootServers = []string{
	"198.41.0.4", "2001:503:ba3e::2:30", // a.root-servers.net
	"199.9.14.201", "2001:500:200::b",   // b.root-servers.net
	"192.33.4.12", "2001:500:2::c",      // c.root-servers.net
}

// AssembleMode distinguishes a fresh build from ReusePlanner's "update"
// mode (§4.3), in which ACLs and parameters are reset but the database
// and journal are retained.
type AssembleMode uint8

const (
	AssembleFresh AssembleMode = iota
	AssembleUpdate
)

// AssembleResult is what Assemble hands back to the caller once a zone
// either assembled cleanly or failed; on failure Zone is nil and no
// partial state escapes (§4.2.2).
type AssembleResult struct {
	Zone  *ZoneData
	Error error
}

// Assemble is C6's entry point. It takes the whole config (which holds
// the dnssec-policy and key-store tables), the view (nil for top-level
// zones), the zone config, the process-internal state, the assembly
// mode and the existing live zone (nil if none), and returns an
// AssembleResult. It is pure in the
// sense that it never touches the global Zones table; the caller
// decides when (and whether) to swap the result in, per §5's ordering
// rule that zones become visible only after assembly signals success.
func Assemble(cfg *Config, view *ViewConf, z *ZoneConf, internal *InternalConf, mode AssembleMode, existing *ZoneData) AssembleResult {
	name, err := CanonicalizeName(z.Name)
	if err != nil {
		return AssembleResult{Error: fmt.Errorf("assemble %q: %w", z.Name, err)}
	}
	zt, ok := ParseZoneType(z.Type)
	if !ok {
		return AssembleResult{Error: errf(SyntaxError, "assemble %q: unknown type %q", name, z.Type)}
	}

	// Step 1: build the option-resolution stack.
	var tmpl *TemplateConf
	if z.Template != "" {
		for i := range cfg.Templates {
			if normalizeKeyword(cfg.Templates[i].Name) == normalizeKeyword(z.Template) {
				tmpl = &cfg.Templates[i]
				break
			}
		}
	}
	viewOptions := &cfg.Options
	if view != nil {
		viewOptions = &view.Options
	}
	stack := &OptionStack{Zone: z, Template: tmpl, View: view, Global: &cfg.Options}

	zd := &ZoneData{
		ZoneName:  name,
		Class:     resolveClass(z.Class, view),
		Type:      zt,
		Lifecycle: ZoneConfiguring,
		ViewName:  viewNameOf(view),
	}
	if existing != nil && mode == AssembleUpdate {
		zd.DatabaseArgs = existing.DatabaseArgs
		zd.Journal = existing.Journal
	}

	// Step 2: inline-signing raw/signed split.
	inline := z.InlineSigning != nil && *z.InlineSigning
	if policyWantsInline(cfg, z) {
		inline = true
	}
	zd.InlineSigning = inline
	if inline && (zt == ZonePrimary || zt == ZoneSecondary || zt == ZoneMirror) {
		rawType := ZoneSecondary
		if zt == ZoneMirror {
			rawType = ZoneMirror
		}
		raw := &ZoneData{ZoneName: zd.ZoneName, Class: zd.Class, Type: rawType, ViewName: zd.ViewName}
		signed := &ZoneData{ZoneName: zd.ZoneName, Class: zd.Class, Type: ZonePrimary, ViewName: zd.ViewName}
		if z.File != "" {
			signed.File = z.File + ".signed"
			raw.File = z.File
		}
		zd.RawZone = raw
		zd.SignedZone = signed
	}

	// Step 3: resolve database backend.
	if err := resolveDatabaseBackend(zd, z, cfg); err != nil {
		return AssembleResult{Error: err}
	}

	// Step 4: ACLs, notify, transfer.
	configureZoneTransfer(zd, z, stack)
	if err := configureZoneACLs(zd, z, stack, view); err != nil {
		return AssembleResult{Error: err}
	}

	// Step 5: DNSSEC.
	configureZoneDNSSEC(zd, z, cfg, viewOptions)

	// Step 6: update policy. update-policy local requires the server to
	// already have a session key (§3, S4); the validator accepts the
	// bare keyword syntactically, but assembly fails outright if none
	// has been generated.
	if z.UpdatePolicy != nil && z.UpdatePolicy.Local && internal.SessionKeyName == "" {
		return AssembleResult{Error: errf(MissingReferenceError, "zone %q: update-policy local requires a server session key, none found", name)}
	}
	zd.UpdatePolicy = BuildSSUTable(NewErrorSink(internal.RunID), name, z.UpdatePolicy, internal)

	// Step 7: static-stub apex synthesis.
	if zt == ZoneStaticStub {
		if err := configureStaticStub(zd, name, z); err != nil {
			return AssembleResult{Error: err}
		}
	}

	// Step 8: check-names tri-state -> two bits.
	policy, _ := ParseCheckNamesPolicy(z.CheckNames)
	zd.CheckNames = policy
	zd.CheckNamesFail = policy == CheckNamesFail

	// Step 9: parental-agents / checkds inference.
	if (zt == ZonePrimary || zt == ZoneSecondary) && len(z.ParentalAgents) > 0 {
		for _, a := range z.ParentalAgents {
			zd.ParentalAgents.Add(a, "", "", "")
		}
		if z.CheckDS == "" {
			zd.CheckDS = "explicit"
		} else {
			zd.CheckDS = z.CheckDS
		}
	}

	// Step 10: root-zone mirror IANA fallback.
	if zt == ZoneMirror && name == "." && len(z.effectivePrimaries()) == 0 {
		for _, addr := range ianaRootServers {
			zd.Primaries.Add(addr, "", "", "")
		}
	}

	zd.Lifecycle = ZoneLoading
	zd.MasterfileFormat = z.MasterfileFormat
	zd.MasterfileStyle = z.MasterfileStyle
	zd.File = z.File
	zd.InitialFile = z.InitialFile
	zd.MaxRecords = z.MaxRecords
	zd.MaxRecordsPerType = z.MaxRecordsPerType
	zd.MaxTypesPerName = z.MaxTypesPerName
	zd.MaxJournalSize = z.MaxJournalSize
	zd.MaxZoneTTL = z.MaxZoneTTL
	zd.MaxIxfrRatio = z.MaxIxfrRatio
	if z.CheckIntegrity != nil {
		zd.CheckIntegrity = *z.CheckIntegrity
	}
	if z.ZeroNoSoaTTL != nil {
		zd.ZeroNoSoaTTL = *z.ZeroNoSoaTTL
	}
	zd.Nsec3TestZone = z.Nsec3TestZone
	if z.ProvideZoneVersion != nil {
		zd.ProvideZoneVersion = *z.ProvideZoneVersion
	}

	zd.Lifecycle = ZoneServing
	return AssembleResult{Zone: zd}
}

func viewNameOf(v *ViewConf) string {
	if v == nil {
		return ""
	}
	return v.Name
}

func resolveClass(zoneClass string, view *ViewConf) uint16 {
	c := zoneClass
	if c == "" && view != nil {
		c = view.Class
	}
	if c == "" {
		c = "IN"
	}
	if cl, ok := dns.StringToClass[strings.ToUpper(c)]; ok {
		return cl
	}
	return dns.ClassINET
}

func policyWantsInline(cfg *Config, z *ZoneConf) bool {
	policy := normalizeKeyword(z.DnssecPolicy)
	if policy == "" || policy == "none" {
		return false
	}
	if p, ok := cfg.DnssecPolicies[policy]; ok {
		return p.InlineSigning
	}
	return false
}

// resolveDatabaseBackend splits a `dlz <name> [args...]` selection into
// argv via whitespace tokenization (§4.2 step 3); native is the default
// when DatabaseArgs is empty.
func resolveDatabaseBackend(zd *ZoneData, z *ZoneConf, cfg *Config) error {
	raw := strings.TrimSpace(z.DatabaseArgs)
	if raw == "" || normalizeKeyword(raw) == "native" {
		return nil
	}
	argv := strings.Fields(raw)
	if len(argv) == 0 {
		return errf(FatalAssemblyError, "zone %q: empty database directive", zd.ZoneName)
	}
	if normalizeKeyword(argv[0]) == "dlz" {
		if len(argv) < 2 {
			return errf(FatalAssemblyError, "zone %q: dlz directive missing a handle name", zd.ZoneName)
		}
		if _, ok := cfg.Dlz[argv[1]]; !ok {
			return errf(MissingReferenceError, "zone %q: dlz handle %q is not defined", zd.ZoneName, argv[1])
		}
		zd.DlzHandle = argv[1]
		zd.DatabaseArgs = argv[2:]
		return nil
	}
	zd.DatabaseArgs = argv
	return nil
}

func configureZoneTransfer(zd *ZoneData, z *ZoneConf, stack *OptionStack) {
	for _, p := range z.effectivePrimaries() {
		zd.Primaries.Add(p, "", "", "")
	}
	for _, s := range z.NotifySources {
		zd.NotifySources = append(zd.NotifySources, s)
	}
	for _, s := range z.TransferSources {
		zd.TransferSources = append(zd.TransferSources, s)
	}
	zd.MultiPrimary = z.MultiPrimary
	zd.IxfrFromDifferences = z.IxfrFromDifferences
	zd.MinTransferRateBytes = z.MinTransferRateBytes
	zd.MinTransferRateMins = z.MinTransferRateMins
	zd.NotifyPolicy = z.Notify

	secs := stack.TransfersInSeconds()
	zd.TransferTimeSecs = z.TransferTime
	zd.TransferIdleSecs = z.TransferIdle
	if !secs {
		zd.TransferTimeSecs *= 60
		zd.TransferIdleSecs *= 60
	}
}

// configureZoneACLs is configure_zone_acl (§4.2.1): each ACL kind is
// looked up through the OptionStack (see its doc for which layers each
// kind consults) and falls back to the built-in default. Nothing is
// cached on the view; every zone gets its own ResolvedACL objects.
func configureZoneACLs(zd *ZoneData, z *ZoneConf, stack *OptionStack, view *ViewConf) error {
	kinds := []struct {
		kind ACLKind
		str  *string
		set  func(*ResolvedACL)
	}{
		{ACLAllowQuery, stack.AllowQuery(), func(a *ResolvedACL) { zd.AllowQuery = a }},
		{ACLAllowNotify, stack.AllowNotify(), func(a *ResolvedACL) { zd.AllowNotify = a }},
		{ACLAllowUpdate, stack.AllowUpdate(), func(a *ResolvedACL) { zd.AllowUpdate = a }},
		{ACLAllowUpdateForwarding, stack.AllowUpdateForwarding(), func(a *ResolvedACL) { zd.AllowUpdateForwarding = a }},
	}
	for _, k := range kinds {
		acl := resolveOneACL(k.kind, k.str, view)
		k.set(acl)
	}
	if at := stack.AllowTransfer(); at != nil {
		transport, _ := ParseTransport(at.Transport)
		zd.AllowTransfer = &AllowTransferACL{
			ACL:       &ResolvedACL{Kind: ACLAllowTransfer, Elements: []string{at.ACL}, refs: 1},
			Port:      at.Port,
			Transport: transport,
		}
	} else {
		zd.AllowTransfer = &AllowTransferACL{
			ACL: &ResolvedACL{Kind: ACLAllowTransfer, Elements: []string{aclKindDefault[ACLAllowTransfer]}, refs: 1},
		}
	}
	return nil
}

func resolveOneACL(kind ACLKind, val *string, view *ViewConf) *ResolvedACL {
	if val != nil {
		return &ResolvedACL{Kind: kind, Elements: []string{*val}, refs: 1}
	}
	// Step 5: built-in default. No per-view cache is kept; ViewConf
	// stays a pure decoded value.
	def := aclKindDefault[kind]
	if view != nil {
		if view.AllowQuery != nil && kind == ACLAllowQuery {
			def = *view.AllowQuery
		}
	}
	return &ResolvedACL{Kind: kind, Elements: []string{def}, refs: 1}
}

func configureZoneDNSSEC(zd *ZoneData, z *ZoneConf, cfg *Config, viewOptions *GlobalOptions) {
	var loc SourceLoc
	if z != nil {
		loc = z.Loc
	}
	tmpSink := NewErrorSink("")
	// An unset dnssec-policy resolves to the built-in "default" policy
	// (§4.2 step 5). An explicit "none" resolves to a nil DnssecPolicy;
	// no default policy is attached in that case.
	policyName := z.DnssecPolicy
	if policyName == "" {
		policyName = "default"
	}
	zd.DnssecPolicyName = normalizeKeyword(policyName)
	zd.DnssecPolicy = ResolveDnssecPolicy(tmpSink, zd.ZoneName, policyName, cfg.DnssecPolicies, loc)
}

// configureStaticStub is configure_staticstub (§3, §4.2 step 7, P6).
func configureStaticStub(zd *ZoneData, name string, z *ZoneConf) error {
	var nsNames []string
	if len(z.ServerAddresses) > 0 {
		nsNames = append(nsNames, name)
	}
	for _, m := range z.ServerNames {
		canon, err := CanonicalizeName(m)
		if err != nil {
			return errf(SyntaxError, "zone %q: static-stub server-name %q: %v", name, m, err)
		}
		if IsSubdomainOf(canon, name) {
			return errf(SemanticConflictError, "zone %q: static-stub server-name %q must not be a subdomain of the zone", name, m)
		}
		nsNames = append(nsNames, canon)
	}
	if len(nsNames) == 0 {
		return errf(FatalAssemblyError, "zone %q: static-stub has no NS derivable from server-names/server-addresses", name)
	}

	hdr := dns.RR_Header{Name: name, Rrtype: dns.TypeNS, Class: dns.ClassINET, Ttl: 86400}
	for _, n := range nsNames {
		zd.ApexNS = append(zd.ApexNS, &dns.NS{Hdr: hdr, Ns: n})
	}
	for _, addr := range z.ServerAddresses {
		ip := net.ParseIP(addr)
		if ip == nil {
			return errf(SyntaxError, "zone %q: static-stub server-address %q is invalid", name, addr)
		}
		if ip4 := ip.To4(); ip4 != nil {
			zd.ApexA = append(zd.ApexA, &dns.A{
				Hdr: dns.RR_Header{Name: name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 86400},
				A:   ip4,
			})
		} else {
			zd.ApexAAAA = append(zd.ApexAAAA, &dns.AAAA{
				Hdr: dns.RR_Header{Name: name, Rrtype: dns.TypeAAAA, Class: dns.ClassINET, Ttl: 86400},
				AAAA: ip,
			})
		}
	}
	return nil
}
