/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

import "time"

// ZoneConf is the external configuration for one zone statement (§3,
// §6). It contains no zone data; ZoneAssembler turns a validated
// ZoneConf into a live ZoneData.
type ZoneConf struct {
	Name  string `yaml:"name"`
	Class string `yaml:"class"`
	Type  string `yaml:"type"`

	Template string `yaml:"template"`

	// backing store
	DatabaseArgs string `yaml:"database"` // "" (native) or "dlz <name> [args...]"

	// file bindings
	File             string `yaml:"file"`
	InitialFile      string `yaml:"initial-file"`
	Journal          string `yaml:"journal"`
	MasterfileFormat string `yaml:"masterfile-format"` // text | raw
	MasterfileStyle  string `yaml:"masterfile-style"`  // full | relative

	// transfer policy
	Primaries            []string `yaml:"primaries"`
	Masters              []string `yaml:"masters"` // legacy synonym, §9
	ParentalAgents        []string `yaml:"parental-agents"`
	NotifySources         []string `yaml:"notify-sources"`
	TransferSources       []string `yaml:"transfer-sources"`
	MultiPrimary          bool     `yaml:"multi-primary"`
	TransferTime          int      `yaml:"max-transfer-time-in"`
	TransferIdle          int      `yaml:"max-transfer-idle-in"`
	IxfrFromDifferences   string   `yaml:"ixfr-from-differences"`
	MinTransferRateBytes  int      `yaml:"min-transfer-rate-in-bytes"`
	MinTransferRateMins   int      `yaml:"min-transfer-rate-in-minutes"`
	TransfersInSeconds    *bool    `yaml:"transfers-in-seconds"`

	Notify string `yaml:"notify"` // "yes" | "no" | "explicit" | "master-only" | ""

	// serving policy
	AllowQuery             *string           `yaml:"allow-query"`
	AllowQueryOn           *string           `yaml:"allow-query-on"`
	AllowTransfer          *ACLWithTransport `yaml:"allow-transfer"`
	AllowNotify            *string           `yaml:"allow-notify"`
	AllowUpdate            *string           `yaml:"allow-update"`
	AllowUpdateForwarding  *string           `yaml:"allow-update-forwarding"`
	UpdatePolicy           *UpdatePolicyConf `yaml:"update-policy"`
	ZoneStatistics         string            `yaml:"zone-statistics"`

	// DNSSEC
	DnssecPolicy   string `yaml:"dnssec-policy"` // name, "none", or ""
	InlineSigning  *bool  `yaml:"inline-signing"`
	Nsec3TestZone  bool   `yaml:"nsec3-test-zone"`
	KeyDirectory   string `yaml:"key-directory"`
	KeyStore       string `yaml:"key-store"`

	// limits
	MaxRecords        int `yaml:"max-records"`
	MaxRecordsPerType int `yaml:"max-records-per-type"`
	MaxTypesPerName   int `yaml:"max-types-per-name"`
	MaxJournalSize    int `yaml:"max-journal-size"`
	MaxZoneTTL        int `yaml:"max-zone-ttl"`
	MaxIxfrRatio      int `yaml:"max-ixfr-ratio"`

	// behavior flags
	CheckNames       string `yaml:"check-names"` // ignore|warn|fail
	CheckDupRecords  string `yaml:"check-dup-records"`
	CheckMX          string `yaml:"check-mx"`
	CheckIntegrity   *bool  `yaml:"check-integrity"`
	ZeroNoSoaTTL     *bool  `yaml:"zero-no-soa-ttl"`
	ProvideZoneVersion *bool `yaml:"provide-zoneversion"`
	SerialUpdateMethod string `yaml:"serial-update-method"`

	// forward zones
	Forward    string   `yaml:"forward"` // "only" | "first"
	Forwarders []string `yaml:"forwarders"`

	// static-stub
	ServerNames     []string `yaml:"server-names"`
	ServerAddresses []string `yaml:"server-addresses"`

	// in-view alias
	InView string `yaml:"in-view"`

	SendReportChannel string `yaml:"send-report-channel"`
	LogReportChannel  string `yaml:"log-report-channel"`

	CheckDS string `yaml:"checkds"`

	Loc SourceLoc `yaml:"-"`
}

// effectivePrimaries returns the normalized primaries/masters list,
// accepting either legacy keyword per §9 ("at most one of the two
// keywords may appear" is enforced by the validator, not here).
func (z *ZoneConf) effectivePrimaries() []string {
	if len(z.Primaries) > 0 {
		return z.Primaries
	}
	return z.Masters
}

// TemplateConf is §6's `template "<name>" { ... };`: legal for any
// clause that a zone accepts except "template" itself. Reuses ZoneConf
// with a distinguishing Name so the teacher's ExpandTemplate-style
// field-by-field overlay (see templates.go) stays a single code path.
type TemplateConf struct {
	ZoneConf `yaml:",inline"`
}

// UpdatePolicyConf is the SSU table surface grammar (§3, §6):
// `update-policy { (grant|deny) "<id>" <match-type> ["<name>"] <types>; };`
// or the literal `update-policy local;`.
type UpdatePolicyConf struct {
	Local bool               `yaml:"local"`
	Rules []UpdatePolicyRule `yaml:"rules"`
}

type UpdatePolicyRule struct {
	Grant      bool              `yaml:"grant"` // false == deny
	Identity   string            `yaml:"identity"`
	MatchType  string            `yaml:"match-type"`
	Target     string            `yaml:"target"`
	Types      []UpdateTypeLimit `yaml:"types"`
	Loc        SourceLoc         `yaml:"-"`
}

// UpdateTypeLimit is an rdatatype with an optional "(count)" suffix
// bounding how many RRs of that type one update may touch (§3).
type UpdateTypeLimit struct {
	RRtype   string `yaml:"rrtype"`
	MaxCount int    `yaml:"max-count"` // 0 means "unbounded" (<=65535 enforced at parse)
}

// DnssecPolicyConf is a named KASP bundle (§6). "default" and
// "insecure" are built-in names, never defined by the user.
type DnssecPolicyConf struct {
	Name      string `yaml:"name"`
	Algorithm string `yaml:"algorithm"`

	InlineSigning bool `yaml:"inline-signing"`

	NSEC3         *NSEC3Params `yaml:"nsec3"`
	SignatureValidity time.Duration `yaml:"signature-validity"`
	SignatureRefresh  time.Duration `yaml:"signature-refresh"`
	Jitter            time.Duration `yaml:"jitter"`

	KSK KeyTiming `yaml:"ksk"`
	ZSK KeyTiming `yaml:"zsk"`
	CSK KeyTiming `yaml:"csk"`

	MaxZoneTTL time.Duration `yaml:"max-zone-ttl"`

	Loc SourceLoc `yaml:"-"`
}

type NSEC3Params struct {
	Iterations int    `yaml:"iterations"`
	Salt       string `yaml:"salt"`
	OptOut     bool   `yaml:"opt-out"`
}

type KeyTiming struct {
	Lifetime    string `yaml:"lifetime"`
	SigValidity string `yaml:"sig-validity"`
}
