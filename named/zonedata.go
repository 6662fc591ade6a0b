/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

import (
	"sync"
	"time"

	"github.com/miekg/dns"
)

// ZoneLifecycle is §3's Zone lifecycle state machine.
type ZoneLifecycle uint8

const (
	ZoneConfiguring ZoneLifecycle = iota
	ZoneLoading
	ZoneServing
	ZoneRefreshing
	ZoneUnloading
)

// IPKeyList is the parallel-vectors structure from §3 used for
// primaries, parental-agents, and also-notify: addresses, optional
// source addresses, optional TSIG key names, optional TLS profile
// names, all indexed together.
type IPKeyList struct {
	Addresses     []string
	SourceAddrs   []string
	TSIGKeys      []string
	TLSProfiles   []string
}

func (l *IPKeyList) Add(addr, source, key, tls string) {
	l.Addresses = append(l.Addresses, addr)
	l.SourceAddrs = append(l.SourceAddrs, source)
	l.TSIGKeys = append(l.TSIGKeys, key)
	l.TLSProfiles = append(l.TLSProfiles, tls)
}

func (l *IPKeyList) Len() int { return len(l.Addresses) }

// ResolvedACL is what configure_zone_acl produces: an opaque,
// reference-counted ACL object (§3 Ownership, §4.2.1). configureZoneACLs
// builds a new one for every zone; none is shared with the view.
type ResolvedACL struct {
	Kind     ACLKind
	Elements []string // the ACL string resolved from the option stack; named ACLs are not expanded
	refs     int32
	mu       sync.Mutex
}

func (a *ResolvedACL) Retain() {
	a.mu.Lock()
	a.refs++
	a.mu.Unlock()
}

func (a *ResolvedACL) Release() int32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.refs--
	return a.refs
}

// AllowTransferACL pairs a ResolvedACL with the optional port/transport
// scoping from §3.
type AllowTransferACL struct {
	ACL       *ResolvedACL
	Port      int
	Transport Transport
}

// DnssecPolicy is the resolved, ready-to-use KASP (cf. DnssecPolicyConf,
// its configuration-time counterpart).
type DnssecPolicy struct {
	Name          string
	Algorithm     uint8
	InlineSigning bool
	NSEC3         *NSEC3Params
	SignatureValidity time.Duration
	SignatureRefresh  time.Duration
	Jitter            time.Duration
	KSK, ZSK, CSK KeyLifetime
	MaxZoneTTL    time.Duration
}

type KeyLifetime struct {
	Lifetime    uint32
	SigValidity uint32
}

// SSU table, the resolved update-policy (§3 "SSU table").
type SSUTable struct {
	Rules []SSURule
}

type SSURule struct {
	Grant     bool
	Identity  string
	MatchType MatchType
	Target    string
	Types     map[uint16]int // rrtype -> max-count (0 == unbounded)
}

// ZoneData is the live, in-memory zone object (§3 Zone). It is created
// once by ZoneAssembler and mutated only by the serving layer
// thereafter (§5 Ordering); the validator and assembler never touch a
// *ZoneData that is already Serving except through ReusePlanner's
// explicit "update" path.
type ZoneData struct {
	mu sync.Mutex

	ZoneName  string
	Class     uint16 // dns.ClassINET etc.
	Type      ZoneType
	Lifecycle ZoneLifecycle

	// backing store
	DatabaseArgs []string
	DlzHandle    string
	InViewOf     string // non-empty for ZoneInView aliases

	File             string
	InitialFile      string
	Journal          string
	MasterfileFormat string
	MasterfileStyle  string

	Primaries      IPKeyList
	ParentalAgents IPKeyList
	AlsoNotify     IPKeyList
	NotifySources  []string
	TransferSources []string
	MultiPrimary   bool
	TransferTimeSecs int
	TransferIdleSecs int
	IxfrFromDifferences string
	MinTransferRateBytes int
	MinTransferRateMins  int
	NotifyPolicy   string

	AllowQuery    *ResolvedACL
	AllowQueryOn  *ResolvedACL
	AllowTransfer *AllowTransferACL
	AllowNotify   *ResolvedACL
	AllowUpdate   *ResolvedACL
	AllowUpdateForwarding *ResolvedACL

	UpdatePolicy *SSUTable

	DnssecPolicyName string
	DnssecPolicy     *DnssecPolicy
	InlineSigning    bool
	RawZone          *ZoneData // for inline-signing: the unsigned companion
	SignedZone       *ZoneData // for inline-signing: the signed companion

	CheckNames       CheckNamesPolicy
	CheckNamesFail   bool
	CheckDupRecords  string
	CheckMX          string
	CheckIntegrity   bool
	ZeroNoSoaTTL     bool
	Nsec3TestZone    bool
	ProvideZoneVersion bool

	MaxRecords, MaxRecordsPerType, MaxTypesPerName int
	MaxJournalSize, MaxZoneTTL, MaxIxfrRatio       int

	CheckDS string

	// static-stub apex, populated only for ZoneStaticStub (§3, §4.2 step 7)
	ApexNS   []dns.RR
	ApexA    []dns.RR
	ApexAAAA []dns.RR

	ViewName string

	Error    bool
	ErrorType ErrorType
	ErrorMsg string
}

func (zd *ZoneData) SetError(t ErrorType, format string, args ...interface{}) {
	zd.mu.Lock()
	defer zd.mu.Unlock()
	if t == NoError {
		zd.Error = false
		zd.ErrorType = NoError
		zd.ErrorMsg = ""
		return
	}
	zd.Error = true
	zd.ErrorType = t
	zd.ErrorMsg = errf(t, format, args...).Error()
}

// Key is the (view, class, name) identity used by P2's uniqueness
// invariant, with hint and redirect zones kept in their own scopes as
// required by P2.
func ZoneScopeKey(zt ZoneType) string {
	switch zt {
	case ZoneHint:
		return "hint"
	case ZoneRedirect:
		return "redirect"
	default:
		return "ordinary"
	}
}
