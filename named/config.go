/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

import "time"

// Config is the root of the decoded configuration tree. It is the
// concrete (YAML-backed) stand-in for the opaque ConfigTree of §3/C1:
// everything under it is owned exclusively by the tree until a zone or
// ACL is materialized out of it.
type Config struct {
	Options        GlobalOptions                `yaml:"options"`
	ACLs           map[string]ACLConf           `yaml:"acl"`
	Controls       []ControlConf                `yaml:"controls"`
	RemoteServers  map[string]RemoteServersConf  `yaml:"remote-servers"`
	HTTP           map[string]HTTPConf          `yaml:"http"`
	TLS            map[string]TLSConf           `yaml:"tls"`
	DnssecPolicies map[string]DnssecPolicyConf  `yaml:"dnssec-policy"`
	KeyStores      map[string]KeyStoreConf      `yaml:"key-store"`
	Keys           map[string]KeyConf           `yaml:"key"`
	Dlz            map[string]DlzConf           `yaml:"dlz"`
	Dyndb          map[string]DyndbConf         `yaml:"dyndb"`
	Plugins        []PluginConf                 `yaml:"plugin"`
	Templates      []TemplateConf               `yaml:"template"`
	Views          []ViewConf                   `yaml:"view"`
	Zones          []ZoneConf                   `yaml:"zone"`
	TrustAnchors   []TrustAnchorConf            `yaml:"trust-anchors"`
	Logging        LoggingConf                  `yaml:"logging"`

	Internal InternalConf `yaml:"-"`
}

// InternalConf holds process state that is never part of the on-disk
// configuration: the file path used to load it, the session key name
// (for update-policy "local", S4), and the run ID tagged onto log lines.
type InternalConf struct {
	CfgFile        string
	SessionKeyName string // non-empty once a session key has been generated
	RunID          string
}

// GlobalOptions is the "global" level of the option-resolution stack
// (§4.2 step 1, C4). Only the fields that the core cares about are
// modeled; anything else in a real named.conf would live here too.
type GlobalOptions struct {
	Directory       string `yaml:"directory"`
	KeyDirectory    string `yaml:"key-directory"`
	ServerID        string `yaml:"server-id"`
	EmptyServer     string `yaml:"empty-server"`
	DisableEmptyZone []string `yaml:"disable-empty-zone"`

	MaxRSAExponent     int `yaml:"max-rsa-exponent"`
	NTALifetime        time.Duration `yaml:"nta-lifetime"`
	LmdbMapSize        int64 `yaml:"lmdb-mapsize"`

	Recursion       *bool `yaml:"recursion"`
	AllowRecursion  *string `yaml:"allow-recursion"`
	AllowQuery      *string `yaml:"allow-query"`
	AllowQueryOn    *string `yaml:"allow-query-on"`
	AllowTransfer   *ACLWithTransport `yaml:"allow-transfer"`
	AllowNotify     *string `yaml:"allow-notify"`
	AllowUpdate     *string `yaml:"allow-update"`
	AllowUpdateForwarding *string `yaml:"allow-update-forwarding"`

	Notify                string `yaml:"notify"`
	DnssecValidation      string `yaml:"dnssec-validation"`
	TransfersInSeconds    bool   `yaml:"transfers-in-seconds"`

	CheckNames map[string]string `yaml:"check-names"` // "primary"/"secondary" -> ignore|warn|fail

	Listeners []ListenerConf `yaml:"listen-on"`

	FetchQuotaParams *FetchQuotaParams `yaml:"fetch-quota-params"`
	RateLimit        *RateLimitConf    `yaml:"rate-limit"`
}

type FetchQuotaParams struct {
	Low, High, Discount float64
}

type RateLimitConf struct {
	ResponsesPerSecond int `yaml:"responses-per-second"`
}

type ListenerConf struct {
	Port   int    `yaml:"port"`
	Proxy  string `yaml:"proxy"` // "" | "encrypted" | "plain"
	TLS    string `yaml:"tls"`   // profile name | "none" | "ephemeral"
	HTTP   string `yaml:"http"`  // profile name | "none" | "ephemeral"
	Loc    SourceLoc `yaml:"-"`
}

// ACLConf is a named ACL definition (§6 ACL grammar surface).
type ACLConf struct {
	Name     string   `yaml:"name"`
	Elements []string `yaml:"elements"`
	Loc      SourceLoc `yaml:"-"`
}

// ACLWithTransport models allow-transfer's optional "port N transport
// tcp|tls { ... }" prefix (§4.1 step 4, §3).
type ACLWithTransport struct {
	Port      int    `yaml:"port"`
	Transport string `yaml:"transport"`
	ACL       string `yaml:"acl"`
}

type ControlConf struct {
	SocketAddress string   `yaml:"address"`
	Allow         string   `yaml:"allow"`
	Keys          []string `yaml:"keys"`
	Loc           SourceLoc `yaml:"-"`
}

// RemoteServersConf models the four synonym keywords primaries,
// masters, parental-agents and remote-servers (§4.1 step 3): they share
// one global uniqueness namespace for the list *name*.
type RemoteServersConf struct {
	Name      string          `yaml:"name"`
	Addresses []RemoteServer  `yaml:"addresses"`
	Loc       SourceLoc       `yaml:"-"`
}

type RemoteServer struct {
	Address    string `yaml:"address"`
	Source     string `yaml:"source"`
	Key        string `yaml:"key"`
	TLSProfile string `yaml:"tls"`
}

type HTTPConf struct {
	Name     string `yaml:"name"`
	Endpoint string `yaml:"endpoint"`
	Loc      SourceLoc `yaml:"-"`
}

type TLSConf struct {
	Name      string   `yaml:"name"`
	KeyFile   string   `yaml:"key-file"`
	CertFile  string   `yaml:"cert-file"`
	Protocols []string `yaml:"protocols"`
	Ciphers   []string `yaml:"ciphers"`
	Loc       SourceLoc `yaml:"-"`
}

type KeyStoreConf struct {
	Name      string `yaml:"name"`
	Directory string `yaml:"directory"`
	Pkcs11URI string `yaml:"pkcs11-uri"`
	Loc       SourceLoc `yaml:"-"`
}

type KeyConf struct {
	Name      string `yaml:"name"`
	Algorithm string `yaml:"algorithm"`
	Secret    string `yaml:"secret"`
}

type DlzConf struct {
	Name   string            `yaml:"name"`
	Driver string            `yaml:"driver"`
	Args   map[string]string `yaml:"args"`
}

type DyndbConf struct {
	Name    string `yaml:"name"`
	Library string `yaml:"library"`
}

type PluginConf struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

type LoggingConf struct {
	Channels []LogChannelConf `yaml:"channels"`
}

// LogChannelConf enforces "exactly one of file/syslog/null/stderr"
// (§4.1 step 1).
type LogChannelConf struct {
	Name   string `yaml:"name"`
	File   string `yaml:"file"`
	Syslog string `yaml:"syslog"`
	Null   *bool  `yaml:"null"`
	Stderr *bool  `yaml:"stderr"`
	Loc    SourceLoc `yaml:"-"`
}

func (c LogChannelConf) outputCount() int {
	n := 0
	if c.File != "" {
		n++
	}
	if c.Syslog != "" {
		n++
	}
	if c.Null != nil && *c.Null {
		n++
	}
	if c.Stderr != nil && *c.Stderr {
		n++
	}
	return n
}

// TrustAnchorConf is one `"<name>" <kind> <i1> <i2> <i3> "<data>";` entry
// (§6). The i1/i2/i3 triple means flags/protocol/algorithm for the
// DNSKEY-form kinds (static-key, initial-key) and keytag/algorithm/
// digest-type for the DS-form kinds (static-ds, initial-ds); which
// reading applies is decided by Kind, not by position, so both are
// kept under their grammar names rather than renamed per-kind here.
type TrustAnchorConf struct {
	Owner      string `yaml:"owner"`
	Kind       string `yaml:"kind"`
	I1         int    `yaml:"i1"`
	I2         int    `yaml:"i2"`
	I3         int    `yaml:"i3"`
	Data       string `yaml:"data"`
	Loc        SourceLoc `yaml:"-"`
}

// ViewConf is §6's `view "<name>" [<class>] { ... };`.
type ViewConf struct {
	Name  string `yaml:"name"`
	Class string `yaml:"class"`

	MatchClients      []string `yaml:"match-clients"`
	MatchDestinations []string `yaml:"match-destinations"`
	AllowProxy        []string `yaml:"allow-proxy"`
	AllowQuery        *string  `yaml:"allow-query"`
	AllowQueryOn      *string  `yaml:"allow-query-on"`
	AllowQueryCache   *string  `yaml:"allow-query-cache"`
	AllowQueryCacheOn *string  `yaml:"allow-query-cache-on"`
	Blackhole         *string  `yaml:"blackhole"`

	Recursion      *bool   `yaml:"recursion"`
	AllowRecursion *string `yaml:"allow-recursion"`

	DNS64 []DNS64Conf `yaml:"dns64"`

	RateLimit        *RateLimitConf    `yaml:"rate-limit"`
	FetchQuotaParams *FetchQuotaParams `yaml:"fetch-quota-params"`

	TrustAnchors []TrustAnchorConf `yaml:"trust-anchors"`
	Options      GlobalOptions     `yaml:"options"`

	Zones []ZoneConf `yaml:"zone"`

	Loc SourceLoc `yaml:"-"`
}

type DNS64Conf struct {
	Prefix string `yaml:"prefix"`
	Suffix string `yaml:"suffix"`
}
