/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */

// Package acl is the external ACLResolver collaborator (C3): it
// materializes ACL objects from the nested config grammar described in
// spec.md §6. It is deliberately shallow — named-ACL expansion,
// negation, built-in any/none/localhost/localnets, and bare
// address/prefix elements — since the full BIND ACL evaluator
// (geo-ip, key-based match, nested runtime re-evaluation) is out of
// scope per spec.md §1.
package acl

import (
	"fmt"
	"net"
	"strings"
)

// Builtins that may never be redefined by a user ACL.
var Builtins = map[string]bool{
	"any":       true,
	"none":      true,
	"localhost": true,
	"localnets": true,
}

// Element is one parsed ACL element: an address/prefix, a reference to
// a named ACL, or a negation of another element.
type Element struct {
	Negate    bool
	Prefix    *net.IPNet
	NamedACL  string
	Builtin   string
}

func (e Element) String() string {
	s := ""
	switch {
	case e.Builtin != "":
		s = e.Builtin
	case e.NamedACL != "":
		s = e.NamedACL
	case e.Prefix != nil:
		s = e.Prefix.String()
	}
	if e.Negate {
		return "!" + s
	}
	return s
}

// Parse turns raw element strings (as found in a `{ elem; ... }` list,
// §6's ACL grammar surface) into Elements. It resolves syntax only; it
// does not expand named-ACL references, so cycles cannot occur here
// (the caller, ResolveEntryPoint, expands references and detects
// cycles with a visited-set).
func Parse(raw []string) ([]Element, error) {
	out := make([]Element, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		negate := false
		if strings.HasPrefix(r, "!") {
			negate = true
			r = strings.TrimSpace(r[1:])
		}
		lower := strings.ToLower(r)
		if Builtins[lower] {
			out = append(out, Element{Negate: negate, Builtin: lower})
			continue
		}
		if ip, ipnet, err := net.ParseCIDR(r); err == nil {
			ipnet.IP = ip.Mask(ipnet.Mask)
			out = append(out, Element{Negate: negate, Prefix: ipnet})
			continue
		}
		if ip := net.ParseIP(r); ip != nil {
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			_, ipnet, _ := net.ParseCIDR(fmt.Sprintf("%s/%d", ip.String(), bits))
			out = append(out, Element{Negate: negate, Prefix: ipnet})
			continue
		}
		// Anything else is treated as a named-ACL reference. Parse does
		// not check that it is defined; ResolveEntryPoint expands it when
		// the table defines it and otherwise returns it unexpanded.
		out = append(out, Element{Negate: negate, NamedACL: lower})
	}
	return out, nil
}

// ResolveEntryPoint is the package's single entry point (C3 "consumed
// via a single entry point"): it resolves a named ACL (or an inline
// element) against the table of user-defined ACLs, expanding nested
// named references and rejecting cycles. A builtin name always resolves
// to the builtin, even if the table has an entry of that name; rejecting
// such a definition is ValidateDefinition's job. A name that is neither
// builtin nor in the table is parsed as a single element and not
// checked further. No code in the named package calls it.
func ResolveEntryPoint(name string, table map[string][]string) ([]Element, error) {
	return resolve(name, table, map[string]bool{})
}

func resolve(name string, table map[string][]string, seen map[string]bool) ([]Element, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if Builtins[lower] {
		return []Element{{Builtin: lower}}, nil
	}
	if seen[lower] {
		return nil, fmt.Errorf("acl: cyclic reference involving %q", lower)
	}
	raw, ok := table[lower]
	if !ok {
		// Not a named ACL: treat as an inline single-element list
		// (e.g. a bare address used where an ACL is expected).
		return Parse([]string{name})
	}
	seen[lower] = true
	elems, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	var out []Element
	for _, e := range elems {
		if e.NamedACL != "" {
			nested, err := resolve(e.NamedACL, table, seen)
			if err != nil {
				return nil, err
			}
			if e.Negate {
				for i := range nested {
					nested[i].Negate = !nested[i].Negate
				}
			}
			out = append(out, nested...)
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// ValidateDefinition rejects a user ACL definition that redefines a
// builtin name (§6).
func ValidateDefinition(name string) error {
	if Builtins[strings.ToLower(strings.TrimSpace(name))] {
		return fmt.Errorf("acl: %q is a reserved built-in ACL name", name)
	}
	return nil
}
