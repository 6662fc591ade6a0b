/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

// OptionStack is C4: it evaluates an option by walking the ordered
// stack [zone, template, view, global, built-in] and returning the
// first definition (P8). Generalizing the teacher's fixed-length
// option-map array (§9 "implicit inheritance stack"), the assembler's
// ACL and transfer-unit lookups go through the functions below instead
// of ad hoc nil-checking, so the precedence order stays in one place.
// Not every accessor consults every layer: AllowQuery walks zone,
// template, view and global; AllowNotify, AllowUpdate and AllowTransfer
// walk zone, template and global; AllowUpdateForwarding and
// TransfersInSeconds read only zone and global. A layer an accessor
// does not list is never consulted for that option.
type OptionStack struct {
	Zone     *ZoneConf
	Template *TemplateConf
	View     *ViewConf
	Global   *GlobalOptions
}

// layerNames mirrors the precedence order for diagnostics.
var layerNames = []string{"zone", "template", "view", "global", "builtin"}

// ResolveScalar returns the first non-nil pointer among layers, in
// stack order, or builtin if none defines it. The second result is the
// winning layer's name, taken from layerNames by the layer's position
// (or "builtin" when no layer is set), so callers can log which scope
// won, matching BIND's own diagnostic style.
func ResolveScalar[T any](builtin T, layers ...*T) (T, string) {
	for i, l := range layers {
		if l != nil {
			name := "builtin"
			if i < len(layerNames) {
				name = layerNames[i]
			}
			return *l, name
		}
	}
	return builtin, "builtin"
}

// ResolveNonEmptyString is the common case of ResolveScalar for plain
// (non-pointer) string fields where "" means "not set at this layer".
func ResolveNonEmptyString(builtin string, layers ...string) (string, string) {
	for i, l := range layers {
		if l != "" {
			name := "builtin"
			if i < len(layerNames) {
				name = layerNames[i]
			}
			return l, name
		}
	}
	return builtin, "builtin"
}

// AllowQuery resolves the allow-query ACL string through [zone,
// template, view, global], per §4.2.1 step order for non-transfer ACL
// kinds (attachment is handled separately by configure_zone_acl).
func (s *OptionStack) AllowQuery() *string {
	if s.Zone != nil && s.Zone.AllowQuery != nil {
		return s.Zone.AllowQuery
	}
	if s.Template != nil && s.Template.AllowQuery != nil {
		return s.Template.AllowQuery
	}
	if s.View != nil && s.View.AllowQuery != nil {
		return s.View.AllowQuery
	}
	if s.Global != nil && s.Global.AllowQuery != nil {
		return s.Global.AllowQuery
	}
	return nil
}

func (s *OptionStack) AllowNotify() *string {
	if s.Zone != nil && s.Zone.AllowNotify != nil {
		return s.Zone.AllowNotify
	}
	if s.Template != nil && s.Template.AllowNotify != nil {
		return s.Template.AllowNotify
	}
	if s.Global != nil && s.Global.AllowNotify != nil {
		return s.Global.AllowNotify
	}
	return nil
}

func (s *OptionStack) AllowUpdate() *string {
	if s.Zone != nil && s.Zone.AllowUpdate != nil {
		return s.Zone.AllowUpdate
	}
	if s.Template != nil && s.Template.AllowUpdate != nil {
		return s.Template.AllowUpdate
	}
	if s.Global != nil && s.Global.AllowUpdate != nil {
		return s.Global.AllowUpdate
	}
	return nil
}

func (s *OptionStack) AllowUpdateForwarding() *string {
	if s.Zone != nil && s.Zone.AllowUpdateForwarding != nil {
		return s.Zone.AllowUpdateForwarding
	}
	if s.Global != nil && s.Global.AllowUpdateForwarding != nil {
		return s.Global.AllowUpdateForwarding
	}
	return nil
}

func (s *OptionStack) AllowTransfer() *ACLWithTransport {
	if s.Zone != nil && s.Zone.AllowTransfer != nil {
		return s.Zone.AllowTransfer
	}
	if s.Template != nil && s.Template.AllowTransfer != nil {
		return s.Template.AllowTransfer
	}
	if s.Global != nil && s.Global.AllowTransfer != nil {
		return s.Global.AllowTransfer
	}
	return nil
}

// TransfersInSeconds resolves the legacy flag that disables the x60
// conversion for transfer-time values (§4.2 step 4).
func (s *OptionStack) TransfersInSeconds() bool {
	if s.Zone != nil && s.Zone.TransfersInSeconds != nil {
		return *s.Zone.TransfersInSeconds
	}
	if s.Global != nil {
		return s.Global.TransfersInSeconds
	}
	return false
}

func (s *OptionStack) KeyDirectory() string {
	v, _ := ResolveNonEmptyString("", s.zoneKeyDirectory(), s.zoneKeyStoreDirectory(), s.globalKeyDirectory())
	return v
}

func (s *OptionStack) zoneKeyDirectory() string {
	if s.Zone == nil {
		return ""
	}
	return s.Zone.KeyDirectory
}

func (s *OptionStack) zoneKeyStoreDirectory() string {
	return "" // resolved via KeyStores map by caller; placeholder kept for stack-order clarity
}

func (s *OptionStack) globalKeyDirectory() string {
	if s.Global == nil {
		return ""
	}
	return s.Global.KeyDirectory
}
