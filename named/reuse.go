/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

// ReuseDecision is C7's verdict.
type ReuseDecision uint8

const (
	ReuseZone ReuseDecision = iota
	RebuildZone
)

func (d ReuseDecision) String() string {
	if d == ReuseZone {
		return "reuse"
	}
	return "rebuild"
}

// PlanReuse implements §4.3 / P7: given the existing live zone and the
// new configuration for the same (name, class, view), decide reuse vs
// rebuild.
//
// Rebuild triggers, evaluated in order so the reported reason is always
// the first one that actually applies:
//   - static-stub zones always rebuild (they carry no on-disk state worth
//     keeping; re-synthesizing the apex is cheap and correctness-critical
//     after any edit).
//   - the zone type changed.
//   - the file path changed.
//   - inline-signing was toggled.
//   - the KASP changed in a way that affects on-disk key layout (one side
//     has no policy, the algorithm differs, or the CSK vs split KSK/ZSK
//     shape differs; a policy name change or pure timing-parameter
//     tweaks do not count).
func PlanReuse(existing *ZoneData, newZt ZoneType, newFile string, newInline bool, newPolicyName string, newPolicy *DnssecPolicy) (ReuseDecision, string) {
	if existing == nil {
		return RebuildZone, "no existing zone"
	}
	if existing.Type == ZoneStaticStub || newZt == ZoneStaticStub {
		return RebuildZone, "static-stub zones are always rebuilt"
	}
	if existing.Type != newZt {
		return RebuildZone, "zone type changed"
	}
	if existing.File != newFile {
		return RebuildZone, "file path changed"
	}
	if existing.InlineSigning != newInline {
		return RebuildZone, "inline-signing toggled"
	}
	if keyLayoutChanged(existing.DnssecPolicy, newPolicy) {
		return RebuildZone, "dnssec-policy changed key layout"
	}
	return ReuseZone, "unchanged"
}

// keyLayoutChanged compares only the fields that determine what keys
// exist on disk (algorithm, CSK-vs-split-KSK/ZSK shape), not timing
// parameters that can be applied to an already-loaded key set in place.
func keyLayoutChanged(old, new_ *DnssecPolicy) bool {
	if (old == nil) != (new_ == nil) {
		return true
	}
	if old == nil {
		return false
	}
	if old.Algorithm != new_.Algorithm {
		return true
	}
	oldSplit := old.KSK.Lifetime != 0 || old.ZSK.Lifetime != 0
	newSplit := new_.KSK.Lifetime != 0 || new_.ZSK.Lifetime != 0
	return oldSplit != newSplit
}
