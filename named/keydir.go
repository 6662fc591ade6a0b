/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

import "sync"

// KeyDirectoryRegistry is C9: it enforces that a given on-disk
// key-directory is never shared by two zones running different DNSSEC
// policies, since BIND serializes key material for all zones sharing a
// directory into the same on-disk key set and a policy mismatch would
// silently corrupt one zone's key rollover schedule with another's.
type KeyDirectoryRegistry struct {
	mu       sync.Mutex
	bindings map[string]keyDirBinding
}

type keyDirBinding struct {
	policyName string
	firstZone  string
	loc        SourceLoc
}

func NewKeyDirectoryRegistry() *KeyDirectoryRegistry {
	return &KeyDirectoryRegistry{bindings: make(map[string]keyDirBinding)}
}

// Bind registers zoneName's use of dir with the resolved policy name
// ("" and "none" both mean "no DNSSEC policy" and are treated as the
// same binding value). A conflicting second binding to the same
// directory is reported through sink rather than returned, consistent
// with the accumulate-don't-stop validator convention.
func (r *KeyDirectoryRegistry) Bind(sink *ErrorSink, category, dir, policyName, zoneName string, loc SourceLoc) {
	if dir == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.bindings[dir]
	if !ok {
		r.bindings[dir] = keyDirBinding{policyName: policyName, firstZone: zoneName, loc: loc}
		return
	}
	if existing.policyName != policyName {
		sink.Add(category, SemanticConflictError, loc,
			"key-directory %q is used by zone %q with policy %q and by zone %q with policy %q",
			dir, existing.firstZone, existing.policyName, zoneName, policyName)
	}
}

// Reset clears all bindings; used between independent validation runs
// (e.g. successive test cases sharing a registry) so that stale
// bindings from a previous config never leak into the next.
func (r *KeyDirectoryRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings = make(map[string]keyDirBinding)
}
