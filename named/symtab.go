/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

import (
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// SymbolTable is a scoped, define-reject-if-exists registry (C2). It is
// owned by the validator stack frame that creates it and discarded on
// return (§5 "Shared-resource policy"); nothing about it is safe to
// retain past a single validation pass, so it favors a plain map
// guarded by a mutex over a concurrent map.
type SymbolTable[V any] struct {
	mu      sync.Mutex
	entries map[string]V
}

func NewSymbolTable[V any]() *SymbolTable[V] {
	return &SymbolTable[V]{entries: make(map[string]V)}
}

// Define inserts key->val, returning the existing value and false if
// the key was already defined (define-reject-if-exists).
func (t *SymbolTable[V]) Define(key string, val V) (existing V, inserted bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cur, ok := t.entries[key]; ok {
		return cur, false
	}
	t.entries[key] = val
	return val, true
}

func (t *SymbolTable[V]) Lookup(key string) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.entries[key]
	return v, ok
}

func (t *SymbolTable[V]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Keys returns the defined keys in no particular order.
func (t *SymbolTable[V]) Keys() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return maps.Keys(t.entries)
}

// SortedKeys returns the defined keys in ascending order, for
// reproducible log output and test assertions.
func (t *SymbolTable[V]) SortedKeys() []string {
	keys := t.Keys()
	slices.Sort(keys)
	return keys
}
