/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

// ValidateRemoteServerLists is §4.1 step 3: remote-servers, primaries,
// parental-agents and masters all share one global uniqueness namespace
// for the list *name*, since BIND treats the four keywords as synonyms
// for exactly this purpose.
func ValidateRemoteServerLists(sink *ErrorSink, category string, lists map[string]RemoteServersConf) {
	names := NewSymbolTable[RemoteServersConf]()
	for key, l := range lists {
		norm := normalizeKeyword(l.Name)
		if norm == "" {
			norm = normalizeKeyword(key)
		}
		if _, inserted := names.Define(norm, l); !inserted {
			sink.Add(category, DuplicateError, l.Loc,
				"remote-servers/primaries/parental-agents/masters list %q is defined more than once", norm)
		}
	}
}
