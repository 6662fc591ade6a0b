/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

import (
	"log"
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// GlobalStuff holds process-wide state that is not owned by any single
// Config instance: the control-task exclusivity token, verbosity flags,
// and the live zone table. It intentionally mirrors the teacher's
// GlobalStuff rather than scattering package-level vars everywhere.
type GlobalStuff struct {
	Verbose bool
	Debug   bool

	App AppDetails

	// controlToken serializes configuration and reconfiguration: while
	// held, the view list is stable (§5). Validation never needs to take
	// it; assembly and swap-in do.
	controlToken sync.Mutex
}

func (gs *GlobalStuff) Lock()   { gs.controlToken.Lock() }
func (gs *GlobalStuff) Unlock() { gs.controlToken.Unlock() }

var Globals = GlobalStuff{}

// Zones is the live, shared zone table. It is read-mostly from the
// (hypothetical) serving layer and written only by the control task
// while holding Globals' control token.
var Zones = cmap.New[*ZoneData]()

type AppDetails struct {
	Name    string
	Version string
	Mode    string
}

func init() {
	log.SetFlags(log.Lshortfile | log.Ltime)
}
