/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

import "testing"

func TestPlanReuseNoExisting(t *testing.T) {
	d, _ := PlanReuse(nil, ZonePrimary, "db.example.com", false, "", nil)
	if d != RebuildZone {
		t.Errorf("PlanReuse(nil, ...) = %s, want rebuild", d)
	}
}

func TestPlanReuseStaticStubAlwaysRebuilds(t *testing.T) {
	existing := &ZoneData{Type: ZoneStaticStub, File: "db.example.com"}
	d, reason := PlanReuse(existing, ZoneStaticStub, "db.example.com", false, "", nil)
	if d != RebuildZone {
		t.Errorf("static-stub reuse decision = %s, want rebuild (reason %q)", d, reason)
	}
}

func TestPlanReuseUnchangedReuses(t *testing.T) {
	existing := &ZoneData{Type: ZonePrimary, File: "db.example.com", InlineSigning: false}
	d, reason := PlanReuse(existing, ZonePrimary, "db.example.com", false, "", nil)
	if d != ReuseZone {
		t.Errorf("unchanged zone decision = %s (%s), want reuse", d, reason)
	}
}

func TestPlanReuseTypeChangeRebuilds(t *testing.T) {
	existing := &ZoneData{Type: ZonePrimary, File: "db.example.com"}
	d, _ := PlanReuse(existing, ZoneSecondary, "db.example.com", false, "", nil)
	if d != RebuildZone {
		t.Errorf("zone-type change decision = %s, want rebuild", d)
	}
}

func TestPlanReuseFileChangeRebuilds(t *testing.T) {
	existing := &ZoneData{Type: ZonePrimary, File: "old.db"}
	d, _ := PlanReuse(existing, ZonePrimary, "new.db", false, "", nil)
	if d != RebuildZone {
		t.Errorf("file-path change decision = %s, want rebuild", d)
	}
}

func TestPlanReuseInlineSigningToggleRebuilds(t *testing.T) {
	existing := &ZoneData{Type: ZonePrimary, File: "db.example.com", InlineSigning: false}
	d, _ := PlanReuse(existing, ZonePrimary, "db.example.com", true, "", nil)
	if d != RebuildZone {
		t.Errorf("inline-signing toggle decision = %s, want rebuild", d)
	}
}

func TestPlanReuseKeyLayoutChangeRebuilds(t *testing.T) {
	existing := &ZoneData{
		Type: ZonePrimary, File: "db.example.com",
		DnssecPolicy: &DnssecPolicy{Algorithm: 13},
	}
	newPolicy := &DnssecPolicy{Algorithm: 8}
	d, reason := PlanReuse(existing, ZonePrimary, "db.example.com", false, "custom", newPolicy)
	if d != RebuildZone {
		t.Errorf("algorithm change decision = %s (%s), want rebuild", d, reason)
	}
}

func TestPlanReuseTimingOnlyChangeReuses(t *testing.T) {
	existing := &ZoneData{
		Type: ZonePrimary, File: "db.example.com",
		DnssecPolicy: &DnssecPolicy{Algorithm: 13, KSK: KeyLifetime{Lifetime: 365 * 24 * 3600}},
	}
	newPolicy := &DnssecPolicy{Algorithm: 13, KSK: KeyLifetime{Lifetime: 30 * 24 * 3600}}
	d, reason := PlanReuse(existing, ZonePrimary, "db.example.com", false, "custom", newPolicy)
	if d != ReuseZone {
		t.Errorf("timing-only change decision = %s (%s), want reuse", d, reason)
	}
}
