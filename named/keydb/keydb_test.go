/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package keydb

import (
	"path/filepath"
	"testing"
)

func TestOpenCreatesTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.db")
	db, err := Open(path, false, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if err := db.RecordBinding("example.com.", "/var/named/keys", "default"); err != nil {
		t.Fatalf("RecordBinding: %v", err)
	}
}

func TestRecordAndLookupBinding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.db")
	db, err := Open(path, false, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if err := db.RecordBinding("example.com.", "/var/named/keys", "default"); err != nil {
		t.Fatalf("RecordBinding: %v", err)
	}
	zone, policy, found, err := db.LookupBinding("/var/named/keys")
	if err != nil {
		t.Fatalf("LookupBinding: %v", err)
	}
	if !found || zone != "example.com." || policy != "default" {
		t.Errorf("LookupBinding = %q, %q, %v; want example.com., default, true", zone, policy, found)
	}
}

func TestRecordBindingUpdatesPolicyOnConflict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.db")
	db, err := Open(path, false, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if err := db.RecordBinding("example.com.", "/var/named/keys", "default"); err != nil {
		t.Fatalf("RecordBinding: %v", err)
	}
	if err := db.RecordBinding("example.com.", "/var/named/keys", "custom"); err != nil {
		t.Fatalf("RecordBinding (update): %v", err)
	}
	_, policy, found, err := db.LookupBinding("/var/named/keys")
	if err != nil {
		t.Fatalf("LookupBinding: %v", err)
	}
	if !found || policy != "custom" {
		t.Errorf("policy after re-bind = %q, want custom", policy)
	}
}

func TestLookupBindingNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.db")
	db, err := Open(path, false, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	_, _, found, err := db.LookupBinding("/no/such/dir")
	if err != nil {
		t.Fatalf("LookupBinding: %v", err)
	}
	if found {
		t.Error("expected found=false for a directory that was never bound")
	}
}

func TestRecordTrustAnchorIgnoresDuplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.db")
	db, err := Open(path, false, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if err := db.RecordTrustAnchor(".", "static-key", 257, 3, 8, "AAAA"); err != nil {
		t.Fatalf("RecordTrustAnchor: %v", err)
	}
	if err := db.RecordTrustAnchor(".", "static-key", 257, 3, 8, "AAAA"); err != nil {
		t.Fatalf("RecordTrustAnchor (duplicate, should be ignored): %v", err)
	}
}

func TestBeginRejectsNestedTransaction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.db")
	db, err := Open(path, false, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	tx, err := db.Begin("first")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback()

	if _, err := db.Begin("second"); err == nil {
		t.Fatal("expected an error starting a second transaction while one is already in progress")
	}
}
