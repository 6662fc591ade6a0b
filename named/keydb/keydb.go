/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */

// Package keydb is the persistence layer backing KeyDirectoryRegistry
// and TrustAnchorChecker across process restarts: a small sqlite store
// recording which {key-directory, policy} bindings and which trust
// anchors were last seen, so a restart can detect a binding or anchor
// that silently changed underneath an already-signed zone.
package keydb

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

var defaultTables = map[string]string{
	"KeyDirBindings": `CREATE TABLE IF NOT EXISTS 'KeyDirBindings' (
id		  INTEGER PRIMARY KEY,
zonename	  TEXT,
directory	  TEXT,
policy		  TEXT,
comment		  TEXT,
UNIQUE (zonename, directory)
)`,

	"TrustAnchors": `CREATE TABLE IF NOT EXISTS 'TrustAnchors' (
id		  INTEGER PRIMARY KEY,
owner		  TEXT,
kind		  TEXT,
i1		  INTEGER,
i2		  INTEGER,
i3		  INTEGER,
data		  TEXT,
comment		  TEXT,
UNIQUE (owner, kind, data)
)`,
}

// Tx wraps *sql.Tx the way the rest of the core wraps transactions:
// every statement is logged on failure with the context string that
// opened it, so an operator can tell which logical operation a broken
// commit belongs to.
type Tx struct {
	*sql.Tx
	db      *KeyDB
	context string
}

func (tx *Tx) Commit() error {
	err := tx.Tx.Commit()
	tx.db.mu.Lock()
	tx.db.ctx = ""
	tx.db.mu.Unlock()
	if err != nil {
		log.Printf("keydb: error committing transaction (%s): %v", tx.context, err)
	}
	return err
}

func (tx *Tx) Rollback() error {
	err := tx.Tx.Rollback()
	tx.db.mu.Lock()
	tx.db.ctx = ""
	tx.db.mu.Unlock()
	if err != nil {
		log.Printf("keydb: error rolling back transaction (%s): %v", tx.context, err)
	}
	return err
}

func (tx *Tx) Exec(query string, args ...interface{}) (sql.Result, error) {
	result, err := tx.Tx.Exec(query, args...)
	if err != nil {
		log.Printf("keydb: error executing (%s): %v", tx.context, err)
	}
	return result, err
}

// KeyDB is the sqlite-backed handle; verbose controls whether setup and
// teardown are logged, mirroring the core's own Globals.Verbose switch
// without importing the named package (keydb must stay leaf-level).
type KeyDB struct {
	DB      *sql.DB
	mu      sync.Mutex
	ctx     string
	verbose bool
}

func (db *KeyDB) Begin(context string) (*Tx, error) {
	db.mu.Lock()
	if db.ctx != "" {
		db.mu.Unlock()
		return nil, fmt.Errorf("keydb: transaction already in progress: %s", db.ctx)
	}
	db.ctx = context
	db.mu.Unlock()
	tx, err := db.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("keydb: error beginning transaction (%s): %w", context, err)
	}
	return &Tx{Tx: tx, db: db, context: context}, nil
}

func (db *KeyDB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.DB.Exec(query, args...)
}

func (db *KeyDB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.DB.Query(query, args...)
}

func (db *KeyDB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.DB.QueryRow(query, args...)
}

func (db *KeyDB) Close() error {
	return db.DB.Close()
}

func setupTables(db *sql.DB, verbose bool) error {
	if verbose {
		log.Printf("keydb: setting up missing tables")
	}
	for name, schema := range defaultTables {
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("keydb: failed to set up schema for %s: %w", name, err)
		}
	}
	return nil
}

// Open opens (creating if absent) the sqlite file at dbfile. force
// drops every table before the schema is (re)created.
func Open(dbfile string, force bool, verbose bool) (*KeyDB, error) {
	if dbfile == "" {
		return nil, fmt.Errorf("keydb: empty database file path")
	}
	if _, err := os.Stat(dbfile); err == nil {
		if err := os.Chmod(dbfile, 0664); err != nil {
			return nil, fmt.Errorf("keydb: ensuring %s is writable: %w", dbfile, err)
		}
	}
	db, err := sql.Open("sqlite3", dbfile)
	if err != nil {
		return nil, fmt.Errorf("keydb: opening %s: %w", dbfile, err)
	}
	if force {
		for table := range defaultTables {
			if _, err := db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
				return nil, fmt.Errorf("keydb: dropping table %s: %w", table, err)
			}
		}
	}
	if err := setupTables(db, verbose); err != nil {
		return nil, err
	}
	return &KeyDB{DB: db, verbose: verbose}, nil
}

// RecordBinding persists a {zone, key-directory, policy} binding (C9's
// durable half; the in-memory KeyDirectoryRegistry enforces uniqueness
// within one validation run, this table lets a restart detect drift
// against what was bound last time).
func (db *KeyDB) RecordBinding(zonename, directory, policy string) error {
	_, err := db.Exec(
		`INSERT INTO KeyDirBindings (zonename, directory, policy) VALUES (?, ?, ?)
		 ON CONFLICT(zonename, directory) DO UPDATE SET policy=excluded.policy`,
		zonename, directory, policy)
	return err
}

// LookupBinding returns the persisted policy name for a given
// directory, if any zone has ever bound it.
func (db *KeyDB) LookupBinding(directory string) (zonename, policy string, found bool, err error) {
	row := db.QueryRow(`SELECT zonename, policy FROM KeyDirBindings WHERE directory = ? LIMIT 1`, directory)
	err = row.Scan(&zonename, &policy)
	if err == sql.ErrNoRows {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, err
	}
	return zonename, policy, true, nil
}

// RecordTrustAnchor persists one trust-anchor entry for later drift
// detection (e.g. a static anchor's data blob changing between runs).
func (db *KeyDB) RecordTrustAnchor(owner, kind string, i1, i2, i3 int, data string) error {
	_, err := db.Exec(
		`INSERT OR IGNORE INTO TrustAnchors (owner, kind, i1, i2, i3, data) VALUES (?, ?, ?, ?, ?, ?)`,
		owner, kind, i1, i2, i3, data)
	return err
}
