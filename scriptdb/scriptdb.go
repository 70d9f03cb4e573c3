// Package scriptdb provides the script-objects database external
// collaborator (spec §4.2 "look up h in the script-objects database",
// §5 "A process-wide script-objects database handle, accessed read-only
// after a one-shot initialization guarded by a mutex"). The core only
// needs the read interface; loading the real database (parsing whatever
// on-disk script-objects dump a given engine build ships) is out of
// scope per spec §1 and is the caller's responsibility.
package scriptdb

import "sync"

// Entry is one resolved script-object database record.
type Entry struct {
	Hash         uint64
	Path         string // full "/Script/..." object path
	OuterHash    uint64 // zero iff this entry is a package root
	HasOuter     bool
	IsClass      bool
	IsCDO        bool
	CDOClassHash uint64 // authoritative per spec Open Question (b); zero if unknown
}

// Database is the read-only lookup surface the converters depend on.
// Implementations must be safe for concurrent read access (spec §5).
type Database interface {
	Lookup(hash uint64) (Entry, bool)
	LookupByPath(path string) (Entry, bool)
}

// InMemory is a simple map-backed Database, suitable for tests and for
// small embedded script-object sets. A real deployment loads this from
// the engine's script-objects dump (external collaborator) and wraps it
// behind the same Database interface.
type InMemory struct {
	byHash uint64Map
	byPath map[string]Entry
}

type uint64Map = map[uint64]Entry

// NewInMemory builds an InMemory database from entries.
func NewInMemory(entries []Entry) *InMemory {
	db := &InMemory{byHash: make(uint64Map, len(entries)), byPath: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		db.byHash[e.Hash] = e
		db.byPath[e.Path] = e
	}
	return db
}

func (db *InMemory) Lookup(hash uint64) (Entry, bool) {
	e, ok := db.byHash[hash]
	return e, ok
}

func (db *InMemory) LookupByPath(path string) (Entry, bool) {
	e, ok := db.byPath[path]
	return e, ok
}

var (
	singletonMu sync.Mutex
	singleton   Database
)

// SetSingleton installs the process-wide database instance, guarded by a
// mutex as spec §5 requires. It is idempotent: calling it again replaces
// the instance (used by tests that need a fresh database per case).
func SetSingleton(db Database) {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	singleton = db
}

// Singleton returns the process-wide database, or nil if none has been
// installed yet (callers must treat that as "database unavailable" per
// spec §4.2's fallback policy, not as an error).
func Singleton() Database {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	return singleton
}
