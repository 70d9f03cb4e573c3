// Package usmapcache provides the process-wide usmap cache external
// collaborator (spec §5 "A process-wide usmap cache mapping file path to
// parsed mapping record, also guarded by a mutex for insertion; readers
// take a shared view"). Parsing a .usmap file's contents is out of scope
// per spec §1 ("the usmap type-mapping loader"); this package only owns
// the cache's lifecycle.
package usmapcache

import "sync"

// Mapping is an opaque parsed usmap record. The core never inspects its
// contents (struct property deserialization is out of scope, spec §1);
// it is carried only so callers can plug in a loader and share the result.
type Mapping struct {
	Path string
	Data interface{}
}

type cache struct {
	mu      sync.Mutex
	entries map[string]*Mapping
}

var shared = &cache{entries: make(map[string]*Mapping)}

// GetOrLoad returns the cached Mapping for path, invoking load to parse it
// on first use. load is only ever called once per path even under
// concurrent callers (spec §5 "parse-once semantics").
func GetOrLoad(path string, load func(string) (*Mapping, error)) (*Mapping, error) {
	shared.mu.Lock()
	defer shared.mu.Unlock()

	if m, ok := shared.entries[path]; ok {
		return m, nil
	}
	m, err := load(path)
	if err != nil {
		return nil, err
	}
	shared.entries[path] = m
	return m, nil
}

// Reset clears the cache; used by tests that need isolation between cases.
func Reset() {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	shared.entries = make(map[string]*Mapping)
}
