package internal

import (
	"net/http"
	"sync"
)

// Store is the Entry Store (spec §4.A): a primary-key map from Key to
// the ordered list of Entry values stored under it, one per distinct
// secondary (Vary) key. It is safe for concurrent use; the embedding
// httpcache.Cache does not need its own lock around Store calls.
type Store struct {
	mu      sync.RWMutex
	entries map[Key][]*Entry
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[Key][]*Entry)}
}

// Lookup returns the entry under key whose captured request headers
// match reqHeader's Vary-named values, or nil if there is no such entry.
// Entries are tried most-recently-appended first, so a later Store call
// for the same secondary key masks an earlier one without needing to
// remove it from the slice immediately.
func (s *Store) Lookup(key Key, reqHeader http.Header) *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidates := s.entries[key]
	for i := len(candidates) - 1; i >= 0; i-- {
		if e := candidates[i]; CandidateMatches(e, reqHeader) {
			return e
		}
	}
	return nil
}

// All returns every entry currently stored under key, most-recent last.
// Used by the range resolver, which may need to consider more than one
// stored variant (a complete 200 and a partial 206) for the same
// secondary key.
func (s *Store) All(key Key) []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Entry, len(s.entries[key]))
	copy(out, s.entries[key])
	return out
}

// Append adds e under key. It never replaces or removes an existing
// entry: an older entry for the same secondary key is superseded for
// future Lookups (since Lookup scans newest-first) but remains reachable
// via All/Keys until Invalidate or Clear removes it, so readers that
// already hold a reference to it keep a consistent view.
func (s *Store) Append(key Key, e *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = append(s.entries[key], e)
}

// Invalidate drops every entry stored under key. It does not mutate any
// Entry already retrieved by a caller; a reconstructed response built
// from a now-invalidated Entry remains valid to read to completion.
func (s *Store) Invalidate(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Clear removes every entry from the store.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[Key][]*Entry)
}

// Keys returns every primary key currently holding at least one entry.
// Used by the debug/introspection handlers.
func (s *Store) Keys() []Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Key, 0, len(s.entries))
	for k := range s.entries {
		out = append(out, k)
	}
	return out
}
