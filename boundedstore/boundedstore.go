/*
Package boundedstore adds a cost-bounded admission policy in front of an
[internal.Store], using a github.com/dgraph-io/ristretto/v2 frequency
sketch to decide whether a freshly completed entry is worth keeping once
the configured cost budget is full.

The underlying Store never needs to know about eviction: Wrap only gates
which Append calls go through. Evictions from the sketch do not reach the
wrapped Store; an entry Append has passed through stays there until
Invalidate or Clear removes it, and no *internal.Body a reader holds is
ever touched. Append costs an entry by the body bytes present when it is
called, so a response still under construction is costed by what has
arrived so far (0 for an entry appended before any body bytes).

Example usage:

	store, err := boundedstore.Wrap(internal.NewStore(), &boundedstore.Config{
		NumCounters: 1e7,
		MaxCost:     1 << 28,
		BufferItems: 64,
	})
*/
package boundedstore

import (
	"github.com/dgraph-io/ristretto/v2"

	"github.com/relayhouse/httpcache/internal"
)

// Config mirrors ristretto.Config, restated here so callers configure
// admission without importing ristretto directly, and so the cost/key
// types are fixed to what Store needs.
type Config struct {
	// NumCounters is the number of keys to track frequency of; see
	// ristretto's own docs for sizing guidance (roughly 10x the expected
	// number of resident entries).
	NumCounters int64
	// MaxCost is the admission budget in bytes; Append costs every entry
	// by its body length in bytes.
	MaxCost int64
	// BufferItems sizes ristretto's internal Get buffers; 64 is fine for
	// most uses.
	BufferItems int64
	// OnEvict, if set, is called once for every admitted entry the cost
	// sketch later evicts to make room for a new one. Ristretto only
	// retains a key's hash, not the original Key, so this reports a
	// count rather than which key was evicted.
	OnEvict func()
}

// Store wraps an *internal.Store, consulting a ristretto cost sketch
// before admitting a newly appended entry. Every other operation
// (Lookup, All, Invalidate, Clear, Keys) passes straight through, so a
// Store behaves identically to the one it wraps except for which
// entries Append actually keeps.
type Store struct {
	*internal.Store
	sketch *ristretto.Cache[string, struct{}]
}

// Wrap returns a Store that admits new entries under store according to
// cfg's cost budget. The returned Store's Append is the only overridden
// method. [httpcache.Cache.Store] appends an entry before any body bytes
// arrive, so every entry it stores through a Store is costed at 0.
func Wrap(store *internal.Store, cfg *Config) (*Store, error) {
	sketch, err := ristretto.NewCache(&ristretto.Config[string, struct{}]{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		OnEvict: func(item *ristretto.Item[struct{}]) {
			if cfg.OnEvict != nil {
				cfg.OnEvict()
			}
		},
		Metrics: true,
	})
	if err != nil {
		return nil, err
	}
	return &Store{Store: store, sketch: sketch}, nil
}

// Append costs e by its body length (0 while still receiving, since the
// final size isn't known yet) and consults the sketch before delegating
// to the wrapped Store. A rejected entry is simply never appended: the
// caller holding its Handle may still stream bytes into it and read them
// back itself, it just won't be found by a later Lookup.
func (s *Store) Append(key internal.Key, e *internal.Entry) {
	cost := int64(e.Body.Len())
	if !s.sketch.Set(string(key), struct{}{}, cost) {
		return
	}
	s.Store.Append(key, e)
}

// Close releases the sketch's background goroutines. Safe to call once
// the Store is no longer in use.
func (s *Store) Close() { s.sketch.Close() }

// Wait blocks until all buffered Set calls have been applied to the
// sketch. Append hands an admitted entry to the wrapped Store before it
// returns, so what Lookup/All observe does not depend on Wait.
func (s *Store) Wait() { s.sketch.Wait() }
