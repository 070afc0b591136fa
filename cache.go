package httpcache

import (
	"crypto/tls"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"

	"github.com/relayhouse/httpcache/internal"
)

// Option configures a [Cache].
type Option interface {
	apply(*Cache)
}

type optionFunc func(*Cache)

func (f optionFunc) apply(c *Cache) { f(c) }

// WithClock overrides the cache's time source; default: a real
// [internal.Clock] wrapping the standard library's time package. Tests
// that need deterministic freshness calculations should supply a mock.
func WithClock(clock internal.Clock) Option {
	return optionFunc(func(c *Cache) {
		c.clock = clock
	})
}

// WithLogger sets the logger for debug output; default:
// [slog.New]([slog.DiscardHandler]).
func WithLogger(logger *slog.Logger) Option {
	return optionFunc(func(c *Cache) {
		c.logger = logger
	})
}

// WithDisabled starts the cache in a disabled state, where ConstructResponse
// always reports a miss and Store is a no-op. Disabling after construction
// is possible via [Cache.SetDisabled].
func WithDisabled(disabled bool) Option {
	return optionFunc(func(c *Cache) {
		c.disabled = disabled
	})
}

// EntryStore is the storage interface [Cache] drives; [internal.Store]
// satisfies it directly, and a decorator such as boundedstore.Store
// satisfies it by embedding one. WithStore lets a caller swap in a
// decorated store without Cache needing to know about bounding,
// metrics, or any other wrapping concern.
type EntryStore interface {
	Lookup(key internal.Key, reqHeader http.Header) *internal.Entry
	All(key internal.Key) []*internal.Entry
	Append(key internal.Key, e *internal.Entry)
	Invalidate(key internal.Key)
	Clear()
	Keys() []internal.Key
}

// WithStore overrides the entry store backing the cache; default: an
// unbounded [internal.NewStore]. Pass a boundedstore.Store to gate
// which entries Append keeps, without changing anything else about
// Cache's behavior.
func WithStore(store EntryStore) Option {
	return optionFunc(func(c *Cache) {
		c.store = store
	})
}

// Cache is the in-memory, store-and-reconstruct core of an HTTP caching
// stack: it implements the freshness, validation, byte-range and
// secondary-key semantics of RFC 9111/RFC 9110 over a shared in-memory
// entry store, but performs no I/O of its own. The surrounding fetch
// engine (transport, TLS, conditional-header generation) is expected to
// drive it; see [NewTransport] for an [http.RoundTripper] that does so.
type Cache struct {
	store    EntryStore
	clock    internal.Clock
	logger   *slog.Logger
	disabled bool
}

// NewCache constructs an empty, unbounded Cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		store:  internal.NewStore(),
		clock:  internal.NewClock(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt.apply(c)
	}
	return c
}

// SetDisabled toggles whether the cache is bypassed entirely.
func (c *Cache) SetDisabled(disabled bool) { c.disabled = disabled }

// Lookup is the outcome of [Cache.ConstructResponse].
type Lookup struct {
	// Response is the reconstructed response, non-nil only when Found is
	// true. Its Body may still be streaming if the stored entry's
	// producer hasn't finished; reading it blocks on the Waiter
	// Coordinator (see internal/reconstruct.go).
	Response *http.Response
	// Found reports whether a matching entry exists at all.
	Found bool
	// NeedsValidation reports whether the caller must revalidate with
	// the origin (attaching conditional headers itself, per this
	// package's scope) before the response may be used as-is. When
	// true together with Found, Response still holds the stale entry so
	// a caller implementing stale-while-revalidate-style policies can
	// choose to serve it anyway.
	NeedsValidation bool
	// Range, when non-nil, is the concrete byte range Response covers;
	// set only when the request carried a satisfiable Range header and
	// ConstructResponse resolved it against a stored entry.
	Range *internal.ByteRange
}

// ConstructResponse implements the Response Reconstructor + Freshness
// Calculator + Secondary-Key Selector + Range Resolver together (spec §4.B, §4.E, §4.F, §4.G): given a request,
// it finds the best matching stored entry, decides whether it is fresh
// enough to serve, and reconstructs an *http.Response without waiting
// for an in-flight body to complete.
func (c *Cache) ConstructResponse(req *http.Request) Lookup {
	if c.disabled || req.Method != http.MethodGet {
		return Lookup{}
	}
	key := internal.NewKey(req.URL)
	entry := c.store.Lookup(key, req.Header)
	if entry == nil {
		return Lookup{}
	}

	reqDirectives := internal.ParseCCRequestDirectives(req.Header)
	if reqDirectives.NoCache() {
		return Lookup{Found: true, NeedsValidation: true, Response: internal.ConstructResponse(entry)}
	}

	if rangeHeader := req.Header.Get("Range"); rangeHeader != "" {
		var candidates []*internal.Entry
		for _, e := range c.store.All(key) {
			if internal.CandidateMatches(e, req.Header) {
				candidates = append(candidates, e)
			}
		}
		if result, ok := internal.ResolveRange(candidates, rangeHeader); ok {
			src := result.Source
			resp := internal.ConstructResponse(src)
			resp.StatusCode = http.StatusPartialContent
			resp.Body = &rangeBody{bytes: result.Bytes}
			resp.Header.Set("Content-Range", internal.ContentRangeHeader(result.Range, result.Total))
			resp.ContentLength = result.Range.Len()
			rangeNeedsValidation := internal.NeedsValidation(src.Status, src.Metadata.Header, req.Header, src.Age, c.clock)
			return Lookup{Found: true, Response: resp, NeedsValidation: rangeNeedsValidation, Range: &result.Range}
		}
	}

	needsValidation := internal.NeedsValidation(entry.Status, entry.Metadata.Header, req.Header, entry.Age, c.clock)
	resp := internal.ConstructResponse(entry)
	internal.SetAgeHeader(resp, c.clock, &entry.Age)
	return Lookup{Found: true, Response: resp, NeedsValidation: needsValidation}
}

// rangeBody serves a fully-resolved, already-sliced byte range; unlike
// bodyReader it never blocks, since ResolveRange only returns ranges
// that have already fully arrived.
type rangeBody struct {
	bytes []byte
	pos   int
}

func (r *rangeBody) Read(p []byte) (int, error) {
	if r.pos >= len(r.bytes) {
		return 0, io.EOF
	}
	n := copy(p, r.bytes[r.pos:])
	r.pos += n
	return n, nil
}

func (r *rangeBody) Close() error { return nil }

// Handle is returned by [Cache.Store] and lets the caller feed body
// bytes to a newly stored entry as they arrive from upstream, waking any
// concurrent ConstructResponse/Await callers once the body is complete.
type Handle struct {
	entry *internal.Entry
}

// Append adds p to the handle's entry body. Safe to call concurrently
// with readers of any response reconstructed from this entry.
func (h *Handle) Append(p []byte) { h.entry.Body.Append(p) }

// Complete marks the body finished successfully.
func (h *Handle) Complete() { internal.UpdateAwaitingConsumers(h.entry, internal.SignalDone) }

// Cancel marks the body aborted; any bytes appended so far are
// incomplete and must never be treated as a full response.
func (h *Handle) Cancel() { internal.UpdateAwaitingConsumers(h.entry, internal.SignalCancelled) }

// Store implements the cacheability half of the store path (spec §4.A,
// §4.C): if resp is cacheable for req, it creates and appends a new
// Entry, returning a Handle the caller streams the body through. If
// resp is not cacheable, Store returns nil and the caller should stream
// the body directly to its own consumer without going through the cache.
func (c *Cache) Store(req *http.Request, resp *http.Response) *Handle {
	if c.disabled || !internal.Cacheable(req, resp) {
		return nil
	}
	now := c.clock.Now()
	age := internal.Age{Value: internal.ComputeInitialAge(resp.Header, now, now), Timestamp: now}
	meta := &internal.Metadata{
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
	}
	if ct, params, err := parseContentType(resp.Header.Get("Content-Type")); err == nil {
		meta.ContentType = ct
		meta.Charset = params["charset"]
	}

	varyFields := internal.VaryFields(resp.Header)
	reqHeader := make(http.Header, len(varyFields))
	for _, f := range varyFields {
		if v := req.Header.Get(f); v != "" {
			reqHeader.Set(f, v)
		}
	}

	var locationURL *url.URL
	if loc := resp.Header.Get("Location"); loc != "" {
		if u, err := req.URL.Parse(loc); err == nil {
			locationURL = u
		}
	}
	entry := internal.NewEntry(reqHeader, meta, internal.NewBody(), locationURL, tlsState(resp), age, now)
	c.store.Append(internal.NewKey(req.URL), entry)
	return &Handle{entry: entry}
}

func parseContentType(v string) (mediaType string, params map[string]string, err error) {
	if v == "" {
		return "", nil, errEmptyContentType
	}
	return mime.ParseMediaType(v)
}

var errEmptyContentType = errors.New("httpcache: empty content-type")

func tlsState(resp *http.Response) *tls.ConnectionState {
	return resp.TLS
}

// Refresh implements the 304-handling half of the Refresher/Invalidator
// (spec §4.I): merges resp304's headers into the stored entry matching
// req and resets its age baseline. Reports false if no matching entry
// was found (nothing to refresh).
func (c *Cache) Refresh(req *http.Request, resp304 *http.Response) bool {
	if c.disabled {
		return false
	}
	key := internal.NewKey(req.URL)
	entry := c.store.Lookup(key, req.Header)
	if entry == nil {
		return false
	}
	internal.Refresh(entry, resp304, req.Header, c.clock)
	return true
}

// Invalidate implements the unsafe-method half of the
// Refresher/Invalidator (spec §4.I): drops every entry named by req's
// effective URI and resp's Location/Content-Location headers, when resp
// indicates req succeeded.
func (c *Cache) Invalidate(req *http.Request, resp *http.Response) {
	if c.disabled {
		return
	}
	for _, key := range internal.InvalidationTargets(req, resp) {
		c.store.Invalidate(key)
	}
}

// Clear removes every stored entry.
func (c *Cache) Clear() { c.store.Clear() }

// Keys returns every primary key currently holding at least one entry.
// Used by the debug/introspection handlers and by decorators that track
// aggregate cache size.
func (c *Cache) Keys() []internal.Key { return c.store.Keys() }

// Entries returns every entry stored under key, most-recently-appended
// last. Used by the debug/introspection handlers to report per-entry
// freshness without going through the request-matching Lookup path.
func (c *Cache) Entries(key internal.Key) []*internal.Entry { return c.store.All(key) }
