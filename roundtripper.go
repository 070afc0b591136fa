// Package httpcache provides an implementation of http.RoundTripper that adds
// transparent HTTP response caching according to RFC 9111 (HTTP Caching),
// RFC 9110 (Semantics) §14's byte-range requests, and RFC 9111's validation
// model.
//
// The main entry point is [NewTransport], which returns an [http.RoundTripper]
// for use with [http.Client]. The underlying store-and-reconstruct core is
// exposed directly as [Cache] for callers building their own fetch stack.
//
// Example usage:
//
//	package main
//
//	import (
//		"log/slog"
//		"net/http"
//
//		"github.com/relayhouse/httpcache"
//	)
//
//	func main() {
//		client := &http.Client{
//			Transport: httpcache.NewTransport(
//				http.DefaultTransport,
//				httpcache.WithTransportLogger(slog.Default()),
//			),
//		}
//	}
package httpcache

import (
	"bufio"
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/relayhouse/httpcache/internal"
)

// CacheStatusHeader names the response header this package sets to one
// of HIT, MISS, STALE, REVALIDATED or BYPASS.
const CacheStatusHeader = internal.CacheStatusHeader

// TransportOption configures a [transport] built by [NewTransport]. It
// is distinct from [Option] (which configures the [Cache] core) since a
// transport needs additional knobs the core has no business knowing
// about, such as which upstream [http.RoundTripper] to call.
type TransportOption interface {
	apply(*transport)
}

type transportOptionFunc func(*transport)

func (f transportOptionFunc) apply(t *transport) { f(t) }

// WithUpstream sets the [http.RoundTripper] used to perform actual
// network round trips; default: [http.DefaultTransport].
func WithUpstream(upstream http.RoundTripper) TransportOption {
	return transportOptionFunc(func(t *transport) {
		t.upstream = upstream
	})
}

// WithTransportLogger sets the logger for debug output; default:
// [slog.New]([slog.DiscardHandler]).
func WithTransportLogger(logger *slog.Logger) TransportOption {
	return transportOptionFunc(func(t *transport) {
		t.logger = logger
	})
}

// WithCache supplies a pre-built [Cache], letting the caller share one
// Cache across several transports or inspect it directly (e.g. via
// [Cache.Clear]). Default: a fresh [NewCache]().
func WithCache(cache *Cache) TransportOption {
	return transportOptionFunc(func(t *transport) {
		t.cache = cache
	})
}

// transport is an [http.RoundTripper] that caches HTTP responses
// according to the HTTP caching rules defined in RFC 9111, driving a
// [Cache] core.
type transport struct {
	cache    *Cache
	upstream http.RoundTripper
	logger   *slog.Logger
}

// NewTransport returns an [http.RoundTripper] that caches HTTP responses
// in memory using a fresh [Cache], delegating actual network round trips
// to upstream.
func NewTransport(upstream http.RoundTripper, opts ...TransportOption) http.RoundTripper {
	t := &transport{
		upstream: upstream,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt.apply(t)
	}
	if t.cache == nil {
		t.cache = NewCache()
	}
	if t.upstream == nil {
		t.upstream = http.DefaultTransport
	}
	return t
}

var _ http.RoundTripper = (*transport)(nil)

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !isCacheableMethod(req) {
		return t.handleUncached(req)
	}

	reqDirectives := internal.ParseCCRequestDirectives(req.Header)
	lookup := t.cache.ConstructResponse(req)

	switch {
	case !lookup.Found:
		if reqDirectives.OnlyIfCached() {
			return make504Response(req)
		}
		return t.handleMiss(req)
	case lookup.NeedsValidation:
		return t.handleRevalidate(req, lookup)
	default:
		internal.CacheStatusHit.ApplyTo(lookup.Response.Header)
		return lookup.Response, nil
	}
}

// isCacheableMethod reports whether req's method is one [Cache] ever
// looks up or stores a response for.
func isCacheableMethod(req *http.Request) bool {
	return req.Method == http.MethodGet
}

// handleUncached passes non-GET requests straight through, invalidating
// any stored entries the response names once it completes.
func (t *transport) handleUncached(req *http.Request) (*http.Response, error) {
	resp, err := t.upstream.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	t.cache.Invalidate(req, resp)
	internal.CacheStatusBypass.ApplyTo(resp.Header)
	return resp, nil
}

// handleMiss round trips req upstream and, if the response streamed back
// is cacheable, stores it through a [Handle] as it arrives.
func (t *transport) handleMiss(req *http.Request) (*http.Response, error) {
	resp, err := t.upstream.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	internal.CacheStatusMiss.ApplyTo(resp.Header)
	if handle := t.cache.Store(req, resp); handle != nil {
		resp.Body = t.teeAndSignal(resp.Body, handle)
	}
	return resp, nil
}

// handleRevalidate re-issues req upstream with conditional headers
// attached from the stale entry. A 304 refreshes the stored entry and
// serves it; anything else replaces it.
func (t *transport) handleRevalidate(req *http.Request, lookup Lookup) (*http.Response, error) {
	condReq := withConditionalHeaders(req, lookup.Response.Header)
	resp, err := t.upstream.RoundTrip(condReq)
	if err != nil {
		t.logger.Debug("revalidation round trip failed, serving stale entry", slog.Any("error", err))
		internal.CacheStatusStale.ApplyTo(lookup.Response.Header)
		return lookup.Response, nil
	}
	if resp.StatusCode == http.StatusNotModified {
		t.cache.Refresh(req, resp)
		refreshed := t.cache.ConstructResponse(req)
		internal.CacheStatusRevalidated.ApplyTo(refreshed.Response.Header)
		return refreshed.Response, nil
	}
	internal.CacheStatusMiss.ApplyTo(resp.Header)
	if handle := t.cache.Store(req, resp); handle != nil {
		resp.Body = t.teeAndSignal(resp.Body, handle)
	}
	return resp, nil
}

// teeAndSignal wraps body so every byte read from the caller-facing
// response is also appended to handle's entry, and the entry's waiters
// are woken once the upstream body is fully drained or fails partway.
func (t *transport) teeAndSignal(body io.ReadCloser, handle *Handle) io.ReadCloser {
	return &teeBody{body: body, handle: handle}
}

type teeBody struct {
	body   io.ReadCloser
	handle *Handle
	done   bool
}

func (b *teeBody) Read(p []byte) (int, error) {
	n, err := b.body.Read(p)
	if n > 0 {
		b.handle.Append(p[:n])
	}
	if err == io.EOF {
		b.finish(true)
	} else if err != nil {
		b.finish(false)
	}
	return n, err
}

func (b *teeBody) Close() error {
	b.finish(false)
	return b.body.Close()
}

func (b *teeBody) finish(ok bool) {
	if b.done {
		return
	}
	b.done = true
	if ok {
		b.handle.Complete()
	} else {
		b.handle.Cancel()
	}
}

func make504Response(req *http.Request) (*http.Response, error) {
	var buf bytes.Buffer
	buf.WriteString("HTTP/1.1 504 Gateway Timeout\r\n")
	buf.WriteString("Cache-Control: no-cache\r\n")
	buf.WriteString("Content-Length: 0\r\n")
	buf.WriteString(internal.CacheStatusHeader + ": " + internal.CacheStatusBypass.Value + "\r\n")
	buf.WriteString("Connection: close\r\n")
	buf.WriteString("\r\n")
	return http.ReadResponse(bufio.NewReader(&buf), req)
}

// cloneRequest creates a shallow copy of the request, including cloning the headers.
func cloneRequest(req *http.Request) *http.Request {
	req2 := new(http.Request)
	*req2 = *req
	req2.Header = req.Header.Clone()
	return req2
}

// withConditionalHeaders sets the conditional headers on the request based on the
// stored response headers as specified in RFC 9111 §4.3.1. This is a minimal,
// best-effort validator negotiation; full conditional-header generation
// (weak/strong validator selection across an arbitrary fetch stack) is the
// surrounding application's responsibility.
func withConditionalHeaders(req *http.Request, storedHdr http.Header) *http.Request {
	var req2 *http.Request
	if etag := storedHdr.Get("ETag"); etag != "" {
		req2 = cloneRequest(req)
		req2.Header.Set("If-None-Match", etag)
	}
	if lastModified := storedHdr.Get("Last-Modified"); lastModified != "" {
		if req2 == nil {
			req2 = cloneRequest(req)
		}
		req2.Header.Set("If-Modified-Since", lastModified)
	}
	if req2 != nil {
		req = req2
	}
	return req
}
