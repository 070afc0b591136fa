package internal

import (
	"net/http"
)

// Refresh implements the validation half of the Refresher/Invalidator
// (spec §4.I): given a 304 Not Modified response, it merges the
// response's headers into the stored entry (RFC 9111 §3.2 — every
// header present on the 304 replaces the stored one, except
// hop-by-hop/Content-Length) and resets the entry's age baseline so
// subsequent freshness checks measure from the revalidation, not the
// original store.
func Refresh(e *Entry, resp *http.Response, reqHeader http.Header, clock Clock) {
	updateStoredHeaders(&http.Response{Header: e.Metadata.Header}, resp)
	now := clock.Now()
	e.Age = Age{Value: ComputeInitialAge(resp.Header, now, now), Timestamp: now}
	e.LastValidated = now
	if varyFields := VaryFields(e.Metadata.Header); varyFields != nil {
		hdr := make(http.Header, len(varyFields))
		for _, f := range varyFields {
			if v := reqHeader.Get(f); v != "" {
				hdr.Set(f, v)
			}
		}
		e.UpdateRequestHeaders(hdr)
	}
}

// InvalidationTargets implements the unsafe-method half of the
// Refresher/Invalidator (spec §4.I): RFC 9111 §4.4 requires a cache to
// invalidate the effective request URI, plus any URI named by the
// response's Location or Content-Location headers (resolved against the
// request URL), whenever an unsafe method's request succeeds. A
// Location/Content-Location target is only invalidated if it shares the
// request URL's origin; the RFC permits but does not require
// cross-origin invalidation, and trusting an arbitrary cross-origin
// Location header would let one origin evict another's cache entries.
// shouldInvalidate controls whether the response counts as successful
// enough to trigger invalidation (2xx or 3xx, per the RFC).
func InvalidationTargets(req *http.Request, resp *http.Response) []Key {
	if !shouldInvalidate(req.Method, resp.StatusCode) {
		return nil
	}
	keys := []Key{NewKey(req.URL)}
	if loc := resolveAbsolute(req.URL, resp.Header.Get("Location")); loc != nil && sameOrigin(req.URL, loc) {
		keys = append(keys, NewKey(loc))
	}
	if cl := resolveAbsolute(req.URL, resp.Header.Get("Content-Location")); cl != nil && sameOrigin(req.URL, cl) {
		keys = append(keys, NewKey(cl))
	}
	return keys
}

func shouldInvalidate(method string, status int) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	}
	return status >= 200 && status < 400
}
