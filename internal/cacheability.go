package internal

import (
	"net/http"
)

// explicitFreshnessStatus is the wider set of status codes RFC 9111 §3
// permits a cache to store when the response carries explicit freshness
// information (an Expires header or a max-age/s-maxage directive), even
// though they fall outside defaultCacheableStatus.
var explicitFreshnessStatus = map[int]bool{
	http.StatusCreated:      true,
	http.StatusAccepted:     true,
	http.StatusIMUsed:       true,
	http.StatusFound:        true,
	http.StatusNotModified:  true,
	http.StatusUseProxy:     true,
	http.StatusTemporaryRedirect: true,
}

// Cacheable reports whether resp, produced for req, may be stored at all
// (RFC 9111 §3). It does not decide freshness; a stored response may
// still require validation before reuse.
func Cacheable(req *http.Request, resp *http.Response) bool {
	if req.Method != http.MethodGet {
		return false
	}
	reqDirectives := ParseCCRequestDirectives(req.Header)
	if reqDirectives.NoStore() {
		return false
	}
	respDirectives := ParseCCResponseDirectives(resp.Header)
	if respDirectives.NoStore() {
		return false
	}
	_, hasExpires := expiresHeader(resp.Header).Value()
	explicitFreshness := respDirectives.MaxAgePresent() || hasExpires
	if defaultCacheableStatus[resp.StatusCode] || (explicitFreshnessStatus[resp.StatusCode] && explicitFreshness) {
		return true
	}
	if respDirectives.Public() || explicitFreshness {
		return true
	}
	return false
}

// NeedsValidation reports whether a stored response must be revalidated
// with the origin before reuse, given the request that wants to reuse
// it. The freshness lifetime (including any heuristic cap) is computed
// once from age's fixed store-time value, per RFC 9111 §4.2.2 and the
// "Write flow" of the store path: only the *current* age — how much of
// that fixed lifetime has elapsed since — is allowed to grow with the
// clock. Feeding the live, growing age into the heuristic cap itself
// would double-count elapsed time and halve the entry's real lifetime.
func NeedsValidation(status int, respHeader http.Header, reqHeader http.Header, age Age, clock Clock) bool {
	currentAge := age.CurrentAge(clock)
	respDirectives := ParseCCResponseDirectives(respHeader)
	if respDirectives.MustRevalidate() {
		lifetime := FreshnessLifetime(status, respHeader, age.Value)
		return currentAge >= lifetime
	}
	reqDirectives := ParseCCRequestDirectives(reqHeader)
	lifetime := FreshnessLifetime(status, respHeader, age.Value)
	return !RequestAdjustedFreshness(reqDirectives, lifetime, currentAge)
}
