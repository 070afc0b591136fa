package internal

import (
	"net/url"
	"strings"
)

// Key is the canonicalized primary lookup key for the cache, derived
// solely from a URL per RFC 9111 §2: scheme, host (including port if
// non-default), path and query, excluding any fragment. Method is
// deliberately not part of Key; only GET requests ever produce or consume one.
type Key string

// NewKey canonicalizes u into a Key. Scheme and host are lowercased,
// since they are case-insensitive per RFC 3986; path and query are
// preserved verbatim (escaped) since they may be case-sensitive.
func NewKey(u *url.URL) Key {
	if u.Opaque != "" {
		return Key(strings.ToLower(u.Opaque))
	}

	host, port := splitHostPort(u.Host)
	defaultP := defaultPort(u.Scheme)
	if port == "" {
		port = defaultP
	}

	hostPort := host
	if port != "" && port != defaultP {
		hostPort = host + ":" + port
	}

	result := strings.ToLower(u.Scheme+"://"+hostPort) + u.EscapedPath()
	if u.RawQuery != "" {
		result += "?" + u.RawQuery
	}
	return Key(result)
}

// resolveAbsolute resolves ref (as found in a Location or Content-Location
// header) against base, returning nil if ref is empty or unparsable.
func resolveAbsolute(base *url.URL, ref string) *url.URL {
	if ref == "" {
		return nil
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return nil
	}
	return base.ResolveReference(refURL)
}
