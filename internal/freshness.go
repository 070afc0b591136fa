package internal

import (
	"net/http"
	"time"
)

// Age is the initial age of a stored response, fixed at store time, plus
// the timestamp it was computed against. The current age at any later
// instant is Value + clock.Since(Timestamp) (RFC 9111 §4.2.3's
// resident_time term folded into a single addition).
type Age struct {
	Value     time.Duration
	Timestamp time.Time
}

// CurrentAge returns the response's current age as of clock.Now().
func (a Age) CurrentAge(clock Clock) time.Duration {
	return a.Value + clock.Since(a.Timestamp)
}

// defaultCacheableStatus is the set of status codes RFC 9111 §4.2.2 and
// §3 permit a cache to reuse heuristically, absent explicit freshness
// information, per RFC 9110 §15.
var defaultCacheableStatus = map[int]bool{
	http.StatusOK:                   true,
	http.StatusNonAuthoritativeInfo: true,
	http.StatusNoContent:            true,
	http.StatusPartialContent:       true,
	http.StatusMultipleChoices:      true,
	http.StatusMovedPermanently:     true,
	http.StatusPermanentRedirect:    true,
	http.StatusNotFound:             true,
	http.StatusMethodNotAllowed:     true,
	http.StatusGone:                 true,
	http.StatusRequestURITooLong:    true,
	http.StatusUnavailableForLegalReasons: true,
	http.StatusNotImplemented:             true,
}

// ComputeInitialAge implements RFC 9111 §4.2.3's age calculation at the
// moment a response is stored. requestTime and responseTime bound the
// round trip the response arrived on.
func ComputeInitialAge(header http.Header, requestTime, responseTime time.Time) time.Duration {
	var ageValue time.Duration
	if v, valid := RawDeltaSeconds(header.Get("Age")).Value(); valid {
		ageValue = v
	}

	var apparentAge time.Duration
	if dateVal, valid := dateHeader(header).Value(); valid {
		apparentAge = max(0, responseTime.Sub(dateVal))
	}

	responseDelay := max(0, responseTime.Sub(requestTime))
	correctedAgeValue := ageValue + responseDelay
	correctedInitialAge := max(apparentAge, correctedAgeValue)
	return correctedInitialAge
}

// HeuristicFreshness implements RFC 9111 §4.2.2: absent explicit
// freshness information, a cache MAY assign a heuristic lifetime of 10%
// of the interval since Last-Modified, capped at 24 hours minus the
// response's age at the time the lifetime is computed. ok is false when
// no valid Last-Modified or Date header is present, when Last-Modified
// is not before Date, or when the status code isn't in the
// default-cacheable set.
//
// ageAtComputation must be the age fixed when this lifetime is computed
// (store or last-revalidation time), never a live, continuously-growing
// age: the cap is meant to bound the total resident lifetime starting
// from that fixed point, exactly once. Passing a later, larger age here
// would shrink the cap every time freshness is re-checked, effectively
// halving the usable lifetime of a heuristically-capped entry.
func HeuristicFreshness(status int, header http.Header, ageAtComputation time.Duration) (lifetime time.Duration, ok bool) {
	if !defaultCacheableStatus[status] {
		return 0, false
	}
	lastMod, valid := lastModifiedHeader(header).Value()
	if !valid {
		return 0, false
	}
	date, valid := dateHeader(header).Value()
	if !valid {
		return 0, false
	}
	since := date.Sub(lastMod)
	if since <= 0 {
		return 0, false
	}
	heuristic := since / 10
	ceiling := 24*time.Hour - ageAtComputation
	if ceiling < 0 {
		ceiling = 0
	}
	return min(heuristic, ceiling), true
}

// FreshnessLifetime implements RFC 9111 §4.2.1: the response directives
// that determine how long a stored response may be served without
// revalidation, in order of precedence. ageAtComputation is needed only
// to bound the heuristic fallback, and must be the entry's fixed age at
// store/last-revalidation time (see HeuristicFreshness), not a live age
// that keeps growing across repeated freshness checks — the lifetime
// this computes is meant to be fixed once, not re-derived smaller on
// every check.
func FreshnessLifetime(status int, header http.Header, ageAtComputation time.Duration) time.Duration {
	respDirectives := ParseCCResponseDirectives(header)
	if _, present := respDirectives.NoCache(); present {
		return 0
	}
	if dur, valid := respDirectives.MaxAge(); valid {
		return dur
	}
	if expires, valid := expiresHeader(header).Value(); valid {
		if date, valid := dateHeader(header).Value(); valid {
			return max(0, expires.Sub(date))
		}
	}
	if dur, ok := HeuristicFreshness(status, header, ageAtComputation); ok {
		return dur
	}
	return 0
}

// RequestAdjustedFreshness applies the request's own Cache-Control
// directives (RFC 9111 §5.2.1) on top of the response's freshness
// lifetime and current age, returning whether the cache may serve the
// stored response as-is.
func RequestAdjustedFreshness(reqDirectives CCRequestDirectives, freshnessLifetime, currentAge time.Duration) (fresh bool) {
	if reqDirectives.NoCache() {
		return false
	}
	lifetime := freshnessLifetime
	if maxStale, valid := reqDirectives.MaxStale(); valid {
		if dur, ok := maxStale.Value(); ok {
			lifetime += dur
		} else {
			// max-stale with no value: any staleness is acceptable.
			return true
		}
	}
	if maxAge, valid := reqDirectives.MaxAge(); valid && maxAge < lifetime {
		lifetime = maxAge
	}
	if minFresh, valid := reqDirectives.MinFresh(); valid {
		return currentAge+minFresh < lifetime
	}
	return currentAge < lifetime
}
