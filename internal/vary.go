package internal

import (
	"net/http"
	"strings"
)

// VaryFields returns the field names listed in resp's Vary header,
// canonicalized, or nil if the header is absent or empty. A bare "*" is
// returned as-is; callers matching against it should use CandidateMatches
// or Select, which reject it explicitly rather than comparing it as an
// ordinary field name.
func VaryFields(resp http.Header) []string {
	raw := resp.Get("Vary")
	if raw == "" {
		return nil
	}
	var fields []string
	for f := range TrimmedCSVSeq(raw) {
		fields = append(fields, http.CanonicalHeaderKey(f))
	}
	return fields
}

// Matches reports whether candidate's secondary key (its Vary-named
// header values) matches the entry's stored request headers, per RFC
// 9111 §4.1: every header the stored response's Vary lists must agree,
// field-for-field, between the two requests. An entry whose response
// carried no Vary header always matches, since it has no secondary key.
func Matches(varyFields []string, stored, candidate http.Header) bool {
	for _, field := range varyFields {
		if !strings.EqualFold(stored.Get(field), candidate.Get(field)) {
			return false
		}
	}
	return true
}

// CandidateMatches reports whether e is a valid secondary-key match for
// req, implementing the Secondary-Key Selector's matching rule (spec
// §4.E) including its Vary: * exclusion: RFC 9111 §4.1 requires that a
// response stored with "Vary: *" never be reused to satisfy a later
// request, so such an entry is rejected here regardless of header
// values, rather than at store time.
func CandidateMatches(e *Entry, req http.Header) bool {
	if strings.TrimSpace(e.Metadata.Header.Get("Vary")) == "*" {
		return false
	}
	return Matches(VaryFields(e.Metadata.Header), e.Headers(), req)
}

// Select returns the first entry among candidates whose captured request
// headers match req under its own Vary fields, or nil if none match.
// Entries are tried in storage order, so a more specific entry appended
// later is only preferred if it is also stored later — callers that
// care about most-recent-wins should iterate candidates newest-first.
func Select(candidates []*Entry, req http.Header) *Entry {
	for _, e := range candidates {
		if CandidateMatches(e, req) {
			return e
		}
	}
	return nil
}
