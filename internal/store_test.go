package internal

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/relayhouse/httpcache/internal/testutil"
)

func newTestEntry(status int, reqHeader http.Header) *Entry {
	meta := &Metadata{Status: status, Header: http.Header{}}
	return NewEntry(reqHeader, meta, NewDoneBody([]byte("x")), nil, nil, Age{}, time.Now())
}

func TestStore_AppendAndLookup(t *testing.T) {
	s := NewStore()
	u, _ := url.Parse("http://example.com/a")
	key := NewKey(u)
	e := newTestEntry(200, http.Header{})
	s.Append(key, e)
	got := s.Lookup(key, http.Header{})
	testutil.AssertTrue(t, got == e)
}

func TestStore_LookupMiss(t *testing.T) {
	s := NewStore()
	u, _ := url.Parse("http://example.com/a")
	testutil.AssertTrue(t, s.Lookup(NewKey(u), http.Header{}) == nil)
}

func TestStore_NewerEntryWinsForSameSecondaryKey(t *testing.T) {
	s := NewStore()
	u, _ := url.Parse("http://example.com/a")
	key := NewKey(u)
	first := newTestEntry(200, http.Header{})
	first.Metadata.Header.Set("Vary", "Accept-Language")
	first.RequestHeaders = http.Header{"Accept-Language": []string{"en-us"}}
	second := newTestEntry(200, http.Header{})
	second.Metadata.Header.Set("Vary", "Accept-Language")
	second.RequestHeaders = http.Header{"Accept-Language": []string{"en-us"}}
	s.Append(key, first)
	s.Append(key, second)
	got := s.Lookup(key, http.Header{"Accept-Language": []string{"en-us"}})
	testutil.AssertTrue(t, got == second)
}

func TestStore_LookupNeverReturnsVaryStarEntry(t *testing.T) {
	s := NewStore()
	u, _ := url.Parse("http://example.com/a")
	key := NewKey(u)
	e := newTestEntry(200, http.Header{})
	e.Metadata.Header.Set("Vary", "*")
	e.RequestHeaders = http.Header{}
	s.Append(key, e)
	testutil.AssertTrue(t, s.Lookup(key, http.Header{}) == nil)
	// Still reachable via All/Keys: only Lookup's secondary-key matching
	// excludes it, storage itself is unaffected (spec §4.E vs §4.C).
	testutil.AssertEqual(t, 1, len(s.All(key)))
}

func TestStore_InvalidateRemovesEntries(t *testing.T) {
	s := NewStore()
	u, _ := url.Parse("http://example.com/a")
	key := NewKey(u)
	s.Append(key, newTestEntry(200, http.Header{}))
	s.Invalidate(key)
	testutil.AssertTrue(t, s.Lookup(key, http.Header{}) == nil)
}

func TestStore_Clear(t *testing.T) {
	s := NewStore()
	u, _ := url.Parse("http://example.com/a")
	key := NewKey(u)
	s.Append(key, newTestEntry(200, http.Header{}))
	s.Clear()
	testutil.AssertEqual(t, 0, len(s.Keys()))
}

func TestStore_AllReturnsCopy(t *testing.T) {
	s := NewStore()
	u, _ := url.Parse("http://example.com/a")
	key := NewKey(u)
	e := newTestEntry(200, http.Header{})
	s.Append(key, e)
	all := s.All(key)
	testutil.AssertEqual(t, 1, len(all))
	all[0] = nil
	testutil.AssertTrue(t, s.Lookup(key, http.Header{}) == e)
}
