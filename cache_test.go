package httpcache

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/relayhouse/httpcache/internal"
	"github.com/relayhouse/httpcache/internal/testutil"
)

// mockClock is a tiny hand-rolled Clock mock, same shape as the one
// internal's own tests use, so freshness assertions here don't depend
// on wall-clock timing.
type mockClock struct{ now time.Time }

func (c *mockClock) Now() time.Time                  { return c.now }
func (c *mockClock) Since(t time.Time) time.Duration { return c.now.Sub(t) }

func TestCache_StoreAndConstructResponse_MissThenHit(t *testing.T) {
	c := NewCache(WithClock(&mockClock{now: time.Now()}))

	req := httptest.NewRequest(http.MethodGet, "http://example.com/a", nil)
	lookup := c.ConstructResponse(req)
	testutil.AssertTrue(t, !lookup.Found)

	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Cache-Control": []string{"max-age=60"}},
	}
	handle := c.Store(req, resp)
	testutil.AssertNotNil(t, handle)
	handle.Append([]byte("payload"))
	handle.Complete()

	lookup2 := c.ConstructResponse(req)
	testutil.RequireTrue(t, lookup2.Found)
	testutil.AssertTrue(t, !lookup2.NeedsValidation)
	body, err := io.ReadAll(lookup2.Response.Body)
	testutil.RequireNoError(t, err)
	testutil.AssertEqual(t, "payload", string(body))
}

func TestCache_Store_NoStoreIsRejected(t *testing.T) {
	c := NewCache()
	req := httptest.NewRequest(http.MethodGet, "http://example.com/a", nil)
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Cache-Control": []string{"no-store"}},
	}
	handle := c.Store(req, resp)
	testutil.AssertNil(t, handle)
}

func TestCache_ConstructResponse_LateJoinerSeesStreamingBody(t *testing.T) {
	c := NewCache(WithClock(&mockClock{now: time.Now()}))
	req := httptest.NewRequest(http.MethodGet, "http://example.com/stream", nil)
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Cache-Control": []string{"max-age=60"}},
	}
	handle := c.Store(req, resp)
	testutil.RequireNotNil(t, handle)

	handle.Append([]byte("part1"))

	lookup := c.ConstructResponse(req)
	testutil.RequireTrue(t, lookup.Found)

	results := make(chan string, 1)
	errs := make(chan error, 1)
	go func() {
		b, err := io.ReadAll(lookup.Response.Body)
		if err != nil {
			errs <- err
			return
		}
		results <- string(b)
	}()

	select {
	case <-results:
		t.Fatal("read completed before body was finished")
	case err := <-errs:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	handle.Append([]byte("part2"))
	handle.Complete()

	select {
	case got := <-results:
		testutil.AssertEqual(t, "part1part2", got)
	case err := <-errs:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for streamed body to complete")
	}
}

func TestCache_ConstructResponse_CancelledStreamSurfacesUnexpectedEOF(t *testing.T) {
	c := NewCache(WithClock(&mockClock{now: time.Now()}))
	req := httptest.NewRequest(http.MethodGet, "http://example.com/cancelled", nil)
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Cache-Control": []string{"max-age=60"}},
	}
	handle := c.Store(req, resp)
	testutil.RequireNotNil(t, handle)

	lookup := c.ConstructResponse(req)
	testutil.RequireTrue(t, lookup.Found)

	done := make(chan error, 1)
	go func() {
		_, err := io.ReadAll(lookup.Response.Body)
		done <- err
	}()

	handle.Cancel()

	select {
	case err := <-done:
		testutil.RequireErrorIs(t, err, io.ErrUnexpectedEOF)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for cancellation to surface")
	}
}

func TestCache_Refresh_UpdatesStoredEntry(t *testing.T) {
	now := time.Now()
	clock := &mockClock{now: now}
	c := NewCache(WithClock(clock))
	req := httptest.NewRequest(http.MethodGet, "http://example.com/a", nil)
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header: http.Header{
			"Cache-Control": []string{"max-age=0"},
			"ETag":          []string{`"old"`},
		},
	}
	handle := c.Store(req, resp)
	handle.Complete()

	clock.now = now.Add(time.Hour)
	resp304 := &http.Response{
		StatusCode: http.StatusNotModified,
		Header: http.Header{
			"Cache-Control": []string{"max-age=120"},
			"ETag":          []string{`"new"`},
		},
	}
	ok := c.Refresh(req, resp304)
	testutil.RequireTrue(t, ok)

	entries := c.Entries(internal.NewKey(req.URL))
	testutil.RequireTrue(t, len(entries) == 1)
	testutil.AssertEqual(t, `"new"`, entries[0].Metadata.Header.Get("ETag"))
}

func TestCache_Invalidate_DropsNamedEntries(t *testing.T) {
	c := NewCache(WithClock(&mockClock{now: time.Now()}))
	getReq := httptest.NewRequest(http.MethodGet, "http://example.com/items/1", nil)
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Cache-Control": []string{"max-age=60"}},
	}
	handle := c.Store(getReq, resp)
	handle.Complete()

	key := internal.NewKey(getReq.URL)
	testutil.AssertTrue(t, len(c.Entries(key)) == 1)

	postReq := httptest.NewRequest(http.MethodPost, "http://example.com/items/1", nil)
	postResp := &http.Response{StatusCode: http.StatusNoContent, Header: http.Header{}}
	c.Invalidate(postReq, postResp)

	testutil.AssertTrue(t, len(c.Entries(key)) == 0)
}

func TestCache_Clear_RemovesEverything(t *testing.T) {
	c := NewCache(WithClock(&mockClock{now: time.Now()}))
	req := httptest.NewRequest(http.MethodGet, "http://example.com/a", nil)
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Cache-Control": []string{"max-age=60"}},
	}
	handle := c.Store(req, resp)
	handle.Complete()

	testutil.AssertTrue(t, len(c.Keys()) == 1)
	c.Clear()
	testutil.AssertTrue(t, len(c.Keys()) == 0)
}

func TestCache_Disabled_NeverStoresOrServes(t *testing.T) {
	c := NewCache(WithDisabled(true))
	req := httptest.NewRequest(http.MethodGet, "http://example.com/a", nil)
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Cache-Control": []string{"max-age=60"}},
	}
	handle := c.Store(req, resp)
	testutil.AssertNil(t, handle)

	c.SetDisabled(false)
	handle2 := c.Store(req, resp)
	testutil.AssertNotNil(t, handle2)

	c.SetDisabled(true)
	lookup := c.ConstructResponse(req)
	testutil.AssertTrue(t, !lookup.Found)
}
