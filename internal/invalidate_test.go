package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/relayhouse/httpcache/internal/testutil"
)

func TestRefresh_MergesHeadersAndResetsAge(t *testing.T) {
	e := &Entry{
		Metadata: &Metadata{Header: http.Header{
			"ETag":          []string{"old"},
			"Cache-Control": []string{"max-age=60"},
		}},
		Age: Age{Value: 50 * time.Second, Timestamp: time.Now().Add(-time.Minute)},
	}
	resp := &http.Response{Header: http.Header{
		"ETag":          []string{"new"},
		"Cache-Control": []string{"max-age=120"},
	}}
	clock := &mockClock{now: time.Now()}
	Refresh(e, resp, http.Header{}, clock)
	testutil.AssertEqual(t, "new", e.Metadata.Header.Get("ETag"))
	testutil.AssertEqual(t, "max-age=120", e.Metadata.Header.Get("Cache-Control"))
	testutil.AssertTrue(t, e.Age.Value < 50*time.Second)
}

func TestInvalidationTargets_GetNeverInvalidates(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/a", nil)
	resp := &http.Response{StatusCode: 200, Header: http.Header{}}
	testutil.AssertEqual(t, 0, len(InvalidationTargets(req, resp)))
}

func TestInvalidationTargets_PostSuccessInvalidatesURI(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "http://example.com/a", nil)
	resp := &http.Response{StatusCode: 204, Header: http.Header{}}
	keys := InvalidationTargets(req, resp)
	testutil.RequireTrue(t, len(keys) == 1)
	testutil.AssertEqual(t, NewKey(req.URL), keys[0])
}

func TestInvalidationTargets_LocationHeaderAlsoInvalidated(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "http://example.com/a", nil)
	resp := &http.Response{StatusCode: 201, Header: http.Header{"Location": []string{"/b"}}}
	keys := InvalidationTargets(req, resp)
	testutil.RequireTrue(t, len(keys) == 2)
}

func TestInvalidationTargets_ErrorStatusDoesNotInvalidate(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "http://example.com/a", nil)
	resp := &http.Response{StatusCode: 500, Header: http.Header{}}
	testutil.AssertEqual(t, 0, len(InvalidationTargets(req, resp)))
}
