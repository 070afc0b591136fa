package internal

import (
	"net/http"
	"testing"
	"time"

	"github.com/relayhouse/httpcache/internal/testutil"
)

func TestNewEntry_CopiesRequestHeaders(t *testing.T) {
	reqHeader := http.Header{"Accept-Language": []string{"en-us"}}
	meta := &Metadata{Status: 200, Header: http.Header{}}
	e := NewEntry(reqHeader, meta, NewDoneBody([]byte("x")), nil, nil, Age{}, time.Now())
	reqHeader.Set("Accept-Language", "fr")
	testutil.AssertEqual(t, "en-us", e.Headers().Get("Accept-Language"))
	testutil.AssertEqual(t, 200, e.Status)
}

func TestEntry_UpdateRequestHeaders(t *testing.T) {
	e := NewEntry(http.Header{}, &Metadata{Header: http.Header{}}, NewDoneBody(nil), nil, nil, Age{}, time.Now())
	e.UpdateRequestHeaders(http.Header{"Accept": []string{"text/html"}})
	testutil.AssertEqual(t, "text/html", e.Headers().Get("Accept"))
}

func TestEntry_ConcurrentHeadersAccess(t *testing.T) {
	e := NewEntry(http.Header{}, &Metadata{Header: http.Header{}}, NewDoneBody(nil), nil, nil, Age{}, time.Now())
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			e.UpdateRequestHeaders(http.Header{"X": []string{"v"}})
		}
		close(done)
	}()
	for i := 0; i < 100; i++ {
		_ = e.Headers()
	}
	<-done
}
