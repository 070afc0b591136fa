package internal

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Metadata is the subset of response information that is fixed once a
// response has been reconstructed enough to serve headers: status,
// headers, and the content-type/charset the body was announced under.
type Metadata struct {
	Status      int
	Header      http.Header
	ContentType string
	Charset     string
}

// Entry is a single stored response (spec's StoredEntry): one per
// distinct secondary key under a primary Key, in the order they were
// appended so later, more specific Vary matches are found first.
type Entry struct {
	// RequestHeaders is the subset of the original request's headers
	// named by the response's Vary header, captured at store time so a
	// later request can be matched against it (see Vary in vary.go).
	// Guarded by headersMu since a 304 revalidation may update it.
	headersMu      sync.RWMutex
	RequestHeaders http.Header

	// Body is shared by every reconstructed response aliasing this
	// entry; appends from an in-flight producer become visible to every
	// holder without copying, and Body also owns the waiter list for
	// UpdateAwaitingConsumers (see body.go).
	Body *Body

	Metadata    *Metadata
	LocationURL *url.URL
	TLS         *tls.ConnectionState
	Status      int
	URLList     []*url.URL

	// Age fixes the age calculation inputs at store (or last
	// revalidation) time; CurrentAge derives the live value from it.
	Age Age

	// LastValidated is the wall-clock time of the most recent 304
	// revalidation, or the store time if none has occurred yet.
	LastValidated time.Time
}

// NewEntry constructs an Entry for a freshly received response. body may
// be a fully-populated NewDoneBody or a NewBody that a concurrent
// producer is still appending to.
func NewEntry(reqHeader http.Header, meta *Metadata, body *Body, locationURL *url.URL, tlsState *tls.ConnectionState, age Age, storedAt time.Time) *Entry {
	hdr := make(http.Header, len(reqHeader))
	for k, v := range reqHeader {
		hdr[k] = v
	}
	return &Entry{
		RequestHeaders: hdr,
		Body:           body,
		Metadata:       meta,
		LocationURL:    locationURL,
		TLS:            tlsState,
		Status:         meta.Status,
		Age:            age,
		LastValidated:  storedAt,
	}
}

// Headers returns a copy-safe snapshot of the request headers this entry
// was matched against (used by the Vary matcher), safe for concurrent
// read while UpdateRequestHeaders runs.
func (e *Entry) Headers() http.Header {
	e.headersMu.RLock()
	defer e.headersMu.RUnlock()
	return e.RequestHeaders
}

// UpdateRequestHeaders replaces the captured request headers, used after
// a 304 revalidation in case the set of Vary-named headers changed.
func (e *Entry) UpdateRequestHeaders(h http.Header) {
	e.headersMu.Lock()
	defer e.headersMu.Unlock()
	e.RequestHeaders = h
}
