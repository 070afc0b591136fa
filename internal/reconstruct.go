package internal

import (
	"io"
	"net/http"
)

// ConstructResponse implements the Response Reconstructor (spec §4.F):
// it builds an *http.Response from a stored Entry without waiting for
// the underlying body to be complete. If the entry's producer is still
// receiving bytes, the returned response's Body streams them as they
// arrive, blocking on the same waiter mechanism a concurrent caller of
// UpdateAwaitingConsumers feeds (see body.go, waiter.go).
//
// The returned response shares its Body field's backing bytes with
// every other reconstruction of the same Entry; reading from one
// instance never consumes bytes another instance still needs, since
// bodyReader tracks its own read position rather than draining a queue.
func ConstructResponse(e *Entry) *http.Response {
	header := make(http.Header, len(e.Metadata.Header))
	for k, v := range e.Metadata.Header {
		header[k] = v
	}
	return &http.Response{
		StatusCode: e.Status,
		Header:     header,
		Body:       &bodyReader{entry: e},
	}
}

// bodyReader is an io.ReadCloser over an Entry's shared Body. It holds
// no bytes of its own; every Read re-reads Body's current snapshot from
// its last position, so concurrent readers of the same Entry never
// interfere with each other.
type bodyReader struct {
	entry  *Entry
	pos    int
	closed bool
}

func (r *bodyReader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, io.ErrClosedPipe
	}
	for {
		state, bytes := r.entry.Body.Snapshot()
		if r.pos < len(bytes) {
			n := copy(p, bytes[r.pos:])
			r.pos += n
			return n, nil
		}
		switch state {
		case BodyDone:
			return 0, io.EOF
		case BodyCancelled:
			return 0, io.ErrUnexpectedEOF
		default:
			ch := NewWaiter()
			if !AwaitEntry(r.entry, ch) {
				// Terminal state arrived between Snapshot and Await;
				// loop once more to pick it up via Snapshot.
				continue
			}
			sig := <-ch
			if sig == SignalCancelled {
				return 0, io.ErrUnexpectedEOF
			}
			// SignalDone: loop to pick up the final bytes via Snapshot.
		}
	}
}

func (r *bodyReader) Close() error {
	r.closed = true
	return nil
}
