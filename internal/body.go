package internal

import "sync"

// BodyState describes how much of a stored entry's body is known so far.
// A response under construction moves monotonically Empty -> Receiving ->
// (Done | Cancelled); it never moves backwards, and Done/Cancelled are
// terminal.
type BodyState int

const (
	// BodyEmpty means no bytes have arrived yet and no length is known.
	BodyEmpty BodyState = iota
	// BodyReceiving means bytes are arriving from an in-flight upstream
	// round trip; the body's bytes hold everything seen so far and more
	// may follow.
	BodyReceiving
	// BodyDone means the body is complete; its bytes hold its entirety.
	BodyDone
	// BodyCancelled means the underlying fetch was aborted before the
	// body completed; any bytes collected so far are incomplete and must
	// never be served as a complete response.
	BodyCancelled
)

// Signal is delivered on a waiter's channel when a Body leaves
// BodyReceiving. It is the Go counterpart of the original implementation's
// one-shot completion sink (an UnboundedSender consumed exactly once).
type Signal int

const (
	SignalDone      Signal = iota // the body finished; Snapshot now returns BodyDone.
	SignalCancelled               // the underlying fetch was aborted.
)

// Body is the shared, mutable handle for a stored entry's response body.
// Every reconstructed http.Response for a given entry aliases the same
// *Body, so a byte appended by the in-flight producer becomes visible to
// every consumer holding a reference, without re-fetching or duplicating
// storage. Body also owns the set of goroutines awaiting its completion,
// so a state transition and the wake it triggers happen under one lock —
// a late joiner can never observe "not done yet" and then miss the wake
// that immediately follows.
type Body struct {
	mu       sync.Mutex
	state    BodyState
	bytes    []byte
	awaiting []chan Signal
}

// NewBody returns an empty Body in state BodyEmpty.
func NewBody() *Body {
	return &Body{state: BodyEmpty}
}

// NewDoneBody returns a Body already holding a complete, immutable payload,
// for entries constructed from a response whose body was read to completion
// before storage.
func NewDoneBody(b []byte) *Body {
	return &Body{state: BodyDone, bytes: b}
}

// Snapshot returns the current state and the bytes collected so far. The
// returned slice must be treated as read-only by the caller; Append may
// reallocate it on the next call.
func (b *Body) Snapshot() (BodyState, []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state, b.bytes
}

// Append adds p to the body and marks it as Receiving if it was Empty.
// Append must not be called once the body has reached a terminal state.
func (b *Body) Append(p []byte) {
	if len(p) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == BodyEmpty {
		b.state = BodyReceiving
	}
	b.bytes = append(b.bytes, p...)
}

// Complete marks the body Done and wakes every registered waiter with
// SignalDone.
func (b *Body) Complete() {
	b.finish(BodyDone, SignalDone)
}

// Cancel marks the body Cancelled and wakes every registered waiter with
// SignalCancelled.
func (b *Body) Cancel() {
	b.finish(BodyCancelled, SignalCancelled)
}

func (b *Body) finish(state BodyState, sig Signal) {
	b.mu.Lock()
	if b.state == BodyDone || b.state == BodyCancelled {
		b.mu.Unlock()
		return
	}
	b.state = state
	waiters := b.awaiting
	b.awaiting = nil
	b.mu.Unlock()
	for _, ch := range waiters {
		ch <- sig
	}
}

// State reports the current BodyState without copying the accumulated bytes.
func (b *Body) State() BodyState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Len reports the number of bytes currently held, regardless of state.
func (b *Body) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.bytes)
}

// Await registers ch to receive a single Signal once the body leaves
// BodyReceiving/BodyEmpty. If the body has already reached a terminal
// state, Await delivers immediately (on the caller's goroutine, via ch)
// and returns false: there is nothing left to wait for. The check and
// the registration happen under the same lock, so a completion that
// races with a late joiner can never be missed.
func (b *Body) Await(ch chan Signal) (waiting bool) {
	b.mu.Lock()
	switch b.state {
	case BodyDone:
		b.mu.Unlock()
		ch <- SignalDone
		return false
	case BodyCancelled:
		b.mu.Unlock()
		ch <- SignalCancelled
		return false
	default:
		b.awaiting = append(b.awaiting, ch)
		b.mu.Unlock()
		return true
	}
}

// NewWaiter allocates a single-slot buffered channel suitable for Await,
// sized so a wake never blocks even if the caller stops listening.
func NewWaiter() chan Signal {
	return make(chan Signal, 1)
}
